// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/schemely/internal/platform/dberr"
)

func TestIsNoRows(t *testing.T) {
	assert.True(t, dberr.IsNoRows(pgx.ErrNoRows))
	assert.True(t, dberr.IsNoRows(fmt.Errorf("scan: %w", pgx.ErrNoRows)))
	assert.False(t, dberr.IsNoRows(errors.New("connection reset")))
}

func TestUniqueViolation(t *testing.T) {
	violation := &pgconn.PgError{Code: "23505", ConstraintName: "account_email_key"}

	constraint, ok := dberr.UniqueViolation(fmt.Errorf("insert: %w", violation))
	assert.True(t, ok)
	assert.Equal(t, "account_email_key", constraint)

	_, ok = dberr.UniqueViolation(&pgconn.PgError{Code: "23503"})
	assert.False(t, ok)

	_, ok = dberr.UniqueViolation(errors.New("boom"))
	assert.False(t, ok)
}
