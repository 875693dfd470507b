// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/schemely/internal/platform/apperr"
	"github.com/taibuivan/schemely/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/schemely/internal/platform/request"
	"github.com/taibuivan/schemely/internal/platform/sec"
)

func TestDecodeJSON(t *testing.T) {
	var target struct {
		Email string `json:"email"`
	}

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c"}`))
	require.NoError(t, requestutil.DecodeJSON(request, &target))
	assert.Equal(t, "a@b.c", target.Email)
}

func TestDecodeJSON_Malformed(t *testing.T) {
	var target map[string]string

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
	err := requestutil.DecodeJSON(request, &target)
	require.Error(t, err)
	assert.False(t, apperr.IsAppError(err))
}

func TestRequiredClaims(t *testing.T) {
	anonymous := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := requestutil.RequiredClaims(anonymous)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperr.As(err).HTTPStatus)

	claims := &sec.SessionClaims{UserID: "u-1"}
	authenticated := anonymous.WithContext(ctxutil.WithSession(anonymous.Context(), claims))

	got, err := requestutil.RequiredClaims(authenticated)
	require.NoError(t, err)
	assert.Same(t, claims, got)

	userID, err := requestutil.RequiredUserID(authenticated)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
}
