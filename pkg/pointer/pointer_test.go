// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/schemely/pkg/pointer"
)

func TestToVal(t *testing.T) {
	assert.Equal(t, "bio", pointer.Val(pointer.To("bio")))
	assert.Equal(t, "", pointer.Val[string](nil))
	assert.Equal(t, 0, pointer.Val[int](nil))
}
