package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := New(CodeNotFound, "consent record not found")
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeForbidden))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
	assert.False(t, HasCode(nil, CodeNotFound))
}

func TestWrapPreservesCode(t *testing.T) {
	inner := New(CodeUnavailable, "connection refused")
	wrapped := Wrap(inner, CodeInternal, "failed to insert consent")

	assert.True(t, HasCode(wrapped, CodeUnavailable), "wrapping must not mask the original code")
	assert.True(t, errors.Is(wrapped, inner.(*Error)))
	assert.Equal(t, "failed to insert consent", wrapped.Error())
}

func TestWrapPlainError(t *testing.T) {
	inner := fmt.Errorf("dial tcp: timeout")
	wrapped := Wrap(inner, CodeUnavailable, "store unreachable")

	assert.True(t, HasCode(wrapped, CodeUnavailable))
	assert.True(t, errors.Is(wrapped, inner))
}

func TestFieldOf(t *testing.T) {
	err := NewField(CodeValidation, "terms_version", "this field is required")

	var de *Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "terms_version", FieldOf(err))
	assert.Equal(t, "this field is required", err.Error())

	assert.Empty(t, FieldOf(New(CodeValidation, "no field")))
	assert.Empty(t, FieldOf(errors.New("plain")))
}
