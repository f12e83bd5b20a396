package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "consentd/pkg/domain-errors"
)

type sampleRequest struct {
	TermsVersion string `validate:"required,notblank,max=64"`
	Email        string `validate:"omitempty,max=10"`
}

func TestValidate(t *testing.T) {
	t.Run("valid struct passes", func(t *testing.T) {
		assert.NoError(t, Validate(&sampleRequest{TermsVersion: "v1.0"}))
	})

	t.Run("missing required field", func(t *testing.T) {
		err := Validate(&sampleRequest{})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "terms_version", dErrors.FieldOf(err))
	})

	t.Run("blank string fails notblank", func(t *testing.T) {
		err := Validate(&sampleRequest{TermsVersion: "   "})
		require.Error(t, err)
		assert.Equal(t, "terms_version", dErrors.FieldOf(err))
	})

	t.Run("max length reports field", func(t *testing.T) {
		err := Validate(&sampleRequest{TermsVersion: "v1.0", Email: "0123456789ab"})
		require.Error(t, err)
		assert.Equal(t, "email", dErrors.FieldOf(err))
	})
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "terms_version", toSnakeCase("TermsVersion"))
	assert.Equal(t, "email", toSnakeCase("Email"))
	assert.Equal(t, "ip_address", toSnakeCase("IPAddress"))
}
