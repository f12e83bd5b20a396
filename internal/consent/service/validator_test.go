package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consentd/internal/consent/models"
	dErrors "consentd/pkg/domain-errors"
)

func TestValidateCandidate(t *testing.T) {
	valid := models.Candidate{TermsVersion: "v1.2", PrivacyVersion: "v1.0"}

	t.Run("authenticated caller needs no email", func(t *testing.T) {
		err := ValidateCandidate(models.Caller{Subject: "tester"}, valid)
		assert.NoError(t, err)
	})

	t.Run("guest with email passes", func(t *testing.T) {
		candidate := valid
		candidate.Email = "guest@example.com"
		err := ValidateCandidate(models.Anonymous, candidate)
		assert.NoError(t, err)
	})

	t.Run("guest without email fails on email", func(t *testing.T) {
		err := ValidateCandidate(models.Anonymous, valid)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "email", dErrors.FieldOf(err))
	})

	t.Run("guest with whitespace email fails", func(t *testing.T) {
		candidate := valid
		candidate.Email = "   "
		err := ValidateCandidate(models.Anonymous, candidate)
		require.Error(t, err)
		assert.Equal(t, "email", dErrors.FieldOf(err))
	})

	t.Run("email format is not checked", func(t *testing.T) {
		candidate := valid
		candidate.Email = "not-an-email"
		err := ValidateCandidate(models.Anonymous, candidate)
		assert.NoError(t, err)
	})

	t.Run("missing terms version", func(t *testing.T) {
		err := ValidateCandidate(models.Caller{Subject: "tester"},
			models.Candidate{PrivacyVersion: "v1.0"})
		require.Error(t, err)
		assert.Equal(t, "terms_version", dErrors.FieldOf(err))
	})

	t.Run("missing privacy version", func(t *testing.T) {
		err := ValidateCandidate(models.Caller{Subject: "tester"},
			models.Candidate{TermsVersion: "v1.2"})
		require.Error(t, err)
		assert.Equal(t, "privacy_version", dErrors.FieldOf(err))
	})
}
