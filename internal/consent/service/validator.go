package service

import (
	"strings"

	"consentd/internal/consent/models"
	dErrors "consentd/pkg/domain-errors"
)

// ValidateCandidate enforces the creation preconditions. It is a pure function
// of the candidate and the caller's identity presence:
//
//   - a guest (anonymous caller) must supply an email; an authenticated caller
//     need not,
//   - both document versions must be non-empty.
//
// Email and version formats are deliberately not validated; both are opaque
// strings here, exactly as the caller sent them.
func ValidateCandidate(caller models.Caller, candidate models.Candidate) error {
	if !caller.Authenticated() && strings.TrimSpace(candidate.Email) == "" {
		return dErrors.NewField(dErrors.CodeValidation, "email",
			"authentication or email required to record consent")
	}
	if strings.TrimSpace(candidate.TermsVersion) == "" {
		return dErrors.NewField(dErrors.CodeValidation, "terms_version",
			"terms_version: this field is required")
	}
	if strings.TrimSpace(candidate.PrivacyVersion) == "" {
		return dErrors.NewField(dErrors.CodeValidation, "privacy_version",
			"privacy_version: this field is required")
	}
	return nil
}
