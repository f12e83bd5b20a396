package handler

import (
	"consentd/internal/consent/models"
)

// CreateRequest is the payload for recording a consent. Identity, acceptance
// time and network origin are intentionally absent; the server stamps those.
// Email stays optional at the shape level because authenticated callers need
// none; the guest rule is enforced by the service, which knows the caller.
type CreateRequest struct {
	Email          string         `json:"email" validate:"omitempty,max=254"`
	TermsVersion   string         `json:"terms_version" validate:"required,notblank,max=64"`
	PrivacyVersion string         `json:"privacy_version" validate:"required,notblank,max=64"`
	Source         string         `json:"source" validate:"omitempty,max=64"`
	Metadata       map[string]any `json:"metadata" validate:"omitempty,max=32"`
}

// ToCandidate converts the validated request into a domain candidate.
func (r *CreateRequest) ToCandidate() models.Candidate {
	return models.Candidate{
		Email:          r.Email,
		TermsVersion:   r.TermsVersion,
		PrivacyVersion: r.PrivacyVersion,
		Source:         r.Source,
		Metadata:       r.Metadata,
	}
}
