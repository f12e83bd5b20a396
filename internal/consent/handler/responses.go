package handler

import (
	"strings"
	"time"

	"github.com/mssola/useragent"

	"consentd/internal/consent/models"
)

// ConsentResponse is a consent record in HTTP responses. Client is a
// human-readable rendering of the recorded agent string for admin listings;
// the raw string is still returned untouched.
type ConsentResponse struct {
	ID             string         `json:"id"`
	Subject        string         `json:"subject"`
	Identity       string         `json:"identity,omitempty"`
	Email          string         `json:"email,omitempty"`
	TermsVersion   string         `json:"terms_version"`
	PrivacyVersion string         `json:"privacy_version"`
	AcceptedAt     time.Time      `json:"accepted_at"`
	IPAddress      string         `json:"ip_address,omitempty"`
	ClientAgent    string         `json:"client_agent,omitempty"`
	Client         string         `json:"client,omitempty"`
	Source         string         `json:"source,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	Revoked        bool           `json:"revoked"`
	RevokedAt      *time.Time     `json:"revoked_at,omitempty"`
}

// ListResponse is returned when listing consents.
type ListResponse struct {
	Consents []*ConsentResponse `json:"consents"`
	Count    int                `json:"count"`
}

// RevokeResponse is returned after revoking a consent.
type RevokeResponse struct {
	Consent *ConsentResponse `json:"consent"`
	Message string           `json:"message,omitempty"`
}

func toConsentResponse(record *models.Record) *ConsentResponse {
	return &ConsentResponse{
		ID:             record.ID.String(),
		Subject:        record.SubjectLabel(),
		Identity:       record.Identity,
		Email:          record.Email,
		TermsVersion:   record.TermsVersion,
		PrivacyVersion: record.PrivacyVersion,
		AcceptedAt:     record.AcceptedAt,
		IPAddress:      record.IPAddress,
		ClientAgent:    record.ClientAgent,
		Client:         describeClient(record.ClientAgent),
		Source:         record.Source,
		Metadata:       record.Metadata,
		Revoked:        record.Revoked,
		RevokedAt:      record.RevokedAt,
	}
}

func toListResponse(records []*models.Record) *ListResponse {
	consents := make([]*ConsentResponse, 0, len(records))
	for _, record := range records {
		consents = append(consents, toConsentResponse(record))
	}
	return &ListResponse{Consents: consents, Count: len(consents)}
}

// describeClient extracts a "Browser on OS" display name from the recorded
// agent string (e.g. "Chrome on macOS", "Safari on iPhone").
func describeClient(clientAgent string) string {
	if clientAgent == "" {
		return ""
	}

	ua := useragent.New(clientAgent)
	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" && browser != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}

	if browser == "" || os == "" {
		return ""
	}
	return strings.TrimSpace(browser + " on " + os)
}
