package handler

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"consentd/internal/consent/models"
	dErrors "consentd/pkg/domain-errors"
)

// parseListFilter converts query parameters into a domain Filter. Returns nil
// when no filters are specified. Timestamps are RFC 3339.
func parseListFilter(query url.Values) (*models.Filter, error) {
	filter := &models.Filter{}
	set := false

	if v := strings.TrimSpace(query.Get("terms_version")); v != "" {
		filter.TermsVersion = &v
		set = true
	}
	if v := strings.TrimSpace(query.Get("privacy_version")); v != "" {
		filter.PrivacyVersion = &v
		set = true
	}
	if v := strings.TrimSpace(query.Get("revoked")); v != "" {
		revoked, err := strconv.ParseBool(v)
		if err != nil {
			return nil, dErrors.NewField(dErrors.CodeValidation, "revoked",
				"revoked: must be true or false")
		}
		filter.Revoked = &revoked
		set = true
	}
	if v := strings.TrimSpace(query.Get("accepted_after")); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, dErrors.NewField(dErrors.CodeValidation, "accepted_after",
				"accepted_after: must be an RFC 3339 timestamp")
		}
		filter.AcceptedAfter = &ts
		set = true
	}
	if v := strings.TrimSpace(query.Get("accepted_before")); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, dErrors.NewField(dErrors.CodeValidation, "accepted_before",
				"accepted_before: must be an RFC 3339 timestamp")
		}
		filter.AcceptedBefore = &ts
		set = true
	}

	if !set {
		return nil, nil
	}
	return filter, nil
}
