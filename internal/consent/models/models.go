package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Caller identifies who is making a request. The zero value is an anonymous
// guest; an authenticated caller carries the subject of its principal and,
// optionally, administrator privilege.
//
// Both the create-time validation rule and the access predicate branch on this
// type, so the guest/authenticated split lives in one place instead of
// scattered nil checks.
type Caller struct {
	Subject string
	Admin   bool
}

// Anonymous is the unauthenticated guest caller.
var Anonymous = Caller{}

// Authenticated reports whether the caller carries an identity.
func (c Caller) Authenticated() bool {
	return c.Subject != ""
}

// Record is a persisted acceptance of a Terms & Conditions / Privacy Policy
// version pair. AcceptedAt, IPAddress and ClientAgent are stamped by the
// service at creation from server-observed context and never change afterward.
//
// A record is owned by its Identity when present. Guest records (no identity)
// have no owner and are reachable only by administrators.
type Record struct {
	ID             uuid.UUID
	Identity       string
	Email          string
	TermsVersion   string
	PrivacyVersion string
	AcceptedAt     time.Time
	IPAddress      string
	ClientAgent    string
	Source         string
	Metadata       map[string]any
	Revoked        bool
	RevokedAt      *time.Time
}

// Owned reports whether the record is linked to an authenticated identity.
func (r Record) Owned() bool {
	return r.Identity != ""
}

// SubjectLabel is a human-readable "who" for audit trails and admin listings:
// the owning identity, the guest email, or the record id as a last resort.
func (r Record) SubjectLabel() string {
	if r.Identity != "" {
		return r.Identity
	}
	if r.Email != "" {
		return r.Email
	}
	return fmt.Sprintf("Consent#%s", r.ID)
}

// Candidate is the caller-supplied portion of a consent record. It
// deliberately has no slots for identity, timestamps, network origin or
// revocation state; those exist only on Record and are filled in by the
// service, so a caller cannot smuggle them in.
type Candidate struct {
	Email          string
	TermsVersion   string
	PrivacyVersion string
	Source         string
	Metadata       map[string]any
}

// RequestMeta is the server-observed context captured alongside a creation:
// the resolved network origin and the raw client agent string.
type RequestMeta struct {
	IPAddress   string
	ClientAgent string
}

// Filter narrows admin listings. Nil fields match everything.
type Filter struct {
	TermsVersion   *string
	PrivacyVersion *string
	Revoked        *bool
	AcceptedAfter  *time.Time
	AcceptedBefore *time.Time
}

// Matches reports whether the record satisfies every set constraint.
func (f *Filter) Matches(r *Record) bool {
	if f == nil {
		return true
	}
	if f.TermsVersion != nil && r.TermsVersion != *f.TermsVersion {
		return false
	}
	if f.PrivacyVersion != nil && r.PrivacyVersion != *f.PrivacyVersion {
		return false
	}
	if f.Revoked != nil && r.Revoked != *f.Revoked {
		return false
	}
	if f.AcceptedAfter != nil && r.AcceptedAt.Before(*f.AcceptedAfter) {
		return false
	}
	if f.AcceptedBefore != nil && r.AcceptedAt.After(*f.AcceptedBefore) {
		return false
	}
	return true
}

// MoreRecent is the listing order: acceptedAt descending, ties broken by id
// descending so results are deterministic.
func MoreRecent(a, b *Record) bool {
	if !a.AcceptedAt.Equal(b.AcceptedAt) {
		return a.AcceptedAt.After(b.AcceptedAt)
	}
	return a.ID.String() > b.ID.String()
}
