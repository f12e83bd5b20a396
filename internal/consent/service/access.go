package service

import "consentd/internal/consent/models"

// CanAccess decides whether a caller may read or revoke a record:
// administrators always may; an authenticated caller may iff it owns the
// record. Everyone else is denied, which means guest records (no identity)
// are reachable only by administrators - there is no owner to match.
//
// Access is a plain predicate of (caller, record); it never touches storage.
func CanAccess(caller models.Caller, record *models.Record) bool {
	if caller.Admin {
		return true
	}
	if record.Owned() && caller.Authenticated() {
		return record.Identity == caller.Subject
	}
	return false
}
