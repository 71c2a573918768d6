package domain

import "errors"

// Fatal report errors. Per-source fetch failures are not part of this set:
// they degrade the affected source to "exhausted" and are only logged.
var (
	ErrRoleNotFound          = errors.New("role not found")
	ErrMembershipUnavailable = errors.New("member directory unavailable")
	ErrUnsupportedSourceType = errors.New("unsupported source type")
)
