package service

import (
	"errors"
	"fmt"
	"strings"

	"barangaylink/models"
)

// ErrNotFound is returned when the referenced complaint does not exist.
var ErrNotFound = errors.New("complaint not found")

// IllegalTransitionError reports a lifecycle edge that does not exist. It
// carries the current state and the allowed next states so callers can show
// what would have been legal.
type IllegalTransitionError struct {
	ComplaintID int64
	Current     models.Status
	Requested   models.Status
	Allowed     []models.Status
}

func (e *IllegalTransitionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("complaint %d: illegal transition %s → %s (%s is terminal)",
			e.ComplaintID, e.Current, e.Requested, e.Current)
	}
	next := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		next[i] = string(s)
	}
	return fmt.Sprintf("complaint %d: illegal transition %s → %s (allowed next: %s)",
		e.ComplaintID, e.Current, e.Requested, strings.Join(next, ", "))
}

// ApprovalStateError reports an approval-gate action on a complaint that is
// no longer pending. Both approve and reject are terminal, one-shot
// decisions; retrying an already-decided complaint fails here rather than
// silently re-applying.
type ApprovalStateError struct {
	ComplaintID int64
	Current     models.ApprovalStatus
}

func (e *ApprovalStateError) Error() string {
	return fmt.Sprintf("complaint %d is not in pending state (approval is %s)", e.ComplaintID, e.Current)
}

// ValidationError reports a missing or malformed field required by the
// requested transition. Field names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PermissionError reports a role-gate failure. It is always surfaced to the
// caller, never downgraded to a no-op.
type PermissionError struct {
	Role   models.Role
	Action string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("role %s may not %s", e.Role, e.Action)
}
