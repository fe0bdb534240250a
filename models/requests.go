package models

import "time"

// CreateComplaintRequest is the intake payload. Either a complainant account
// (from the auth context) or an anonymous submission with optional contact.
type CreateComplaintRequest struct {
	CategoryID       int64    `json:"category_id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Location         *string  `json:"location,omitempty"`
	Priority         Priority `json:"priority"`
	IsAnonymous      bool     `json:"is_anonymous"`
	AnonymousContact *string  `json:"anonymous_contact,omitempty"`
}

// CreateComplaintResponse echoes the persisted identity plus the routing and
// SLA outcome so intake staff can see where the case landed.
type CreateComplaintResponse struct {
	ComplaintID     int64      `json:"complaint_id"`
	ReferenceNumber string     `json:"reference_number"`
	Status          Status     `json:"status"`
	Approval        ApprovalStatus `json:"approval_status"`
	AssignedToID    *int64     `json:"assigned_to_id,omitempty"`
	AssignmentDue   *time.Time `json:"assignment_due,omitempty"`
	ResponseDue     *time.Time `json:"response_due,omitempty"`
	Message         string     `json:"message"`
}

// RejectRequest carries the mandatory rejection reason.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// ResolveRequest carries the resolution evidence for in_progress → resolved.
// Proof may be omitted when the record already holds one (for example a
// chairman comment with an attachment).
type ResolveRequest struct {
	Notes string  `json:"notes"`
	Proof *string `json:"proof,omitempty"`
}

// CommentRequest adds a chairman note, optionally with an attachment
// reference and optionally internal (hidden from the complainant).
type CommentRequest struct {
	Comment    string  `json:"comment"`
	Attachment *string `json:"attachment,omitempty"`
	IsInternal bool    `json:"is_internal"`
}

// TransitionResponse reports the outcome of a lifecycle or approval action.
type TransitionResponse struct {
	ComplaintID     int64  `json:"complaint_id"`
	ReferenceNumber string `json:"reference_number"`
	OldStatus       Status `json:"old_status"`
	NewStatus       Status `json:"new_status"`
	Message         string `json:"message"`
}

// LoginRequest authenticates an official for role-gated actions.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse returns the signed token and the account's role.
type LoginResponse struct {
	Token     string `json:"token"`
	AccountID int64  `json:"account_id"`
	Role      Role   `json:"role"`
}
