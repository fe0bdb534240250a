package models

import (
	"database/sql"
	"time"
)

// Status is the lifecycle state of a complaint.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// Priority drives the SLA deadlines computed at creation.
type Priority string

const (
	PriorityNormal    Priority = "normal"
	PriorityHigh      Priority = "high"
	PriorityEmergency Priority = "emergency"
)

// IsValid reports whether p is one of the enumerated priorities.
func (p Priority) IsValid() bool {
	return p == PriorityNormal || p == PriorityHigh || p == PriorityEmergency
}

// ApprovalStatus is the intake-review state, orthogonal to Status. A rejected
// complaint is a terminal, read-only record excluded from active queues.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Complaint is the central entity. Nullable columns use sql.Null types; the
// repository persists every mutable field as a unit inside a transaction.
type Complaint struct {
	ComplaintID      int64          `db:"complaint_id" json:"complaint_id"`
	ReferenceNumber  string         `db:"reference_number" json:"reference_number"`
	ComplainantID    sql.NullInt64  `db:"complainant_id" json:"complainant_id"`
	IsAnonymous      bool           `db:"is_anonymous" json:"is_anonymous"`
	AnonymousContact sql.NullString `db:"anonymous_contact" json:"anonymous_contact,omitempty"`
	CategoryID       int64          `db:"category_id" json:"category_id"`
	Title            string         `db:"title" json:"title"`
	Description      string         `db:"description" json:"description"`
	Location         sql.NullString `db:"location" json:"location,omitempty"`

	Status   Status   `db:"status" json:"status"`
	Priority Priority `db:"priority" json:"priority"`

	// Approval gate (secretary review before the chairman sees the case).
	Approval        ApprovalStatus `db:"approval_status" json:"approval_status"`
	ApprovedByID    sql.NullInt64  `db:"approved_by_id" json:"approved_by_id"`
	ApprovedAt      sql.NullTime   `db:"approved_at" json:"approved_at"`
	RejectionReason sql.NullString `db:"rejection_reason" json:"rejection_reason,omitempty"`

	AssignedToID    sql.NullInt64  `db:"assigned_to_id" json:"assigned_to_id"`
	AssignmentNotes sql.NullString `db:"assignment_notes" json:"assignment_notes,omitempty"`

	// SLA tracking, set once at creation from priority.
	AssignmentDue sql.NullTime `db:"assignment_due" json:"assignment_due"`
	ResponseDue   sql.NullTime `db:"response_due" json:"response_due"`
	AcceptedAt    sql.NullTime `db:"accepted_at" json:"accepted_at"`

	ResolvedAt      sql.NullTime   `db:"resolved_at" json:"resolved_at"`
	ResolvedByID    sql.NullInt64  `db:"resolved_by_id" json:"resolved_by_id"`
	ResolutionNotes sql.NullString `db:"resolution_notes" json:"resolution_notes,omitempty"`
	ResolutionProof sql.NullString `db:"resolution_proof" json:"resolution_proof,omitempty"`

	OverdueNotifiedAt sql.NullTime `db:"overdue_notified_at" json:"-"`

	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at" json:"updated_at"`
}

// IsOverdue reports whether the complaint is past its response SLA.
func (c *Complaint) IsOverdue(now time.Time) bool {
	return c.ResponseDue.Valid && now.After(c.ResponseDue.Time)
}

// Rejected reports whether the complaint was rejected at the approval gate.
func (c *Complaint) Rejected() bool {
	return c.Approval == ApprovalRejected
}

// Category is an administrator-defined complaint classification.
type Category struct {
	CategoryID  int64          `db:"category_id" json:"category_id"`
	Name        string         `db:"name" json:"name"`
	Description sql.NullString `db:"description" json:"description,omitempty"`
	IsActive    bool           `db:"is_active" json:"is_active"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// AssignmentRule maps a category to its default assignee chain. A category
// has at most one rule; a category without a rule falls straight through to
// the universal fallback role.
type AssignmentRule struct {
	RuleID          int64          `db:"rule_id" json:"rule_id"`
	CategoryID      int64          `db:"category_id" json:"category_id"`
	PrimaryRole     Role           `db:"primary_role" json:"primary_role"`
	BackupRole      sql.NullString `db:"backup_role" json:"backup_role,omitempty"`
	IsSensitive     bool           `db:"is_sensitive" json:"is_sensitive"`
	RequiresReferral bool          `db:"requires_referral" json:"requires_referral"`
	EscalationNotes sql.NullString `db:"escalation_notes" json:"escalation_notes,omitempty"`
}

// ComplaintComment is a chairman-authored note on a complaint. A comment
// attachment doubles as resolution proof.
type ComplaintComment struct {
	CommentID   int64          `db:"comment_id" json:"comment_id"`
	ComplaintID int64          `db:"complaint_id" json:"complaint_id"`
	AuthorID    int64          `db:"author_id" json:"author_id"`
	Comment     string         `db:"comment" json:"comment"`
	Attachment  sql.NullString `db:"attachment" json:"attachment,omitempty"`
	IsInternal  bool           `db:"is_internal" json:"is_internal"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// ComplaintFilter narrows list queries. The service layer builds the filter
// from the viewer's role; handlers add the optional search fields.
type ComplaintFilter struct {
	ComplainantID   *int64
	AssignedToID    *int64
	CategoryID      *int64
	Status          *Status
	Priority        *Priority
	ExcludeRejected bool
	ApprovedOnly    bool
	Search          string
}

// StatusCounts is a per-status tally for the dashboard.
type StatusCounts struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
	Closed     int `json:"closed"`
}
