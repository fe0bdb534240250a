package service

import (
	"barangaylink/models"
	"time"
)

// ComplaintStore is the persistence surface the engine mutates through. The
// MySQL implementation lives in the repository package; tests use in-memory
// fakes.
type ComplaintStore interface {
	Create(c *models.Complaint) error
	GetByID(complaintID int64) (*models.Complaint, error)
	// Mutate runs fn against the current row inside a transaction holding a
	// row lock, then persists every mutable field as a single unit. fn sees
	// the re-read state, not whatever the caller read earlier; returning an
	// error rolls the whole transition back.
	Mutate(complaintID int64, fn func(*models.Complaint) error) (*models.Complaint, error)
	Delete(complaintID int64) error
	List(filter models.ComplaintFilter) ([]models.Complaint, error)
	CountByStatus(filter models.ComplaintFilter) (*models.StatusCounts, error)
	ListOverdue(now time.Time) ([]models.Complaint, error)
	MarkOverdueNotified(complaintID int64, at time.Time) error
}

// CommentStore persists chairman comments. A stored attachment counts as
// resolution proof.
type CommentStore interface {
	CreateComment(c *models.ComplaintComment) error
	ListComments(complaintID int64, includeInternal bool) ([]models.ComplaintComment, error)
	HasProofAttachment(complaintID int64) (bool, error)
}

// CategoryStore is the read-only view of categories and their assignment
// rules. GetRuleForCategory returns (nil, nil) when the category has no rule.
type CategoryStore interface {
	GetCategory(categoryID int64) (*models.Category, error)
	GetRuleForCategory(categoryID int64) (*models.AssignmentRule, error)
}

// RoleDirectory is the read-only lookup of role holders. ListEligible returns
// only accounts that are active and approved.
type RoleDirectory interface {
	ListEligible(role models.Role) ([]models.Account, error)
	GetAccount(accountID int64) (*models.Account, error)
}

// NotificationStore is the outbox table behind the dispatch worker.
type NotificationStore interface {
	CreateNotification(n *models.Notification) error
	ListDue(now time.Time, limit int) ([]models.Notification, error)
	UpdateNotification(n *models.Notification) error
}

// NotificationQueue accepts outbox rows from the lifecycle orchestrator.
// Queueing failures are logged and swallowed; a complaint's state never
// depends on notification delivery.
type NotificationQueue interface {
	Queue(n *models.Notification) error
}
