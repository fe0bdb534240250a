package service

import (
	"database/sql"
	"time"

	"barangaylink/models"
)

// SLA bands per priority. Deadlines are computed once at creation and never
// recomputed on later edits unless response_due is still unset (legacy or
// incompletely initialized records).
//
//	emergency: assignment +1h, response +4h
//	high:      assignment +4h, response +2d
//	normal:    assignment +1d, response +5d
func ComputeDeadlines(p models.Priority, createdAt time.Time) (assignmentDue, responseDue time.Time) {
	switch p {
	case models.PriorityEmergency:
		return createdAt.Add(1 * time.Hour), createdAt.Add(4 * time.Hour)
	case models.PriorityHigh:
		return createdAt.Add(4 * time.Hour), createdAt.Add(2 * 24 * time.Hour)
	default:
		return createdAt.Add(24 * time.Hour), createdAt.Add(5 * 24 * time.Hour)
	}
}

// ensureDeadlines backfills the SLA fields on records that never received
// them. Records with a response_due are left untouched.
func ensureDeadlines(c *models.Complaint, now time.Time) {
	if c.ResponseDue.Valid {
		return
	}
	base := c.CreatedAt
	if base.IsZero() {
		base = now
	}
	assignmentDue, responseDue := ComputeDeadlines(c.Priority, base)
	c.AssignmentDue = sql.NullTime{Time: assignmentDue, Valid: true}
	c.ResponseDue = sql.NullTime{Time: responseDue, Valid: true}
}
