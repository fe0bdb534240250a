package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"barangaylink/models"
	"barangaylink/service"
)

// ComplaintRepository handles database operations for complaints.
type ComplaintRepository struct {
	db *sql.DB
}

// NewComplaintRepository creates a new complaint repository.
func NewComplaintRepository(db *sql.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

const complaintColumns = `
	complaint_id, reference_number, complainant_id, is_anonymous, anonymous_contact,
	category_id, title, description, location,
	status, priority,
	approval_status, approved_by_id, approved_at, rejection_reason,
	assigned_to_id, assignment_notes,
	assignment_due, response_due, accepted_at,
	resolved_at, resolved_by_id, resolution_notes, resolution_proof,
	overdue_notified_at, created_at, updated_at`

func scanComplaint(row interface{ Scan(...interface{}) error }) (*models.Complaint, error) {
	var c models.Complaint
	err := row.Scan(
		&c.ComplaintID, &c.ReferenceNumber, &c.ComplainantID, &c.IsAnonymous, &c.AnonymousContact,
		&c.CategoryID, &c.Title, &c.Description, &c.Location,
		&c.Status, &c.Priority,
		&c.Approval, &c.ApprovedByID, &c.ApprovedAt, &c.RejectionReason,
		&c.AssignedToID, &c.AssignmentNotes,
		&c.AssignmentDue, &c.ResponseDue, &c.AcceptedAt,
		&c.ResolvedAt, &c.ResolvedByID, &c.ResolutionNotes, &c.ResolutionProof,
		&c.OverdueNotifiedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan complaint: %w", err)
	}
	return &c, nil
}

// Create inserts a new complaint and sets its generated ID.
func (r *ComplaintRepository) Create(c *models.Complaint) error {
	query := `
		INSERT INTO complaints (
			reference_number, complainant_id, is_anonymous, anonymous_contact,
			category_id, title, description, location,
			status, priority, approval_status,
			assigned_to_id, assignment_notes,
			assignment_due, response_due, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(
		query,
		c.ReferenceNumber,
		c.ComplainantID,
		c.IsAnonymous,
		c.AnonymousContact,
		c.CategoryID,
		c.Title,
		c.Description,
		c.Location,
		c.Status,
		c.Priority,
		c.Approval,
		c.AssignedToID,
		c.AssignmentNotes,
		c.AssignmentDue,
		c.ResponseDue,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}

	complaintID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get complaint ID: %w", err)
	}
	c.ComplaintID = complaintID
	return nil
}

// GetByID retrieves a single complaint.
func (r *ComplaintRepository) GetByID(id int64) (*models.Complaint, error) {
	query := `SELECT` + complaintColumns + ` FROM complaints WHERE complaint_id = ?`
	return scanComplaint(r.db.QueryRow(query, id))
}

// Mutate re-reads the complaint inside a transaction with a row lock, applies
// fn and persists the full mutable column set. Concurrent Mutate calls on the
// same complaint serialize on the lock, so fn always sees committed state.
func (r *ComplaintRepository) Mutate(id int64, fn func(*models.Complaint) error) (*models.Complaint, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT` + complaintColumns + ` FROM complaints WHERE complaint_id = ? FOR UPDATE`
	c, err := scanComplaint(tx.QueryRow(query, id))
	if err != nil {
		return nil, err
	}

	if err := fn(c); err != nil {
		return nil, err
	}

	update := `
		UPDATE complaints SET
			status = ?, priority = ?,
			approval_status = ?, approved_by_id = ?, approved_at = ?, rejection_reason = ?,
			assigned_to_id = ?, assignment_notes = ?,
			assignment_due = ?, response_due = ?, accepted_at = ?,
			resolved_at = ?, resolved_by_id = ?, resolution_notes = ?, resolution_proof = ?,
			overdue_notified_at = ?, updated_at = ?
		WHERE complaint_id = ?
	`
	_, err = tx.Exec(
		update,
		c.Status, c.Priority,
		c.Approval, c.ApprovedByID, c.ApprovedAt, c.RejectionReason,
		c.AssignedToID, c.AssignmentNotes,
		c.AssignmentDue, c.ResponseDue, c.AcceptedAt,
		c.ResolvedAt, c.ResolvedByID, c.ResolutionNotes, c.ResolutionProof,
		c.OverdueNotifiedAt, c.UpdatedAt,
		c.ComplaintID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update complaint %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit complaint update: %w", err)
	}
	return c, nil
}

// Delete permanently removes a complaint and its comments.
func (r *ComplaintRepository) Delete(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM complaint_comments WHERE complaint_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete complaint comments: %w", err)
	}
	result, err := tx.Exec(`DELETE FROM complaints WHERE complaint_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete complaint: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return service.ErrNotFound
	}
	return tx.Commit()
}

// List retrieves complaints matching the filter, newest first.
func (r *ComplaintRepository) List(f models.ComplaintFilter) ([]models.Complaint, error) {
	var conditions []string
	var args []interface{}

	if f.ComplainantID != nil {
		conditions = append(conditions, "complainant_id = ?")
		args = append(args, *f.ComplainantID)
	}
	if f.AssignedToID != nil {
		conditions = append(conditions, "assigned_to_id = ?")
		args = append(args, *f.AssignedToID)
	}
	if f.CategoryID != nil {
		conditions = append(conditions, "category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *f.Status)
	}
	if f.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, *f.Priority)
	}
	if f.ExcludeRejected {
		conditions = append(conditions, "approval_status != 'rejected'")
	}
	if f.ApprovedOnly {
		conditions = append(conditions, "approval_status = 'approved'")
	}
	if f.Search != "" {
		conditions = append(conditions, "(title LIKE ? OR description LIKE ? OR reference_number LIKE ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}

	query := `SELECT` + complaintColumns + ` FROM complaints`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	defer rows.Close()

	var complaints []models.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		complaints = append(complaints, *c)
	}
	return complaints, rows.Err()
}

// CountByStatus tallies complaints per lifecycle status.
func (r *ComplaintRepository) CountByStatus(f models.ComplaintFilter) (*models.StatusCounts, error) {
	query := `SELECT status, COUNT(*) FROM complaints`
	var args []interface{}
	if f.ExcludeRejected {
		query += ` WHERE approval_status != 'rejected'`
	}
	query += ` GROUP BY status`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count complaints: %w", err)
	}
	defer rows.Close()

	counts := &models.StatusCounts{}
	for rows.Next() {
		var status models.Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts.Total += n
		switch status {
		case models.StatusPending:
			counts.Pending = n
		case models.StatusInProgress:
			counts.InProgress = n
		case models.StatusResolved:
			counts.Resolved = n
		case models.StatusClosed:
			counts.Closed = n
		}
	}
	return counts, rows.Err()
}

// ListOverdue retrieves open complaints past their response deadline that
// have not yet been reminded.
func (r *ComplaintRepository) ListOverdue(now time.Time) ([]models.Complaint, error) {
	query := `SELECT` + complaintColumns + ` FROM complaints
		WHERE status IN ('pending', 'in_progress')
		  AND approval_status != 'rejected'
		  AND response_due IS NOT NULL AND response_due < ?
		  AND overdue_notified_at IS NULL
		ORDER BY response_due ASC`

	rows, err := r.db.Query(query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue complaints: %w", err)
	}
	defer rows.Close()

	var complaints []models.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		complaints = append(complaints, *c)
	}
	return complaints, rows.Err()
}

// MarkOverdueNotified stamps a complaint so it is reminded at most once.
func (r *ComplaintRepository) MarkOverdueNotified(id int64, at time.Time) error {
	result, err := r.db.Exec(`UPDATE complaints SET overdue_notified_at = ? WHERE complaint_id = ?`, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark complaint %d overdue-notified: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if affected == 0 {
		return service.ErrNotFound
	}
	return nil
}
