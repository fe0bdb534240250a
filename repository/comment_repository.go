package repository

import (
	"database/sql"
	"fmt"

	"barangaylink/models"
)

// CommentRepository handles database operations for complaint comments.
type CommentRepository struct {
	db *sql.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// CreateComment inserts a comment and sets its generated ID.
func (r *CommentRepository) CreateComment(c *models.ComplaintComment) error {
	query := `
		INSERT INTO complaint_comments (complaint_id, author_id, comment, attachment, is_internal, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query, c.ComplaintID, c.AuthorID, c.Comment, c.Attachment, c.IsInternal, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	commentID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get comment ID: %w", err)
	}
	c.CommentID = commentID
	return nil
}

// ListComments retrieves a complaint's comments oldest first. Internal
// comments are included only for official viewers.
func (r *CommentRepository) ListComments(complaintID int64, includeInternal bool) ([]models.ComplaintComment, error) {
	query := `SELECT comment_id, complaint_id, author_id, comment, attachment, is_internal, created_at
		FROM complaint_comments WHERE complaint_id = ?`
	if !includeInternal {
		query += ` AND is_internal = FALSE`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.Query(query, complaintID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.ComplaintComment
	for rows.Next() {
		var c models.ComplaintComment
		if err := rows.Scan(&c.CommentID, &c.ComplaintID, &c.AuthorID, &c.Comment,
			&c.Attachment, &c.IsInternal, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// HasProofAttachment reports whether any comment on the complaint carries an
// attachment, which counts as resolution evidence.
func (r *CommentRepository) HasProofAttachment(complaintID int64) (bool, error) {
	var n int
	query := `SELECT COUNT(*) FROM complaint_comments
		WHERE complaint_id = ? AND attachment IS NOT NULL AND attachment != ''`
	if err := r.db.QueryRow(query, complaintID).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check comment attachments: %w", err)
	}
	return n > 0, nil
}
