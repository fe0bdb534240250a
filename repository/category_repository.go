package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"barangaylink/models"
)

// CategoryRepository handles database operations for categories and their
// assignment rules.
type CategoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetCategory retrieves a category by ID. Returns (nil, nil) when no such
// category exists.
func (r *CategoryRepository) GetCategory(id int64) (*models.Category, error) {
	query := `SELECT category_id, name, description, is_active, created_at
		FROM categories WHERE category_id = ?`

	var c models.Category
	err := r.db.QueryRow(query, id).Scan(&c.CategoryID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category %d: %w", id, err)
	}
	return &c, nil
}

// ListCategories retrieves all active categories for the intake form.
func (r *CategoryRepository) ListCategories() ([]models.Category, error) {
	query := `SELECT category_id, name, description, is_active, created_at
		FROM categories WHERE is_active = TRUE ORDER BY name`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.CategoryID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetRuleForCategory retrieves the assignment rule for a category. Returns
// (nil, nil) when the category has no rule; the caller falls through to the
// universal fallback.
func (r *CategoryRepository) GetRuleForCategory(categoryID int64) (*models.AssignmentRule, error) {
	query := `SELECT rule_id, category_id, primary_role, backup_role,
			is_sensitive, requires_referral, escalation_notes
		FROM assignment_rules WHERE category_id = ?`

	var rule models.AssignmentRule
	err := r.db.QueryRow(query, categoryID).Scan(
		&rule.RuleID, &rule.CategoryID, &rule.PrimaryRole, &rule.BackupRole,
		&rule.IsSensitive, &rule.RequiresReferral, &rule.EscalationNotes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get assignment rule for category %d: %w", categoryID, err)
	}
	return &rule, nil
}
