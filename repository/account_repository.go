package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"barangaylink/models"
)

// AccountRepository handles database operations for user accounts. The
// engine treats accounts as read-only: role holders are provisioned and
// approved by administrators outside this service.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `user_id, username, full_name, email, role, password_hash, is_active, is_approved`

func scanAccount(row interface{ Scan(...interface{}) error }) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.AccountID, &a.Username, &a.FullName, &a.Email,
		&a.Role, &a.PasswordHash, &a.IsActive, &a.IsApproved,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListEligible retrieves all active, approved holders of a role.
func (r *AccountRepository) ListEligible(role models.Role) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users
		WHERE role = ? AND is_active = TRUE AND is_approved = TRUE
		ORDER BY user_id`

	rows, err := r.db.Query(query, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s accounts: %w", role, err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// GetAccount retrieves an account by ID. Returns (nil, nil) when the account
// does not exist.
func (r *AccountRepository) GetAccount(id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE user_id = ?`
	a, err := scanAccount(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}
	return a, nil
}

// GetByUsername retrieves an account with its password hash for login.
// Returns (nil, nil) when no such username exists.
func (r *AccountRepository) GetByUsername(username string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE username = ?`
	a, err := scanAccount(r.db.QueryRow(query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account %q: %w", username, err)
	}
	return a, nil
}
