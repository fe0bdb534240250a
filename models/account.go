package models

import (
	"database/sql"
	"time"
)

// Account is the role-directory projection of a portal user. The complaint
// engine only ever reads accounts; registration and approval of users is
// handled elsewhere.
type Account struct {
	AccountID    int64          `db:"account_id" json:"account_id"`
	Username     string         `db:"username" json:"username"`
	FullName     sql.NullString `db:"full_name" json:"full_name"`
	Email        sql.NullString `db:"email" json:"email"`
	Role         Role           `db:"role" json:"role"`
	PasswordHash string         `db:"password_hash" json:"-"`
	IsActive     bool           `db:"is_active" json:"is_active"`
	IsApproved   bool           `db:"is_approved" json:"is_approved"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// Eligible reports whether the account may receive work: it must be both
// active and approved.
func (a *Account) Eligible() bool {
	return a.IsActive && a.IsApproved
}

// DisplayName returns the full name when present, the username otherwise.
func (a *Account) DisplayName() string {
	if a.FullName.Valid && a.FullName.String != "" {
		return a.FullName.String
	}
	return a.Username
}
