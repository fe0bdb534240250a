// Package schema: safe database initialization. Creates only missing tables,
// never drops or overwrites.

package schema

import (
	"database/sql"
	"log"
)

// InitializeDatabase ensures core tables exist, in dependency order:
// users → categories → assignment_rules → complaints → complaint_comments
// → notifications. Existing tables and their data are left untouched.
func InitializeDatabase(db *sql.DB) {
	tables := []struct {
		name   string
		create func(*sql.DB)
	}{
		{"users", createUsersTable},
		{"categories", createCategoriesTable},
		{"assignment_rules", createAssignmentRulesTable},
		{"complaints", createComplaintsTable},
		{"complaint_comments", createCommentsTable},
		{"notifications", createNotificationsTable},
	}
	for _, t := range tables {
		exists, err := tableExists(db, t.name)
		if err != nil {
			log.Fatalf("[SCHEMA] Failed to check if table %s exists: %v", t.name, err)
		}
		if exists {
			log.Printf("[SCHEMA] %s table exists", t.name)
			continue
		}
		t.create(db)
		log.Printf("[SCHEMA] created %s table", t.name)
	}
}

func tableExists(db *sql.DB, name string) (bool, error) {
	var n int
	query := `SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?`
	if err := db.QueryRow(query, name).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func mustExec(db *sql.DB, table, query string) {
	if _, err := db.Exec(query); err != nil {
		log.Fatalf("[SCHEMA] Failed to create %s table: %v", table, err)
	}
}

func createUsersTable(db *sql.DB) {
	q := `
	CREATE TABLE users (
		user_id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(100) NOT NULL UNIQUE,
		full_name VARCHAR(255),
		email VARCHAR(255),
		role VARCHAR(32) NOT NULL DEFAULT 'resident',
		password_hash VARCHAR(255) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_approved BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_users_role (role, is_active, is_approved)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
	mustExec(db, "users", q)
}

func createCategoriesTable(db *sql.DB) {
	q := `
	CREATE TABLE categories (
		category_id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE,
		description TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
	mustExec(db, "categories", q)
}

func createAssignmentRulesTable(db *sql.DB) {
	q := `
	CREATE TABLE assignment_rules (
		rule_id BIGINT AUTO_INCREMENT PRIMARY KEY,
		category_id BIGINT NOT NULL UNIQUE,
		primary_role VARCHAR(32) NOT NULL,
		backup_role VARCHAR(32),
		is_sensitive BOOLEAN NOT NULL DEFAULT FALSE,
		requires_referral BOOLEAN NOT NULL DEFAULT FALSE,
		escalation_notes TEXT,
		FOREIGN KEY (category_id) REFERENCES categories(category_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
	mustExec(db, "assignment_rules", q)
}

func createComplaintsTable(db *sql.DB) {
	q := `
	CREATE TABLE complaints (
		complaint_id BIGINT AUTO_INCREMENT PRIMARY KEY,
		reference_number VARCHAR(32) NOT NULL UNIQUE,
		complainant_id BIGINT,
		is_anonymous BOOLEAN NOT NULL DEFAULT FALSE,
		anonymous_contact VARCHAR(255),
		category_id BIGINT NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		location VARCHAR(255),
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		priority VARCHAR(20) NOT NULL DEFAULT 'normal',
		approval_status VARCHAR(20) NOT NULL DEFAULT 'pending',
		approved_by_id BIGINT,
		approved_at TIMESTAMP NULL,
		rejection_reason TEXT,
		assigned_to_id BIGINT,
		assignment_notes TEXT,
		assignment_due TIMESTAMP NULL,
		response_due TIMESTAMP NULL,
		accepted_at TIMESTAMP NULL,
		resolved_at TIMESTAMP NULL,
		resolved_by_id BIGINT,
		resolution_notes TEXT,
		resolution_proof VARCHAR(500),
		overdue_notified_at TIMESTAMP NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NULL,
		FOREIGN KEY (complainant_id) REFERENCES users(user_id),
		FOREIGN KEY (category_id) REFERENCES categories(category_id),
		FOREIGN KEY (assigned_to_id) REFERENCES users(user_id),
		INDEX idx_complaints_status (status, approval_status),
		INDEX idx_complaints_complainant (complainant_id),
		INDEX idx_complaints_overdue (response_due, overdue_notified_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
	mustExec(db, "complaints", q)
}

func createCommentsTable(db *sql.DB) {
	q := `
	CREATE TABLE complaint_comments (
		comment_id BIGINT AUTO_INCREMENT PRIMARY KEY,
		complaint_id BIGINT NOT NULL,
		author_id BIGINT NOT NULL,
		comment TEXT NOT NULL,
		attachment VARCHAR(500),
		is_internal BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (complaint_id) REFERENCES complaints(complaint_id),
		FOREIGN KEY (author_id) REFERENCES users(user_id),
		INDEX idx_comments_complaint (complaint_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
	mustExec(db, "complaint_comments", q)
}

func createNotificationsTable(db *sql.DB) {
	q := `
	CREATE TABLE notifications (
		notification_id BIGINT AUTO_INCREMENT PRIMARY KEY,
		complaint_id BIGINT NOT NULL,
		event VARCHAR(32) NOT NULL,
		recipient VARCHAR(255) NOT NULL,
		subject VARCHAR(255) NOT NULL,
		body TEXT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		retry_count INT NOT NULL DEFAULT 0,
		max_retries INT NOT NULL DEFAULT 3,
		next_retry_at TIMESTAMP NULL,
		sent_at TIMESTAMP NULL,
		error_message TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_notifications_due (status, next_retry_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
	mustExec(db, "notifications", q)
}
