package database

import (
	"context"
	"database/sql"
	"log"

	"golang.org/x/crypto/bcrypt"
)

// Migrate creates all tables and the upcoming-reservations view when
// they do not exist yet.  Statements are idempotent so the function is
// safe to run on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(100) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			role ENUM('admin','member') NOT NULL DEFAULT 'member',
			phone VARCHAR(20) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS rooms (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE,
			capacity INT UNSIGNED NOT NULL DEFAULT 1,
			status ENUM('available','out_of_service','maintenance') NOT NULL DEFAULT 'available',
			description TEXT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			CONSTRAINT chk_capacity CHECK (capacity > 0)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS reservations (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			room_id BIGINT UNSIGNED NOT NULL,
			date DATE NOT NULL,
			start_time TIME NOT NULL,
			end_time TIME NOT NULL,
			status ENUM('active','cancelled','completed') NOT NULL DEFAULT 'active',
			reason TEXT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			CONSTRAINT fk_reservations_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			CONSTRAINT fk_reservations_room FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE,
			CONSTRAINT chk_interval CHECK (end_time > start_time),
			INDEX idx_reservations_room_date (room_id, date),
			INDEX idx_reservations_user (user_id),
			INDEX idx_reservations_date (date)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			message TEXT NOT NULL,
			kind VARCHAR(50) NOT NULL DEFAULT 'info',
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_notifications_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			INDEX idx_notifications_user (user_id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			token_hash CHAR(64) NOT NULL,
			expires_at DATETIME NOT NULL,
			revoked_at DATETIME NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			INDEX idx_refresh_tokens_hash (token_hash)
		) ENGINE=InnoDB`,
		// Read-only convenience view: future active reservations joined
		// with their owner and room.
		`CREATE OR REPLACE VIEW upcoming_reservations AS
			SELECT r.id, r.date, r.start_time, r.end_time, r.reason, r.status,
			       u.name AS user_name, u.email AS user_email, u.phone AS user_phone,
			       s.name AS room_name, s.capacity AS room_capacity
			FROM reservations r
			JOIN users u ON u.id = r.user_id
			JOIN rooms s ON s.id = r.room_id
			WHERE r.date >= CURDATE() AND r.status = 'active'
			ORDER BY r.date, r.start_time`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// Seed bootstraps the first admin account and, optionally, a demo
// member and a handful of rooms.  It only acts when the users table is
// empty, so repeated startups leave real data alone.
func Seed(ctx context.Context, db *sql.DB, adminEmail, adminPassword string, bcryptCost int, demo bool) error {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcryptCost)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, phone) VALUES (?,?,?,?,?)`,
		"Administrator", adminEmail, string(hash), "admin", "+15550000000"); err != nil {
		return err
	}
	log.Printf("database: seeded admin account %s", adminEmail)

	if !demo {
		return nil
	}
	memberHash, err := bcrypt.GenerateFromPassword([]byte("member123"), bcryptCost)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, phone) VALUES (?,?,?,?,?)`,
		"Demo Member", "member@example.com", string(memberHash), "member", "+15550000001"); err != nil {
		return err
	}
	rooms := []struct {
		name string
		cap  uint32
		desc string
	}{
		{"Conference Room A", 20, "Large room with projector and audio system"},
		{"Meeting Room B", 8, "Mid-size room for team meetings"},
		{"Creative Space C", 6, "Collaborative space with whiteboard"},
		{"Executive Room D", 12, "High-end room for important meetings"},
		{"Coworking Space E", 15, "Open space for collaborative work"},
	}
	for _, r := range rooms {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO rooms (name, capacity, description) VALUES (?,?,?)`,
			r.name, r.cap, r.desc); err != nil {
			return err
		}
	}
	log.Printf("database: seeded %d demo rooms and a demo member account", len(rooms))
	return nil
}
