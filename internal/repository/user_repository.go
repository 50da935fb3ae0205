package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/utils"
)

// UserRepo provides data access to the users table and enforces the
// account business invariants (unique email, last-admin protection,
// no-delete-with-future-bookings).
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userCols = "id,name,email,password_hash,role,phone,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts an account and returns its ID.  The email is
// normalized to lower case; a duplicate maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, name, email, password, role, phone string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role, phone) VALUES (?,?,?,?,?)",
		name, email, hash, role, phone)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an account by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches an account by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// List returns all accounts ordered by name.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userCols+" FROM users ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UserPatch is a sparse account update: only non-nil fields are
// applied.  The explicit pointer struct replaces dynamically built SQL
// so that the write is always a single statement over known columns.
type UserPatch struct {
	Name  *string
	Email *string
	Role  *string
	Phone *string
}

// Update loads the account, applies the patch field-by-field and
// persists the result in one write.  updated_at is always refreshed.
// An email collision with another account maps to ErrEmailExists.
func (r *UserRepo) Update(ctx context.Context, id uint64, p UserPatch) (model.User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*p.Email))
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Phone != nil {
		u.Phone = strings.TrimSpace(*p.Phone)
	}
	_, err = r.db.ExecContext(ctx,
		"UPDATE users SET name=?, email=?, role=?, phone=?, updated_at=NOW() WHERE id=?",
		u.Name, u.Email, u.Role, u.Phone, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// UpdatePassword replaces the stored credential hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=NOW() WHERE id=?", hash, id)
	return err
}

// Delete removes an account after checking the business guards inside
// one transaction: the last remaining admin cannot be deleted
// (ErrLastAdmin) and neither can an account that still owns active
// reservations dated today or later (ErrHasFutureReservations).  The
// row delete cascades to the account's past reservations, tokens and
// notifications.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var role string
	if err := tx.QueryRowContext(ctx,
		"SELECT role FROM users WHERE id=? FOR UPDATE", id).Scan(&role); err != nil {
		return err
	}
	if role == model.RoleAdmin {
		var admins int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM users WHERE role='admin'").Scan(&admins); err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}
	var upcoming int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations WHERE user_id=? AND status='active' AND date >= CURDATE()",
		id).Scan(&upcoming); err != nil {
		return err
	}
	if upcoming > 0 {
		return ErrHasFutureReservations
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// UserStats aggregates account counts for the admin dashboard.
type UserStats struct {
	Total         int `json:"total_users"`
	Admins        int `json:"total_admins"`
	Members       int `json:"total_members"`
	NewLast30Days int `json:"new_users_30d"`
}

// UserActivity ranks an account by bookings made in the last 30 days.
type UserActivity struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Reservations int    `json:"reservation_count"`
}

// Stats returns aggregate account counts plus the ten most active
// bookers over the last 30 days.
func (r *UserRepo) Stats(ctx context.Context) (UserStats, []UserActivity, error) {
	var s UserStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN role='admin' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN role='member' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN created_at >= CURDATE() - INTERVAL 30 DAY THEN 1 ELSE 0 END), 0)
		FROM users`).Scan(&s.Total, &s.Admins, &s.Members, &s.NewLast30Days)
	if err != nil {
		return UserStats{}, nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.name, u.email, COUNT(r.id) AS reservation_count
		FROM users u
		LEFT JOIN reservations r ON r.user_id = u.id AND r.created_at >= CURDATE() - INTERVAL 30 DAY
		GROUP BY u.id, u.name, u.email
		ORDER BY reservation_count DESC
		LIMIT 10`)
	if err != nil {
		return UserStats{}, nil, err
	}
	defer rows.Close()
	active := make([]UserActivity, 0)
	for rows.Next() {
		var a UserActivity
		if err := rows.Scan(&a.Name, &a.Email, &a.Reservations); err != nil {
			return UserStats{}, nil, err
		}
		active = append(active, a)
	}
	return s, active, rows.Err()
}
