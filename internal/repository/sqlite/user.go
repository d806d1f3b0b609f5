package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/study-companion/internal/apperror"
	"github.com/sakif/study-companion/internal/model"
	"github.com/sakif/study-companion/internal/repository"
)

// UserRepo implements repository.UserRepository on the shared connection.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a UserRepo backed by db.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ repository.UserRepository = (*UserRepo)(nil)

// Create inserts a new account. The profile is stored as a JSON document in
// a TEXT column — it is read and written as a whole, never queried into.
//
// A duplicate email trips the UNIQUE index and is returned as a Conflict so
// two concurrent registrations of the same address can't both succeed, even
// though the service also pre-checks.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()

	profile, err := json.Marshal(user.Profile)
	if err != nil {
		return fmt.Errorf("sqlite: encoding profile: %w", err)
	}

	_, err = r.db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, profile, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		string(profile),
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("البريد الإلكتروني مسجل بالفعل")
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}

	return nil
}

// GetByID retrieves an account by its internal ID.
// Returns apperror.ErrNotFound if no account exists with that ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getUser(ctx, `WHERE id = ?`, id)
}

// GetByEmail retrieves an account by its email address.
// Returns apperror.ErrNotFound if no account exists with that email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, `WHERE email = ?`, email)
}

// FirstByRole returns the earliest-created account with the given role.
// Ordering by (created_at, id) makes the choice deterministic — the student
// send-path fallback always resolves to the same instructor.
func (r *UserRepo) FirstByRole(ctx context.Context, role model.Role) (*model.User, error) {
	return r.getUser(ctx, `WHERE role = ? ORDER BY created_at, id LIMIT 1`, string(role))
}

// getUser runs a single-row user query with the given WHERE clause.
func (r *UserRepo) getUser(ctx context.Context, where string, args ...any) (*model.User, error) {
	var (
		u       model.User
		role    string
		profile string
	)

	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, profile, created_at FROM users `+where,
		args...,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &profile, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("المستخدم غير موجود")
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	u.Role = model.Role(role)
	if err := json.Unmarshal([]byte(profile), &u.Profile); err != nil {
		return nil, fmt.Errorf("sqlite: decoding profile for user %s: %w", u.ID, err)
	}

	return &u, nil
}

// Update persists name and profile for an existing account. Email, role and
// password are not updatable through this path.
func (r *UserRepo) Update(ctx context.Context, user *model.User) error {
	profile, err := json.Marshal(user.Profile)
	if err != nil {
		return fmt.Errorf("sqlite: encoding profile: %w", err)
	}

	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE users SET name = ?, profile = ? WHERE id = ?`,
		user.Name,
		string(profile),
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking update of user %s: %w", user.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("المستخدم غير موجود")
	}

	return nil
}

// ListByRole returns all accounts with the given role, oldest first.
// Used by the instructor's conversations view to list every student.
func (r *UserRepo) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, name, email, password_hash, role, profile, created_at
		 FROM users WHERE role = ? ORDER BY created_at, id`,
		string(role),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users by role %s: %w", role, err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var (
			u       model.User
			role    string
			profile string
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &profile, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		u.Role = model.Role(role)
		if err := json.Unmarshal([]byte(profile), &u.Profile); err != nil {
			return nil, fmt.Errorf("sqlite: decoding profile for user %s: %w", u.ID, err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
