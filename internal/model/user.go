// Package model defines the data structures used throughout the application.
package model

import "time"

// Role is the account role. Exactly one of the two values below per account;
// no endpoint changes a role after creation. Registration always produces a
// student — the instructor account is created by the seed command.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleInstructor
}

// User represents a registered account: a student or the instructor.
//
// Email is unique across all accounts (enforced by a UNIQUE index in the
// database) and is the login identifier.
//
// PasswordHash is a bcrypt hash tagged `json:"-"` so it can never appear in
// an API response — every endpoint that returns an account serializes this
// struct directly, and the tag is what guarantees the "account view never
// includes the password" rule.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Profile      Profile   `json:"profile"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserSummary is the slimmed-down account view attached to records that
// reference a user (e.g. reflections listed for the instructor).
type UserSummary struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Summary returns the UserSummary view of u.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
