package domain

import (
	"errors"
	"time"
)

var (
	// ErrUserNotFound is returned by repositories when no row matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when the username UNIQUE constraint rejects a write.
	ErrUsernameTaken = errors.New("username already taken")
)

// User represents a row of the users table.
type User struct {
	ID        int64
	Username  string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserDTO is the API facing projection of a User. ID is nil only for a user
// that has not been created yet.
type UserDTO struct {
	ID       *int64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
