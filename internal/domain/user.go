package domain

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User is the account that owns artifact records and receives notification
// campaigns. Registration and session issuance live in the auth service; this
// core only reads the table.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Actor is the caller identity passed explicitly into every core operation.
// Never read from ambient state — handlers build it from the request context.
type Actor struct {
	UserID int64
	Admin  bool
}

// Anonymous marks callers with no session (anonymous conversions are allowed).
func (a Actor) Anonymous() bool { return a.UserID == 0 && !a.Admin }
