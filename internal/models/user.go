package models

import "time"

// User is an account record keyed by email. The email is immutable; profile
// fields may change after signup.
type User struct {
	Email       string    `db:"email" json:"email"`
	Nickname    string    `db:"nickname" json:"nickname"`
	Avatar      string    `db:"avatar" json:"avatar,omitempty"`
	Description string    `db:"description" json:"description,omitempty"`
	Owner       string    `db:"owner" json:"owner,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
