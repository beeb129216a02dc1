package domain

import "time"

// Account represents a registered identity with credentials.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Account field limits shared by the sign-up form and the schema.
const (
	EmailMinLength    = 8
	EmailMaxLength    = 120
	UsernameMinLength = 3
	UsernameMaxLength = 20
	PasswordMinLength = 8
	PasswordMaxLength = 20
)
