package entity

import "time"

// User is the account entity (domain layer, no serialization concerns).
type User struct {
	ID           string
	Email        string
	PasswordHash string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
