package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the domain entity for a user account.
// Email is stored normalized (trimmed, lower-cased); plaintext passwords
// never reach this struct.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
