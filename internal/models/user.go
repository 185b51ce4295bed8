package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Email          string
	Username       string
	HashedPassword string
	Name           *string // nil if not set
	Phone          *string // nil if not set
	Role           string
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Emails are compared case-insensitive and without surrounding spaces
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
