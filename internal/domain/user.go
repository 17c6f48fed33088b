// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const (
	MaxDisplayNameLen = 64
	MaxEmailLen       = 128
)

var (
	ErrDisplayNameEmpty   = errors.New("display name empty")
	ErrDisplayNameTooLong = errors.New("display name too long")
	ErrEmailEmpty         = errors.New("email empty")
	ErrEmailTooLong       = errors.New("email too long")
)

type IdentityID string

// Identity is a registered user account, durable across connections.
// Immutable after registration as far as this service is concerned.
type Identity struct {
	ID           IdentityID `gorm:"primaryKey" json:"id"`
	DisplayName  string     `json:"fullName"`
	Email        string     `gorm:"uniqueIndex" json:"email"`
	PasswordHash string     `json:"-"`
	CreatedAt    int64      `gorm:"autoCreateTime" json:"-"`
}

func (Identity) TableName() string { return "identities" }

// NewIdentity is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewIdentity(displayName, email, passwordHash string) (*Identity, error) {
	displayName = strings.TrimSpace(displayName)
	email = strings.ToLower(strings.TrimSpace(email))
	if displayName == "" {
		return nil, ErrDisplayNameEmpty
	}
	if len(displayName) > MaxDisplayNameLen {
		return nil, ErrDisplayNameTooLong
	}
	if email == "" {
		return nil, ErrEmailEmpty
	}
	if len(email) > MaxEmailLen {
		return nil, ErrEmailTooLong
	}
	return &Identity{
		ID:           IdentityID(uuid.NewString()),
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: passwordHash,
	}, nil
}
