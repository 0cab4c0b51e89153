// Package storage defines persistence contracts for account state.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested account is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a write collided with a uniqueness constraint.
	ErrConflict = errors.New("record conflict")
)

// Account roles.
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// AccountRecord stores one portal account. PasswordHash is a bcrypt hash
// and never leaves the auth service.
type AccountRecord struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Store persists account records.
type Store interface {
	PutAccount(ctx context.Context, record AccountRecord) error
	GetAccount(ctx context.Context, id string) (AccountRecord, error)
	GetAccountByEmail(ctx context.Context, email string) (AccountRecord, error)
	ListAccountsByRole(ctx context.Context, role string) ([]AccountRecord, error)
}
