// Package domain implements account signup and credential verification.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/isaacyap/stretchlad/internal/platform/id"
	"github.com/isaacyap/stretchlad/internal/services/auth/storage"
)

var (
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("auth store is not configured")
	// ErrNameRequired indicates signup is missing a display name.
	ErrNameRequired = errors.New("name is required")
	// ErrInvalidEmail indicates signup email failed validation.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrWeakPassword indicates the password is below the minimum length.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrEmailTaken indicates an account already exists for the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials indicates login failed. The same error covers
	// unknown emails and wrong passwords so responses do not leak which
	// accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound indicates a requested account is missing.
	ErrNotFound = errors.New("account not found")
)

const minPasswordLength = 8

// Account is the account view exposed outside the auth service. It never
// carries the password hash.
type Account struct {
	ID        string
	Email     string
	Name      string
	Role      string
	CreatedAt time.Time
}

// Service orchestrates account lifecycle behavior.
type Service struct {
	store storage.Store
	clock func() time.Time
	newID func() (string, error)
}

// NewService constructs auth domain use-cases.
func NewService(store storage.Store, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		store: store,
		clock: clock,
		newID: newID,
	}
}

// SignUpInput captures one account registration.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// SignUp registers one account with a bcrypt-hashed password.
func (s *Service) SignUp(ctx context.Context, input SignUpInput) (Account, error) {
	if s == nil || s.store == nil {
		return Account{}, ErrStoreNotConfigured
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Account{}, ErrNameRequired
	}
	email := normalizeEmail(input.Email)
	if email == "" {
		return Account{}, ErrInvalidEmail
	}
	if len(input.Password) < minPasswordLength {
		return Account{}, ErrWeakPassword
	}
	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = storage.RoleClient
	}
	if role != storage.RoleClient && role != storage.RoleAdmin {
		return Account{}, fmt.Errorf("unknown account role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, fmt.Errorf("hash password: %w", err)
	}
	accountID, err := s.newID()
	if err != nil {
		return Account{}, fmt.Errorf("generate account id: %w", err)
	}

	record := storage.AccountRecord{
		ID:           accountID,
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.clock().UTC(),
	}
	if err := s.store.PutAccount(ctx, record); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return Account{}, ErrEmailTaken
		}
		return Account{}, fmt.Errorf("store account: %w", err)
	}
	return accountView(record), nil
}

// Authenticate verifies one email and password pair.
func (s *Service) Authenticate(ctx context.Context, email string, password string) (Account, error) {
	if s == nil || s.store == nil {
		return Account{}, ErrStoreNotConfigured
	}
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Account{}, ErrInvalidCredentials
	}

	record, err := s.store.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, fmt.Errorf("load account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return accountView(record), nil
}

// Account loads one account view by id.
func (s *Service) Account(ctx context.Context, accountID string) (Account, error) {
	if s == nil || s.store == nil {
		return Account{}, ErrStoreNotConfigured
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return Account{}, ErrNotFound
	}
	record, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Account{}, ErrNotFound
		}
		return Account{}, fmt.Errorf("load account: %w", err)
	}
	return accountView(record), nil
}

// Clients lists all client accounts for the admin area.
func (s *Service) Clients(ctx context.Context) ([]Account, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	records, err := s.store.ListAccountsByRole(ctx, storage.RoleClient)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	accounts := make([]Account, 0, len(records))
	for _, record := range records {
		accounts = append(accounts, accountView(record))
	}
	return accounts, nil
}

func accountView(record storage.AccountRecord) Account {
	return Account{
		ID:        record.ID,
		Email:     record.Email,
		Name:      record.Name,
		Role:      record.Role,
		CreatedAt: record.CreatedAt,
	}
}

func normalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ""
	}
	if !strings.Contains(email[at+1:], ".") {
		return ""
	}
	return email
}
