package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/isaacyap/stretchlad/internal/services/auth/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestPutAndGetAccount(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	record := storage.AccountRecord{
		ID:           "acct-1",
		Email:        "priya@example.com",
		Name:         "Priya",
		PasswordHash: "$2a$10$fakehash",
		Role:         storage.RoleClient,
		CreatedAt:    now,
	}
	if err := store.PutAccount(context.Background(), record); err != nil {
		t.Fatalf("put account: %v", err)
	}

	byID, err := store.GetAccount(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if byID.Email != "priya@example.com" || byID.Role != storage.RoleClient {
		t.Fatalf("unexpected account: %+v", byID)
	}
	if !byID.CreatedAt.Equal(now) {
		t.Fatalf("created at = %v, want %v", byID.CreatedAt, now)
	}

	byEmail, err := store.GetAccountByEmail(context.Background(), "priya@example.com")
	if err != nil {
		t.Fatalf("get account by email: %v", err)
	}
	if byEmail.ID != "acct-1" {
		t.Fatalf("account id = %q, want acct-1", byEmail.ID)
	}
}

func TestDuplicateEmailConflicts(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	first := storage.AccountRecord{
		ID: "acct-1", Email: "sam@example.com", Name: "Sam",
		PasswordHash: "$2a$10$hash", CreatedAt: now,
	}
	if err := store.PutAccount(context.Background(), first); err != nil {
		t.Fatalf("put first account: %v", err)
	}

	second := first
	second.ID = "acct-2"
	if err := store.PutAccount(context.Background(), second); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("duplicate email error = %v, want ErrConflict", err)
	}
}

func TestGetAccountNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.GetAccount(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get missing account error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetAccountByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get missing email error = %v, want ErrNotFound", err)
	}
}

func TestListAccountsByRole(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	inputs := []storage.AccountRecord{
		{ID: "acct-1", Email: "a@example.com", Name: "A", PasswordHash: "h", Role: storage.RoleClient, CreatedAt: now},
		{ID: "acct-2", Email: "b@example.com", Name: "B", PasswordHash: "h", Role: storage.RoleClient, CreatedAt: now.Add(time.Hour)},
		{ID: "acct-3", Email: "fab@example.com", Name: "Fab", PasswordHash: "h", Role: storage.RoleAdmin, CreatedAt: now},
	}
	for _, input := range inputs {
		if err := store.PutAccount(context.Background(), input); err != nil {
			t.Fatalf("put account %s: %v", input.ID, err)
		}
	}

	clients, err := store.ListAccountsByRole(context.Background(), storage.RoleClient)
	if err != nil {
		t.Fatalf("list clients: %v", err)
	}
	if len(clients) != 2 || clients[0].ID != "acct-2" || clients[1].ID != "acct-1" {
		t.Fatalf("unexpected clients: %+v", clients)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "auth.db")
	store, err := Open(storePath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Fatalf("close store: %v", closeErr)
		}
	})
	return store
}
