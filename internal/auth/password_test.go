package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// memUsers is an in-memory UserStorage.
type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	lookErr error
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: make(map[string]*models.User)}
}

func (m *memUsers) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[user.Email]; ok {
		return fmt.Errorf("%w: email %s", storage.ErrConflict, user.Email)
	}
	m.byEmail[user.Email] = user
	return nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookErr != nil {
		return nil, m.lookErr
	}
	user, ok := m.byEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return user, nil
}

func (m *memUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, storage.ErrNotFound
}

func TestPasswordAuthenticator_Register(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	a := NewPasswordAuthenticator(users).WithCost(bcrypt.MinCost)

	user, err := a.Register(ctx, "  Alice@Example.com ", "Alice", "correct horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q, want normalized", user.Email)
	}
	if user.PasswordHash == "correct horse" || user.PasswordHash == "" {
		t.Errorf("password not hashed: %q", user.PasswordHash)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"duplicate email", "alice@example.com", "another password", ErrEmailExists},
		{"duplicate email different case", "ALICE@example.com", "another password", ErrEmailExists},
		{"weak password", "bob@example.com", "short", ErrWeakPassword},
		{"malformed email", "not-an-email", "long enough", ErrInvalidEmail},
		{"empty email", "", "long enough", ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Register(ctx, tt.email, "Someone", tt.password); !errors.Is(err, tt.wantErr) {
				t.Errorf("Register error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("storage failure is not reported as a duplicate", func(t *testing.T) {
		broken := newMemUsers()
		broken.lookErr = errors.New("disk on fire")
		_, err := NewPasswordAuthenticator(broken).WithCost(bcrypt.MinCost).Register(ctx, "carol@example.com", "Carol", "long enough")
		if err == nil || errors.Is(err, ErrEmailExists) {
			t.Errorf("Register error = %v, want storage error", err)
		}
	})
}

func TestPasswordAuthenticator_Authenticate(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newMemUsers()).WithCost(bcrypt.MinCost)

	registered, err := a.Register(ctx, "alice@example.com", "Alice", "correct horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := a.Authenticate(ctx, "Alice@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("authenticated %s, want %s", user.ID, registered.ID)
	}

	if _, err := a.Authenticate(ctx, "alice@example.com", "wrong horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@example.com", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	got, err := NormalizeEmail(" Bob@Example.COM")
	if err != nil || got != "bob@example.com" {
		t.Errorf("NormalizeEmail = %q, %v", got, err)
	}
	if _, err := NormalizeEmail("bob@"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("NormalizeEmail(bob@) error = %v, want ErrInvalidEmail", err)
	}
}
