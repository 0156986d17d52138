// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("already exists")

	// ErrStaleLedger is returned when a group's ledger changed after it was read.
	ErrStaleLedger = errors.New("ledger changed since it was read")
)

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser persists a new user. The ID and timestamps are generated if empty.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs retrieves multiple users. Unknown IDs are omitted from the result.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// UpdateUser applies a partial profile update and returns the updated user.
	UpdateUser(ctx context.Context, id string, update models.UserUpdate) (*models.User, error)
}

// GroupStore persists groups and their membership.
type GroupStore interface {
	// CreateGroup persists a group together with its initial members.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its member IDs.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByUser retrieves every group the user is a member of.
	ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error)

	// UpdateGroup updates the group's name and description.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group and, by cascade, its expenses and payments.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddGroupMembers adds users to a group. Existing members are ignored.
	AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error

	// IsGroupMember reports whether the user belongs to the group.
	IsGroupMember(ctx context.Context, groupID, userID string) (bool, error)
}

// ExpenseStore persists expenses and their splits.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// UpdateExpense replaces the amount, payer and split of an expense atomically.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	DeleteExpense(ctx context.Context, expenseID string) error
}

// PaymentStore persists payments. Payments are never updated.
type PaymentStore interface {
	// CreatePayments persists all payments in a single transaction.
	CreatePayments(ctx context.Context, payments ...*models.Payment) error

	// SettlePayments persists payments for a group only if its ledger is still
	// at version, as read by GetGroupLedger. Otherwise it returns ErrStaleLedger.
	SettlePayments(ctx context.Context, groupID string, version int64, payments ...*models.Payment) error

	ListPaymentsByGroup(ctx context.Context, groupID string) ([]*models.Payment, error)

	// ListPaymentsByUser retrieves payments sent or received by the user across all groups.
	ListPaymentsByUser(ctx context.Context, userID string) ([]*models.Payment, error)
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore
	PaymentStore

	// GetGroupLedger reads the group, its expenses and its payments from a single
	// consistent snapshot.
	GetGroupLedger(ctx context.Context, groupID string) (*models.GroupLedger, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
