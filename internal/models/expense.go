package models

import "github.com/shopspring/decimal"

// Expense represents an amount paid by one member and split among several members of a group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is a short human-readable label (e.g., "Groceries").
	Description string

	// Amount is the total paid. Always positive.
	Amount decimal.Decimal

	// PaidBy is the user ID of the member who paid.
	PaidBy string

	// SplitType is "equal" or "unequal".
	SplitType string

	// SplitWith lists the members sharing the cost, in the order they were given.
	SplitWith []string

	// Shares maps a member to their explicit share. Only set for unequal splits.
	Shares map[string]decimal.Decimal

	// CreatedBy is the user ID who logged the expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last update.
	UpdatedAt int64
}
