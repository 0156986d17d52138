package models

import "github.com/shopspring/decimal"

// Payment represents money handed from one group member to another to clear debts.
// Payments are immutable once recorded.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// GroupID is the group this payment belongs to.
	GroupID string

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string

	// ToUserID is the user who received payment (creditor being paid).
	ToUserID string

	// Amount is the payment amount.
	Amount decimal.Decimal

	// Note is an optional description for the payment.
	Note string

	// CreatedBy is the user ID who recorded this payment.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64
}

// GroupLedger is a consistent snapshot of everything that affects a group's balances.
type GroupLedger struct {
	Group    *Group
	Expenses []*Expense
	Payments []*Payment

	// Version increases with every expense or payment write to the group.
	Version int64
}
