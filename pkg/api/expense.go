package api

import "github.com/shopspring/decimal"

// Expense is an amount paid by one member and split among members of a group.
type Expense struct {
	ID          string                     `json:"id"`
	GroupID     string                     `json:"group_id"`
	Description string                     `json:"description,omitempty"`
	Amount      decimal.Decimal            `json:"amount"`
	PaidBy      string                     `json:"paid_by"`
	SplitType   string                     `json:"split_type"`
	SplitWith   []string                   `json:"split_with"`
	Shares      map[string]decimal.Decimal `json:"shares,omitempty"`
	CreatedBy   string                     `json:"created_by"`
	CreatedAt   int64                      `json:"created_at"`
	UpdatedAt   int64                      `json:"updated_at"`
}

// CreateExpenseRequest logs an expense. PaidBy defaults to the caller.
// Shares are required for unequal splits and ignored for equal splits.
type CreateExpenseRequest struct {
	GroupID     string                     `json:"group_id"`
	Description string                     `json:"description,omitempty"`
	Amount      decimal.Decimal            `json:"amount"`
	PaidBy      string                     `json:"paid_by,omitempty"`
	SplitType   string                     `json:"split_type"`
	SplitWith   []string                   `json:"split_with"`
	Shares      map[string]decimal.Decimal `json:"shares,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID string `json:"group_id"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

// UpdateExpenseRequest replaces the description, amount, payer and split of an expense.
type UpdateExpenseRequest struct {
	ExpenseID   string                     `json:"expense_id"`
	Description string                     `json:"description,omitempty"`
	Amount      decimal.Decimal            `json:"amount"`
	PaidBy      string                     `json:"paid_by,omitempty"`
	SplitType   string                     `json:"split_type"`
	SplitWith   []string                   `json:"split_with"`
	Shares      map[string]decimal.Decimal `json:"shares,omitempty"`
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}
