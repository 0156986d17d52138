package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrShareMismatch    = errors.New("split shares do not sum to the expense amount")
	ErrInvalidSplitType = errors.New("invalid split type")
	ErrInvalidExpense   = errors.New("invalid expense")
	ErrUnbalancedLedger = errors.New("unbalanced ledger")
)

// Epsilon is the tolerance used whenever two money amounts are compared.
var Epsilon = decimal.New(1, -6)

// SplitType is the rule distributing an expense across its members.
type SplitType string

const (
	SplitEqual   SplitType = "equal"
	SplitUnequal SplitType = "unequal"
)

// ParseSplitType validates a split type received at the input boundary.
func ParseSplitType(s string) (SplitType, error) {
	switch SplitType(s) {
	case SplitEqual, SplitUnequal:
		return SplitType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSplitType, s)
	}
}

// ExpenseForBalance represents an expense with the minimal information needed for balance calculations.
type ExpenseForBalance struct {
	Amount    decimal.Decimal
	PaidBy    string
	SplitType SplitType
	SplitWith []string

	// Shares maps a member to the amount they owe. Only used for unequal splits.
	Shares map[string]decimal.Decimal
}

// ValidateExpense checks an expense without computing its shares.
func ValidateExpense(e ExpenseForBalance) error {
	_, err := CalculateShares(e)
	return err
}

// CalculateShares computes how much each member of SplitWith owes for a single expense.
//
// Equal splits divide the amount by the number of members without rounding.
// Unequal splits take each share from Shares and require them to sum to the
// amount within Epsilon.
func CalculateShares(e ExpenseForBalance) (map[string]decimal.Decimal, error) {
	if !e.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidExpense, e.Amount)
	}
	if e.PaidBy == "" {
		return nil, fmt.Errorf("%w: payer is required", ErrInvalidExpense)
	}
	if len(e.SplitWith) == 0 {
		return nil, fmt.Errorf("%w: must split with at least one member", ErrInvalidExpense)
	}

	members := make(map[string]bool, len(e.SplitWith))
	for _, m := range e.SplitWith {
		if m == "" {
			return nil, fmt.Errorf("%w: empty member id in split", ErrInvalidExpense)
		}
		if members[m] {
			return nil, fmt.Errorf("%w: member %s listed more than once", ErrInvalidExpense, m)
		}
		members[m] = true
	}

	shares := make(map[string]decimal.Decimal, len(e.SplitWith))

	switch e.SplitType {
	case SplitEqual:
		share := e.Amount.Div(decimal.NewFromInt(int64(len(e.SplitWith))))
		for _, m := range e.SplitWith {
			shares[m] = share
		}

	case SplitUnequal:
		for m := range e.Shares {
			if !members[m] {
				return nil, fmt.Errorf("%w: share given for %s who is not in the split", ErrInvalidExpense, m)
			}
		}
		sum := decimal.Zero
		for _, m := range e.SplitWith {
			share, ok := e.Shares[m]
			if !ok {
				return nil, fmt.Errorf("%w: share for member %s is not provided", ErrInvalidExpense, m)
			}
			if share.IsNegative() {
				return nil, fmt.Errorf("%w: share for member %s is negative", ErrInvalidExpense, m)
			}
			shares[m] = share
			sum = sum.Add(share)
		}
		if sum.Sub(e.Amount).Abs().GreaterThan(Epsilon) {
			return nil, fmt.Errorf("%w: shares sum to %s, amount is %s", ErrShareMismatch, sum, e.Amount)
		}

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSplitType, string(e.SplitType))
	}

	return shares, nil
}
