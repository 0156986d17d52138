package calculator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentForBalance represents a recorded payment with the minimal information needed for balance calculations.
type PaymentForBalance struct {
	FromUserID string // Who paid (debtor settling up)
	ToUserID   string // Who received (creditor being paid)
	Amount     decimal.Decimal
}

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	UserID     string
	NetBalance decimal.Decimal // Positive = owed money, Negative = owes money
	TotalPaid  decimal.Decimal // Expenses paid plus payments sent
	TotalOwed  decimal.Decimal // Expense shares plus payments received
}

// CalculateBalances derives each member's net balance from a group's expenses.
//
// The payer of an expense is credited the full amount and every member of the
// split is debited their share, so a payer who is also in the split nets
// amount minus their own share. Every payer and split member appears in the
// result, including members whose balance comes out to zero.
func CalculateBalances(expenses []ExpenseForBalance) (map[string]decimal.Decimal, error) {
	balances := make(map[string]decimal.Decimal)

	for i, e := range expenses {
		shares, err := CalculateShares(e)
		if err != nil {
			return nil, fmt.Errorf("expense %d: %w", i, err)
		}

		balances[e.PaidBy] = balances[e.PaidBy].Add(e.Amount)
		for member, share := range shares {
			balances[member] = balances[member].Sub(share)
		}
	}

	return balances, nil
}

// ApplyPayments returns a copy of balances with recorded payments applied.
// A payment improves the sender's balance and reduces the receiver's.
func ApplyPayments(balances map[string]decimal.Decimal, payments []PaymentForBalance) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(balances))
	for id, b := range balances {
		out[id] = b
	}
	for _, p := range payments {
		out[p.FromUserID] = out[p.FromUserID].Add(p.Amount)
		out[p.ToUserID] = out[p.ToUserID].Sub(p.Amount)
	}
	return out
}

// CheckConservation returns ErrUnbalancedLedger if the balances do not sum to zero within Epsilon.
func CheckConservation(balances map[string]decimal.Decimal) error {
	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b)
	}
	if sum.Abs().GreaterThan(Epsilon) {
		return fmt.Errorf("%w: balances sum to %s", ErrUnbalancedLedger, sum)
	}
	return nil
}

// CalculateMemberBalances computes per-member totals across expenses and payments.
// The result is sorted by user ID and satisfies NetBalance = TotalPaid - TotalOwed.
func CalculateMemberBalances(expenses []ExpenseForBalance, payments []PaymentForBalance) ([]MemberBalance, error) {
	totals := make(map[string]*MemberBalance)
	get := func(id string) *MemberBalance {
		if _, exists := totals[id]; !exists {
			totals[id] = &MemberBalance{UserID: id}
		}
		return totals[id]
	}

	for i, e := range expenses {
		shares, err := CalculateShares(e)
		if err != nil {
			return nil, fmt.Errorf("expense %d: %w", i, err)
		}
		payer := get(e.PaidBy)
		payer.TotalPaid = payer.TotalPaid.Add(e.Amount)
		for member, share := range shares {
			m := get(member)
			m.TotalOwed = m.TotalOwed.Add(share)
		}
	}

	for _, p := range payments {
		from := get(p.FromUserID)
		from.TotalPaid = from.TotalPaid.Add(p.Amount)
		to := get(p.ToUserID)
		to.TotalOwed = to.TotalOwed.Add(p.Amount)
	}

	result := make([]MemberBalance, 0, len(totals))
	for _, bal := range totals {
		bal.NetBalance = bal.TotalPaid.Sub(bal.TotalOwed)
		result = append(result, *bal)
	}
	slices.SortFunc(result, func(a, b MemberBalance) int {
		return strings.Compare(a.UserID, b.UserID)
	})

	return result, nil
}
