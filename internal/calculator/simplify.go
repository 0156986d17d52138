package calculator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Transfer is a settlement instruction: From pays To the given amount.
type Transfer struct {
	From   string // Debtor
	To     string // Creditor
	Amount decimal.Decimal
}

type position struct {
	userID    string
	balance   decimal.Decimal
	remaining decimal.Decimal // always positive
}

// Simplify reduces net balances to a list of pairwise transfers that zero
// every balance.
//
// Debtors and creditors are each sorted ascending by balance (ties by user ID)
// and matched greedily with two cursors, so n members with a nonzero balance
// produce at most n-1 transfers. The output order is the order in which
// transfers were generated and is stable for a given input. Balances within
// Epsilon of zero get no transfer, and the residue they leave is dropped.
func Simplify(balances map[string]decimal.Decimal) ([]Transfer, error) {
	if err := CheckConservation(balances); err != nil {
		return nil, err
	}

	var debtors, creditors []position
	for id, b := range balances {
		if b.Abs().LessThanOrEqual(Epsilon) {
			continue
		}
		if b.IsNegative() {
			debtors = append(debtors, position{userID: id, balance: b, remaining: b.Neg()})
		} else {
			creditors = append(creditors, position{userID: id, balance: b, remaining: b})
		}
	}
	slices.SortFunc(debtors, comparePositions)
	slices.SortFunc(creditors, comparePositions)

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := &debtors[i], &creditors[j]

		amount := decimal.Min(debtor.remaining, creditor.remaining)
		transfers = append(transfers, Transfer{
			From:   debtor.userID,
			To:     creditor.userID,
			Amount: amount,
		})

		debtor.remaining = debtor.remaining.Sub(amount)
		creditor.remaining = creditor.remaining.Sub(amount)

		if debtor.remaining.LessThanOrEqual(Epsilon) {
			i++
		}
		if creditor.remaining.LessThanOrEqual(Epsilon) {
			j++
		}
	}

	// Skipped dust, cursors advanced within Epsilon and the conservation slack
	// each leave at most Epsilon behind.
	leftover := decimal.Zero
	for _, p := range debtors[i:] {
		leftover = leftover.Add(p.remaining)
	}
	for _, p := range creditors[j:] {
		leftover = leftover.Add(p.remaining)
	}
	if leftover.GreaterThan(Epsilon.Mul(decimal.NewFromInt(int64(len(balances) + 1)))) {
		return nil, fmt.Errorf("%w: %d debtors and %d creditors left unmatched with %s outstanding",
			ErrUnbalancedLedger, len(debtors)-i, len(creditors)-j, leftover)
	}

	return transfers, nil
}

// TransfersFrom returns the transfers in which userID is the debtor, preserving order.
func TransfersFrom(transfers []Transfer, userID string) []Transfer {
	var out []Transfer
	for _, t := range transfers {
		if t.From == userID {
			out = append(out, t)
		}
	}
	return out
}

func comparePositions(a, b position) int {
	if c := a.balance.Cmp(b.balance); c != 0 {
		return c
	}
	return strings.Compare(a.userID, b.userID)
}
