package calculator

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func balancesOf(kv map[string]string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(kv))
	for k, v := range kv {
		out[k] = d(v)
	}
	return out
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		name     string
		balances map[string]string
		want     []Transfer
		wantErr  error
	}{
		{
			name:     "one creditor two debtors",
			balances: map[string]string{"A": "60", "B": "-30", "C": "-30"},
			want: []Transfer{
				{From: "B", To: "A", Amount: d("30")},
				{From: "C", To: "A", Amount: d("30")},
			},
		},
		{
			name:     "one debtor two creditors, least credit first",
			balances: map[string]string{"A": "-50", "B": "20", "C": "30"},
			want: []Transfer{
				{From: "A", To: "B", Amount: d("20")},
				{From: "A", To: "C", Amount: d("30")},
			},
		},
		{
			name:     "most negative debtor goes first",
			balances: map[string]string{"A": "-10", "B": "-40", "C": "50"},
			want: []Transfer{
				{From: "B", To: "C", Amount: d("40")},
				{From: "A", To: "C", Amount: d("10")},
			},
		},
		{
			name:     "exact match advances both cursors",
			balances: map[string]string{"A": "-25", "B": "25", "C": "-75", "D": "75"},
			want: []Transfer{
				{From: "C", To: "B", Amount: d("25")},
				{From: "C", To: "D", Amount: d("50")},
				{From: "A", To: "D", Amount: d("25")},
			},
		},
		{
			name:     "near-zero balances are dropped",
			balances: map[string]string{"A": "-10", "B": "10", "C": "0.0000001", "D": "-0.0000001"},
			want: []Transfer{
				{From: "A", To: "B", Amount: d("10")},
			},
		},
		{
			name:     "all settled",
			balances: map[string]string{"A": "0", "B": "0"},
			want:     nil,
		},
		{
			name:     "empty input",
			balances: map[string]string{},
			want:     nil,
		},
		{
			name:     "unbalanced input is reported",
			balances: map[string]string{"A": "-10", "B": "20"},
			wantErr:  ErrUnbalancedLedger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Simplify(balancesOf(tt.balances))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Simplify() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Simplify() unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Simplify() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i].From != tt.want[i].From || got[i].To != tt.want[i].To || !got[i].Amount.Equal(tt.want[i].Amount) {
					t.Errorf("transfer %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSimplify_DroppedDustAddsUp(t *testing.T) {
	// Twenty balances of 0.0000005 are each dust but together cover the
	// 0.00001 that b is short of a's debt.
	balances := map[string]decimal.Decimal{"a": d("-1"), "b": d("0.99999")}
	for i := range 20 {
		balances[fmt.Sprintf("dust%02d", i)] = d("0.0000005")
	}

	got, err := Simplify(balances)
	if err != nil {
		t.Fatalf("Simplify() unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].From != "a" || got[0].To != "b" || !got[0].Amount.Equal(d("0.99999")) {
		t.Errorf("Simplify() = %v, want a -> b 0.99999", got)
	}
}

func TestSimplify_EndToEndExample(t *testing.T) {
	balances, err := CalculateBalances([]ExpenseForBalance{
		{Amount: d("90"), PaidBy: "A", SplitType: SplitEqual, SplitWith: []string{"A", "B", "C"}},
	})
	if err != nil {
		t.Fatalf("CalculateBalances() error = %v", err)
	}

	transfers, err := Simplify(balances)
	if err != nil {
		t.Fatalf("Simplify() error = %v", err)
	}

	if len(transfers) != 2 {
		t.Fatalf("got %d transfers, want 2", len(transfers))
	}
	if transfers[0].From != "B" || transfers[1].From != "C" {
		t.Errorf("unexpected transfer order: %+v", transfers)
	}
	for _, tr := range transfers {
		if tr.To != "A" || !tr.Amount.Equal(d("30")) {
			t.Errorf("unexpected transfer %+v", tr)
		}
	}
}

func TestSimplify_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	members := []string{"ann", "bob", "cat", "dan", "eve", "fay", "gus", "hal"}

	for round := 0; round < 100; round++ {
		balances, err := CalculateBalances(randomExpenses(rng, members, 1+rng.IntN(25)))
		if err != nil {
			t.Fatalf("round %d: CalculateBalances() error = %v", round, err)
		}

		transfers, err := Simplify(balances)
		if err != nil {
			t.Fatalf("round %d: Simplify() error = %v", round, err)
		}

		// Applying the transfers settles everyone.
		settled := ApplyPayments(balances, toPayments(transfers))
		for id, b := range settled {
			if b.Abs().GreaterThan(Epsilon) {
				t.Errorf("round %d: %s left with %s after settlement", round, id, b)
			}
		}

		nonzero := 0
		for _, b := range balances {
			if b.Abs().GreaterThan(Epsilon) {
				nonzero++
			}
		}
		if nonzero > 0 && len(transfers) > nonzero-1 {
			t.Errorf("round %d: %d transfers for %d nonzero members", round, len(transfers), nonzero)
		}

		for _, tr := range transfers {
			if !tr.Amount.IsPositive() {
				t.Errorf("round %d: non-positive transfer %+v", round, tr)
			}
		}

		again, err := Simplify(balances)
		if err != nil {
			t.Fatalf("round %d: second Simplify() error = %v", round, err)
		}
		if !reflect.DeepEqual(transfers, again) {
			t.Errorf("round %d: Simplify() not deterministic:\n%v\n%v", round, transfers, again)
		}
	}
}

func TestTransfersFrom(t *testing.T) {
	transfers := []Transfer{
		{From: "B", To: "A", Amount: d("5")},
		{From: "C", To: "A", Amount: d("7")},
		{From: "B", To: "D", Amount: d("3")},
	}

	got := TransfersFrom(transfers, "B")
	if len(got) != 2 || got[0].To != "A" || got[1].To != "D" {
		t.Errorf("TransfersFrom(B) = %+v", got)
	}
	if got := TransfersFrom(transfers, "A"); len(got) != 0 {
		t.Errorf("TransfersFrom(A) = %+v, want none", got)
	}
}

func toPayments(transfers []Transfer) []PaymentForBalance {
	payments := make([]PaymentForBalance, len(transfers))
	for i, tr := range transfers {
		payments[i] = PaymentForBalance{FromUserID: tr.From, ToUserID: tr.To, Amount: tr.Amount}
	}
	return payments
}
