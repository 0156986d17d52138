package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

// displayPlaces is the number of decimal places money is rounded to in responses.
// Calculations always run at full precision.
const displayPlaces = 2

func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(displayPlaces)
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
	}
}

// userOrStub returns the profile for id, or a bare reference if the user is unknown.
func userOrStub(users map[string]*models.User, id string) *api.User {
	if u, ok := users[id]; ok {
		return toAPIUser(u)
	}
	return &api.User{ID: id}
}

func nameOf(users map[string]*models.User, id string) string {
	if u, ok := users[id]; ok {
		return u.Name
	}
	return ""
}

func toAPIGroup(g *models.Group, users map[string]*models.User) *api.Group {
	members := make([]*api.User, len(g.Members))
	for i, id := range g.Members {
		members[i] = userOrStub(users, id)
	}
	return &api.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		Members:     members,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	return &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount,
		PaidBy:      e.PaidBy,
		SplitType:   e.SplitType,
		SplitWith:   e.SplitWith,
		Shares:      e.Shares,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toAPIExpenses(expenses []*models.Expense) []*api.Expense {
	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}
	return out
}

func toAPIPayment(p *models.Payment) *api.Payment {
	return &api.Payment{
		ID:         p.ID,
		GroupID:    p.GroupID,
		FromUserID: p.FromUserID,
		ToUserID:   p.ToUserID,
		Amount:     p.Amount,
		Note:       p.Note,
		CreatedBy:  p.CreatedBy,
		CreatedAt:  p.CreatedAt,
	}
}

func toAPIPayments(payments []*models.Payment) []*api.Payment {
	out := make([]*api.Payment, len(payments))
	for i, p := range payments {
		out[i] = toAPIPayment(p)
	}
	return out
}

func toAPIBalances(balances []calculator.MemberBalance, users map[string]*models.User) []*api.Balance {
	out := make([]*api.Balance, len(balances))
	for i, b := range balances {
		out[i] = &api.Balance{
			UserID:     b.UserID,
			Name:       nameOf(users, b.UserID),
			NetBalance: roundMoney(b.NetBalance),
			TotalPaid:  roundMoney(b.TotalPaid),
			TotalOwed:  roundMoney(b.TotalOwed),
		}
	}
	return out
}

// toAPITransfers rounds transfers for display. Transfers that round to zero
// are sub-cent dust from equal-split division and are omitted.
func toAPITransfers(transfers []calculator.Transfer, users map[string]*models.User) []*api.Transfer {
	out := make([]*api.Transfer, 0, len(transfers))
	for _, t := range transfers {
		amount := roundMoney(t.Amount)
		if !amount.IsPositive() {
			continue
		}
		out = append(out, &api.Transfer{
			FromUserID: t.From,
			FromName:   nameOf(users, t.From),
			ToUserID:   t.To,
			ToName:     nameOf(users, t.To),
			Amount:     amount,
		})
	}
	return out
}

// expenseForBalance converts a stored expense for the calculator.
func expenseForBalance(e *models.Expense) (calculator.ExpenseForBalance, error) {
	splitType, err := calculator.ParseSplitType(e.SplitType)
	if err != nil {
		return calculator.ExpenseForBalance{}, err
	}
	return calculator.ExpenseForBalance{
		Amount:    e.Amount,
		PaidBy:    e.PaidBy,
		SplitType: splitType,
		SplitWith: e.SplitWith,
		Shares:    e.Shares,
	}, nil
}

func paymentsForBalance(payments []*models.Payment) []calculator.PaymentForBalance {
	out := make([]calculator.PaymentForBalance, len(payments))
	for i, p := range payments {
		out[i] = calculator.PaymentForBalance{
			FromUserID: p.FromUserID,
			ToUserID:   p.ToUserID,
			Amount:     p.Amount,
		}
	}
	return out
}
