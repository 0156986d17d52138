package api

import "github.com/shopspring/decimal"

// Payment is a recorded transfer of money between two members of a group.
type Payment struct {
	ID         string          `json:"id"`
	GroupID    string          `json:"group_id"`
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note,omitempty"`
	CreatedBy  string          `json:"created_by"`
	CreatedAt  int64           `json:"created_at"`
}

// Balance is a member's position in a group.
// A positive NetBalance means the member is owed money.
type Balance struct {
	UserID     string          `json:"user_id"`
	Name       string          `json:"name"`
	NetBalance decimal.Decimal `json:"net_balance"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	TotalOwed  decimal.Decimal `json:"total_owed"`
}

// Transfer is a suggested payment from a debtor to a creditor.
type Transfer struct {
	FromUserID string          `json:"from_user_id"`
	FromName   string          `json:"from_name"`
	ToUserID   string          `json:"to_user_id"`
	ToName     string          `json:"to_name"`
	Amount     decimal.Decimal `json:"amount"`
}

// RecordPaymentRequest records a payment. FromUserID defaults to the caller.
type RecordPaymentRequest struct {
	GroupID    string          `json:"group_id"`
	FromUserID string          `json:"from_user_id,omitempty"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note,omitempty"`
}

type RecordPaymentResponse struct {
	Payment *Payment `json:"payment"`
}

type ListGroupPaymentsRequest struct {
	GroupID string `json:"group_id"`
}

type ListGroupPaymentsResponse struct {
	Payments []*Payment `json:"payments"`
}

// ListUserPaymentsRequest lists payments the caller sent or received across all groups.
type ListUserPaymentsRequest struct{}

type ListUserPaymentsResponse struct {
	Payments []*Payment `json:"payments"`
}

type GetBalancesRequest struct {
	GroupID string `json:"group_id"`
}

type GetBalancesResponse struct {
	Balances []*Balance `json:"balances"`
}

type SimplifyDebtsRequest struct {
	GroupID string `json:"group_id"`
}

type SimplifyDebtsResponse struct {
	Transfers []*Transfer `json:"transfers"`
}

// SettleUpRequest computes the caller's outgoing transfers. With Confirm set they
// are recorded as payments.
type SettleUpRequest struct {
	GroupID string `json:"group_id"`
	Confirm bool   `json:"confirm,omitempty"`
}

type SettleUpResponse struct {
	Transfers []*Transfer `json:"transfers"`
	Payments  []*Payment  `json:"payments,omitempty"`
	Recorded  bool        `json:"recorded"`
}

type GetGroupSummaryRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupSummaryResponse struct {
	Group         *Group          `json:"group"`
	Expenses      []*Expense      `json:"expenses"`
	Payments      []*Payment      `json:"payments"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Balances      []*Balance      `json:"balances"`
	Transfers     []*Transfer     `json:"transfers"`
}
