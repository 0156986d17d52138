package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// settleUpNote is attached to payments recorded by SettleUp.
const settleUpNote = "Settle up"

// LedgerService implements the Connect LedgerService: payments, balances and
// debt simplification.
type LedgerService struct {
	apiconnect.UnimplementedLedgerServiceHandler
	store     storage.Store
	publisher events.Publisher
}

// NewLedgerService creates a LedgerService. A nil publisher discards events.
func NewLedgerService(store storage.Store, publisher events.Publisher) *LedgerService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &LedgerService{store: store, publisher: publisher}
}

// RecordPayment records money handed from one member to another.
func (s *LedgerService) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RecordPayment request received",
		"group_id", req.Msg.GroupID,
		"to_user_id", req.Msg.ToUserID,
		"amount", req.Msg.Amount,
	)

	group, err := groupForMember(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	from := req.Msg.FromUserID
	if from == "" {
		from = userID
	}
	to := req.Msg.ToUserID

	switch {
	case to == "":
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: to_user_id required", ErrInvalidArgument))
	case from == to:
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: cannot pay yourself", ErrInvalidArgument))
	case !req.Msg.Amount.IsPositive():
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: amount must be positive", ErrInvalidArgument))
	}
	if !group.HasMember(from) || !group.HasMember(to) {
		slog.Warn("Payment party outside group", "group_id", group.ID, "from", from, "to", to)
		return nil, toConnectError(fmt.Errorf("%w: both parties must belong to the group", ErrNotMember))
	}

	payment := &models.Payment{
		GroupID:    group.ID,
		FromUserID: from,
		ToUserID:   to,
		Amount:     req.Msg.Amount,
		Note:       strings.TrimSpace(req.Msg.Note),
		CreatedBy:  userID,
	}
	if err := s.store.CreatePayments(ctx, payment); err != nil {
		slog.Error("RecordPayment failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Payment recorded", "payment_id", payment.ID, "group_id", group.ID)
	s.publish(ctx, paymentEvent(payment, userID))

	return connect.NewResponse(&api.RecordPaymentResponse{
		Payment: toAPIPayment(payment),
	}), nil
}

// ListGroupPayments returns a group's payments, newest first.
func (s *LedgerService) ListGroupPayments(ctx context.Context, req *connect.Request[api.ListGroupPaymentsRequest]) (*connect.Response[api.ListGroupPaymentsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	group, err := groupForMember(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	payments, err := s.store.ListPaymentsByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("ListGroupPayments failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ListGroupPaymentsResponse{
		Payments: toAPIPayments(payments),
	}), nil
}

// ListUserPayments returns every payment the caller sent or received.
func (s *LedgerService) ListUserPayments(ctx context.Context, req *connect.Request[api.ListUserPaymentsRequest]) (*connect.Response[api.ListUserPaymentsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	payments, err := s.store.ListPaymentsByUser(ctx, userID)
	if err != nil {
		slog.Error("ListUserPayments failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ListUserPaymentsResponse{
		Payments: toAPIPayments(payments),
	}), nil
}

// GetBalances returns every member's net position in the group.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	st, err := s.loadState(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&api.GetBalancesResponse{
		Balances: toAPIBalances(st.balances, st.users),
	}), nil
}

// SimplifyDebts returns the transfers that would settle the whole group.
func (s *LedgerService) SimplifyDebts(ctx context.Context, req *connect.Request[api.SimplifyDebtsRequest]) (*connect.Response[api.SimplifyDebtsResponse], error) {
	st, err := s.loadState(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&api.SimplifyDebtsResponse{
		Transfers: toAPITransfers(st.transfers, st.users),
	}), nil
}

// SettleUp returns the transfers the caller should make to clear their debt.
// When Confirm is set, the transfers are recorded as payments in one
// transaction, provided the ledger has not changed since it was read.
// A concurrent change yields CodeAborted and nothing is recorded.
func (s *LedgerService) SettleUp(ctx context.Context, req *connect.Request[api.SettleUpRequest]) (*connect.Response[api.SettleUpResponse], error) {
	st, err := s.loadState(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	userID := st.caller
	slog.Info("SettleUp request received", "group_id", st.group.ID, "user_id", userID, "confirm", req.Msg.Confirm)

	mine := calculator.TransfersFrom(st.transfers, userID)
	resp := &api.SettleUpResponse{
		Transfers: toAPITransfers(mine, st.users),
	}
	if !req.Msg.Confirm || len(resp.Transfers) == 0 {
		return connect.NewResponse(resp), nil
	}

	payments := make([]*models.Payment, len(resp.Transfers))
	for i, t := range resp.Transfers {
		payments[i] = &models.Payment{
			GroupID:    st.group.ID,
			FromUserID: t.FromUserID,
			ToUserID:   t.ToUserID,
			Amount:     t.Amount,
			Note:       settleUpNote,
			CreatedBy:  userID,
		}
	}
	if err := s.store.SettlePayments(ctx, st.group.ID, st.ledger.Version, payments...); err != nil {
		if errors.Is(err, storage.ErrStaleLedger) {
			slog.Warn("SettleUp raced a ledger change", "group_id", st.group.ID, "user_id", userID)
		} else {
			slog.Error("SettleUp failed", "group_id", st.group.ID, "error", err)
		}
		return nil, toConnectError(err)
	}

	for _, p := range payments {
		s.publish(ctx, paymentEvent(p, userID))
	}
	slog.Info("Settled up", "group_id", st.group.ID, "user_id", userID, "payments", len(payments))

	resp.Payments = toAPIPayments(payments)
	resp.Recorded = true
	return connect.NewResponse(resp), nil
}

// GetGroupSummary returns the group with its expenses, payments, balances and
// suggested transfers, all read from one snapshot.
func (s *LedgerService) GetGroupSummary(ctx context.Context, req *connect.Request[api.GetGroupSummaryRequest]) (*connect.Response[api.GetGroupSummaryResponse], error) {
	st, err := s.loadState(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, e := range st.ledger.Expenses {
		total = total.Add(e.Amount)
	}

	// Newest first, matching ListGroupPayments.
	payments := slices.Clone(st.ledger.Payments)
	slices.Reverse(payments)

	return connect.NewResponse(&api.GetGroupSummaryResponse{
		Group:         toAPIGroup(st.group, st.users),
		Expenses:      toAPIExpenses(st.ledger.Expenses),
		Payments:      toAPIPayments(payments),
		TotalExpenses: roundMoney(total),
		Balances:      toAPIBalances(st.balances, st.users),
		Transfers:     toAPITransfers(st.transfers, st.users),
	}), nil
}

// ledgerState is everything derived from one snapshot of a group's ledger.
type ledgerState struct {
	caller    string
	group     *models.Group
	ledger    *models.GroupLedger
	users     map[string]*models.User
	balances  []calculator.MemberBalance
	transfers []calculator.Transfer
}

// loadState reads the group's ledger for a member and computes balances and
// simplified transfers from it. Errors are already mapped to Connect codes.
func (s *LedgerService) loadState(ctx context.Context, groupID string) (*ledgerState, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if groupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: group_id required", ErrInvalidArgument))
	}

	ledger, err := s.store.GetGroupLedger(ctx, groupID)
	if err != nil {
		slog.Error("Failed to load ledger", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}
	group := ledger.Group
	if !group.HasMember(userID) {
		slog.Warn("Access denied to group", "group_id", groupID, "user_id", userID)
		return nil, toConnectError(ErrNotMember)
	}

	expenses := make([]calculator.ExpenseForBalance, len(ledger.Expenses))
	for i, e := range ledger.Expenses {
		if expenses[i], err = expenseForBalance(e); err != nil {
			slog.Error("Stored expense failed validation", "group_id", groupID, "expense_id", e.ID, "error", err)
			return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("stored expense %s: %w", e.ID, err))
		}
	}
	payments := paymentsForBalance(ledger.Payments)

	net, err := calculator.CalculateBalances(expenses)
	if err != nil {
		slog.Error("Stored expense failed validation", "group_id", groupID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	transfers, err := calculator.Simplify(calculator.ApplyPayments(net, payments))
	if err != nil {
		slog.Error("Ledger does not balance", "group_id", groupID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	balances, err := calculator.CalculateMemberBalances(expenses, payments)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	balances = withIdleMembers(balances, group.Members)

	users, err := s.store.GetUsersByIDs(ctx, group.Members)
	if err != nil {
		return nil, toConnectError(err)
	}

	return &ledgerState{
		caller:    userID,
		group:     group,
		ledger:    ledger,
		users:     users,
		balances:  balances,
		transfers: transfers,
	}, nil
}

// withIdleMembers adds a zero balance for members with no expenses or payments.
func withIdleMembers(balances []calculator.MemberBalance, members []string) []calculator.MemberBalance {
	seen := make(map[string]bool, len(balances))
	for _, b := range balances {
		seen[b.UserID] = true
	}
	added := false
	for _, id := range members {
		if !seen[id] {
			balances = append(balances, calculator.MemberBalance{UserID: id})
			added = true
		}
	}
	if added {
		slices.SortFunc(balances, func(a, b calculator.MemberBalance) int {
			return cmp.Compare(a.UserID, b.UserID)
		})
	}
	return balances
}

func (s *LedgerService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		slog.Warn("Failed to publish event", "type", e.Type, "group_id", e.GroupID, "error", err)
	}
}

func paymentEvent(p *models.Payment, actorID string) events.Event {
	ev := events.New(events.PaymentRecorded, p.GroupID, actorID)
	ev.PaymentID = p.ID
	ev.Amount = p.Amount
	return ev
}
