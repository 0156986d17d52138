package service

import (
	"context"
	"fmt"
	"log/slog"
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

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	apiconnect.UnimplementedExpenseServiceHandler
	store     storage.Store
	publisher events.Publisher
}

// NewExpenseService creates an ExpenseService. A nil publisher discards events.
func NewExpenseService(store storage.Store, publisher events.Publisher) *ExpenseService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ExpenseService{store: store, publisher: publisher}
}

// expenseInput is the part of an expense a client can set.
type expenseInput struct {
	description string
	amount      decimal.Decimal
	paidBy      string
	splitType   string
	splitWith   []string
	shares      map[string]decimal.Decimal
}

// apply validates in against the group and copies it onto e.
func (in expenseInput) apply(e *models.Expense, group *models.Group) error {
	splitType, err := calculator.ParseSplitType(in.splitType)
	if err != nil {
		return err
	}

	shares := in.shares
	if splitType == calculator.SplitEqual {
		shares = nil
	}

	if !group.HasMember(in.paidBy) {
		return fmt.Errorf("%w: payer %s is not a member of the group", calculator.ErrInvalidExpense, in.paidBy)
	}
	for _, id := range in.splitWith {
		if !group.HasMember(id) {
			return fmt.Errorf("%w: %s is not a member of the group", calculator.ErrInvalidExpense, id)
		}
	}

	err = calculator.ValidateExpense(calculator.ExpenseForBalance{
		Amount:    in.amount,
		PaidBy:    in.paidBy,
		SplitType: splitType,
		SplitWith: in.splitWith,
		Shares:    shares,
	})
	if err != nil {
		return err
	}

	e.Description = strings.TrimSpace(in.description)
	e.Amount = in.amount
	e.PaidBy = in.paidBy
	e.SplitType = string(splitType)
	e.SplitWith = in.splitWith
	e.Shares = shares
	return nil
}

// CreateExpense logs a new expense in a group the caller belongs to.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount,
		"split_type", req.Msg.SplitType,
		"split_count", len(req.Msg.SplitWith),
	)

	group, err := groupForMember(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	paidBy := req.Msg.PaidBy
	if paidBy == "" {
		paidBy = userID
	}

	expense := &models.Expense{GroupID: group.ID, CreatedBy: userID}
	in := expenseInput{
		description: req.Msg.Description,
		amount:      req.Msg.Amount,
		paidBy:      paidBy,
		splitType:   req.Msg.SplitType,
		splitWith:   req.Msg.SplitWith,
		shares:      req.Msg.Shares,
	}
	if err := in.apply(expense, group); err != nil {
		slog.Warn("CreateExpense rejected", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", group.ID)
	s.publish(ctx, expenseEvent(events.ExpenseCreated, expense, userID))

	return connect.NewResponse(&api.CreateExpenseResponse{
		Expense: toAPIExpense(expense),
	}), nil
}

// GetExpense retrieves an expense from a group the caller belongs to.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	expense, _, err := s.expenseForMember(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetExpenseResponse{
		Expense: toAPIExpense(expense),
	}), nil
}

// ListExpenses returns a group's expenses in the order they were logged.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupID)

	group, err := groupForMember(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("ListExpenses successful", "group_id", group.ID, "count", len(expenses))

	return connect.NewResponse(&api.ListExpensesResponse{
		Expenses: toAPIExpenses(expenses),
	}), nil
}

// UpdateExpense replaces an expense's description, amount, payer and split.
// Any member of the group may edit its expenses.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, group, err := s.expenseForMember(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	paidBy := req.Msg.PaidBy
	if paidBy == "" {
		paidBy = expense.PaidBy
	}
	in := expenseInput{
		description: req.Msg.Description,
		amount:      req.Msg.Amount,
		paidBy:      paidBy,
		splitType:   req.Msg.SplitType,
		splitWith:   req.Msg.SplitWith,
		shares:      req.Msg.Shares,
	}
	if err := in.apply(expense, group); err != nil {
		slog.Warn("UpdateExpense rejected", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense updated", "expense_id", expense.ID)
	s.publish(ctx, expenseEvent(events.ExpenseUpdated, expense, userID))

	return connect.NewResponse(&api.UpdateExpenseResponse{
		Expense: toAPIExpense(expense),
	}), nil
}

// DeleteExpense removes an expense. Balances are recomputed from what remains.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, _, err := s.expenseForMember(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense deleted", "expense_id", expense.ID)
	s.publish(ctx, expenseEvent(events.ExpenseDeleted, expense, userID))

	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// expenseForMember loads an expense and the group it belongs to, checking that
// userID is a member of that group.
func (s *ExpenseService) expenseForMember(ctx context.Context, expenseID, userID string) (*models.Expense, *models.Group, error) {
	if expenseID == "" {
		return nil, nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: expense_id required", ErrInvalidArgument))
	}
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, nil, err
	}
	group, err := groupForMember(ctx, s.store, expense.GroupID, userID)
	if err != nil {
		return nil, nil, err
	}
	return expense, group, nil
}

func (s *ExpenseService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		slog.Warn("Failed to publish event", "type", e.Type, "group_id", e.GroupID, "error", err)
	}
}

func expenseEvent(t events.Type, e *models.Expense, actorID string) events.Event {
	ev := events.New(t, e.GroupID, actorID)
	ev.ExpenseID = e.ID
	ev.Amount = e.Amount
	return ev
}
