package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const expenseColumns = "id, group_id, description, amount, paid_by, split_type, created_by, created_at, updated_at"

// CreateExpense persists a new expense and its split rows.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.UpdatedAt == 0 {
		expense.UpdatedAt = expense.CreatedAt
	}

	return s.withTx(ctx, nil, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.q(
			"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"),
			expense.ID, expense.GroupID, expense.Description, expense.Amount, expense.PaidBy,
			expense.SplitType, expense.CreatedBy, expense.CreatedAt, expense.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
		if err := s.bumpLedger(ctx, tx, expense.GroupID); err != nil {
			return err
		}

		return s.insertSplits(ctx, tx, expense)
	})
}

// GetExpense retrieves an expense by ID, including its split.
func (s *Store) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := scanExpense(s.db.QueryRowContext(ctx, s.q(
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?"), expenseID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: expense %s", storage.ErrNotFound, expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, s.q(
		"SELECT expense_id, user_id, share FROM expense_splits WHERE expense_id = ? ORDER BY position"),
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense splits: %w", err)
	}
	defer rows.Close()

	if err := scanSplits(rows, map[string]*models.Expense{expense.ID: expense}); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpensesByGroup retrieves all expenses of a group in creation order.
func (s *Store) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return s.listExpenses(ctx, s.db, groupID)
}

func (s *Store) listExpenses(ctx context.Context, q querier, groupID string) ([]*models.Expense, error) {
	rows, err := q.QueryContext(ctx, s.q(
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY seq"), groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
		byID[expense.ID] = expense
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	splitRows, err := q.QueryContext(ctx, s.q(`
		SELECT s.expense_id, s.user_id, s.share
		FROM expense_splits s
		JOIN expenses e ON e.id = s.expense_id
		WHERE e.group_id = ?
		ORDER BY s.expense_id, s.position`), groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense splits: %w", err)
	}
	defer splitRows.Close()

	if err := scanSplits(splitRows, byID); err != nil {
		return nil, err
	}
	return expenses, nil
}

// UpdateExpense rewrites an expense and replaces its split rows in one transaction.
// The group an expense belongs to never changes.
func (s *Store) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().Unix()

	return s.withTx(ctx, nil, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(
			"UPDATE expenses SET description = ?, amount = ?, paid_by = ?, split_type = ?, updated_at = ? WHERE id = ?"),
			expense.Description, expense.Amount, expense.PaidBy, expense.SplitType, expense.UpdatedAt, expense.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		if err := checkAffected(res, "expense", expense.ID); err != nil {
			return err
		}
		if err := s.bumpExpenseLedger(ctx, tx, expense.ID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, s.q("DELETE FROM expense_splits WHERE expense_id = ?"), expense.ID); err != nil {
			return fmt.Errorf("failed to clear expense splits: %w", err)
		}

		return s.insertSplits(ctx, tx, expense)
	})
}

// DeleteExpense deletes an expense and its split rows.
func (s *Store) DeleteExpense(ctx context.Context, expenseID string) error {
	return s.withTx(ctx, nil, func(tx *sql.Tx) error {
		if err := s.bumpExpenseLedger(ctx, tx, expenseID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, s.q("DELETE FROM expenses WHERE id = ?"), expenseID)
		if err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		return checkAffected(res, "expense", expenseID)
	})
}

func (s *Store) insertSplits(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i, userID := range expense.SplitWith {
		share, ok := expense.Shares[userID]
		_, err := tx.ExecContext(ctx, s.q(
			"INSERT INTO expense_splits (expense_id, user_id, position, share) VALUES (?, ?, ?, ?)"),
			expense.ID, userID, i, decimal.NullDecimal{Decimal: share, Valid: ok},
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense split: %w", err)
		}
	}
	return nil
}

// scanSplits attaches split rows (expense_id, user_id, share) to their expenses.
func scanSplits(rows *sql.Rows, byID map[string]*models.Expense) error {
	for rows.Next() {
		var (
			expenseID, userID string
			share             decimal.NullDecimal
		)
		if err := rows.Scan(&expenseID, &userID, &share); err != nil {
			return fmt.Errorf("failed to scan expense split: %w", err)
		}

		expense, ok := byID[expenseID]
		if !ok {
			continue
		}
		expense.SplitWith = append(expense.SplitWith, userID)
		if share.Valid {
			if expense.Shares == nil {
				expense.Shares = make(map[string]decimal.Decimal)
			}
			expense.Shares[userID] = share.Decimal
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate expense splits: %w", err)
	}
	return nil
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	expense := &models.Expense{}
	err := row.Scan(
		&expense.ID, &expense.GroupID, &expense.Description, &expense.Amount, &expense.PaidBy,
		&expense.SplitType, &expense.CreatedBy, &expense.CreatedAt, &expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return expense, nil
}
