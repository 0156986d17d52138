package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
)

// GetGroupLedger reads a group with its expenses and payments inside one
// read transaction so balances are computed from a consistent snapshot.
func (s *Store) GetGroupLedger(ctx context.Context, groupID string) (*models.GroupLedger, error) {
	ledger := &models.GroupLedger{}
	err := s.withTx(ctx, s.dialect.SnapshotTx, func(tx *sql.Tx) error {
		var err error
		if ledger.Group, err = s.getGroup(ctx, tx, groupID); err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx, s.q(
			"SELECT ledger_version FROM groups WHERE id = ?"), groupID).Scan(&ledger.Version); err != nil {
			return fmt.Errorf("failed to read ledger version: %w", err)
		}
		if ledger.Expenses, err = s.listExpenses(ctx, tx, groupID); err != nil {
			return err
		}
		ledger.Payments, err = s.queryPayments(ctx, tx,
			"SELECT "+paymentColumns+" FROM payments WHERE group_id = ? ORDER BY seq",
			groupID,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}

// bumpLedger advances the version of the group an expense or payment belongs to.
func (s *Store) bumpLedger(ctx context.Context, tx *sql.Tx, groupID string) error {
	if _, err := tx.ExecContext(ctx, s.q(
		"UPDATE groups SET ledger_version = ledger_version + 1 WHERE id = ?"), groupID); err != nil {
		return fmt.Errorf("failed to bump ledger version: %w", err)
	}
	return nil
}

// bumpExpenseLedger is bumpLedger for the group owning expenseID.
func (s *Store) bumpExpenseLedger(ctx context.Context, tx *sql.Tx, expenseID string) error {
	if _, err := tx.ExecContext(ctx, s.q(
		"UPDATE groups SET ledger_version = ledger_version + 1 WHERE id = (SELECT group_id FROM expenses WHERE id = ?)"),
		expenseID); err != nil {
		return fmt.Errorf("failed to bump ledger version: %w", err)
	}
	return nil
}
