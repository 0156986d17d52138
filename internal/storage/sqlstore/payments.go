package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const paymentColumns = "id, group_id, from_user_id, to_user_id, amount, note, created_by, created_at"

// CreatePayments persists one or more payments atomically.
func (s *Store) CreatePayments(ctx context.Context, payments ...*models.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	preparePayments(payments)

	return s.withTx(ctx, nil, func(tx *sql.Tx) error {
		return s.insertPayments(ctx, tx, payments)
	})
}

// SettlePayments persists payments only while the group's ledger version
// still matches. The conditional update takes the group row lock, so of two
// writers that read the same version only the first commits.
func (s *Store) SettlePayments(ctx context.Context, groupID string, version int64, payments ...*models.Payment) error {
	preparePayments(payments)

	return s.withTx(ctx, nil, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(
			"UPDATE groups SET ledger_version = ledger_version + 1 WHERE id = ? AND ledger_version = ?"),
			groupID, version,
		)
		if err != nil {
			return fmt.Errorf("failed to claim ledger version: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		} else if n == 0 {
			if _, err := s.getGroup(ctx, tx, groupID); err != nil {
				return err
			}
			return fmt.Errorf("%w: group %s", storage.ErrStaleLedger, groupID)
		}

		return s.insertPayments(ctx, tx, payments)
	})
}

func preparePayments(payments []*models.Payment) {
	now := time.Now().Unix()
	for _, p := range payments {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if p.CreatedAt == 0 {
			p.CreatedAt = now
		}
	}
}

func (s *Store) insertPayments(ctx context.Context, tx *sql.Tx, payments []*models.Payment) error {
	for _, p := range payments {
		_, err := tx.ExecContext(ctx, s.q(
			"INSERT INTO payments ("+paymentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)"),
			p.ID, p.GroupID, p.FromUserID, p.ToUserID, p.Amount, p.Note, p.CreatedBy, p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
		if err := s.bumpLedger(ctx, tx, p.GroupID); err != nil {
			return err
		}
	}
	return nil
}

// ListPaymentsByGroup retrieves all payments of a group, newest first.
func (s *Store) ListPaymentsByGroup(ctx context.Context, groupID string) ([]*models.Payment, error) {
	return s.queryPayments(ctx, s.db,
		"SELECT "+paymentColumns+" FROM payments WHERE group_id = ? ORDER BY seq DESC",
		groupID,
	)
}

// ListPaymentsByUser retrieves every payment the user sent or received, newest first.
func (s *Store) ListPaymentsByUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	return s.queryPayments(ctx, s.db,
		"SELECT "+paymentColumns+" FROM payments WHERE from_user_id = ? OR to_user_id = ? ORDER BY seq DESC",
		userID, userID,
	)
}

func (s *Store) queryPayments(ctx context.Context, q querier, query string, args ...any) ([]*models.Payment, error) {
	rows, err := q.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		if err := rows.Scan(
			&p.ID, &p.GroupID, &p.FromUserID, &p.ToUserID,
			&p.Amount, &p.Note, &p.CreatedBy, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}
