package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/billbuddy/internal/models"
)

const accountColumns = "id, user_id, bank_name, account_number, account_holder, is_primary, created_at"

// CreatePaymentAccount persists a new payment account. A primary account demotes the user's
// existing primary in the same transaction.
func (s *SQLiteStore) CreatePaymentAccount(ctx context.Context, account *models.PaymentAccount) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt == 0 {
		account.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if account.IsPrimary {
			if _, err := tx.ExecContext(ctx,
				"UPDATE payment_accounts SET is_primary = 0 WHERE user_id = ?",
				account.UserID,
			); err != nil {
				return fmt.Errorf("failed to demote primary account: %w", err)
			}
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO payment_accounts ("+accountColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
			account.ID, account.UserID, account.BankName, account.AccountNumber, account.AccountHolder,
			boolToInt(account.IsPrimary), account.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment account: %w", err)
		}
		return nil
	})
}

// ListPaymentAccounts retrieves a user's accounts, primary first.
func (s *SQLiteStore) ListPaymentAccounts(ctx context.Context, userID string) ([]*models.PaymentAccount, error) {
	return s.queryAccounts(ctx,
		"SELECT "+accountColumns+" FROM payment_accounts WHERE user_id = ? ORDER BY is_primary DESC, created_at, id",
		userID,
	)
}

// GetPrimaryAccounts retrieves the primary account of each given user.
func (s *SQLiteStore) GetPrimaryAccounts(ctx context.Context, userIDs []string) (map[string]*models.PaymentAccount, error) {
	result := make(map[string]*models.PaymentAccount)
	if len(userIDs) == 0 {
		return result, nil
	}

	accounts, err := s.queryAccounts(ctx,
		"SELECT "+accountColumns+" FROM payment_accounts WHERE is_primary = 1 AND user_id IN ("+placeholders(len(userIDs))+")",
		stringArgs(userIDs)...,
	)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		result[a.UserID] = a
	}
	return result, nil
}

func (s *SQLiteStore) queryAccounts(ctx context.Context, query string, args ...any) ([]*models.PaymentAccount, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.PaymentAccount
	for rows.Next() {
		a := &models.PaymentAccount{}
		var primary int
		if err := rows.Scan(&a.ID, &a.UserID, &a.BankName, &a.AccountNumber, &a.AccountHolder, &primary, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment account: %w", err)
		}
		a.IsPrimary = primary != 0
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment accounts: %w", err)
	}
	return accounts, nil
}
