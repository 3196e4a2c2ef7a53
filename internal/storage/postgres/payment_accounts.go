package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/billbuddy/internal/models"
)

const accountColumns = "id, user_id, bank_name, account_number, account_holder, is_primary, created_at"

// CreatePaymentAccount persists a new payment account, demoting any other primary of the user.
func (s *Store) CreatePaymentAccount(ctx context.Context, account *models.PaymentAccount) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt == 0 {
		account.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx pgx.Tx) error {
		if account.IsPrimary {
			if _, err := tx.Exec(ctx, "UPDATE payment_accounts SET is_primary = FALSE WHERE user_id = $1", account.UserID); err != nil {
				return fmt.Errorf("failed to demote primary account: %w", err)
			}
		}
		if _, err := tx.Exec(ctx,
			"INSERT INTO payment_accounts ("+accountColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
			account.ID, account.UserID, account.BankName, account.AccountNumber, account.AccountHolder,
			account.IsPrimary, account.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert payment account: %w", err)
		}
		return nil
	})
}

// ListPaymentAccounts retrieves a user's accounts, primary first.
func (s *Store) ListPaymentAccounts(ctx context.Context, userID string) ([]*models.PaymentAccount, error) {
	return s.queryAccounts(ctx,
		"SELECT "+accountColumns+" FROM payment_accounts WHERE user_id = $1 ORDER BY is_primary DESC, created_at, id",
		userID,
	)
}

// GetPrimaryAccounts retrieves the primary account of each given user.
func (s *Store) GetPrimaryAccounts(ctx context.Context, userIDs []string) (map[string]*models.PaymentAccount, error) {
	result := make(map[string]*models.PaymentAccount)
	if len(userIDs) == 0 {
		return result, nil
	}
	accounts, err := s.queryAccounts(ctx,
		"SELECT "+accountColumns+" FROM payment_accounts WHERE is_primary AND user_id = ANY($1)",
		userIDs,
	)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		result[a.UserID] = a
	}
	return result, nil
}

func (s *Store) queryAccounts(ctx context.Context, query string, args ...any) ([]*models.PaymentAccount, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment accounts: %w", err)
	}
	accounts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.PaymentAccount, error) {
		a := &models.PaymentAccount{}
		err := row.Scan(&a.ID, &a.UserID, &a.BankName, &a.AccountNumber, &a.AccountHolder, &a.IsPrimary, &a.CreatedAt)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan payment accounts: %w", err)
	}
	return accounts, nil
}
