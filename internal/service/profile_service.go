package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/billbuddy/internal/api"
	"github.com/mmynk/billbuddy/internal/models"
	"github.com/mmynk/billbuddy/internal/storage"
)

// ProfileService implements the Connect ProfileService: where members want to be paid.
type ProfileService struct {
	store storage.PaymentAccountStore
}

var _ api.ProfileServiceHandler = (*ProfileService)(nil)

func NewProfileService(store storage.PaymentAccountStore) *ProfileService {
	return &ProfileService{store: store}
}

// SetPaymentAccount adds a payment account for the caller. A primary account demotes the others.
func (s *ProfileService) SetPaymentAccount(ctx context.Context, req *connect.Request[api.SetPaymentAccountRequest]) (*connect.Response[api.PaymentAccountResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("SetPaymentAccount request received", "user_id", userID, "bank", req.Msg.BankName)

	account := &models.PaymentAccount{
		UserID:        userID,
		BankName:      strings.TrimSpace(req.Msg.BankName),
		AccountNumber: strings.TrimSpace(req.Msg.AccountNumber),
		AccountHolder: strings.TrimSpace(req.Msg.AccountHolder),
		IsPrimary:     req.Msg.Primary,
	}
	switch {
	case account.BankName == "":
		return nil, toConnectError(models.NewValidationError("bank_name", "required"))
	case account.AccountNumber == "":
		return nil, toConnectError(models.NewValidationError("account_number", "required"))
	case account.AccountHolder == "":
		return nil, toConnectError(models.NewValidationError("account_holder", "required"))
	}

	// The first account is primary whether or not it was asked for.
	existing, err := s.store.ListPaymentAccounts(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if len(existing) == 0 {
		account.IsPrimary = true
	}

	if err := s.store.CreatePaymentAccount(ctx, account); err != nil {
		slog.Error("SetPaymentAccount failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.PaymentAccountResponse{Account: toAPIAccount(account)}), nil
}

// ListPaymentAccounts lists a user's accounts, the caller's own when no user is given.
func (s *ProfileService) ListPaymentAccounts(ctx context.Context, req *connect.Request[api.ListPaymentAccountsRequest]) (*connect.Response[api.ListPaymentAccountsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	target := req.Msg.UserID
	if target == "" {
		target = userID
	}

	accounts, err := s.store.ListPaymentAccounts(ctx, target)
	if err != nil {
		slog.Error("ListPaymentAccounts failed", "user_id", target, "error", err)
		return nil, toConnectError(err)
	}
	out := make([]api.PaymentAccount, len(accounts))
	for i, a := range accounts {
		out[i] = toAPIAccount(a)
	}
	return connect.NewResponse(&api.ListPaymentAccountsResponse{Accounts: out}), nil
}
