package models

// PaymentAccount is where a creditor wants to receive transfers.
// At most one account per user is primary; the primary one is shown next to the user in settlements.
type PaymentAccount struct {
	ID            string
	UserID        string
	BankName      string
	AccountNumber string
	AccountHolder string
	IsPrimary     bool
	CreatedAt     int64
}
