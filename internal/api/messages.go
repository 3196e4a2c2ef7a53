package api

import "github.com/mmynk/billbuddy/internal/receipt"

// Amounts are int64 minor currency units unless noted. Exact shares are decimal strings.

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

type Member struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	JoinedAt    int64  `json:"joined_at"`
}

type Room struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	HostID      string   `json:"host_id"`
	InviteCode  string   `json:"invite_code"`
	CreatedAt   int64    `json:"created_at"`
	Members     []Member `json:"members"`
}

type Split struct {
	ID          string `json:"id"`
	ItemID      string `json:"item_id"`
	UserID      string `json:"user_id"`
	ShareAmount string `json:"share_amount"`
	IsPaid      bool   `json:"is_paid"`
	PaidAt      int64  `json:"paid_at,omitempty"`
}

type Item struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Quantity     int64   `json:"quantity"`
	UnitPrice    int64   `json:"unit_price"`
	TotalPrice   int64   `json:"total_price"`
	SplitVersion int64   `json:"split_version"`
	Splits       []Split `json:"splits"`
}

type Activity struct {
	ID              string `json:"id"`
	RoomID          string `json:"room_id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	PayerID         string `json:"payer_id"`
	Subtotal        int64  `json:"subtotal"`
	TaxAmount       int64  `json:"tax_amount"`
	ServiceCharge   int64  `json:"service_charge"`
	DiscountAmount  int64  `json:"discount_amount"`
	TotalAmount     int64  `json:"total_amount"`
	ReceiptImageURL string `json:"receipt_image_url,omitempty"`
	CreatedAt       int64  `json:"created_at"`
	Items           []Item `json:"items"`
}

// ParticipantTotal is one participant's rounded position within an activity.
type ParticipantTotal struct {
	UserID     string `json:"user_id"`
	Subtotal   int64  `json:"subtotal"`
	Adjustment int64  `json:"adjustment"`
	Total      int64  `json:"total"`
}

type PaymentAccount struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountHolder string `json:"account_holder"`
	IsPrimary     bool   `json:"is_primary"`
}

// AuthService

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User      User   `json:"user"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User User `json:"user"`
}

// RoomService

type CreateRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type JoinRoomRequest struct {
	InviteCode string `json:"invite_code"`
}

type GetRoomRequest struct {
	RoomID string `json:"room_id"`
}

type RoomResponse struct {
	Room Room `json:"room"`
}

type ListRoomsRequest struct{}

type ListRoomsResponse struct {
	Rooms []Room `json:"rooms"`
}

type DeleteRoomRequest struct {
	RoomID string `json:"room_id"`
}

type DeleteRoomResponse struct{}

type WatchRoomRequest struct {
	RoomID string `json:"room_id"`
}

// RoomEvent says something in the room changed. It carries no amounts; re-read to recompute.
type RoomEvent struct {
	ID         string `json:"id"`
	RoomID     string `json:"room_id"`
	Kind       string `json:"kind"`
	ActivityID string `json:"activity_id,omitempty"`
	ItemID     string `json:"item_id,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	At         int64  `json:"at"`
}

// ActivityService

type NewItem struct {
	Name           string   `json:"name"`
	Quantity       int64    `json:"quantity"`
	UnitPrice      int64    `json:"unit_price"`
	TotalPrice     int64    `json:"total_price"`
	ParticipantIDs []string `json:"participant_ids"`
}

type CreateActivityRequest struct {
	RoomID          string    `json:"room_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	PayerID         string    `json:"payer_id"`
	TaxAmount       int64     `json:"tax_amount"`
	ServiceCharge   int64     `json:"service_charge"`
	DiscountAmount  int64     `json:"discount_amount"`
	ReceiptImageURL string    `json:"receipt_image_url"`
	Items           []NewItem `json:"items"`
}

type GetActivityRequest struct {
	ActivityID string `json:"activity_id"`
}

type ActivityResponse struct {
	Activity Activity           `json:"activity"`
	Totals   []ParticipantTotal `json:"totals"`
}

type ListActivitiesRequest struct {
	RoomID string `json:"room_id"`
}

type ListActivitiesResponse struct {
	Activities []Activity `json:"activities"`
}

type DeleteActivityRequest struct {
	ActivityID string `json:"activity_id"`
}

type DeleteActivityResponse struct{}

type ScanReceiptRequest struct {
	Image    []byte `json:"image"`
	MimeType string `json:"mime_type"`
}

type ScanReceiptResponse struct {
	Draft receipt.Draft `json:"draft"`
}

// SplitService

type ToggleParticipantRequest struct {
	ItemID string `json:"item_id"`
	UserID string `json:"user_id"`
}

type SetParticipantsRequest struct {
	ItemID  string   `json:"item_id"`
	UserIDs []string `json:"user_ids"`
}

type SelectAllRequest struct {
	ItemID string `json:"item_id"`
}

type ItemResponse struct {
	Item Item `json:"item"`
}

type SetPaidRequest struct {
	SplitID string `json:"split_id"`
	Paid    bool   `json:"paid"`
}

type TogglePaidRequest struct {
	SplitID string `json:"split_id"`
}

type SplitResponse struct {
	Split Split `json:"split"`
}

type GetChecklistRequest struct {
	RoomID string `json:"room_id"`
}

type ChecklistEntry struct {
	SplitID      string `json:"split_id"`
	ActivityID   string `json:"activity_id"`
	ActivityName string `json:"activity_name"`
	ItemID       string `json:"item_id"`
	ItemName     string `json:"item_name"`
	DebtorID     string `json:"debtor_id"`
	CreditorID   string `json:"creditor_id"`
	Share        string `json:"share"`
	Amount       int64  `json:"amount"`
	IsPaid       bool   `json:"is_paid"`
}

type GetChecklistResponse struct {
	OwedToMe            []ChecklistEntry `json:"owed_to_me"`
	MyDebts             []ChecklistEntry `json:"my_debts"`
	OutstandingOwedToMe int64            `json:"outstanding_owed_to_me"`
	OutstandingMyDebts  int64            `json:"outstanding_my_debts"`
}

// SettlementService

type GetPairwiseDebtsRequest struct {
	RoomID string `json:"room_id"`
}

type Debt struct {
	DebtorID        string          `json:"debtor_id"`
	DebtorName      string          `json:"debtor_name"`
	CreditorID      string          `json:"creditor_id"`
	CreditorName    string          `json:"creditor_name"`
	Amount          int64           `json:"amount"`
	CreditorAccount *PaymentAccount `json:"creditor_account,omitempty"`
}

type GetPairwiseDebtsResponse struct {
	Debts []Debt `json:"debts"`
	Total int64  `json:"total"`
}

type GetSettlementPlanRequest struct {
	RoomID string `json:"room_id"`
}

type Balance struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Paid        int64  `json:"paid"`
	Owed        int64  `json:"owed"`
	Net         int64  `json:"net"`
}

type Transfer struct {
	FromID   string `json:"from_id"`
	FromName string `json:"from_name"`
	ToID     string `json:"to_id"`
	ToName   string `json:"to_name"`
	Amount   int64  `json:"amount"`
}

type GetSettlementPlanResponse struct {
	Balances  []Balance  `json:"balances"`
	Transfers []Transfer `json:"transfers"`
}

type GetSummaryRequest struct {
	RoomID string `json:"room_id"`
}

type GetSummaryResponse struct {
	Text string `json:"text"`
}

// ProfileService

type SetPaymentAccountRequest struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountHolder string `json:"account_holder"`
	Primary       bool   `json:"primary"`
}

type PaymentAccountResponse struct {
	Account PaymentAccount `json:"account"`
}

type ListPaymentAccountsRequest struct {
	UserID string `json:"user_id"`
}

type ListPaymentAccountsResponse struct {
	Accounts []PaymentAccount `json:"accounts"`
}
