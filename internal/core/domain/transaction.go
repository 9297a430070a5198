package domain

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypePaymentIn  TransactionType = "payment_in"
	TransactionTypePaymentOut TransactionType = "payment_out"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeDeposit    TransactionType = "deposit"
)

// PaymentMethod identifies the provider channel used for a transaction.
type PaymentMethod string

const (
	PaymentMethodWave        PaymentMethod = "wave"
	PaymentMethodOrangeMoney PaymentMethod = "orange_money"
	PaymentMethodFreeMoney   PaymentMethod = "free_money"
	PaymentMethodBankCard    PaymentMethod = "bank_card"
)

// TransactionStatus represents the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
)

// IsTerminal returns true if no transition leaves this status.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted ||
		s == TransactionStatusFailed ||
		s == TransactionStatusCancelled
}

// transitions is the allowed status graph. An IPN may land on a transaction
// still pending (initiation interrupted after the gateway call), so pending
// admits the same outcomes processing does.
var transitions = map[TransactionStatus][]TransactionStatus{
	TransactionStatusPending: {
		TransactionStatusProcessing,
		TransactionStatusCompleted,
		TransactionStatusCancelled,
		TransactionStatusFailed,
	},
	TransactionStatusProcessing: {
		TransactionStatusCompleted,
		TransactionStatusCancelled,
		TransactionStatusFailed,
	},
}

// Transaction is a payment attempt recorded in the ledger. Amount and
// Reference are immutable after creation; Status only moves forward.
type Transaction struct {
	ID                uuid.UUID         `json:"id"`
	UserID            uuid.UUID         `json:"user_id"`
	Type              TransactionType   `json:"transaction_type"`
	PaymentMethod     PaymentMethod     `json:"payment_method"`
	Amount            decimal.Decimal   `json:"amount"`
	Currency          string            `json:"currency"`
	Fees              decimal.Decimal   `json:"fees"`
	Status            TransactionStatus `json:"status"`
	Reference         string            `json:"reference"`
	ExternalReference *string           `json:"external_reference,omitempty"`
	RecipientPhone    *string           `json:"recipient_phone,omitempty"`
	Description       string            `json:"description,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty"`
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status.IsTerminal()
}

// CanTransitionTo reports whether moving to next is a legal status change.
func (t *Transaction) CanTransitionTo(next TransactionStatus) bool {
	for _, allowed := range transitions[t.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NewReference generates a unique human-readable transaction reference.
// Format: WXP-<12 uppercase hex chars>.
func NewReference() string {
	id := uuid.New()
	return "WXP-" + strings.ToUpper(hex.EncodeToString(id[:6]))
}
