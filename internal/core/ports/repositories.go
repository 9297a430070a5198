package ports

import (
	"context"
	"time"

	"waxipay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, tx pgx.Tx, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error
	// Update persists the mutable profile fields (full name, email).
	Update(ctx context.Context, user *domain.User) error
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside transaction blocks for pessimistic locking.
type WalletRepository interface {
	Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error)
	// Credit increases the balance by amount. MUST run inside the same
	// database transaction as the ledger status change it settles.
	Credit(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount decimal.Decimal) error
}

// TransactionRepository defines persistence operations for the ledger.
type TransactionRepository interface {
	Create(ctx context.Context, t *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error)
	GetByReference(ctx context.Context, reference string) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus, completedAt *time.Time) error
	SetExternalReference(ctx context.Context, id uuid.UUID, token string) error
	// Reporting queries
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetStats(ctx context.Context, userID uuid.UUID) (*TransactionStats, error)
}

// TransactionListParams holds filter + pagination for listing transactions.
type TransactionListParams struct {
	UserID        uuid.UUID
	Type          *domain.TransactionType
	PaymentMethod *domain.PaymentMethod
	Status        *domain.TransactionStatus
	From          *time.Time
	To            *time.Time
	Page          int
	PageSize      int
}

// TransactionStats holds aggregated per-user statistics for the dashboard.
type TransactionStats struct {
	TotalReceived     decimal.Decimal
	TotalSent         decimal.Decimal
	MonthTransactions int64
	WalletBalance     decimal.Decimal
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
