package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"waxipay/internal/core/domain"
	"waxipay/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, user_id, transaction_type, payment_method, amount, currency, fees,
		status, reference, external_reference, recipient_phone, description, created_at, updated_at, completed_at`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new ledger entry.
func (r *TransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.UserID, t.Type, t.PaymentMethod, t.Amount, t.Currency, t.Fees,
		t.Status, t.Reference, t.ExternalReference, t.RecipientPhone, t.Description,
		t.CreatedAt, t.UpdatedAt, t.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by UUID (non-locking read).
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches a transaction with pessimistic locking so the
// settlement path can serialize concurrent callback deliveries.
// MUST be called within a transaction.
func (r *TransactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`

	return scanTransaction(tx.QueryRow(ctx, query, id))
}

// GetByReference fetches a transaction by its unique reference.
func (r *TransactionRepo) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reference = $1`

	return scanTransaction(r.pool.QueryRow(ctx, query, reference))
}

// UpdateStatus moves a transaction to a new status within a database
// transaction. completedAt is nil for every status except completed.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus, completedAt *time.Time) error {
	query := `UPDATE transactions SET status = $1, completed_at = $2, updated_at = NOW() WHERE id = $3`

	tag, err := tx.Exec(ctx, query, status, completedAt, id)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %s", id)
	}
	return nil
}

// SetExternalReference stores the gateway token assigned at initiation.
func (r *TransactionRepo) SetExternalReference(ctx context.Context, id uuid.UUID, token string) error {
	query := `UPDATE transactions SET external_reference = $1, updated_at = NOW() WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, token, id)
	if err != nil {
		return fmt.Errorf("set external reference: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %s", id)
	}
	return nil
}

// List fetches a user's transactions with filtering and pagination.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
	args = append(args, params.UserID)
	argIdx++

	if params.Type != nil {
		conditions = append(conditions, fmt.Sprintf("transaction_type = $%d", argIdx))
		args = append(args, *params.Type)
		argIdx++
	}
	if params.PaymentMethod != nil {
		conditions = append(conditions, fmt.Sprintf("payment_method = $%d", argIdx))
		args = append(args, *params.PaymentMethod)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM transactions %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.UserID, &t.Type, &t.PaymentMethod, &t.Amount, &t.Currency, &t.Fees,
			&t.Status, &t.Reference, &t.ExternalReference, &t.RecipientPhone, &t.Description,
			&t.CreatedAt, &t.UpdatedAt, &t.CompletedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, total, nil
}

// GetStats retrieves aggregated statistics for a user's dashboard.
func (r *TransactionRepo) GetStats(ctx context.Context, userID uuid.UUID) (*ports.TransactionStats, error) {
	query := `SELECT
		COALESCE(SUM(amount) FILTER (WHERE transaction_type IN ('payment_in', 'deposit') AND status = 'completed'), 0) AS total_received,
		COALESCE(SUM(amount) FILTER (WHERE transaction_type IN ('payment_out', 'withdrawal') AND status = 'completed'), 0) AS total_sent,
		COUNT(*) FILTER (WHERE status = 'completed' AND created_at >= date_trunc('month', NOW())) AS month_transactions
		FROM transactions WHERE user_id = $1`

	stats := &ports.TransactionStats{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&stats.TotalReceived, &stats.TotalSent, &stats.MonthTransactions,
	)
	if err != nil {
		return nil, fmt.Errorf("get transaction stats: %w", err)
	}
	return stats, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.UserID, &t.Type, &t.PaymentMethod, &t.Amount, &t.Currency, &t.Fees,
		&t.Status, &t.Reference, &t.ExternalReference, &t.RecipientPhone, &t.Description,
		&t.CreatedAt, &t.UpdatedAt, &t.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}
