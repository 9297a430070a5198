package postgres

import (
	"context"
	"testing"
	"time"

	"waxipay/internal/core/domain"
	"waxipay/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction(userID uuid.UUID) *domain.Transaction {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Transaction{
		ID:            uuid.New(),
		UserID:        userID,
		Type:          domain.TransactionTypeDeposit,
		PaymentMethod: domain.PaymentMethodWave,
		Amount:        decimal.RequireFromString("500.00"),
		Currency:      "XOF",
		Fees:          decimal.Zero,
		Status:        domain.TransactionStatusPending,
		Reference:     domain.NewReference(),
		Description:   "Dépôt WaxiPay",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func transactionTestColumns() []string {
	return []string{
		"id", "user_id", "transaction_type", "payment_method", "amount", "currency", "fees",
		"status", "reference", "external_reference", "recipient_phone", "description",
		"created_at", "updated_at", "completed_at",
	}
}

func transactionRow(tr *domain.Transaction) *pgxmock.Rows {
	return pgxmock.NewRows(transactionTestColumns()).AddRow(
		tr.ID, tr.UserID, tr.Type, tr.PaymentMethod, tr.Amount, tr.Currency, tr.Fees,
		tr.Status, tr.Reference, tr.ExternalReference, tr.RecipientPhone, tr.Description,
		tr.CreatedAt, tr.UpdatedAt, tr.CompletedAt,
	)
}

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	tr := newTestTransaction(uuid.New())

	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(tr.ID, tr.UserID, tr.Type, tr.PaymentMethod, tr.Amount, tr.Currency, tr.Fees,
			tr.Status, tr.Reference, tr.ExternalReference, tr.RecipientPhone, tr.Description,
			tr.CreatedAt, tr.UpdatedAt, tr.CompletedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), tr)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	tr := newTestTransaction(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(tr.ID).
		WillReturnRows(transactionRow(tr))

	result, err := repo.GetByID(context.Background(), tr.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, tr.Reference, result.Reference)
	assert.Equal(t, domain.TransactionStatusPending, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(transactionTestColumns()))

	result, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByIDForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	tr := newTestTransaction(uuid.New())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id .+ FOR UPDATE").
		WithArgs(tr.ID).
		WillReturnRows(transactionRow(tr))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByIDForUpdate(context.Background(), tx, tr.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, tr.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByReference(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	tr := newTestTransaction(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE reference").
		WithArgs(tr.Reference).
		WillReturnRows(transactionRow(tr))

	result, err := repo.GetByReference(context.Background(), tr.Reference)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, tr.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	id := uuid.New()
	completedAt := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE transactions SET status").
		WithArgs(domain.TransactionStatusCompleted, &completedAt, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateStatus(context.Background(), tx, id, domain.TransactionStatusCompleted, &completedAt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_UpdateStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE transactions SET status").
		WithArgs(domain.TransactionStatusFailed, (*time.Time)(nil), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateStatus(context.Background(), tx, id, domain.TransactionStatusFailed, nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_SetExternalReference(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE transactions SET external_reference").
		WithArgs("paytech-token-123", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.SetExternalReference(context.Background(), id, "paytech-token-123")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	userID := uuid.New()
	tr := newTestTransaction(userID)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM transactions .+ ORDER BY created_at DESC").
		WithArgs(userID, 20, 0).
		WillReturnRows(transactionRow(tr))

	items, total, err := repo.List(context.Background(), ports.TransactionListParams{
		UserID:   userID,
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, tr.Reference, items[0].Reference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List_WithFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	userID := uuid.New()
	txType := domain.TransactionTypeDeposit
	status := domain.TransactionStatusCompleted

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(userID, txType, status).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery("SELECT .+ FROM transactions").
		WithArgs(userID, txType, status, 10, 0).
		WillReturnRows(pgxmock.NewRows(transactionTestColumns()))

	items, total, err := repo.List(context.Background(), ports.TransactionListParams{
		UserID:   userID,
		Type:     &txType,
		Status:   &status,
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetStats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"total_received", "total_sent", "month_transactions"}).
			AddRow(decimal.RequireFromString("2500.00"), decimal.RequireFromString("300.00"), int64(4)))

	stats, err := repo.GetStats(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, stats.TotalReceived.Equal(decimal.RequireFromString("2500.00")))
	assert.True(t, stats.TotalSent.Equal(decimal.RequireFromString("300.00")))
	assert.Equal(t, int64(4), stats.MonthTransactions)
	assert.NoError(t, mock.ExpectationsWereMet())
}
