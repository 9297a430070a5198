package service

import (
	"context"
	"sync"
	"time"

	"waxipay/internal/core/domain"
	"waxipay/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// fakeTx satisfies pgx.Tx for service tests. Only Commit and Rollback are
// implemented; repositories are faked above the SQL layer.
type fakeTx struct {
	pgx.Tx
	mu        sync.Mutex
	committed bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	return nil
}

type fakeTransactor struct{}

func (f *fakeTransactor) Begin(context.Context) (pgx.Tx, error) {
	return &fakeTx{}, nil
}

// fakeTransactionRepo is an in-memory ports.TransactionRepository.
type fakeTransactionRepo struct {
	mu   sync.Mutex
	txns map[uuid.UUID]*domain.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{txns: make(map[uuid.UUID]*domain.Transaction)}
}

func (r *fakeTransactionRepo) Create(_ context.Context, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.txns[t.ID] = &cp
	return nil
}

func (r *fakeTransactionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txns[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTransactionRepo) GetByIDForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*domain.Transaction, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeTransactionRepo) GetByReference(_ context.Context, reference string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.txns {
		if t.Reference == reference {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTransactionRepo) UpdateStatus(_ context.Context, _ pgx.Tx, id uuid.UUID, status domain.TransactionStatus, completedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txns[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.Status = status
	t.CompletedAt = completedAt
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeTransactionRepo) SetExternalReference(_ context.Context, id uuid.UUID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txns[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.ExternalReference = &token
	return nil
}

func (r *fakeTransactionRepo) List(_ context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Transaction
	for _, t := range r.txns {
		if t.UserID != params.UserID {
			continue
		}
		if params.Status != nil && t.Status != *params.Status {
			continue
		}
		if params.Type != nil && t.Type != *params.Type {
			continue
		}
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTransactionRepo) GetStats(_ context.Context, userID uuid.UUID) (*ports.TransactionStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &ports.TransactionStats{TotalReceived: decimal.Zero, TotalSent: decimal.Zero}
	for _, t := range r.txns {
		if t.UserID != userID || t.Status != domain.TransactionStatusCompleted {
			continue
		}
		switch t.Type {
		case domain.TransactionTypePaymentIn, domain.TransactionTypeDeposit:
			stats.TotalReceived = stats.TotalReceived.Add(t.Amount)
		case domain.TransactionTypePaymentOut, domain.TransactionTypeWithdrawal:
			stats.TotalSent = stats.TotalSent.Add(t.Amount)
		}
		stats.MonthTransactions++
	}
	return stats, nil
}

// fakeWalletRepo is an in-memory ports.WalletRepository.
type fakeWalletRepo struct {
	mu      sync.Mutex
	wallets map[uuid.UUID]*domain.Wallet // keyed by user id
	credits int
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *fakeWalletRepo) Create(_ context.Context, _ pgx.Tx, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.wallets[w.UserID] = &cp
	return nil
}

func (r *fakeWalletRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWalletRepo) GetByUserIDForUpdate(ctx context.Context, _ pgx.Tx, userID uuid.UUID) (*domain.Wallet, error) {
	return r.GetByUserID(ctx, userID)
}

func (r *fakeWalletRepo) Credit(_ context.Context, _ pgx.Tx, walletID uuid.UUID, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.wallets {
		if w.ID == walletID {
			w.Balance = w.Balance.Add(amount)
			r.credits++
			return nil
		}
	}
	return pgx.ErrNoRows
}

// fakeUserRepo is an in-memory ports.UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, _ pgx.Tx, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PhoneNumber == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) MarkVerified(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.IsVerified = true
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

// fakeTokenDenylist is an in-memory ports.TokenDenylist.
type fakeTokenDenylist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newFakeTokenDenylist() *fakeTokenDenylist {
	return &fakeTokenDenylist{revoked: make(map[string]bool)}
}

func (d *fakeTokenDenylist) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[tokenID] = true
	return nil
}

func (d *fakeTokenDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.revoked[tokenID], nil
}

// fakeGateway is a scriptable ports.GatewayClient.
type fakeGateway struct {
	page      *ports.GatewayPaymentPage
	err       error
	signature bool
	requests  []ports.GatewayPaymentRequest
}

func (g *fakeGateway) RequestPayment(_ context.Context, req ports.GatewayPaymentRequest) (*ports.GatewayPaymentPage, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return g.page, nil
}

func (g *fakeGateway) VerifyIPN(ports.IPNNotification) bool {
	return g.signature
}

// fakeOTPStore is an in-memory ports.OTPStore.
type fakeOTPStore struct {
	mu    sync.Mutex
	codes map[string]string
}

func newFakeOTPStore() *fakeOTPStore {
	return &fakeOTPStore{codes: make(map[string]string)}
}

func (s *fakeOTPStore) Set(_ context.Context, userID string, code string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[userID] = code
	return nil
}

func (s *fakeOTPStore) Consume(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := s.codes[userID]
	delete(s.codes, userID)
	return code, nil
}

// fakeSMSSender records outbound messages.
type fakeSMSSender struct {
	mu       sync.Mutex
	messages map[string]string // phone -> last message
}

func newFakeSMSSender() *fakeSMSSender {
	return &fakeSMSSender{messages: make(map[string]string)}
}

func (s *fakeSMSSender) Send(_ context.Context, phone string, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[phone] = message
	return nil
}
