package service

import (
	"context"
	"fmt"
	"time"

	"waxipay/internal/core/domain"
	"waxipay/internal/core/ports"
	"waxipay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// PaymentServiceImpl implements ports.PaymentService.
type PaymentServiceImpl struct {
	txRepo     ports.TransactionRepository
	walletRepo ports.WalletRepository
	userRepo   ports.UserRepository
	gateway    ports.GatewayClient
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewPaymentService creates a new PaymentServiceImpl.
func NewPaymentService(
	txRepo ports.TransactionRepository,
	walletRepo ports.WalletRepository,
	userRepo ports.UserRepository,
	gateway ports.GatewayClient,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		txRepo:     txRepo,
		walletRepo: walletRepo,
		userRepo:   userRepo,
		gateway:    gateway,
		transactor: transactor,
		log:        log,
	}
}

// InitiatePayment records a pending deposit, asks the gateway for a hosted
// payment page, and advances the ledger entry to processing. The pending row
// is created before the outbound call so that a gateway failure still leaves
// an auditable failed entry.
func (s *PaymentServiceImpl) InitiatePayment(ctx context.Context, req ports.InitiatePaymentRequest) (*ports.InitiatePaymentResult, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrInvalidToken()
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:            uuid.New(),
		UserID:        req.UserID,
		Type:          domain.TransactionTypeDeposit,
		PaymentMethod: req.PaymentMethod,
		Amount:        req.Amount,
		Currency:      "XOF",
		Status:        domain.TransactionStatusPending,
		Reference:     domain.NewReference(),
		Description:   req.Description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.txRepo.Create(ctx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	page, err := s.gateway.RequestPayment(ctx, ports.GatewayPaymentRequest{
		ItemName:  req.Description,
		Amount:    req.Amount,
		Reference: txn.Reference,
		Correlation: domain.CorrelationPayload{
			TransactionID: txn.ID,
			UserID:        req.UserID,
		},
		PaymentMethod: req.PaymentMethod,
		User:          user,
	})
	if err != nil {
		if ferr := s.markFailed(ctx, txn.ID); ferr != nil {
			s.log.Error().Err(ferr).Str("tx_id", txn.ID.String()).Msg("could not mark transaction failed")
		}
		return nil, err
	}

	if page.Token != "" {
		if err := s.txRepo.SetExternalReference(ctx, txn.ID, page.Token); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("store gateway token: %w", err))
		}
	}

	if err := s.transition(ctx, txn.ID, domain.TransactionStatusProcessing, nil); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("reference", txn.Reference).
		Str("amount", req.Amount.String()).
		Msg("payment initiated")

	return &ports.InitiatePaymentResult{
		TransactionID:     txn.ID,
		Reference:         txn.Reference,
		PaymentURL:        page.RedirectURL,
		ExternalReference: page.Token,
	}, nil
}

// HandleIPN applies a gateway callback. The transaction row is locked for
// the duration of the settlement so concurrent re-deliveries serialize;
// whichever arrives second sees a terminal status and acknowledges without
// touching the wallet.
func (s *PaymentServiceImpl) HandleIPN(ctx context.Context, n ports.IPNNotification) error {
	if !s.gateway.VerifyIPN(n) {
		s.log.Warn().Str("type_event", n.TypeEvent).Str("ref_command", n.RefCommand).Msg("IPN rejected: bad signature")
		return apperror.ErrIPNSignature()
	}

	payload, err := domain.ParseCorrelationPayload(n.CustomField)
	if err != nil {
		s.log.Warn().Err(err).Str("type_event", n.TypeEvent).Msg("IPN rejected: bad correlation payload")
		return apperror.ErrTransactionNotFound()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.txRepo.GetByIDForUpdate(ctx, dbTx, payload.TransactionID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock transaction: %w", err))
	}
	if txn == nil {
		return apperror.ErrTransactionNotFound()
	}

	// Re-delivery of an already settled notification: acknowledge, change nothing.
	if txn.Status.IsTerminal() {
		s.log.Info().
			Str("tx_id", txn.ID.String()).
			Str("status", string(txn.Status)).
			Msg("IPN re-delivery on terminal transaction, acknowledged")
		return nil
	}

	switch n.TypeEvent {
	case ports.IPNEventSaleComplete:
		return s.settleComplete(ctx, dbTx, txn)
	case ports.IPNEventSaleCanceled:
		return s.settleCanceled(ctx, dbTx, txn)
	default:
		// Unknown event types are acknowledged so the gateway stops retrying.
		s.log.Warn().Str("type_event", n.TypeEvent).Str("tx_id", txn.ID.String()).Msg("unknown IPN event type ignored")
		return nil
	}
}

func (s *PaymentServiceImpl) settleComplete(ctx context.Context, dbTx pgx.Tx, txn *domain.Transaction) error {
	if !txn.CanTransitionTo(domain.TransactionStatusCompleted) {
		return apperror.ErrInvalidTransition(string(txn.Status), string(domain.TransactionStatusCompleted))
	}

	now := time.Now().UTC()
	if err := s.txRepo.UpdateStatus(ctx, dbTx, txn.ID, domain.TransactionStatusCompleted, &now); err != nil {
		return apperror.InternalError(fmt.Errorf("complete transaction: %w", err))
	}

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, txn.UserID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return apperror.ErrWalletNotFound()
	}
	if !wallet.IsActive {
		return apperror.ErrWalletInactive()
	}

	if err := s.walletRepo.Credit(ctx, dbTx, wallet.ID, txn.Amount); err != nil {
		return apperror.InternalError(fmt.Errorf("credit wallet: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit settlement: %w", err))
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("wallet_id", wallet.ID.String()).
		Str("amount", txn.Amount.String()).
		Msg("sale completed, wallet credited")
	return nil
}

func (s *PaymentServiceImpl) settleCanceled(ctx context.Context, dbTx pgx.Tx, txn *domain.Transaction) error {
	if !txn.CanTransitionTo(domain.TransactionStatusCancelled) {
		return apperror.ErrInvalidTransition(string(txn.Status), string(domain.TransactionStatusCancelled))
	}

	if err := s.txRepo.UpdateStatus(ctx, dbTx, txn.ID, domain.TransactionStatusCancelled, nil); err != nil {
		return apperror.InternalError(fmt.Errorf("cancel transaction: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit cancellation: %w", err))
	}

	s.log.Info().Str("tx_id", txn.ID.String()).Msg("sale canceled by payer")
	return nil
}

// transition moves a non-settled transaction to a new status in its own
// short database transaction.
func (s *PaymentServiceImpl) transition(ctx context.Context, txID uuid.UUID, status domain.TransactionStatus, completedAt *time.Time) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.txRepo.GetByIDForUpdate(ctx, dbTx, txID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock transaction: %w", err))
	}
	if txn == nil {
		return apperror.ErrTransactionNotFound()
	}
	if !txn.CanTransitionTo(status) {
		return apperror.ErrInvalidTransition(string(txn.Status), string(status))
	}

	if err := s.txRepo.UpdateStatus(ctx, dbTx, txID, status, completedAt); err != nil {
		return apperror.InternalError(fmt.Errorf("update status: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit transition: %w", err))
	}
	return nil
}

func (s *PaymentServiceImpl) markFailed(ctx context.Context, txID uuid.UUID) error {
	return s.transition(ctx, txID, domain.TransactionStatusFailed, nil)
}
