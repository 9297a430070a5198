package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"waxipay/internal/core/domain"
	"waxipay/internal/core/ports"
	"waxipay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OTPServiceImpl implements ports.OTPService.
type OTPServiceImpl struct {
	store    ports.OTPStore
	sender   ports.SMSSender
	userRepo ports.UserRepository
	ttl      time.Duration
	log      zerolog.Logger
}

// NewOTPService creates a new OTPServiceImpl.
func NewOTPService(store ports.OTPStore, sender ports.SMSSender, userRepo ports.UserRepository, ttl time.Duration, log zerolog.Logger) *OTPServiceImpl {
	return &OTPServiceImpl{
		store:    store,
		sender:   sender,
		userRepo: userRepo,
		ttl:      ttl,
		log:      log,
	}
}

// Issue generates a 6-digit code, stores it with a TTL, and sends it to
// the user's phone. Re-issuing replaces any outstanding code.
func (s *OTPServiceImpl) Issue(ctx context.Context, user *domain.User) error {
	code, err := generateOTPCode()
	if err != nil {
		return apperror.InternalError(fmt.Errorf("generate otp: %w", err))
	}

	if err := s.store.Set(ctx, user.ID.String(), code, s.ttl); err != nil {
		return apperror.InternalError(fmt.Errorf("store otp: %w", err))
	}

	message := fmt.Sprintf("Votre code de vérification WaxiPay est: %s", code)
	if err := s.sender.Send(ctx, user.PhoneNumber, message); err != nil {
		return apperror.InternalError(fmt.Errorf("send otp: %w", err))
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("verification code issued")
	return nil
}

// Verify consumes the stored code and marks the user verified on match.
// A consumed code cannot be replayed; a wrong guess burns the code.
func (s *OTPServiceImpl) Verify(ctx context.Context, userID uuid.UUID, code string) error {
	stored, err := s.store.Consume(ctx, userID.String())
	if err != nil {
		return apperror.InternalError(fmt.Errorf("consume otp: %w", err))
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return apperror.ErrInvalidOTP()
	}

	if err := s.userRepo.MarkVerified(ctx, userID); err != nil {
		return apperror.InternalError(fmt.Errorf("mark verified: %w", err))
	}

	s.log.Info().Str("user_id", userID.String()).Msg("phone number verified")
	return nil
}

// generateOTPCode returns a random 6-digit code with leading zeros kept.
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// LoggingSMSSender implements ports.SMSSender by logging the message.
// Stands in until an SMS provider is contracted.
type LoggingSMSSender struct {
	log zerolog.Logger
}

// NewLoggingSMSSender creates a logging SMS sender.
func NewLoggingSMSSender(log zerolog.Logger) *LoggingSMSSender {
	return &LoggingSMSSender{log: log}
}

// Send logs the outbound message instead of delivering it.
func (s *LoggingSMSSender) Send(_ context.Context, phone string, message string) error {
	s.log.Info().Str("phone", phone).Str("message", message).Msg("sms (not delivered)")
	return nil
}
