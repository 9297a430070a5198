package service

import (
	"context"
	"fmt"
	"time"

	"waxipay/internal/core/domain"
	"waxipay/internal/core/ports"
	"waxipay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	userRepo   ports.UserRepository
	walletRepo ports.WalletRepository
	hashSvc    ports.HashService
	tokenSvc   ports.TokenService
	otpSvc     ports.OTPService
	denylist   ports.TokenDenylist
	transactor ports.DBTransactor
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	userRepo ports.UserRepository,
	walletRepo ports.WalletRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	otpSvc ports.OTPService,
	denylist ports.TokenDenylist,
	transactor ports.DBTransactor,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:   userRepo,
		walletRepo: walletRepo,
		hashSvc:    hashSvc,
		tokenSvc:   tokenSvc,
		otpSvc:     otpSvc,
		denylist:   denylist,
		transactor: transactor,
	}
}

// Register creates a new user account with its wallet in one database
// transaction, then issues a verification code.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*ports.AuthResult, error) {
	existing, err := s.userRepo.GetByPhone(ctx, req.PhoneNumber)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check phone: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrPhoneExists()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		PhoneNumber:  req.PhoneNumber,
		Email:        req.Email,
		FullName:     req.FullName,
		UserType:     req.UserType,
		PasswordHash: passwordHash,
		IsActive:     true,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	wallet := &domain.Wallet{
		ID:        uuid.New(),
		UserID:    user.ID,
		Balance:   decimal.Zero,
		Currency:  "XOF",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// User and wallet are created atomically: an account without a wallet
	// could never receive a settlement.
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.userRepo.Create(ctx, dbTx, user); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}
	if err := s.walletRepo.Create(ctx, dbTx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit registration: %w", err))
	}

	if err := s.otpSvc.Issue(ctx, user); err != nil {
		// The account exists; verification can be retried.
		return nil, err
	}

	tokens, err := s.tokenSvc.GeneratePair(user.ID, user.PhoneNumber)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate tokens: %w", err))
	}

	return &ports.AuthResult{User: user, Tokens: *tokens}, nil
}

// Refresh exchanges a valid refresh token for a new pair. The used token is
// revoked, so each refresh token works at most once.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
	claims, err := s.tokenSvc.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken()
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check denylist: %w", err))
	}
	if revoked {
		return nil, apperror.ErrInvalidToken()
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrInvalidToken()
	}
	if !user.IsActive {
		return nil, apperror.ErrAccountDisabled()
	}

	if ttl := time.Until(claims.ExpiresAt); ttl > 0 {
		if err := s.denylist.Revoke(ctx, claims.TokenID, ttl); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("revoke refresh token: %w", err))
		}
	}

	tokens, err := s.tokenSvc.GeneratePair(user.ID, user.PhoneNumber)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate tokens: %w", err))
	}

	return &ports.AuthResult{User: user, Tokens: *tokens}, nil
}

// Logout revokes the refresh token. The access token stays valid until its
// own expiry; it is short-lived and carries no revocable state.
func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokenSvc.ValidateRefresh(refreshToken)
	if err != nil {
		return apperror.ErrInvalidToken()
	}

	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.TokenID, ttl); err != nil {
		return apperror.InternalError(fmt.Errorf("revoke refresh token: %w", err))
	}
	return nil
}

// GetProfile returns the account behind a user id.
func (s *AuthServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrInvalidToken()
	}
	return user, nil
}

// UpdateProfile applies the provided profile fields and returns the updated
// account. Phone number and user type are fixed at registration.
func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, req ports.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrInvalidToken()
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update user: %w", err))
	}
	return user, nil
}

// Login validates credentials and returns a fresh token pair.
func (s *AuthServiceImpl) Login(ctx context.Context, phone string, password string) (*ports.AuthResult, error) {
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return nil, apperror.ErrInvalidCredentials()
	}

	if !user.IsActive {
		return nil, apperror.ErrAccountDisabled()
	}

	tokens, err := s.tokenSvc.GeneratePair(user.ID, user.PhoneNumber)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate tokens: %w", err))
	}

	return &ports.AuthResult{User: user, Tokens: *tokens}, nil
}
