package ports

import (
	"context"
	"time"

	"waxipay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IPN event types delivered by the payment gateway.
const (
	IPNEventSaleComplete = "sale_complete"
	IPNEventSaleCanceled = "sale_canceled"
)

// IPNNotification carries the form fields of a gateway callback.
type IPNNotification struct {
	TypeEvent       string
	CustomField     string
	RefCommand      string
	APIKeySHA256    string
	APISecretSHA256 string
}

// GatewayPaymentRequest is the input for a hosted-payment-page request.
type GatewayPaymentRequest struct {
	ItemName      string
	Amount        decimal.Decimal
	Reference     string
	Correlation   domain.CorrelationPayload
	PaymentMethod domain.PaymentMethod
	User          *domain.User
}

// GatewayPaymentPage is the gateway's answer to a payment request.
type GatewayPaymentPage struct {
	RedirectURL string
	Token       string
}

// GatewayClient talks to the external payment provider.
type GatewayClient interface {
	// RequestPayment makes a single outbound call with a bounded timeout.
	// Network failures and gateway rejections come back as typed errors;
	// the caller decides whether to mark the transaction failed.
	RequestPayment(ctx context.Context, req GatewayPaymentRequest) (*GatewayPaymentPage, error)
	// VerifyIPN recomputes the expected credential hashes and compares them
	// against the ones supplied in the callback. Returns false on any
	// mismatch, including when expected secrets are unset.
	VerifyIPN(n IPNNotification) bool
}

// --- Service Ports (Business Logic) ---

// InitiatePaymentRequest holds validated input for payment initiation.
type InitiatePaymentRequest struct {
	UserID        uuid.UUID
	Amount        decimal.Decimal
	Description   string
	PaymentMethod domain.PaymentMethod
}

// InitiatePaymentResult is returned to the client after a successful
// gateway handshake.
type InitiatePaymentResult struct {
	TransactionID     uuid.UUID
	Reference         string
	PaymentURL        string
	ExternalReference string
}

// PaymentService coordinates payment initiation and IPN settlement.
type PaymentService interface {
	InitiatePayment(ctx context.Context, req InitiatePaymentRequest) (*InitiatePaymentResult, error)
	// HandleIPN applies a gateway callback. A nil error means the
	// notification was acknowledged (including no-op re-deliveries).
	HandleIPN(ctx context.Context, n IPNNotification) error
}

// TokenPair is an access/refresh token pair.
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID      uuid.UUID
	PhoneNumber string
}

// RefreshClaims holds the parsed claims of a refresh token. TokenID is the
// jti used for revocation; ExpiresAt bounds how long the revocation must be
// remembered.
type RefreshClaims struct {
	UserID    uuid.UUID
	TokenID   string
	ExpiresAt time.Time
}

// TokenService handles JWT token operations.
type TokenService interface {
	GeneratePair(userID uuid.UUID, phone string) (*TokenPair, error)
	Validate(tokenString string) (*TokenClaims, error)
	// ValidateRefresh accepts only tokens carrying typ == "refresh".
	ValidateRefresh(tokenString string) (*RefreshClaims, error)
}

// TokenDenylist remembers revoked refresh token ids until they would have
// expired anyway.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// HashService handles password hashing.
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// OTPStore persists single-use verification codes with a TTL.
type OTPStore interface {
	Set(ctx context.Context, userID string, code string, ttl time.Duration) error
	// Consume atomically fetches and deletes the code for userID.
	// Returns "" when no code is stored.
	Consume(ctx context.Context, userID string) (string, error)
}

// SMSSender delivers a message to a phone number. Delivery itself is an
// external collaborator; implementations may be no-ops.
type SMSSender interface {
	Send(ctx context.Context, phone string, message string) error
}

// OTPService issues and verifies phone verification codes.
type OTPService interface {
	Issue(ctx context.Context, user *domain.User) error
	Verify(ctx context.Context, userID uuid.UUID, code string) error
}

// RegisterRequest holds input for user registration.
type RegisterRequest struct {
	PhoneNumber string
	Password    string
	FullName    string
	Email       *string
	UserType    domain.UserType
}

// AuthResult bundles the authenticated user with fresh tokens.
type AuthResult struct {
	User   *domain.User
	Tokens TokenPair
}

// UpdateProfileRequest carries the mutable profile fields; nil leaves a
// field unchanged.
type UpdateProfileRequest struct {
	FullName *string
	Email    *string
}

// AuthService defines account business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, phone string, password string) (*AuthResult, error)
	// Refresh rotates a valid, unrevoked refresh token into a new pair.
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	// Logout revokes the refresh token; the access token simply expires.
	Logout(ctx context.Context, refreshToken string) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*domain.User, error)
}

// ReportingService serves transaction history and dashboard statistics.
type ReportingService interface {
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetTransaction(ctx context.Context, userID uuid.UUID, txID uuid.UUID) (*domain.Transaction, error)
	GetStats(ctx context.Context, userID uuid.UUID) (*TransactionStats, error)
	GetWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
}
