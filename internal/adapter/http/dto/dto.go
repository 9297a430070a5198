package dto

import "github.com/shopspring/decimal"

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	PhoneNumber string  `json:"phone_number" binding:"required,sn_phone"`
	Password    string  `json:"password" binding:"required,min=8,max=128"`
	FullName    string  `json:"full_name" binding:"required,min=1,max=100"`
	Email       *string `json:"email,omitempty" binding:"omitempty,email"`
	UserType    string  `json:"user_type" binding:"omitempty,oneof=driver merchant deliverer individual"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

// VerifyOTPRequest is the request body for phone verification.
type VerifyOTPRequest struct {
	Code string `json:"code" binding:"required,len=6,numeric"`
}

// RefreshRequest is the request body for token refresh and logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest is the request body for profile updates. Absent
// fields stay untouched.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty" binding:"omitempty,min=1,max=100"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          string  `json:"id"`
	PhoneNumber string  `json:"phone_number"`
	FullName    string  `json:"full_name"`
	Email       *string `json:"email,omitempty"`
	UserType    string  `json:"user_type"`
	IsVerified  bool    `json:"is_verified"`
}

// AuthResponse is the response body for successful register/login.
type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    int64        `json:"expires_at"` // Unix timestamp
}

// InitiatePaymentRequest is the request body for starting a deposit.
type InitiatePaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod string          `json:"payment_method" binding:"required,oneof=wave orange_money free_money bank_card"`
	Description   string          `json:"description" binding:"max=255"`
}

// InitiatePaymentResponse is the response body for a started deposit.
type InitiatePaymentResponse struct {
	TransactionID     string `json:"transaction_id"`
	Reference         string `json:"reference"`
	PaymentURL        string `json:"payment_url"`
	ExternalReference string `json:"external_reference,omitempty"`
}

// TransactionResponse is the public view of a ledger entry.
type TransactionResponse struct {
	ID                string          `json:"id"`
	Type              string          `json:"transaction_type"`
	PaymentMethod     string          `json:"payment_method"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Fees              decimal.Decimal `json:"fees"`
	Status            string          `json:"status"`
	Reference         string          `json:"reference"`
	ExternalReference *string         `json:"external_reference,omitempty"`
	Description       string          `json:"description,omitempty"`
	CreatedAt         string          `json:"created_at"`
	CompletedAt       *string         `json:"completed_at,omitempty"`
}

// TransactionListResponse wraps a paginated transaction list.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// WalletResponse is the response for balance queries.
type WalletResponse struct {
	ID       string          `json:"id"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
	IsActive bool            `json:"is_active"`
}

// StatsResponse is the response for dashboard statistics.
type StatsResponse struct {
	TotalReceived     decimal.Decimal `json:"total_received"`
	TotalSent         decimal.Decimal `json:"total_sent"`
	MonthTransactions int64           `json:"month_transactions"`
	WalletBalance     decimal.Decimal `json:"wallet_balance"`
}
