package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Payments & Settlement (PAY) ----

func ErrInvalidAmount() *AppError {
	return New("PAY_001", "Amount must be a positive decimal", http.StatusBadRequest)
}

func ErrTransactionNotFound() *AppError {
	return New("PAY_002", "Transaction not found", http.StatusNotFound)
}

// ErrInvalidTransition signals an illegal status move. It never reaches the
// payment gateway; the IPN handler maps it to an internal error.
func ErrInvalidTransition(from, to string) *AppError {
	return New("PAY_003", fmt.Sprintf("Illegal transaction transition %s -> %s", from, to), http.StatusInternalServerError)
}

func ErrWalletInactive() *AppError {
	return New("PAY_004", "Wallet is deactivated", http.StatusForbidden)
}

func ErrWalletNotFound() *AppError {
	return New("PAY_005", "Wallet not found", http.StatusNotFound)
}

// ---- Payment Gateway (GW) ----

// ErrGateway covers network failures, timeouts and non-success responses
// from the payment provider. The message carries the provider's reason.
func ErrGateway(message string, err error) *AppError {
	if message == "" {
		message = "Payment gateway request failed"
	}
	return Wrap("GW_001", message, http.StatusBadGateway, err)
}

// ---- IPN Security (SEC) ----

func ErrIPNSignature() *AppError {
	return New("SEC_001", "IPN signature verification failed", http.StatusForbidden)
}

// ---- Accounts & Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid phone number or password", http.StatusUnauthorized)
}

func ErrPhoneExists() *AppError {
	return New("AUTH_002", "Phone number already registered", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrAccountDisabled() *AppError {
	return New("AUTH_004", "Account is disabled", http.StatusForbidden)
}

func ErrInvalidOTP() *AppError {
	return New("AUTH_005", "Invalid or expired verification code", http.StatusBadRequest)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
