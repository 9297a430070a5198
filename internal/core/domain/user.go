package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserType classifies the account holder.
type UserType string

const (
	UserTypeDriver     UserType = "driver"
	UserTypeMerchant   UserType = "merchant"
	UserTypeDeliverer  UserType = "deliverer"
	UserTypeIndividual UserType = "individual"
)

// User is an account identified by phone number. Registration creates
// exactly one Wallet per user.
type User struct {
	ID           uuid.UUID `json:"id"`
	PhoneNumber  string    `json:"phone_number"`
	Email        *string   `json:"email,omitempty"`
	FullName     string    `json:"full_name"`
	UserType     UserType  `json:"user_type"`
	PasswordHash string    `json:"-"` // Never expose
	IsActive     bool      `json:"is_active"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
