package service

import (
	"fmt"
	"time"

	"waxipay/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTTokenService implements ports.TokenService using HS256 JWT.
type JWTTokenService struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	issuer        string
}

// NewJWTTokenService creates a new JWT token service.
func NewJWTTokenService(secret string, accessExpiry, refreshExpiry time.Duration, issuer string) *JWTTokenService {
	return &JWTTokenService{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		issuer:        issuer,
	}
}

// GeneratePair creates a signed access/refresh token pair for the user.
func (s *JWTTokenService) GeneratePair(userID uuid.UUID, phone string) (*ports.TokenPair, error) {
	now := time.Now()
	accessExpiresAt := now.Add(s.accessExpiry)

	access, err := s.sign(jwt.MapClaims{
		"sub":   userID.String(),
		"phone": phone,
		"typ":   "access",
		"iat":   now.Unix(),
		"exp":   accessExpiresAt.Unix(),
		"iss":   s.issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	// jti makes individual refresh tokens revocable.
	refresh, err := s.sign(jwt.MapClaims{
		"sub": userID.String(),
		"typ": "refresh",
		"jti": uuid.New().String(),
		"iat": now.Unix(),
		"exp": now.Add(s.refreshExpiry).Unix(),
		"iss": s.issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}

	return &ports.TokenPair{
		AccessToken:     access,
		RefreshToken:    refresh,
		AccessExpiresAt: accessExpiresAt,
	}, nil
}

func (s *JWTTokenService) sign(claims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate parses and validates an access token, returning the claims.
func (s *JWTTokenService) Validate(tokenString string) (*ports.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if typ, _ := claims["typ"].(string); typ != "access" {
		return nil, fmt.Errorf("token is not an access token")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("missing subject claim")
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in token: %w", err)
	}

	phone, _ := claims["phone"].(string)

	return &ports.TokenClaims{
		UserID:      userID,
		PhoneNumber: phone,
	}, nil
}

// ValidateRefresh parses and validates a refresh token. Access tokens are
// rejected; a bearer credential must never double as a refresh credential.
func (s *JWTTokenService) ValidateRefresh(tokenString string) (*ports.RefreshClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return nil, fmt.Errorf("token is not a refresh token")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("missing subject claim")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in token: %w", err)
	}

	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return nil, fmt.Errorf("missing jti claim")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("missing expiry claim")
	}

	return &ports.RefreshClaims{
		UserID:    userID,
		TokenID:   jti,
		ExpiresAt: exp.Time,
	}, nil
}
