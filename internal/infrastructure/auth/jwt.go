// Package auth validates the bearer tokens that identify InvoiceFlow users.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/invoiceflow/backend/internal/infrastructure/config"
)

// TokenType tells access tokens apart from other tokens signed with the same key
type TokenType string

// TokenTypeAccess is the only type the API accepts
const TokenTypeAccess TokenType = "access"

const defaultExpiration = 24 * time.Hour

// Validation failures; the HTTP layer maps each to an error code
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUserID    = errors.New("missing user_id in claims")
)

// Claims identify the caller. UserID owns every record the request touches;
// tokens that carry the user only in sub are accepted too.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	TokenType TokenType `json:"token_type"`
}

// AccessToken is a signed token with its expiry
type AccessToken struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
	TokenType string    `json:"token_type"`
}

// JWTService checks HS256 access tokens. It can also mint them for local
// development and tests.
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	now        func() time.Time
}

// NewJWTService creates a JWTService; a zero expiration means 24h
func NewJWTService(cfg config.JWTConfig) *JWTService {
	s := &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.AccessTokenExpiration,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}
	if s.expiration <= 0 {
		s.expiration = defaultExpiration
	}
	return s
}

// GetAccessTokenExpiration returns how long minted tokens stay valid
func (s *JWTService) GetAccessTokenExpiration() time.Duration {
	return s.expiration
}

// GenerateAccessToken mints a token for userID
func (s *JWTService) GenerateAccessToken(userID, email string) (*AccessToken, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.expiration)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{s.issuer},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:    userID,
		Email:     email,
		TokenType: TokenTypeAccess,
	}).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &AccessToken{Token: signed, ExpiresAt: expiresAt, TokenType: "Bearer"}, nil
}

// ValidateAccessToken verifies signature, time bounds and token type, and
// returns claims with UserID always set
func (s *JWTService) ValidateAccessToken(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, s.signingKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithTimeFunc(s.now))
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotYetValid
	case err != nil:
		return nil, ErrInvalidToken
	case !token.Valid:
		return nil, ErrInvalidClaims
	case claims.TokenType != TokenTypeAccess:
		return nil, ErrInvalidTokenType
	}

	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	return claims, nil
}

func (s *JWTService) signingKey(*jwt.Token) (any, error) {
	return s.secret, nil
}
