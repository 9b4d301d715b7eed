package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token lifetimes for email-carried tokens
const (
	ConfirmationTTL = 24 * time.Hour
	InvitationTTL   = 30 * 24 * time.Hour
)

// TokenIssuer signs session and single-purpose tokens with the active key
type TokenIssuer struct {
	keyStore *KeyStore
	issuer   string
}

// NewTokenIssuer creates a new TokenIssuer
func NewTokenIssuer(keyStore *KeyStore, issuer string) *TokenIssuer {
	return &TokenIssuer{
		keyStore: keyStore,
		issuer:   issuer,
	}
}

// SignSession issues a login session token for a user
func (i *TokenIssuer) SignSession(userID string, ttl time.Duration) (string, error) {
	claims := &SessionClaims{
		UserID:           userID,
		RegisteredClaims: i.registeredClaims(ttl),
	}
	return i.sign(claims)
}

// SignConfirmation issues an email confirmation token for a user
func (i *TokenIssuer) SignConfirmation(userID string) (string, error) {
	claims := &PurposeClaims{
		Purpose:          PurposeEmailConfirmation,
		UserID:           userID,
		RegisteredClaims: i.registeredClaims(ConfirmationTTL),
	}
	return i.sign(claims)
}

// SignInvitation issues a care team invitation token bound to a client and the
// invited email address
func (i *TokenIssuer) SignInvitation(clientID, email string) (string, error) {
	claims := &PurposeClaims{
		Purpose:          PurposeCareTeamInvitation,
		ClientID:         clientID,
		Email:            email,
		RegisteredClaims: i.registeredClaims(InvitationTTL),
	}
	return i.sign(claims)
}

func (i *TokenIssuer) registeredClaims(ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Issuer:    i.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
}

func (i *TokenIssuer) sign(claims jwt.Claims) (string, error) {
	kid, secret, ok := i.keyStore.ActiveKey()
	if !ok {
		return "", fmt.Errorf("no active signing key loaded")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = kid

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
