package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenPurpose identifies single-purpose tokens sent over email
type TokenPurpose string

const (
	PurposeEmailConfirmation  TokenPurpose = "email_confirmation"
	PurposeCareTeamInvitation TokenPurpose = "careteam_invitation"
)

// SessionClaims represents the JWT claims of a login session
type SessionClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Validate performs additional validation on session claims
func (c *SessionClaims) Validate() error {
	if c.UserID == "" {
		return jwt.ErrTokenInvalidClaims
	}
	return nil
}

// PurposeClaims represents the claims of a single-purpose token embedded in an
// email link. Confirmation tokens carry the user, invitation tokens carry the
// client and the invited address.
type PurposeClaims struct {
	Purpose  TokenPurpose `json:"purpose"`
	UserID   string       `json:"userId,omitempty"`
	ClientID string       `json:"clientId,omitempty"`
	Email    string       `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Validate performs additional validation on purpose claims
func (c *PurposeClaims) Validate() error {
	switch c.Purpose {
	case PurposeEmailConfirmation:
		if c.UserID == "" {
			return jwt.ErrTokenInvalidClaims
		}
	case PurposeCareTeamInvitation:
		if c.ClientID == "" || c.Email == "" {
			return jwt.ErrTokenInvalidClaims
		}
	default:
		return jwt.ErrTokenInvalidClaims
	}
	return nil
}
