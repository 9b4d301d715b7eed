package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HS256Validator validates HS256 JWT tokens issued by this service
type HS256Validator struct {
	keyStore  *KeyStore
	issuer    string
	clockSkew time.Duration
}

// NewHS256Validator creates a new HS256 validator
func NewHS256Validator(keyStore *KeyStore, issuer string, clockSkew time.Duration) *HS256Validator {
	return &HS256Validator{
		keyStore:  keyStore,
		issuer:    issuer,
		clockSkew: clockSkew,
	}
}

// keyFunc resolves the signing secret from the token's kid header
func (v *HS256Validator) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		kid = "v1"
	}

	secret, ok := v.keyStore.GetHS256Key(kid)
	if !ok {
		return nil, fmt.Errorf("key not found for kid %s", kid)
	}

	return secret, nil
}

// ValidateSession validates a login session token
func (v *HS256Validator) ValidateSession(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, v.keyFunc,
		jwt.WithLeeway(v.clockSkew),
		jwt.WithIssuer(v.issuer),
	)
	if err != nil {
		return nil, categorizeParseError(err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, NewAuthError(AuthFailureUnknown, fmt.Sprintf("invalid token: valid=%v", token.Valid), nil)
	}

	if err := claims.Validate(); err != nil {
		return nil, NewAuthError(AuthFailureUnknown, "invalid claims", err)
	}

	return claims, nil
}

// ValidatePurpose validates a single-purpose token and checks that its purpose
// matches the one expected by the caller. A confirmation token can never be
// redeemed as an invitation and vice versa.
func (v *HS256Validator) ValidatePurpose(tokenString string, expected TokenPurpose) (*PurposeClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &PurposeClaims{}, v.keyFunc,
		jwt.WithLeeway(v.clockSkew),
		jwt.WithIssuer(v.issuer),
	)
	if err != nil {
		return nil, categorizeParseError(err)
	}

	claims, ok := token.Claims.(*PurposeClaims)
	if !ok || !token.Valid {
		return nil, NewAuthError(AuthFailureUnknown, fmt.Sprintf("invalid token: valid=%v", token.Valid), nil)
	}

	if err := claims.Validate(); err != nil {
		return nil, NewAuthError(AuthFailureUnknown, "invalid claims", err)
	}

	if claims.Purpose != expected {
		return nil, NewAuthError(AuthFailurePurposeMismatch,
			fmt.Sprintf("token purpose %q does not match expected %q", claims.Purpose, expected), nil)
	}

	return claims, nil
}

// categorizeParseError maps jwt parse errors onto the AuthError taxonomy
func categorizeParseError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return NewAuthError(AuthFailureTokenExpired, "token expired", err)
	}
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		return NewAuthError(AuthFailureInvalidSignature, "invalid signature", err)
	}
	return NewAuthError(AuthFailureUnknown, "failed to parse token", err)
}
