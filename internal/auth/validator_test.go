package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret-key-must-be-at-least-32-chars-long-for-hmac"
	testIssuer = "caresync-api"
)

func newTestKeyStore() *KeyStore {
	keyStore := NewKeyStore()
	keyStore.LoadHS256Key("v1", []byte(testSecret))
	return keyStore
}

func TestSessionToken_RoundTrip(t *testing.T) {
	keyStore := newTestKeyStore()
	issuer := NewTokenIssuer(keyStore, testIssuer)
	validator := NewHS256Validator(keyStore, testIssuer, 60*time.Second)

	token, err := issuer.SignSession("user-67890", 1*time.Hour)
	require.NoError(t, err)

	claims, err := validator.ValidateSession(token)

	require.NoError(t, err)
	assert.Equal(t, "user-67890", claims.UserID)
	assert.Equal(t, testIssuer, claims.Issuer)
}

func TestSessionToken_InvalidSignature(t *testing.T) {
	keyStore := newTestKeyStore()
	issuer := NewTokenIssuer(keyStore, testIssuer)

	otherStore := NewKeyStore()
	otherStore.LoadHS256Key("v1", []byte("a-completely-different-secret-of-32-characters"))
	validator := NewHS256Validator(otherStore, testIssuer, 60*time.Second)

	token, err := issuer.SignSession("user-67890", 1*time.Hour)
	require.NoError(t, err)

	_, err = validator.ValidateSession(token)

	require.Error(t, err)
	authErr, ok := IsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, AuthFailureInvalidSignature, authErr.Reason)
}

func TestSessionToken_Expired(t *testing.T) {
	keyStore := newTestKeyStore()
	issuer := NewTokenIssuer(keyStore, testIssuer)
	validator := NewHS256Validator(keyStore, testIssuer, 0)

	token, err := issuer.SignSession("user-67890", -1*time.Hour)
	require.NoError(t, err)

	_, err = validator.ValidateSession(token)

	require.Error(t, err)
	authErr, ok := IsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, AuthFailureTokenExpired, authErr.Reason)
}

func TestSessionToken_ClockSkewTolerance(t *testing.T) {
	keyStore := newTestKeyStore()
	issuer := NewTokenIssuer(keyStore, testIssuer)
	validator := NewHS256Validator(keyStore, testIssuer, 60*time.Second)

	// Expired 30s ago, within the 60s leeway
	token, err := issuer.SignSession("user-67890", -30*time.Second)
	require.NoError(t, err)

	_, err = validator.ValidateSession(token)

	assert.NoError(t, err)
}

func TestSessionToken_WrongIssuer(t *testing.T) {
	keyStore := newTestKeyStore()
	issuer := NewTokenIssuer(keyStore, "some-other-service")
	validator := NewHS256Validator(keyStore, testIssuer, 60*time.Second)

	token, err := issuer.SignSession("user-67890", 1*time.Hour)
	require.NoError(t, err)

	_, err = validator.ValidateSession(token)

	assert.Error(t, err)
}

func TestConfirmationToken_RoundTrip(t *testing.T) {
	keyStore := newTestKeyStore()
	issuer := NewTokenIssuer(keyStore, testIssuer)
	validator := NewHS256Validator(keyStore, testIssuer, 60*time.Second)

	token, err := issuer.SignConfirmation("user-67890")
	require.NoError(t, err)

	claims, err := validator.ValidatePurpose(token, PurposeEmailConfirmation)

	require.NoError(t, err)
	assert.Equal(t, PurposeEmailConfirmation, claims.Purpose)
	assert.Equal(t, "user-67890", claims.UserID)
}

func TestInvitationToken_RoundTrip(t *testing.T) {
	keyStore := newTestKeyStore()
	issuer := NewTokenIssuer(keyStore, testIssuer)
	validator := NewHS256Validator(keyStore, testIssuer, 60*time.Second)

	token, err := issuer.SignInvitation("client-123", "carer@example.com")
	require.NoError(t, err)

	claims, err := validator.ValidatePurpose(token, PurposeCareTeamInvitation)

	require.NoError(t, err)
	assert.Equal(t, PurposeCareTeamInvitation, claims.Purpose)
	assert.Equal(t, "client-123", claims.ClientID)
	assert.Equal(t, "carer@example.com", claims.Email)
}

func TestPurposeToken_PurposeMismatch(t *testing.T) {
	keyStore := newTestKeyStore()
	issuer := NewTokenIssuer(keyStore, testIssuer)
	validator := NewHS256Validator(keyStore, testIssuer, 60*time.Second)

	// A confirmation token must not redeem as an invitation
	token, err := issuer.SignConfirmation("user-67890")
	require.NoError(t, err)

	_, err = validator.ValidatePurpose(token, PurposeCareTeamInvitation)

	require.Error(t, err)
	authErr, ok := IsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, AuthFailurePurposeMismatch, authErr.Reason)
}

func TestPurposeToken_NotAcceptedAsSession(t *testing.T) {
	keyStore := newTestKeyStore()
	issuer := NewTokenIssuer(keyStore, testIssuer)
	validator := NewHS256Validator(keyStore, testIssuer, 60*time.Second)

	token, err := issuer.SignInvitation("client-123", "carer@example.com")
	require.NoError(t, err)

	// Invitation tokens carry no userId, so session validation must fail
	_, err = validator.ValidateSession(token)

	assert.Error(t, err)
}

func TestValidateSession_GarbageToken(t *testing.T) {
	keyStore := newTestKeyStore()
	validator := NewHS256Validator(keyStore, testIssuer, 60*time.Second)

	_, err := validator.ValidateSession("not-a-jwt")

	assert.Error(t, err)
}

func TestKeyStore_Rotation(t *testing.T) {
	keyStore := NewKeyStore()
	keyStore.LoadHS256Key("v1", []byte(testSecret))
	issuerV1 := NewTokenIssuer(keyStore, testIssuer)

	oldToken, err := issuerV1.SignSession("user-1", 1*time.Hour)
	require.NoError(t, err)

	// Rotate: v2 becomes active, v1 stays loaded for verification
	keyStore.LoadHS256Key("v2", []byte("rotated-secret-also-32-characters-long!!"))
	validator := NewHS256Validator(keyStore, testIssuer, 60*time.Second)

	_, err = validator.ValidateSession(oldToken)
	assert.NoError(t, err)

	newToken, err := issuerV1.SignSession("user-1", 1*time.Hour)
	require.NoError(t, err)

	_, err = validator.ValidateSession(newToken)
	assert.NoError(t, err)
}
