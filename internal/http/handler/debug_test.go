package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"caresync-api/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debugRequestWithClaims(target string, claims *auth.SessionClaims) *http.Request {
	req := httptest.NewRequest("GET", target, nil)
	return req.WithContext(auth.SetClaimsForTesting(req.Context(), claims))
}

func TestDebugHandler_GetAuthDebug_ProductionBlocked(t *testing.T) {
	originalEnv := os.Getenv("APP_ENV")
	defer os.Setenv("APP_ENV", originalEnv)

	os.Setenv("APP_ENV", "production")

	handler := NewDebugHandler(nil)

	claims := &auth.SessionClaims{UserID: "7a25cfc0-8c5f-47a8-a828-2c4f63e35bd5"}
	req := debugRequestWithClaims("/debug/auth", claims)

	rec := httptest.NewRecorder()
	handler.GetAuthDebug(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code, "should return 404 in production")
}

func TestDebugHandler_GetAuthDebug_DevAllowed(t *testing.T) {
	originalEnv := os.Getenv("APP_ENV")
	defer os.Setenv("APP_ENV", originalEnv)

	os.Setenv("APP_ENV", "dev")

	handler := NewDebugHandler(nil)

	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	claims := &auth.SessionClaims{
		UserID: "7a25cfc0-8c5f-47a8-a828-2c4f63e35bd5",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "caresync-api",
			ID:        "token-123",
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}
	req := debugRequestWithClaims("/debug/auth", claims)

	rec := httptest.NewRecorder()
	handler.GetAuthDebug(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response DebugAuthResponse
	err := json.NewDecoder(rec.Body).Decode(&response)
	require.NoError(t, err)

	assert.True(t, response.OK)
	require.NotNil(t, response.Data)
	assert.Equal(t, "7a25cfc0-8c5f-47a8-a828-2c4f63e35bd5", response.Data.UserID)
	assert.Equal(t, "caresync-api", response.Data.Issuer)
	assert.Equal(t, "token-123", response.Data.TokenID)
	require.NotNil(t, response.Data.ExpiresAt)
	assert.WithinDuration(t, expiry, *response.Data.ExpiresAt, time.Second)
}

func TestDebugHandler_GetAuthDebug_NoClaims(t *testing.T) {
	originalEnv := os.Getenv("APP_ENV")
	defer os.Setenv("APP_ENV", originalEnv)

	os.Setenv("APP_ENV", "dev")

	handler := NewDebugHandler(nil)

	req := httptest.NewRequest("GET", "/debug/auth", nil)
	rec := httptest.NewRecorder()
	handler.GetAuthDebug(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
