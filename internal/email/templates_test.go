package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerificationEmail(t *testing.T) {
	subject, body := VerificationEmail("https://app.caresync.example", "Ada", "tok-123")

	assert.Equal(t, "Confirm your CareSync account", subject)
	assert.Contains(t, body, "Hi Ada,")
	assert.Contains(t, body, "https://app.caresync.example/confirm?token=tok-123")
}

func TestInvitationEmail(t *testing.T) {
	subject, body := InvitationEmail("https://app.caresync.example", "Frank Doyle", "Grace Okafor", "tok-456")

	assert.Contains(t, subject, "Frank Doyle")
	assert.Contains(t, body, "Grace Okafor")
	assert.Contains(t, body, "https://app.caresync.example/invitations/redeem?token=tok-456")
}
