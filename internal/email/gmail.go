package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	httpclient "caresync-api/internal/http/client"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// sendInterval throttles outbound messages to respect Gmail API rate limits
const sendInterval = 3 * time.Second

// GmailMailer sends email through the Gmail API using a long-lived
// OAuth refresh token.
type GmailMailer struct {
	service *gmail.Service
	sender  string

	sendMutex    sync.Mutex
	lastSendTime time.Time
}

// GmailConfig holds the OAuth credentials for the sending account
type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Sender       string
}

// NewGmailMailer creates a Gmail-backed mailer. The refresh token must carry
// the gmail.send scope.
func NewGmailMailer(ctx context.Context, cfg GmailConfig) (*GmailMailer, error) {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}

	token := &oauth2.Token{RefreshToken: cfg.RefreshToken}
	httpClient := oauthConfig.Client(ctx, token)
	// Propagate X-Request-Id to Gmail API calls for end-to-end correlation.
	httpClient.Transport = httpclient.NewRequestIDTransport(httpClient.Transport)

	service, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &GmailMailer{
		service: service,
		sender:  cfg.Sender,
	}, nil
}

// Send delivers an HTML email to a single recipient.
// Throttles requests to respect Gmail API rate limits.
func (m *GmailMailer) Send(ctx context.Context, to, subject, body string) error {
	m.sendMutex.Lock()
	defer m.sendMutex.Unlock()

	if !m.lastSendTime.IsZero() {
		elapsed := time.Since(m.lastSendTime)
		if elapsed < sendInterval {
			select {
			case <-time.After(sendInterval - elapsed):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		m.sender, to, subject, body,
	)

	gmailMessage := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(message)),
	}

	_, err := m.service.Users.Messages.Send("me", gmailMessage).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.lastSendTime = time.Now()

	return nil
}
