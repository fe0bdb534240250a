package notification

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"barangaylink/models"
)

// ErrInvalidRecipient is returned when a notification has no deliverable
// address.
var ErrInvalidRecipient = errors.New("notification has no recipient")

// getShadowAddress returns the only allowed recipient when EMAIL_MODE=shadow.
// All emails go here.
func getShadowAddress() string {
	if os.Getenv("EMAIL_MODE") != "shadow" {
		return ""
	}
	addr := os.Getenv("EMAIL_SHADOW_ADDRESS")
	if addr == "" {
		addr = "barangaylink.dev@gmail.com"
	}
	return addr
}

// EmailSender delivers notifications as plain-text email. If EMAIL_MODE=shadow,
// the recipient is forced to EMAIL_SHADOW_ADDRESS. If SENDGRID_API_KEY is set,
// uses SendGrid; otherwise it logs and succeeds so a dev setup works without
// credentials. Retries are the caller's concern.
type EmailSender struct {
	apiKey     string
	shadowAddr string
	client     *http.Client
}

// NewEmailSender creates an email sender (reads EMAIL_MODE,
// EMAIL_SHADOW_ADDRESS, SENDGRID_API_KEY from env).
func NewEmailSender() *EmailSender {
	return &EmailSender{
		apiKey:     os.Getenv("SENDGRID_API_KEY"),
		shadowAddr: getShadowAddress(),
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Send delivers one notification. In shadow mode the recipient is rewritten
// before sending.
func (s *EmailSender) Send(n *models.Notification) error {
	recipient := n.Recipient
	if s.shadowAddr != "" {
		recipient = s.shadowAddr
	}
	if recipient == "" {
		return ErrInvalidRecipient
	}
	if s.apiKey == "" {
		log.Printf("[email] no API key configured; skipping send of %q to %s", n.Subject, recipient)
		return nil
	}
	return s.sendViaSendGrid(recipient, n)
}

const sendGridURL = "https://api.sendgrid.com/v3/mail/send"

func (s *EmailSender) sendViaSendGrid(recipient string, n *models.Notification) error {
	fromEmail := os.Getenv("SENDGRID_FROM_EMAIL")
	if fromEmail == "" {
		fromEmail = "noreply@barangaylink.ph"
	}
	fromName := os.Getenv("SENDGRID_FROM_NAME")
	if fromName == "" {
		fromName = "BarangayLink"
	}

	body := map[string]interface{}{
		"personalizations": []map[string]interface{}{
			{"to": []map[string]interface{}{{"email": recipient}}},
		},
		"from":    map[string]string{"email": fromEmail, "name": fromName},
		"subject": n.Subject,
		"content": []map[string]string{{"type": "text/plain", "value": n.Body}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to build email payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, sendGridURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid status %d", resp.StatusCode)
	}
	return nil
}
