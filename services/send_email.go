package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rpupo63/melba-site-backend/errs"
)

const resendAPIBase = "https://api.resend.com"

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// ResendMailer sends email using the Resend API.
type ResendMailer struct {
	apiKey  string
	from    string
	baseURL string
	client  *http.Client
}

type ResendOption func(*ResendMailer)

// WithResendBaseURL points the mailer at another API host.
func WithResendBaseURL(url string) ResendOption {
	return func(m *ResendMailer) {
		m.baseURL = strings.TrimRight(url, "/")
	}
}

func WithResendHTTPClient(c *http.Client) ResendOption {
	return func(m *ResendMailer) {
		m.client = c
	}
}

// NewResendMailer requires RESEND_API_KEY and RESEND_FROM_EMAIL
// (e.g. "Melba Community Center <hello@example.org>").
func NewResendMailer(apiKey, from string, opts ...ResendOption) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY is required: %w", errs.ErrMailerMisconfigured)
	}
	if from == "" {
		return nil, fmt.Errorf("RESEND_FROM_EMAIL is required: %w", errs.ErrMailerMisconfigured)
	}
	m := &ResendMailer{
		apiKey:  apiKey,
		from:    from,
		baseURL: resendAPIBase,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *ResendMailer) Send(ctx context.Context, env Envelope) error {
	payload := ResendEmailRequest{
		From:    m.from,
		To:      []string{env.To},
		Subject: env.Subject,
		Html:    env.HTML,
		Text:    env.Text,
		ReplyTo: env.ReplyTo,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		log.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		log.Debug().Str("emailId", emailResponse.ID).Msg("Resend accepted email")
	}
	return nil
}
