package services

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rpupo63/melba-site-backend/errs"
)

// Envelope is one outgoing message.
type Envelope struct {
	To      string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
}

type Mailer interface {
	Send(ctx context.Context, env Envelope) error
}

// LogMailer only logs. It is the default transport for local runs.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, env Envelope) error {
	log.Info().
		Str("to", redactEmail(env.To)).
		Str("subject", env.Subject).
		Int("bytes", len(env.HTML)).
		Msg("mail transport is log, message not sent")
	return nil
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	// From is the envelope sender; FromName only decorates the header.
	From     string
	FromName string
	// Secure dials TLS directly instead of upgrading with STARTTLS. Port
	// 465 implies it.
	Secure bool
}

// SMTPMailer sends multipart/alternative messages over SMTP, either on an
// implicit TLS connection or upgrading to STARTTLS when the server offers it.
type SMTPMailer struct {
	cfg     SMTPConfig
	rootCAs *x509.CertPool
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("smtp: host and from are required: %w", errs.ErrMailerMisconfigured)
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPMailer{cfg: cfg}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, env Envelope) error {
	body, err := m.compose(env)
	if err != nil {
		return err
	}

	conn, err := m.dial(ctx)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() { _ = c.Close() }()

	if ok, _ := c.Extension("STARTTLS"); ok && !m.implicitTLS() {
		if err := c.StartTLS(m.tlsConfig()); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if m.cfg.User != "" && m.cfg.Password != "" {
		if err := c.Auth(smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	if err := c.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := c.Rcpt(env.To); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return c.Quit()
}

func (m *SMTPMailer) implicitTLS() bool {
	return m.cfg.Secure || m.cfg.Port == 465
}

func (m *SMTPMailer) tlsConfig() *tls.Config {
	return &tls.Config{ServerName: m.cfg.Host, RootCAs: m.rootCAs, MinVersion: tls.VersionTLS12}
}

func (m *SMTPMailer) dial(ctx context.Context) (net.Conn, error) {
	addr := net.JoinHostPort(m.cfg.Host, fmt.Sprint(m.cfg.Port))
	if m.implicitTLS() {
		d := tls.Dialer{Config: m.tlsConfig()}
		return d.DialContext(ctx, "tcp", addr)
	}
	var d net.Dialer
	return d.DialContext(ctx, "tcp", addr)
}

func (m *SMTPMailer) compose(env Envelope) ([]byte, error) {
	from := m.cfg.From
	if strings.TrimSpace(m.cfg.FromName) != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)
	}

	var b strings.Builder
	mw := multipart.NewWriter(&b)
	headers := []string{
		"From: " + sanitizeHeader(from),
		"To: " + sanitizeHeader(env.To),
		"Subject: " + sanitizeHeader(env.Subject),
		"Date: " + time.Now().Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: multipart/alternative; boundary=" + mw.Boundary(),
	}
	if env.ReplyTo != "" {
		headers = append(headers, "Reply-To: "+sanitizeHeader(env.ReplyTo))
	}
	b.WriteString(strings.Join(headers, "\r\n") + "\r\n\r\n")

	for _, part := range []struct{ contentType, body string }{
		{"text/plain; charset=UTF-8", env.Text},
		{"text/html; charset=UTF-8", env.HTML},
	} {
		if part.body == "" {
			continue
		}
		pw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.contentType},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(pw)
		if _, err := qp.Write([]byte(part.body)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", "")
}
