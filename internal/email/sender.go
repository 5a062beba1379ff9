package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Config holds SMTP delivery settings. With Enabled false the sender logs
// instead of delivering, which is the development default.
type Config struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// AddressResolver maps a user ID to an email address. Kept behind a function
// so the workflow core stays ignorant of where accounts live.
type AddressResolver func(ctx context.Context, userID int64) (string, error)

// NullResolver returns a resolver that fails for every user. Used when no
// account directory is wired in; delivery stays log-only in that setup.
func NullResolver() AddressResolver {
	return func(ctx context.Context, userID int64) (string, error) {
		return "", fmt.Errorf("no address directory configured for user %d", userID)
	}
}

// Sender delivers notification emails over SMTP.
type Sender struct {
	cfg     Config
	resolve AddressResolver
	logger  *zap.Logger
}

// NewSender creates a new email sender
func NewSender(cfg Config, resolve AddressResolver, logger *zap.Logger) *Sender {
	return &Sender{
		cfg:     cfg,
		resolve: resolve,
		logger:  logger,
	}
}

// Send delivers one email to the user's resolved address.
func (s *Sender) Send(ctx context.Context, userID int64, subject, body string) error {
	if !s.cfg.Enabled {
		s.logger.Info("Email delivery disabled, logging instead",
			zap.Int64("user_id", userID),
			zap.String("subject", subject))
		return nil
	}

	to, err := s.resolve(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve address for user %d: %w", userID, err)
	}

	msg := s.buildMessage(to, subject, body)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		s.logger.Error("Failed to send email",
			zap.Int64("user_id", userID),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("Email sent", zap.Int64("user_id", userID), zap.String("subject", subject))
	return nil
}

// buildMessage assembles the RFC 5322 message bytes.
func (s *Sender) buildMessage(to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n\r\n--\nInternship Management Platform\n")
	return []byte(b.String())
}
