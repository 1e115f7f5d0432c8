package email

import (
	"context"
	"fmt"
	"log"
	"net/smtp"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/config"
)

// Sender delivers a fully formatted RFC 822 message.
type Sender interface {
	Send(ctx context.Context, to []string, subject string, rawMessage []byte) error
}

// SMTPSender implements the Sender interface using Go's net/smtp package.
type SMTPSender struct {
	from string
	auth smtp.Auth
	addr string
}

// NewSMTPSender creates a new SMTPSender, or a LoggingSender when no SMTP host is configured.
func NewSMTPSender(cfg *config.Config) Sender {
	if cfg.SmtpHost == "" {
		log.Println("SMTP host not configured, using logging email sender.")
		return &LoggingSender{from: cfg.SmtpFromAddress}
	}

	var auth smtp.Auth
	if cfg.SmtpUsername != "" {
		auth = smtp.PlainAuth("", cfg.SmtpUsername, cfg.SmtpPassword, cfg.SmtpHost)
	}

	return &SMTPSender{
		from: cfg.SmtpFromAddress,
		auth: auth,
		addr: fmt.Sprintf("%s:%d", cfg.SmtpHost, cfg.SmtpPort),
	}
}

// Send sends an email using SMTP. net/smtp has no context support, so ctx is
// only checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := smtp.SendMail(s.addr, s.auth, s.from, to, rawMessage); err != nil {
		log.Printf("ERROR: Failed to send email via SMTP to %v: %v", to, err)
		return fmt.Errorf("smtp error: %w", err)
	}
	log.Printf("Email sent via SMTP to %v (Subject: %s)", to, subject)
	return nil
}

// LoggingSender just logs the message. Used in development.
type LoggingSender struct {
	from string
}

func NewLoggingSender(from string) *LoggingSender {
	return &LoggingSender{from: from}
}

func (s *LoggingSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	log.Printf("--- Sending Email (Logged) ---")
	log.Printf("To: %v", to)
	log.Printf("From: %s", s.from)
	log.Printf("Subject: %s", subject)
	log.Println(string(rawMessage))
	log.Println("--- End Email ---")
	return nil
}
