package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"warehouse-picking-backend/pkg/logger"
)

// SMTPConfig is resolved from the stored notifier settings at send time,
// so credential changes take effect without a restart.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool // STARTTLS after plain connect
	UseSSL   bool // implicit TLS from the first byte
}

// Sender delivers a plain-text message to a set of recipients.
type Sender interface {
	Send(ctx context.Context, cfg SMTPConfig, to []string, subject, body string) error
}

type smtpSender struct{}

func NewSMTPSender() Sender {
	return &smtpSender{}
}

func (s *smtpSender) Send(ctx context.Context, cfg SMTPConfig, to []string, subject, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		cfg.From, strings.Join(to, ", "), subject, body))

	var err error
	if cfg.UseSSL {
		err = s.sendImplicitTLS(cfg, addr, to, msg)
	} else {
		err = s.sendPlain(cfg, addr, to, msg)
	}

	if err != nil {
		logger.Error("failed to send email", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.Info("email sent", map[string]interface{}{
		"recipients": len(to),
		"subject":    subject,
	})
	return nil
}

// sendPlain connects in cleartext; smtp.SendMail upgrades with STARTTLS
// automatically when the server advertises it.
func (s *smtpSender) sendPlain(cfg SMTPConfig, addr string, to []string, msg []byte) error {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return smtp.SendMail(addr, auth, cfg.From, to, msg)
}

// sendImplicitTLS opens a TLS connection before speaking SMTP (port 465 style).
func (s *smtpSender) sendImplicitTLS(cfg SMTPConfig, addr string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: cfg.Host})
	if err != nil {
		return fmt.Errorf("tls dial: %w", err)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if cfg.Username != "" {
		auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(cfg.From); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}

	return client.Quit()
}
