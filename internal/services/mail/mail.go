// File: internal/services/mail/mail.go
package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c *Config) Configured() bool {
	return c.Host != "" && c.From != ""
}

// SendError wraps a failed delivery. Permanent errors are SMTP 5xx replies.
type SendError struct {
	Permanent bool
	Cause     error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("mail delivery failed: %v", e.Cause)
}

func (e *SendError) Unwrap() error { return e.Cause }

func (e *SendError) Retryable() bool { return !e.Permanent }

// Sender delivers verification codes by email.
type Sender interface {
	SendVerificationCode(ctx context.Context, to, code string) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender sends plain-text mail through an SMTP relay.
type SMTPSender struct {
	config Config
	send   sendFunc
}

func NewSMTPSender(config Config) *SMTPSender {
	return &SMTPSender{config: config, send: smtp.SendMail}
}

func (s *SMTPSender) SendVerificationCode(ctx context.Context, to, code string) error {
	if !s.config.Configured() {
		return &SendError{Permanent: true, Cause: errors.New("SMTP_HOST and SMTP_FROM are required")}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := BuildMessage(s.config.From, to, "Your LinkSports verification code",
		fmt.Sprintf("Your verification code is %s.\r\nIt expires in 10 minutes.\r\n", code))

	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	if err := s.send(addr, auth, s.config.From, []string{to}, msg); err != nil {
		return &SendError{Permanent: isPermanent(err), Cause: err}
	}
	return nil
}

// BuildMessage renders an RFC 5322 message with CRLF line endings.
func BuildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

func isPermanent(err error) bool {
	var tpErr *textproto.Error
	return errors.As(err, &tpErr) && tpErr.Code >= 500
}

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
}

// LogSender writes codes to the log instead of mailing them.
type LogSender struct {
	logger Logger
}

func NewLogSender(logger Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendVerificationCode(ctx context.Context, to, code string) error {
	s.logger.Info("email delivery skipped, SMTP not configured", "email", to[:min(4, len(to))]+"****", "code", code)
	return nil
}
