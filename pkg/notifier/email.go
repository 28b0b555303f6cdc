package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// EmailMessage is what the email channel hands to the provider: a rendered
// HTML body plus a plain-text alternative.
type EmailMessage struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// EmailSender delivers one message and returns the provider-assigned
// message id.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) (string, error)
}

// SMTPEmailSender sends over implicit-TLS SMTP (port 465 style). Calls run
// through a circuit breaker so a dead relay fails fast instead of holding
// every dispatch for the full dial timeout.
type SMTPEmailSender struct {
	smtpHost string
	smtpPort string
	username string
	password string
	from     string
	cb       *gobreaker.CircuitBreaker
	log      *zap.Logger
}

func NewSMTPEmailSender(host, port, user, pass, from string, log *zap.Logger) *SMTPEmailSender {
	settings := gobreaker.Settings{
		Name:        "smtp-relay",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	}
	return &SMTPEmailSender{
		smtpHost: host,
		smtpPort: port,
		username: user,
		password: pass,
		from:     from,
		cb:       gobreaker.NewCircuitBreaker(settings),
		log:      log,
	}
}

func (e *SMTPEmailSender) Send(ctx context.Context, msg EmailMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), e.smtpHost)

	result, err := e.cb.Execute(func() (interface{}, error) {
		if err := e.deliver(messageID, msg); err != nil {
			return nil, err
		}
		return messageID, nil
	})
	if err != nil {
		e.log.Warn("email send failed",
			zap.String("to", msg.To),
			zap.Error(err))
		return "", err
	}

	return result.(string), nil
}

func (e *SMTPEmailSender) deliver(messageID string, msg EmailMessage) error {
	boundary := "alt-" + uuid.New().String()

	raw := []byte(
		fmt.Sprintf("From: %s\r\n", e.from) +
			fmt.Sprintf("To: %s\r\n", msg.To) +
			fmt.Sprintf("Subject: %s\r\n", msg.Subject) +
			fmt.Sprintf("Message-ID: %s\r\n", messageID) +
			"MIME-Version: 1.0\r\n" +
			fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n", boundary) +
			"\r\n" +
			fmt.Sprintf("--%s\r\n", boundary) +
			"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
			"\r\n" +
			msg.TextBody + "\r\n" +
			fmt.Sprintf("--%s\r\n", boundary) +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			msg.HTMLBody + "\r\n" +
			fmt.Sprintf("--%s--\r\n", boundary),
	)

	serverAddr := e.smtpHost + ":" + e.smtpPort

	// Implicit TLS for port 465
	tlsConfig := &tls.Config{
		ServerName: e.smtpHost,
	}

	conn, err := tls.Dial("tcp", serverAddr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, e.smtpHost)
	if err != nil {
		return err
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", e.username, e.password, e.smtpHost)
	if err := client.Auth(auth); err != nil {
		return err
	}

	if err := client.Mail(e.from); err != nil {
		return err
	}
	if err := client.Rcpt(msg.To); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	return w.Close()
}
