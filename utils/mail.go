package utils

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a single rendered message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

func RenderTemplate(name string, data any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return body.String(), nil
}

const defaultSMTPTimeout = 30 * time.Second

// SMTPMailer delivers over SMTP, upgrading to TLS when the server offers
// STARTTLS. Timeout bounds the whole exchange; an earlier context deadline
// or cancellation cuts it short.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

func (m SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	timeout := m.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}
	deadline := time.Now().Add(timeout)

	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(m.Host, strconv.Itoa(m.Port)))
	if err != nil {
		return m.sendError(ctx, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(deadline); err != nil {
		return m.sendError(ctx, err)
	}
	// Cancellation unblocks any pending read or write on the connection.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if err := m.deliver(conn, msg); err != nil {
		return m.sendError(ctx, err)
	}
	return nil
}

func (m SMTPMailer) deliver(conn net.Conn, msg Message) error {
	client, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.Host}); err != nil {
			return err
		}
	}
	if m.Username != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(smtp.PlainAuth("", m.Username, m.Password, m.Host)); err != nil {
				return err
			}
		}
	}

	if err := client.Mail(m.From); err != nil {
		return err
	}
	if err := client.Rcpt(msg.To); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		m.From,
		msg.To,
		msg.Subject,
		msg.Body,
	)
	if _, err := w.Write([]byte(message)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// sendError reports the context error when cancellation caused the failure.
func (m SMTPMailer) sendError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("failed to send email: %w", ctxErr)
	}
	return fmt.Errorf("failed to send email: %w", err)
}

// HTTPMailer posts messages to a transactional mail API.
type HTTPMailer struct {
	client *resty.Client
	url    string
	from   string
}

func NewHTTPMailer(url, apiKey, from string) *HTTPMailer {
	client := resty.New().
		SetTimeout(15*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &HTTPMailer{client: client, url: url, from: from}
}

func (m *HTTPMailer) Send(ctx context.Context, msg Message) error {
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"from":    m.from,
			"to":      msg.To,
			"subject": msg.Subject,
			"html":    msg.Body,
		}).
		Post(m.url)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("mail api responded with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return nil
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	Log *logrus.Logger
}

func (m LogMailer) Send(_ context.Context, msg Message) error {
	m.Log.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("Email not delivered, log transport active")
	return nil
}
