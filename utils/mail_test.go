package utils

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOrderConfirmation(t *testing.T) {
	body, err := RenderTemplate("order_confirmation.html", map[string]any{
		"Name":    "Ada",
		"OrderID": 12,
		"Total":   "50.00",
		"Address": "1 Main St",
		"Items": []map[string]any{
			{"Title": "Go in Action", "Price": "10.00", "Quantity": 5},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Ada")
	assert.Contains(t, body, "<strong>Order ID:</strong> 12")
	assert.Contains(t, body, "$50.00")
	assert.Contains(t, body, "1 Main St")
	assert.Contains(t, body, "Go in Action - $10.00 x 5")
}

func TestRenderEscapesInput(t *testing.T) {
	body, err := RenderTemplate("reset_password.html", map[string]any{
		"Name":     "<script>",
		"ResetURL": "http://localhost:5173/reset-password?token=abc",
	})
	require.NoError(t, err)

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "reset-password?token=abc")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := RenderTemplate("missing.html", nil)
	assert.Error(t, err)
}

func TestHTTPMailerSend(t *testing.T) {
	var got map[string]string
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	mailer := NewHTTPMailer(srv.URL, "api-key", "shop@example.com")
	err := mailer.Send(context.Background(), Message{To: "ada@example.com", Subject: "Hi", Body: "<p>Hello</p>"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer api-key", auth)
	assert.Equal(t, "shop@example.com", got["from"])
	assert.Equal(t, "ada@example.com", got["to"])
	assert.Equal(t, "Hi", got["subject"])
	assert.Equal(t, "<p>Hello</p>", got["html"])
}

func TestHTTPMailerReportsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	mailer := NewHTTPMailer(srv.URL, "", "shop@example.com")
	err := mailer.Send(context.Background(), Message{To: "ada@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestSMTPMailerHonoursContext(t *testing.T) {
	mailer := SMTPMailer{Host: "192.0.2.1", Port: 25, From: "shop@example.com"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := mailer.Send(ctx, Message{To: "ada@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}

func smtpMailerFor(t *testing.T, addr string) SMTPMailer {
	t.Helper()
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return SMTPMailer{Host: host, Port: p, From: "shop@example.com"}
}

// startSMTPServer accepts one connection and speaks just enough SMTP to take
// a message without TLS or AUTH.
func startSMTPServer(t *testing.T) (string, <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		tp := textproto.NewConn(conn)
		_ = tp.PrintfLine("220 localhost ESMTP")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			switch {
			case strings.HasPrefix(line, "EHLO"):
				_ = tp.PrintfLine("250-localhost")
				_ = tp.PrintfLine("250 8BITMIME")
			case line == "DATA":
				_ = tp.PrintfLine("354 Go ahead")
				lines, err := tp.ReadDotLines()
				if err != nil {
					return
				}
				received <- strings.Join(lines, "\n")
				_ = tp.PrintfLine("250 Queued")
			case line == "QUIT":
				_ = tp.PrintfLine("221 Bye")
				return
			default:
				_ = tp.PrintfLine("250 OK")
			}
		}
	}()
	return ln.Addr().String(), received
}

func TestSMTPMailerDelivers(t *testing.T) {
	addr, received := startSMTPServer(t)
	mailer := smtpMailerFor(t, addr)

	err := mailer.Send(context.Background(), Message{To: "ada@example.com", Subject: "Hello", Body: "<p>Hi</p>"})
	require.NoError(t, err)

	select {
	case data := <-received:
		assert.Contains(t, data, "To: ada@example.com")
		assert.Contains(t, data, "Subject: Hello")
		assert.Contains(t, data, "<p>Hi</p>")
	case <-time.After(2 * time.Second):
		t.Fatal("message never reached the server")
	}
}

func TestSMTPMailerAbandonsSilentServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	closed := make(chan struct{})
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		// Never greet; wait for the client to hang up.
		_, _ = io.Copy(io.Discard, conn)
		close(closed)
	}()

	mailer := smtpMailerFor(t, ln.Addr().String())
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = mailer.Send(ctx, Message{To: "ada@example.com"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("connection left open after the context expired")
	}
}

func TestLogMailer(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	assert.NoError(t, LogMailer{Log: log}.Send(context.Background(), Message{To: "ada@example.com"}))
}
