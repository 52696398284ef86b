package mailer

import (
	"bufio"
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func testConfig() common.MailConfig {
	return common.MailConfig{
		SMTPHost:     "127.0.0.1",
		SMTPPort:     2525,
		SMTPFrom:     "alerts@example.com",
		SMTPFromName: "Log Analyzer",
		Timeout:      "5s",
	}
}

func TestIsConfigured(t *testing.T) {
	svc := NewService(common.MailConfig{}, arbor.NewLogger())
	assert.False(t, svc.IsConfigured())
	assert.ErrorIs(t, svc.SendEmail(context.Background(), "a@x.com", "s", "b"), ErrNotConfigured)

	svc = NewService(testConfig(), arbor.NewLogger())
	assert.True(t, svc.IsConfigured())
}

func TestBuildMessage_Alternative(t *testing.T) {
	svc := NewService(testConfig(), arbor.NewLogger())

	raw, err := svc.buildMessage("admin@example.com", "[ALERT] test", "<p>html body</p>", "text body")
	require.NoError(t, err)

	reader, err := mail.CreateReader(strings.NewReader(string(raw)))
	require.NoError(t, err)

	subject, err := reader.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "[ALERT] test", subject)

	from, err := reader.Header.AddressList("From")
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, "alerts@example.com", from[0].Address)

	var contentTypes, bodies []string
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		header, ok := part.Header.(*mail.InlineHeader)
		require.True(t, ok)
		contentType, _, err := header.ContentType()
		require.NoError(t, err)

		body, err := io.ReadAll(part.Body)
		require.NoError(t, err)

		contentTypes = append(contentTypes, contentType)
		bodies = append(bodies, string(body))
	}

	assert.Equal(t, []string{"text/plain", "text/html"}, contentTypes)
	assert.Equal(t, []string{"text body", "<p>html body</p>"}, bodies)
}

func TestBuildMessage_SinglePart(t *testing.T) {
	svc := NewService(testConfig(), arbor.NewLogger())

	raw, err := svc.buildMessage("admin@example.com", "plain", "", "just text")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Content-Type: text/plain")
	assert.Contains(t, string(raw), "just text")
	assert.NotContains(t, string(raw), "multipart")
}

// startFakeSMTP accepts one session without TLS or auth and returns the DATA payload
func startFakeSMTP(t *testing.T) (int, <-chan string) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	data := make(chan string, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

		r := bufio.NewReader(conn)
		write := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }
		write("220 fake ESMTP")

		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				write("250 fake")
			case strings.HasPrefix(cmd, "MAIL"), strings.HasPrefix(cmd, "RCPT"):
				write("250 OK")
			case cmd == "DATA":
				write("354 go ahead")
				var body strings.Builder
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					body.WriteString(l)
				}
				data <- body.String()
				write("250 queued")
			case cmd == "QUIT":
				write("221 bye")
				return
			default:
				write("500 unknown")
			}
		}
	}()

	return listener.Addr().(*net.TCPAddr).Port, data
}

func TestSendHTMLEmail_DeliversOverSMTP(t *testing.T) {
	port, data := startFakeSMTP(t)

	config := testConfig()
	config.SMTPPort = port
	svc := NewService(config, arbor.NewLogger())

	err := svc.SendHTMLEmail(context.Background(), "admin@example.com", "[ALERT] Error Threshold Exceeded", "<b>alert</b>", "alert")
	require.NoError(t, err)

	select {
	case payload := <-data:
		assert.Contains(t, payload, "Subject: [ALERT] Error Threshold Exceeded")
		assert.Contains(t, payload, "multipart/alternative")
	case <-time.After(5 * time.Second):
		t.Fatal("no message received on port " + strconv.Itoa(port))
	}
}

func TestSendEmail_ConnectionRefused(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	config := testConfig()
	config.SMTPPort = port
	svc := NewService(config, arbor.NewLogger())

	assert.Error(t, svc.SendEmail(context.Background(), "admin@example.com", "s", "b"))
}
