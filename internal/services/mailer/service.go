package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/common"
	"github.com/ternarybob/arbor"
)

// ErrNotConfigured is returned when SMTP host or sender is missing
var ErrNotConfigured = errors.New("mail is not configured")

const implicitTLSPort = 465

// Service sends email over SMTP. Messages are composed with go-message.
type Service struct {
	config  common.MailConfig
	timeout time.Duration
	logger  arbor.ILogger
	now     func() time.Time
}

// NewService creates a new mailer service
func NewService(config common.MailConfig, logger arbor.ILogger) *Service {
	timeout, err := common.ParseDuration(config.Timeout, 30*time.Second)
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		config:  config,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// IsConfigured returns true when a host and sender address are set
func (s *Service) IsConfigured() bool {
	return s.config.SMTPHost != "" && s.config.SMTPFrom != ""
}

// SendEmail sends a plain text email
func (s *Service) SendEmail(ctx context.Context, to, subject, body string) error {
	return s.send(ctx, to, subject, "", body)
}

// SendHTMLEmail sends an HTML email with an optional plain text alternative
func (s *Service) SendHTMLEmail(ctx context.Context, to, subject, htmlBody, textBody string) error {
	return s.send(ctx, to, subject, htmlBody, textBody)
}

func (s *Service) send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}

	msg, err := s.buildMessage(to, subject, htmlBody, textBody)
	if err != nil {
		return fmt.Errorf("failed to compose message: %w", err)
	}

	if err := s.deliver(ctx, to, msg); err != nil {
		s.logger.Error().Err(err).Str("to", to).Str("subject", subject).Msg("Failed to send email")
		return err
	}

	s.logger.Info().Str("to", to).Str("subject", subject).Msg("Email sent")
	return nil
}

// buildMessage renders an RFC 5322 message. With both bodies set the
// result is multipart/alternative, text first.
func (s *Service) buildMessage(to, subject, htmlBody, textBody string) ([]byte, error) {
	var h mail.Header
	h.SetDate(s.now())
	h.SetSubject(subject)
	h.SetAddressList("From", []*mail.Address{{Name: s.config.SMTPFromName, Address: s.config.SMTPFrom}})
	h.SetAddressList("To", []*mail.Address{{Address: to}})
	if err := h.GenerateMessageID(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	if htmlBody == "" || textBody == "" {
		contentType, body := "text/plain", textBody
		if htmlBody != "" {
			contentType, body = "text/html", htmlBody
		}
		h.SetContentType(contentType, map[string]string{"charset": "utf-8"})
		h.Set("Content-Transfer-Encoding", "quoted-printable")

		w, err := mail.CreateSingleInlineWriter(&buf, h)
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(w, body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	mw, err := mail.CreateInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	for _, part := range []struct{ contentType, body string }{
		{"text/plain", textBody},
		{"text/html", htmlBody},
	} {
		var ph mail.InlineHeader
		ph.SetContentType(part.contentType, map[string]string{"charset": "utf-8"})
		ph.Set("Content-Transfer-Encoding", "quoted-printable")

		w, err := mw.CreatePart(ph)
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(w, part.body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deliver opens an SMTP session: implicit TLS on 465, STARTTLS when
// smtp_use_tls is set on other ports, plain otherwise.
func (s *Service) deliver(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(s.config.SMTPHost, strconv.Itoa(s.config.SMTPPort))
	tlsConfig := &tls.Config{ServerName: s.config.SMTPHost}
	dialer := &net.Dialer{Timeout: s.timeout}

	var conn net.Conn
	var err error
	if s.config.SMTPPort == implicitTLSPort {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	_ = conn.SetDeadline(time.Now().Add(s.timeout))

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if s.config.SMTPUseTLS && s.config.SMTPPort != implicitTLSPort {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return fmt.Errorf("SMTP server does not support STARTTLS")
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if s.config.SMTPUsername != "" {
		auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(s.config.SMTPFrom); err != nil {
		return fmt.Errorf("failed to set mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set mail recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}
