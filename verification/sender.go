package verification

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/smtp"
	"net/url"

	"github.com/goliatone/go-errors"
	"github.com/logistero/go-userauth"
)

// Sender delivers a verification code to a normalized identifier.
type Sender interface {
	Send(ctx context.Context, identifier, code string) error
}

// MockSMSSender logs the code instead of sending it. Used in dev and
// test environments where no gateway is configured.
type MockSMSSender struct {
	Logger userauth.Logger
}

var _ Sender = (*MockSMSSender)(nil)

func (m MockSMSSender) Send(ctx context.Context, identifier, code string) error {
	logger := m.Logger
	if logger == nil {
		logger = userauth.DefaultLogger()
	}
	logger.Info("mock sms to %s: your verification code is %s", identifier, code)
	return nil
}

// MockEmailSender logs the code instead of sending it.
type MockEmailSender struct {
	Logger userauth.Logger
}

var _ Sender = (*MockEmailSender)(nil)

func (m MockEmailSender) Send(ctx context.Context, identifier, code string) error {
	logger := m.Logger
	if logger == nil {
		logger = userauth.DefaultLogger()
	}
	logger.Info("mock email to %s: your verification code is %s", identifier, code)
	return nil
}

// HTTPSMSSender delivers codes through an smsc style HTTP gateway: one
// GET per message with login, password, phone and text as query
// parameters.
type HTTPSMSSender struct {
	baseURL  string
	login    string
	password string
	client   *http.Client
	template string
}

var _ Sender = (*HTTPSMSSender)(nil)

type HTTPSMSSenderOption func(*HTTPSMSSender)

func WithHTTPClient(client *http.Client) HTTPSMSSenderOption {
	return func(s *HTTPSMSSender) {
		if client != nil {
			s.client = client
		}
	}
}

// WithMessageTemplate sets the message text; %s is replaced with the
// code.
func WithMessageTemplate(template string) HTTPSMSSenderOption {
	return func(s *HTTPSMSSender) {
		if template != "" {
			s.template = template
		}
	}
}

func NewHTTPSMSSender(baseURL, login, password string, opts ...HTTPSMSSenderOption) *HTTPSMSSender {
	sender := &HTTPSMSSender{
		baseURL:  baseURL,
		login:    login,
		password: password,
		client:   http.DefaultClient,
		template: "Your verification code is %s",
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sender)
		}
	}

	return sender
}

func (s *HTTPSMSSender) Send(ctx context.Context, identifier, code string) error {
	query := url.Values{}
	query.Set("login", s.login)
	query.Set("psw", s.password)
	query.Set("phones", identifier)
	query.Set("mes", fmt.Sprintf(s.template, code))
	query.Set("fmt", "3")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to build sms gateway request")
	}

	res, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "sms gateway request failed")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return errors.New("sms gateway rejected message", errors.CategoryOperation).
			WithMetadata(map[string]any{
				"status": res.StatusCode,
				"body":   string(body),
			})
	}

	return nil
}

// SMTPEmailSender delivers codes over plain SMTP with auth.
type SMTPEmailSender struct {
	addr     string
	from     string
	auth     smtp.Auth
	subject  string
	template string
}

var _ Sender = (*SMTPEmailSender)(nil)

type SMTPEmailSenderOption func(*SMTPEmailSender)

func WithSubject(subject string) SMTPEmailSenderOption {
	return func(s *SMTPEmailSender) {
		if subject != "" {
			s.subject = subject
		}
	}
}

func WithBodyTemplate(template string) SMTPEmailSenderOption {
	return func(s *SMTPEmailSender) {
		if template != "" {
			s.template = template
		}
	}
}

func NewSMTPEmailSender(addr, from string, auth smtp.Auth, opts ...SMTPEmailSenderOption) *SMTPEmailSender {
	sender := &SMTPEmailSender{
		addr:     addr,
		from:     from,
		auth:     auth,
		subject:  "Verification code",
		template: "Your verification code is %s",
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sender)
		}
	}

	return sender
}

func (s *SMTPEmailSender) Send(ctx context.Context, identifier, code string) error {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", identifier)
	fmt.Fprintf(&msg, "Subject: %s\r\n", s.subject)
	msg.WriteString("\r\n")
	fmt.Fprintf(&msg, s.template+"\r\n", code)

	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{identifier}, msg.Bytes()); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "smtp send failed")
	}

	return nil
}
