package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmlTemplate "html/template"
	textTemplate "text/template"
	"time"

	"github.com/wneessen/go-mail"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	defaultTimeout = 10 * time.Second
	sendAttempts   = 3
)

// MailClient is the part of *mail.Client the mailer needs.
type MailClient interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Sender interface {
	Send(ctx context.Context, recipient, template string, data any) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	SSL      bool
	TLS      bool
}

type Mailer struct {
	client     MailClient
	from       string
	fromName   string
	retryDelay time.Duration
}

func NewMailer(cfg Config) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithTimeout(defaultTimeout),
		mail.WithPort(cfg.Port),
	}

	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	switch {
	case cfg.SSL:
		opts = append(opts, mail.WithSSL())
	case cfg.TLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return NewMailerWithClient(client, cfg.From, cfg.FromName), nil
}

func NewMailerWithClient(client MailClient, from, fromName string) *Mailer {
	return &Mailer{
		client:     client,
		from:       from,
		fromName:   fromName,
		retryDelay: 2 * time.Second,
	}
}

// Send renders templates/<template>.tmpl and delivers it. The template file
// defines "subject", "plainBody" and optionally "htmlBody".
func (m *Mailer) Send(ctx context.Context, recipient, template string, data any) error {
	msg, err := m.buildMessage(recipient, template, data)
	if err != nil {
		return err
	}

	for attempt := 1; attempt <= sendAttempts; attempt++ {
		err = m.client.DialAndSendWithContext(ctx, msg)
		if err == nil {
			return nil
		}

		if attempt == sendAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.retryDelay):
		}
	}

	return fmt.Errorf("failed to send %s email after %d attempts: %w", template, sendAttempts, err)
}

func (m *Mailer) buildMessage(recipient, template string, data any) (*mail.Msg, error) {
	pattern := "templates/" + template + ".tmpl"

	msg := mail.NewMsg()
	if err := msg.To(recipient); err != nil {
		return nil, err
	}

	if m.fromName != "" {
		if err := msg.FromFormat(m.fromName, m.from); err != nil {
			return nil, err
		}
	} else if err := msg.From(m.from); err != nil {
		return nil, err
	}

	ts, err := textTemplate.New("").ParseFS(templateFS, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email template %s: %w", template, err)
	}

	subject := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(subject, "subject", data); err != nil {
		return nil, err
	}
	msg.Subject(subject.String())

	plainBody := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(plainBody, "plainBody", data); err != nil {
		return nil, err
	}
	msg.SetBodyString(mail.TypeTextPlain, plainBody.String())

	if ts.Lookup("htmlBody") != nil {
		hs, err := htmlTemplate.New("").ParseFS(templateFS, pattern)
		if err != nil {
			return nil, err
		}

		htmlBody := new(bytes.Buffer)
		if err := hs.ExecuteTemplate(htmlBody, "htmlBody", data); err != nil {
			return nil, err
		}
		msg.AddAlternativeString(mail.TypeTextHTML, htmlBody.String())
	}

	return msg, nil
}
