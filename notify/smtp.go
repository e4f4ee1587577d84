package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/poiesic/lostfound/core"
	"github.com/wneessen/go-mail"
)

// AlertSubject is the subject line of every match alert.
const AlertSubject = "Good News! Potential Match Found"

var alertTemplate = template.Must(template.New("alert").Parse(`<p>Hello,</p>
<p>An item matching your lost item <strong>{{.LostTitle}}</strong> has been reported found.</p>
<ul>
<li><strong>Item:</strong> {{.Found.Title}}</li>
<li><strong>Location:</strong> {{.Found.Location}}</li>
<li><strong>Description:</strong> {{.Found.Description}}</li>
</ul>
<p>Log in to your dashboard to follow up.</p>
`))

// RenderAlert renders the HTML body of a match alert.
func RenderAlert(found *core.Item, lostTitle string) (string, error) {
	var buf bytes.Buffer
	err := alertTemplate.Execute(&buf, struct {
		Found     *core.Item
		LostTitle string
	}{found, lostTitle})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SMTPConfig holds SMTP delivery settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// SSL selects implicit TLS. Otherwise STARTTLS is used when offered.
	SSL     bool
	Timeout time.Duration
}

// SMTPMailer delivers match alerts over SMTP.
type SMTPMailer struct {
	config SMTPConfig
	logger *slog.Logger
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates an SMTP mailer. Host and From are required.
func NewSMTPMailer(config SMTPConfig, logger *slog.Logger) (*SMTPMailer, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("%w: host required", ErrInvalidSMTPConfig)
	}
	if config.From == "" {
		return nil, fmt.Errorf("%w: sender address required", ErrInvalidSMTPConfig)
	}
	if config.Port == 0 {
		config.Port = 587
		if config.SSL {
			config.Port = 465
		}
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPMailer{
		config: config,
		logger: logger.With("component", "smtp"),
	}, nil
}

// BuildMessage composes a match alert without sending it.
func (m *SMTPMailer) BuildMessage(to string, found *core.Item, lostTitle string) (*mail.Msg, error) {
	body, err := RenderAlert(found, lostTitle)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.config.From); err != nil {
		return nil, fmt.Errorf("%w: sender: %w", ErrInvalidSMTPConfig, err)
	}
	if err := msg.To(to); err != nil {
		return nil, err
	}
	msg.Subject(AlertSubject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}

// SendMatchAlert dials the SMTP server and sends one alert.
func (m *SMTPMailer) SendMatchAlert(ctx context.Context, to string, found *core.Item, lostTitle string) error {
	msg, err := m.BuildMessage(to, found, lostTitle)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.config.Host, m.clientOptions()...)
	if err != nil {
		return err
	}

	m.logger.Debug("sending alert", "host", m.config.Host, "item", found.Id)
	return client.DialAndSendWithContext(ctx, msg)
}

func (m *SMTPMailer) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(m.config.Port),
		mail.WithTimeout(m.config.Timeout),
	}
	if m.config.SSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if m.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.config.Username),
			mail.WithPassword(m.config.Password),
		)
	}
	return opts
}
