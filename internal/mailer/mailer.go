package mailer

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Config holds the SMTP transport settings. The caller resolves secrets
// (e.g. from an env var named in its own configuration) before constructing
// the Config.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// validate checks the fields Send cannot proceed without.
func (c Config) validate() error {
	if c.Host == "" {
		return fmt.Errorf("mailer: host is empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("mailer: port %d is out of range [1, 65535]", c.Port)
	}
	if c.From == "" {
		return fmt.Errorf("mailer: from address is empty")
	}
	if len(c.To) == 0 {
		return fmt.Errorf("mailer: no recipients")
	}
	return nil
}

// Mailer sends HTML report messages. Safe for concurrent use: it holds no
// mutable state, only the config and a send function.
type Mailer struct {
	cfg Config

	// send performs the actual SMTP delivery; injectable for tests.
	send func(m *gomail.Message) error
}

// New creates a Mailer for the given transport config.
func New(cfg Config) (*Mailer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &Mailer{cfg: cfg, send: func(m *gomail.Message) error { return d.DialAndSend(m) }}, nil
}

// Send delivers html as the body of a report message with the given subject.
func (m *Mailer) Send(subject string, html []byte) error {
	msg := m.compose(subject, html)
	if err := m.send(msg); err != nil {
		return fmt.Errorf("mailer: send %q: %w", subject, err)
	}
	return nil
}

// compose builds the MIME message without sending it.
func (m *Mailer) compose(subject string, html []byte) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", m.cfg.To...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", string(html))
	return msg
}
