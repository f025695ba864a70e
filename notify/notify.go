// Package notify emails the signed quote document to the client.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/princinho/climaquote/i18n"
)

type Message struct {
	Email       string
	Name        string
	Brand       string
	Model       string
	DocumentURL string
	Language    string
}

// Notifier reports whether the message was handed to the mail server.
// Failures are logged, never returned.
type Notifier interface {
	Send(ctx context.Context, msg Message) bool
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Bcc receives a copy of every message, usually the office inbox.
	Bcc string
}

func (c Config) Enabled() bool { return c.Host != "" && c.From != "" }

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTP struct {
	cfg    Config
	dialer dialer
	log    zerolog.Logger
}

func NewSMTP(cfg Config, log zerolog.Logger) *SMTP {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTP{cfg: cfg, dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), log: log}
}

// New returns an SMTP notifier, or Disabled when SMTP is not configured.
func New(cfg Config, log zerolog.Logger) Notifier {
	if !cfg.Enabled() {
		log.Warn().Msg("SMTP not configured, quote emails are disabled")
		return Disabled{}
	}
	return NewSMTP(cfg, log)
}

func (s *SMTP) Send(ctx context.Context, msg Message) bool {
	if msg.Email == "" {
		s.log.Warn().Msg("quote email skipped: no recipient")
		return false
	}
	if ctx.Err() != nil {
		return false
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetAddressHeader("To", msg.Email, msg.Name)
	if s.cfg.Bcc != "" {
		m.SetHeader("Bcc", s.cfg.Bcc)
	}
	m.SetHeader("Subject", Subject(msg))
	m.SetBody("text/plain", PlainBody(msg))
	m.AddAlternative("text/html", htmlBody(msg))

	if err := s.dialer.DialAndSend(m); err != nil {
		s.log.Error().Err(err).Str("to", msg.Email).Msg("quote email failed")
		return false
	}
	s.log.Info().Str("to", msg.Email).Msg("quote email sent")
	return true
}

func Subject(msg Message) string {
	return strings.TrimSpace(fmt.Sprintf("%s: %s %s", i18n.Label("mail.subject", msg.Language), msg.Brand, msg.Model))
}

var greetings = map[string]string{
	"es": "Hola %s,\n\nAdjuntamos el enlace a tu presupuesto firmado:\n%s\n\nGracias por tu confianza.",
	"en": "Hello %s,\n\nHere is the link to your signed quote:\n%s\n\nThank you for your trust.",
	"ca": "Hola %s,\n\nT'enviem l'enllaç al teu pressupost signat:\n%s\n\nGràcies per la teva confiança.",
}

func PlainBody(msg Message) string {
	tpl, ok := greetings[i18n.Base(msg.Language)]
	if !ok {
		tpl = greetings["es"]
	}
	return fmt.Sprintf(tpl, msg.Name, msg.DocumentURL)
}

func htmlBody(msg Message) string {
	paragraphs := strings.Split(PlainBody(msg), "\n\n")
	var b strings.Builder
	for _, p := range paragraphs {
		text := html.EscapeString(p)
		if strings.Contains(p, msg.DocumentURL) && msg.DocumentURL != "" {
			link := html.EscapeString(msg.DocumentURL)
			text = strings.Replace(text, link, `<a href="`+link+`">`+link+`</a>`, 1)
		}
		b.WriteString("<p>" + strings.ReplaceAll(text, "\n", "<br>") + "</p>")
	}
	return b.String()
}

// Disabled never sends.
type Disabled struct{}

func (Disabled) Send(context.Context, Message) bool { return false }
