package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templatesFS embed.FS

var inviteTemplate = template.Must(template.ParseFS(templatesFS, "templates/invite.html"))

// Dialer é satisfeito por *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

func NewEmailSender(host string, port int, user, password, from, appName string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		AppName:  appName,
		dialer:   gomail.NewDialer(host, port, user, password),
	}
}

// WithDialer troca o transporte SMTP (usado nos testes).
func (s *EmailSender) WithDialer(d Dialer) *EmailSender {
	s.dialer = d
	return s
}

func (s *EmailSender) Configured() bool {
	return s.Host != ""
}

func renderInvite(data InviteEmailData) (string, error) {
	var body bytes.Buffer
	if err := inviteTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("erro ao processar template: %w", err)
	}
	return body.String(), nil
}

// SendInvite envia o link de cadastro do convite.
func (s *EmailSender) SendInvite(to, role, link string, expiresAt time.Time) error {
	if !s.Configured() {
		return fmt.Errorf("SMTP não configurado (MAIL_HOST)")
	}

	body, err := renderInvite(InviteEmailData{AppName: s.AppName, Role: role, Link: link, ExpiresAt: expiresAt})
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Seu convite para o %s chegou ✉️", s.AppName))
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}
