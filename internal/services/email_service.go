package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

// MailSender delivers the magic link.
type MailSender interface {
	SendVerificationLink(ctx context.Context, to, link, name string) error
}

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer   Dialer
	from     string
	fromName string
}

var verificationMail = template.Must(template.New("verification").Parse(`<div>
  <p>Hello {{.Name}},</p>
  <p>Please click on <a href="{{.Link}}">this link</a> to verify your account.</p>
  <p>The link works once and expires in 24 hours.</p>
</div>`))

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail, fromName string) MailSender {
	return NewEmailServiceWithDialer(gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword), fromEmail, fromName)
}

func NewEmailServiceWithDialer(dialer Dialer, fromEmail, fromName string) MailSender {
	return &emailService{dialer: dialer, from: fromEmail, fromName: fromName}
}

func (s *emailService) SendVerificationLink(ctx context.Context, to, link, name string) error {
	if name == "" {
		name = "User"
	}
	var body bytes.Buffer
	if err := verificationMail.Execute(&body, struct{ Name, Link string }{name, link}); err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Auth Verification")
	m.SetBody("text/html", body.String())

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}
