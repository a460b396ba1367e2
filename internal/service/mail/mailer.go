package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"go-contacts-api/internal/core/config"
)

//go:embed templates/*.html
var templateFS embed.FS

type Mailer struct {
	cfg     config.Mail
	baseURL string
	tpl     *template.Template
}

func New(cfg config.Mail, baseURL string) (*Mailer, error) {
	tpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Mailer{cfg: cfg, baseURL: baseURL, tpl: tpl}, nil
}

type mailData struct {
	Username string
	Link     string
}

func (m *Mailer) SendVerification(ctx context.Context, email, username, token string) error {
	link := fmt.Sprintf("%s/api/v1/users/verify/%s", m.baseURL, token)
	return m.send(ctx, email, "Confirm your email", "confirm_email.html", mailData{Username: username, Link: link})
}

func (m *Mailer) SendPasswordReset(ctx context.Context, email, username, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.baseURL, token)
	return m.send(ctx, email, "Reset your password", "reset_password.html", mailData{Username: username, Link: link})
}

func (m *Mailer) send(ctx context.Context, to, subject, tplName string, data mailData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var body bytes.Buffer
	if err := m.tpl.ExecuteTemplate(&body, tplName, data); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.From, m.cfg.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	return d.DialAndSend(msg)
}
