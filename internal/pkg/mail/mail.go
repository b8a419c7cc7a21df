package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"
)

// Config holds SMTP settings (matches AppConfig.Mail).
type Config struct {
	Enable  bool   `json:"enable" yaml:"enable"`
	Host    string `json:"host" yaml:"host"`
	Port    int    `json:"port" yaml:"port"`
	User    string `json:"user" yaml:"user"`
	Pass    string `json:"pass" yaml:"pass"`
	From    string `json:"from" yaml:"from"`
	ReplyTo string `json:"reply_to" yaml:"reply_to"`
}

// Message is a single email to send.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender sends emails via SMTP. Disabled senders drop messages
// silently so callers never have to special-case dev environments.
type Sender struct {
	cfg Config
}

func New(cfg Config) *Sender {
	return &Sender{cfg: cfg}
}

// Send dispatches an email.
func (s *Sender) Send(msg Message) error {
	if !s.cfg.Enable {
		return nil
	}
	return s.sendSMTP(msg)
}

// sendSMTP sends via net/smtp.
func (s *Sender) sendSMTP(msg Message) error {
	host := s.cfg.Host
	port := s.cfg.Port
	if port == 0 {
		port = 587
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	from := s.cfg.From
	if from == "" {
		from = s.cfg.User
	}

	var body bytes.Buffer
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString(fmt.Sprintf("From: %s\r\n", from))
	body.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	body.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	body.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	if s.cfg.ReplyTo != "" {
		body.WriteString(fmt.Sprintf("Reply-To: %s\r\n", s.cfg.ReplyTo))
	}
	body.WriteString("\r\n")
	body.WriteString(msg.HTML)

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, host)
	return smtp.SendMail(addr, auth, from, msg.To, body.Bytes())
}

const emailChangedTpl = `<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;background:#f5f5f5;padding:20px">
<div style="max-width:600px;margin:0 auto;background:#fff;border-radius:8px;padding:24px">
  <h2 style="color:#333">Email address changed</h2>
  <p>The email address on your account was changed to <strong>{{.NewEmail}}</strong>.</p>
  <p style="color:#999;font-size:12px">If you did not make this change, please contact support immediately.</p>
  <p style="font-size:10px;line-height:24px;margin:16px 0;text-align:center;color:rgb(156,163,175)">This is an automated message, please do not reply.<br />&copy;{{year}} {{.SiteName}}</p>
</div>
</body>
</html>`

const passwordChangedTpl = `<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;background:#f5f5f5;padding:20px">
<div style="max-width:600px;margin:0 auto;background:#fff;border-radius:8px;padding:24px">
  <h2 style="color:#333">Password changed</h2>
  <p>The password on your account was changed on {{.ChangedAt}}.</p>
  <p style="color:#999;font-size:12px">If you did not make this change, please contact support immediately.</p>
  <p style="font-size:10px;line-height:24px;margin:16px 0;text-align:center;color:rgb(156,163,175)">This is an automated message, please do not reply.<br />&copy;{{year}} {{.SiteName}}</p>
</div>
</body>
</html>`

// EmailChangedData is the data for email-change notification emails.
type EmailChangedData struct {
	NewEmail string
	SiteName string
}

// PasswordChangedData is the data for password-change notification emails.
type PasswordChangedData struct {
	ChangedAt string
	SiteName  string
}

func renderTemplate(tpl string, data interface{}) (string, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"year": func() int {
			return time.Now().Year()
		},
	}).Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SendEmailChanged notifies both the previous and the new address that
// the account email was updated.
func (s *Sender) SendEmailChanged(to []string, data EmailChangedData) error {
	if strings.TrimSpace(data.SiteName) == "" {
		data.SiteName = "Ident"
	}
	html, err := renderTemplate(emailChangedTpl, data)
	if err != nil {
		return err
	}
	return s.Send(Message{
		To:      to,
		Subject: fmt.Sprintf("[%s] Your email address was changed", data.SiteName),
		HTML:    html,
	})
}

// SendPasswordChanged notifies the account holder that the password
// was updated.
func (s *Sender) SendPasswordChanged(to string, data PasswordChangedData) error {
	if strings.TrimSpace(data.SiteName) == "" {
		data.SiteName = "Ident"
	}
	if strings.TrimSpace(data.ChangedAt) == "" {
		data.ChangedAt = time.Now().UTC().Format(time.RFC1123)
	}
	html, err := renderTemplate(passwordChangedTpl, data)
	if err != nil {
		return err
	}
	return s.Send(Message{
		To:      []string{to},
		Subject: fmt.Sprintf("[%s] Your password was changed", data.SiteName),
		HTML:    html,
	})
}
