// Package mail sends transactional email over SMTP. Transport settings come
// from the stored site settings, re-read on every send so an admin edit takes
// effect without a restart.
package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"
)

// Config holds the SMTP transport settings. An empty Host disables sending.
type Config struct {
	Host       string
	Port       int
	Username   string
	Password   string
	Encryption string
	From       string
}

// ConfigFunc yields the current transport settings at send time.
type ConfigFunc func() Config

// Message is a single email to send.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Sender sends emails via SMTP.
type Sender struct {
	cfg ConfigFunc
}

func New(cfg ConfigFunc) *Sender {
	return &Sender{cfg: cfg}
}

// Send dispatches an email. A blank SMTP host means mail is not configured;
// the send is silently skipped.
func (s *Sender) Send(msg Message) error {
	cfg := s.cfg()
	if strings.TrimSpace(cfg.Host) == "" || len(msg.To) == 0 {
		return nil
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, port)

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	var body bytes.Buffer
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString(fmt.Sprintf("From: %s\r\n", from))
	body.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	body.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	body.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	body.WriteString("\r\n")
	body.WriteString(msg.HTML)

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return smtp.SendMail(addr, auth, from, msg.To, body.Bytes())
}

const commentNotifyTpl = `<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;background:#f5f5f5;padding:20px">
<div style="max-width:600px;margin:0 auto;background:#fff;border-radius:8px;padding:24px">
  <h2 style="color:#333">New comment awaiting moderation</h2>
  <p><strong>{{.Author}}</strong> commented on <strong>{{.PostTitle}}</strong>:</p>
  <blockquote style="background:#f3f4f6;border-radius:6px;padding:12px;color:#333">{{.Body}}</blockquote>
  <p style="color:#666;font-size:12px">IP: {{.IP}}</p>
  <p style="margin-top:24px">
    <a href="{{.PostURL}}" style="background:#4f46e5;color:#fff;padding:8px 16px;text-decoration:none;border-radius:4px">Review comment</a>
  </p>
  <p style="color:#999;font-size:12px">Sent automatically by {{.SiteTitle}} · {{year}}</p>
</div>
</body>
</html>`

// CommentNotifyData fills the pending-comment notification template.
type CommentNotifyData struct {
	SiteTitle string
	PostTitle string
	PostURL   string
	Author    string
	Body      string
	IP        string
}

// SendCommentNotify tells the admin a comment entered the moderation queue.
func (s *Sender) SendCommentNotify(to string, data CommentNotifyData) error {
	if to == "" {
		return nil
	}
	if data.SiteTitle == "" {
		data.SiteTitle = "Chyrp Lite"
	}
	html, err := renderTemplate(commentNotifyTpl, data)
	if err != nil {
		return err
	}
	return s.Send(Message{
		To:      []string{to},
		Subject: fmt.Sprintf("[%s] New comment awaiting moderation", data.SiteTitle),
		HTML:    html,
	})
}

func renderTemplate(tpl string, data interface{}) (string, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"year": func() int { return time.Now().Year() },
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
