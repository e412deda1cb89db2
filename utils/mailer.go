package utils

import (
	"fmt"
	"log"
	"net/smtp"
)

// Mailer delivers transactional mail. The server only depends on this
// interface; delivery details stay out of the handlers.
type Mailer interface {
	Send(to, subject, body string) error
}

// Mail is the process-wide mailer, set up in main.
var Mail Mailer = LogMailer{}

// SMTPMailer sends through a plain-auth SMTP relay.
type SMTPMailer struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func (m SMTPMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.From, to, subject, body)
	auth := smtp.PlainAuth("", m.User, m.Pass, m.Host)
	return smtp.SendMail(m.Host+":"+m.Port, auth, m.From, []string{to}, []byte(msg))
}

// LogMailer writes mail to the log instead of sending it. Default in
// development when no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) Send(to, subject, body string) error {
	log.Printf("mail to=%s subject=%q\n%s", to, subject, body)
	return nil
}
