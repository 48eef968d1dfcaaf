package services

import (
	"fmt"
	"log"
	"net/smtp"
)

// EmailService sends account emails over plain SMTP.
type EmailService struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewEmailService(host, port, username, password, from string) *EmailService {
	return &EmailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// SendPasswordReset mails a one-time PIN to the user.
func (s *EmailService) SendPasswordReset(to, name, pin string) error {
	subject := "Your password reset PIN"
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\n"+
			"Your password reset PIN is: %s\r\n\r\n"+
			"It expires in 15 minutes. If you did not request a reset, you can ignore this email.\r\n",
		name, pin)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		s.from, to, subject, body))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := s.host + ":" + s.port
	if err := smtp.SendMail(addr, auth, s.from, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	log.Printf("📧 Password reset email sent to: %s", to)
	return nil
}
