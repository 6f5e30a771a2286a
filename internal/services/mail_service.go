package services

import (
	"fmt"
	"net/smtp"
	"strings"
)

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// MailService delivers transactional mail over plain SMTP with AUTH.
type MailService struct {
	cfg SMTPConfig
}

func NewMailService(cfg SMTPConfig) *MailService {
	return &MailService{cfg: cfg}
}

func (s *MailService) SendPasswordReset(to, resetURL string) error {
	body := fmt.Sprintf(
		"Click on the link to reset your password. %s. If you have not requested this, please ignore.",
		resetURL,
	)
	return s.send(to, "Password Reset", body)
}

// SendContact forwards a visitor message to the site owner.
func (s *MailService) SendContact(name, email, message string) error {
	body := fmt.Sprintf("I am %s and my email is %s.\n%s", name, email, message)
	return s.send(s.cfg.From, "Contact from "+name, body)
}

// SendCourseRequest forwards a course wish to the site owner.
func (s *MailService) SendCourseRequest(name, email, course string) error {
	body := fmt.Sprintf("I am %s and my email is %s.\nRequested course: %s", name, email, course)
	return s.send(s.cfg.From, "Course request from "+name, body)
}

func (s *MailService) send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	addr := s.cfg.Host + ":" + s.cfg.Port
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
