package mailer

import (
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"
)

// ExpertContact is a farmer's request to be called back by an agronomist.
type ExpertContact struct {
	UserID   string
	Crop     string
	District string
	Category string
	Messages []string
}

type IEmailService interface {
	SendExpertContact(req ExpertContact) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	expertEmail string
}

func NewEmailService(host string, port int, username, password, senderName, expertEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: username,
		senderName:  senderName,
		expertEmail: expertEmail,
	}
}

func (s *emailService) SendExpertContact(req ExpertContact) error {
	if s.expertEmail == "" {
		return fmt.Errorf("expert email is not configured")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", s.expertEmail)
	m.SetHeader("Subject", fmt.Sprintf("Farmer callback request: %s, %s", req.Crop, req.District))

	var items strings.Builder
	for _, msg := range req.Messages {
		fmt.Fprintf(&items, "<li>%s</li>", html.EscapeString(msg))
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Farmer requested an expert</h2>
			<p><b>Contact:</b> %s</p>
			<p><b>Crop:</b> %s<br><b>District:</b> %s<br><b>Topic:</b> %s</p>
			<p>Messages sent by the farmer:</p>
			<ul>%s</ul>
		</div>
	`, html.EscapeString(req.UserID), html.EscapeString(req.Crop), html.EscapeString(req.District),
		html.EscapeString(req.Category), items.String())

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send expert contact for %s: %w", req.UserID, err)
	}
	return nil
}
