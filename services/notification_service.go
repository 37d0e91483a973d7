// File: services/notification_service.go
package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"inohax-registration/logger"
)

// EmailNotifier sends the registration confirmation email over SMTP. Every
// failure path is logged and swallowed: email must never fail a registration.
type EmailNotifier struct {
	host       string
	port       int
	user       string
	pass       string
	adminEmail string

	// overridable in tests
	send func(m *gomail.Message) error
}

// NewEmailNotifier builds a notifier for the given SMTP account. The admin
// mailbox receives a copy of every confirmation.
func NewEmailNotifier(host string, port int, user, pass, adminEmail string) *EmailNotifier {
	n := &EmailNotifier{
		host:       host,
		port:       port,
		user:       user,
		pass:       pass,
		adminEmail: adminEmail,
	}
	dialer := gomail.NewDialer(host, port, user, pass)
	n.send = func(m *gomail.Message) error { return dialer.DialAndSend(m) }
	return n
}

// SendConfirmation emails the team leader and copies the admin mailbox.
// Missing credentials and transport errors are logged, never returned.
func (n *EmailNotifier) SendConfirmation(toEmail, leaderName, teamName string) {
	if n.user == "" || n.pass == "" {
		logger.Error.Println("[SendConfirmation] email credentials are not configured, skipping confirmation email")
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.user)
	m.SetHeader("To", toEmail)
	if n.adminEmail != "" {
		m.SetHeader("Bcc", n.adminEmail)
	}
	m.SetHeader("Subject", "Inohax 2.0 Registration Confirmation")
	m.SetBody("text/html", confirmationBody(leaderName, teamName))

	if err := n.send(m); err != nil {
		logger.Error.Printf("[SendConfirmation] failed to send confirmation to %s: %v", toEmail, err)
		return
	}
	logger.Info.Printf("[SendConfirmation] confirmation sent to %s (team %q)", toEmail, teamName)
}

func confirmationBody(leaderName, teamName string) string {
	return fmt.Sprintf(`<div>
<p>Hi %s,</p>
<p>Your team <strong>%s</strong> is registered for Inohax 2.0!</p>
<p>We will reach out with the event schedule and next steps shortly.
In the meantime, join the participant community on Inovact Social and
keep an eye on your inbox.</p>
<p>See you at the hackathon,<br/>Team Inovact</p>
</div>`, leaderName, teamName)
}
