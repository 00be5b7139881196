package mailer

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer sends transactional mail through SendGrid.
type SendGridMailer struct {
	apiKey   string
	fromName string
	fromAddr string
}

func NewSendGridMailer(apiKey, fromName, fromAddr string) *SendGridMailer {
	return &SendGridMailer{
		apiKey:   apiKey,
		fromName: fromName,
		fromAddr: fromAddr,
	}
}

func (m *SendGridMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if to == "" {
		return fmt.Errorf("to address is empty")
	}

	from := mail.NewEmail(m.fromName, m.fromAddr)
	toEmail := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, toEmail, body, fmt.Sprintf("<pre>%s</pre>", body))

	client := sendgrid.NewSendClient(m.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}

	log.Printf("[sendgrid] mail sent: status=%d to=%s subject=%s", response.StatusCode, to, subject)
	return nil
}
