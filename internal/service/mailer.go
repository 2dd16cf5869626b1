package service

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Mailer отправляет сервисные письма через SendGrid. Без API-ключа письма
// молча пропускаются: почта не критична для работы сервера.
type Mailer struct {
	apiKey string
	from   string
	logger *zap.SugaredLogger
}

func NewMailer(apiKey, from string, logger *zap.SugaredLogger) *Mailer {
	return &Mailer{apiKey: apiKey, from: from, logger: logger}
}

// Send отправляет одно письмо.
func (m *Mailer) Send(toName, toEmail, subject, textContent, htmlContent string) error {
	if m.apiKey == "" {
		m.logger.Infow("Send: sendgrid is not configured, skipping email", "to", toEmail, "subject", subject)
		return nil
	}

	from := mail.NewEmail("WardrobeAI", m.from)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, textContent, htmlContent)

	client := sendgrid.NewSendClient(m.apiKey)
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("send email to %s: %w", toEmail, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("send email to %s: status %d", toEmail, resp.StatusCode)
	}
	return nil
}
