// Package notify sends staff notices about accepted submissions
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/medtalks/website/internal/models"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// SMTPConfig holds the mail relay settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// sender delivers composed messages
type sender interface {
	DialAndSend(m ...*mail.Message) error
}

// Mailer emails partnership applications to the partnerships team
type Mailer struct {
	from   string
	to     []string
	sender sender
	logger *zap.Logger
}

// DialTimeout bounds connecting to and talking with the SMTP relay, which happens inside the request
const DialTimeout = 5 * time.Second

// NewMailer creates a mailer sending through the configured SMTP relay
func NewMailer(cfg SMTPConfig, logger *zap.Logger) *Mailer {
	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.Timeout = DialTimeout
	return &Mailer{
		from:   cfg.From,
		to:     cfg.To,
		sender: dialer,
		logger: logger,
	}
}

var partnershipTemplate = template.Must(template.New("partnership").Parse(`<h2>New partnership application {{.Ref}}</h2>
<p><strong>{{.App.FullName}}</strong> ({{.App.JobTitle}}) at <strong>{{.App.Company}}</strong>, {{.App.Country}}</p>
<ul>
<li>Email: {{.App.Email}}</li>
<li>Phone: {{.App.FullPhone}}{{if .App.IsWhatsapp}} (WhatsApp){{end}}</li>
<li>Organization: {{.App.OrgType}}, {{.App.StudentVolume}} students</li>
<li>Partnership: {{.App.PartnershipType}}, {{.App.ExpectedTimeline}}</li>
<li>Segments: {{.Segments}}</li>
<li>Demo call: {{.App.DemoCall}}</li>
</ul>
<p>{{.App.WhyPartner}}</p>`))

// PartnershipSubmitted emails a summary of the application. Delivery failures are logged.
func (m *Mailer) PartnershipSubmitted(ctx context.Context, ref string, app *models.PartnershipApplication) {
	if err := m.send(ref, app); err != nil {
		m.logger.Error("failed to send partnership notification",
			zap.String("reference_number", ref),
			zap.Error(err),
		)
		return
	}
	m.logger.Info("partnership notification sent", zap.String("reference_number", ref))
}

func (m *Mailer) send(ref string, app *models.PartnershipApplication) error {
	body, err := renderPartnership(ref, app)
	if err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to...)
	msg.SetHeader("Reply-To", app.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Partnership application %s: %s", ref, app.Company))
	msg.SetBody("text/html", body)

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func renderPartnership(ref string, app *models.PartnershipApplication) (string, error) {
	var body bytes.Buffer
	err := partnershipTemplate.Execute(&body, map[string]any{
		"Ref":      ref,
		"App":      app,
		"Segments": strings.Join(app.TargetSegments, ", "),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return body.String(), nil
}
