package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/phillip/nft-ticketing-go/models"
)

var (
	ErrMailerNotConfigured = errors.New("missing ZEPTO_API_URL, ZEPTO_API_KEY, or EMAIL_FROM")
	ErrNoRecipient         = errors.New("no recipient address")
)

// email request payload for ZeptoMail API
type emailRequest struct {
	From     emailAddress  `json:"from"`
	To       []toRecipient `json:"to"`
	Subject  string        `json:"subject"`
	HtmlBody string        `json:"htmlbody"`
}

type emailAddress struct {
	Address string `json:"address"`
}

type toRecipient struct {
	Email emailWithName `json:"email_address"`
}

type emailWithName struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

var ticketEmail = template.Must(template.New("ticket").Parse(`<h2>Your ticket for {{.EventName}}</h2>
<p>Hi {{.AttendeeName}}, your {{.TicketType}} ticket is confirmed.</p>
<ul>
  <li>Where: {{.Location}}</li>
  <li>When: {{.StartTime}}</li>
  <li>NFT token: {{.TokenID}}</li>
</ul>
<p>Show this code at the entrance: <code>{{.QRCode}}</code></p>`))

type ticketEmailData struct {
	EventName    string
	AttendeeName string
	TicketType   models.TicketType
	Location     string
	StartTime    string
	TokenID      string
	QRCode       string
}

// ZeptoMailer sends HTML mail through the ZeptoMail HTTP API.
type ZeptoMailer struct {
	apiURL string // e.g. https://api.zeptomail.com/v1.1/email
	apiKey string // e.g. Zoho-enczapikey xxxxx
	from   string
	client *http.Client
}

func NewZeptoMailer(apiURL, apiKey, from string) (*ZeptoMailer, error) {
	if apiURL == "" || apiKey == "" || from == "" {
		return nil, ErrMailerNotConfigured
	}
	return &ZeptoMailer{
		apiURL: apiURL,
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// SendTicketConfirmation mails the ticket details to the attendee's verified
// address. The synthesized ticket.AttendeeEmail is never used.
func (m *ZeptoMailer) SendTicketConfirmation(ctx context.Context, to string, ticket *models.Ticket, event *models.Event) error {
	if to == "" {
		return ErrNoRecipient
	}

	var body bytes.Buffer
	err := ticketEmail.Execute(&body, ticketEmailData{
		EventName:    event.Name,
		AttendeeName: ticket.AttendeeName,
		TicketType:   ticket.TicketType,
		Location:     event.Location,
		StartTime:    event.StartTime.UTC().Format("Mon, 02 Jan 2006 15:04 MST"),
		TokenID:      ticket.NFTTokenID,
		QRCode:       ticket.QRCode,
	})
	if err != nil {
		return fmt.Errorf("render ticket email: %w", err)
	}

	subject := "Your ticket for " + event.Name
	return m.SendEmail(ctx, to, ticket.AttendeeName, subject, body.String())
}

// SendEmail sends an HTML email using the ZeptoMail HTTP API
func (m *ZeptoMailer) SendEmail(ctx context.Context, to, toName, subject, body string) error {
	payload := emailRequest{
		From: emailAddress{Address: m.from},
		To: []toRecipient{
			{
				Email: emailWithName{
					Address: to,
					Name:    toName,
				},
			},
		},
		Subject:  subject,
		HtmlBody: body,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("zeptomail API error: %s", resp.Status)
	}

	slog.Info("email sent", "to", to, "subject", subject)
	return nil
}
