package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// emailRequest is the ZeptoMail-style API payload.
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

type Mailer struct {
	APIURL string
	APIKey string
	From   string
	HTTP   *http.Client
}

// NewFromEnv builds a mailer from MAIL_API_URL / MAIL_API_KEY / MAIL_FROM.
// Returns nil when the config is absent; callers treat a nil mailer as
// "email disabled".
func NewFromEnv() *Mailer {
	apiURL := os.Getenv("MAIL_API_URL")
	apiKey := os.Getenv("MAIL_API_KEY")
	from := os.Getenv("MAIL_FROM")
	if apiURL == "" || apiKey == "" || from == "" {
		return nil
	}
	return &Mailer{
		APIURL: apiURL,
		APIKey: apiKey,
		From:   from,
		HTTP:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Send delivers an HTML email through the configured HTTP API.
func (m *Mailer) Send(to, subject, body string) error {
	payload := emailRequest{
		From:     emailAddress{Address: m.From},
		To:       []toRecipient{{Email: emailWithName{Address: to}}},
		Subject:  subject,
		HtmlBody: body,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, m.APIURL, bytes.NewReader(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", m.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}
	return nil
}
