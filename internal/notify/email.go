package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const resendAPIURL = "https://api.resend.com/emails"

// EmailClient sends transactional mail through the Resend API. It is a
// no-op when credentials are missing so local setups run without mail.
type EmailClient struct {
	apiKey     string
	fromEmail  string
	fromName   string
	httpClient *http.Client
	configured bool
}

func NewEmailClient(apiKey, fromEmail, fromName string) *EmailClient {
	c := &EmailClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if apiKey != "" && fromEmail != "" {
		c.apiKey = apiKey
		c.fromEmail = fromEmail
		c.fromName = fromName
		c.configured = true
	}
	return c
}

func (c *EmailClient) IsConfigured() bool { return c.configured }

type sendEmailReq struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (c *EmailClient) Send(ctx context.Context, toEmail, subject, html string) error {
	if !c.configured {
		return nil
	}
	if toEmail == "" || subject == "" || html == "" {
		return errors.New("toEmail, subject and html cannot be empty")
	}

	from := c.fromEmail
	if c.fromName != "" {
		from = fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail)
	}
	body, err := json.Marshal(sendEmailReq{
		From:    from,
		To:      []string{toEmail},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendAPIURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("resend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody map[string]interface{}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr != nil {
			return fmt.Errorf("resend API error: status %d", resp.StatusCode)
		}
		return fmt.Errorf("resend API error: status %d, body: %v", resp.StatusCode, errBody)
	}
	return nil
}
