package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the transactional email provider. Calls are at-most-once;
// failures surface to the caller without retries.
type Client struct {
	BaseURL    string
	APIKey     string
	Sender     string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey, sender string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Sender:  sender,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// APIError carries the provider's HTTP status and response body.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mail api error: %s (status: %d)", e.Body, e.Status)
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// SendResult is the provider's acknowledgement.
type SendResult struct {
	ID string `json:"id"`
}

// Send delivers one plain-text email through the provider.
func (c *Client) Send(ctx context.Context, to, subject, text string) error {
	_, err := c.send(ctx, to, subject, text)
	return err
}

func (c *Client) send(ctx context.Context, to, subject, text string) (*SendResult, error) {
	body, err := json.Marshal(sendRequest{
		From:    c.Sender,
		To:      to,
		Subject: subject,
		Text:    text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := fmt.Sprintf("%s/emails", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var result SendResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result, nil
}
