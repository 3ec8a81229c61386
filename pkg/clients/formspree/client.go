package formspree

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client defines the interface for interacting with the Formspree submission endpoint
type Client interface {
	Submit(ctx context.Context, fields url.Values) error
}

type clientImpl struct {
	baseURL    string
	formID     string
	httpClient *http.Client
}

// NewClient creates a new Formspree client for a single form
func NewClient(baseURL, formID string, httpClient *http.Client) Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &clientImpl{
		baseURL:    baseURL,
		formID:     formID,
		httpClient: httpClient,
	}
}

func (c *clientImpl) Submit(ctx context.Context, fields url.Values) error {
	endpoint := fmt.Sprintf("%s/f/%s", c.baseURL, url.PathEscape(c.formID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(fields.Encode()))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// Without this Formspree answers with an HTML redirect meant for browsers
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error submitting form: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("error from Formspree API (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}
