package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	serviceErrs "github.com/kubev2v/taskd/pkg/errors"
)

const userAgent = "taskd-notifier"

type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Post sends body as JSON to url.
// A 4xx answer is returned as a WebhookRejectedError, any other non-2xx
// answer as a plain error.
func (c *Client) Post(ctx context.Context, url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	zap.S().Named("webhook").Debugw("post notification", "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return serviceErrs.NewWebhookRejectedError(url, resp.StatusCode)
	default:
		return fmt.Errorf("failed to post webhook to %s: %s", url, resp.Status)
	}
}
