package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client delivers notification payloads to a browser push subscription's
// endpoint. Delivery is best effort: callers log failures and move on.
type Client struct {
	client *http.Client
}

func NewClient() *Client {
	return &Client{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type subscription struct {
	Endpoint string `json:"endpoint"`
}

type payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// Notify POSTs the payload to the subscription's endpoint. A 404/410 from the
// push service means the subscription is gone and is reported as an error so
// the caller can log it; nothing is retried.
func (c *Client) Notify(ctx context.Context, subscriptionJSON, title, body, url string) error {
	var sub subscription
	if err := json.Unmarshal([]byte(subscriptionJSON), &sub); err != nil {
		return fmt.Errorf("push: bad subscription: %w", err)
	}
	if sub.Endpoint == "" {
		return errors.New("push: subscription has no endpoint")
	}

	b, err := json.Marshal(payload{Title: title, Body: body, URL: url})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("TTL", "60")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("push: subscription expired (status %d)", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push: status %d", resp.StatusCode)
	}
	return nil
}
