// Package notify posts plain-text run notifications to an ntfy-style endpoint.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Message is one notification. Title and Tags map to ntfy headers.
type Message struct {
	Title string
	Tags  []string
	Body  string
}

// Send posts msg to endpoint as text/plain.
func Send(ctx context.Context, client *http.Client, endpoint string, msg Message) error {
	if strings.TrimSpace(endpoint) == "" {
		return errors.New("notify: endpoint is required")
	}
	c := client
	if c == nil {
		c = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(msg.Body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain")
	if msg.Title != "" {
		req.Header.Set("Title", msg.Title)
	}
	if len(msg.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.Tags, ","))
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy notification failed: status=%d", resp.StatusCode)
	}
	return nil
}
