// Package realtime subscribes to the backend's per-user change stream
// over server-sent events. The stream carries full-row upserts of the
// progression table, filtered to one user. Disconnects are logged and
// retried with backoff; the subscriber never sees them.
package realtime

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/naviya/naviya/internal/dashboard"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Channel is an SSE client for the progression change stream.
type Channel struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a channel. Returns nil when url or key is empty, which
// callers treat as realtime-disabled.
func New(baseURL, apiKey string) *Channel {
	if baseURL == "" || apiKey == "" {
		return nil
	}
	return &Channel{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		// No overall timeout: the stream is long-lived.
		http: &http.Client{},
	}
}

// Subscribe opens the stream for userID. The returned channel closes
// when ctx is cancelled. Reconnection is handled internally.
func (c *Channel) Subscribe(ctx context.Context, userID string) (<-chan dashboard.Push, error) {
	if userID == "" {
		return nil, fmt.Errorf("subscribe: empty user id")
	}

	out := make(chan dashboard.Push)
	go c.pump(ctx, userID, out)
	return out, nil
}

// pump reconnects forever until ctx is done, forwarding events to out.
func (c *Channel) pump(ctx context.Context, userID string, out chan<- dashboard.Push) {
	defer close(out)

	backoff := initialBackoff
	for {
		if err := c.stream(ctx, userID, out, &backoff); err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Debug("realtime stream dropped", "user", userID, "err", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// stream runs one SSE connection until it fails or ctx is cancelled.
func (c *Channel) stream(ctx context.Context, userID string, out chan<- dashboard.Push, backoff *time.Duration) error {
	endpoint := fmt.Sprintf("%s/stream?user_id=%s", c.baseURL, url.QueryEscape(userID))
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream: HTTP %d", resp.StatusCode)
	}

	// A healthy connection resets the retry clock.
	*backoff = initialBackoff

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				select {
				case out <- dashboard.Push{Row: []byte(data.String())}:
				case <-ctx.Done():
					return ctx.Err()
				}
				data.Reset()
			}
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// comments and event/id fields are ignored
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return fmt.Errorf("stream closed by server")
}
