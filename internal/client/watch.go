package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/projboard/projboard/internal/logging"
)

// Event is a frame received from the server's event stream.
type Event struct {
	Type       string          `json:"type"`
	Properties json.RawMessage `json:"properties"`
}

const (
	// ReconnectInitialInterval is the first delay before reconnecting a dropped stream.
	ReconnectInitialInterval = 500 * time.Millisecond
	// ReconnectMaxInterval caps the delay between reconnect attempts.
	ReconnectMaxInterval = 15 * time.Second
)

// newReconnectBackoff creates the backoff used between stream connections.
// It never gives up on its own; ctx ends the retries.
func newReconnectBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = ReconnectInitialInterval
	b.MaxInterval = ReconnectMaxInterval
	b.MaxElapsedTime = 0
	b.RandomizationFactor = 0.5 // Add jitter
	b.Multiplier = 2.0
	b.Reset()
	return b
}

// Watch streams board events to fn until ctx is done, reconnecting with exponential backoff
// whenever the stream drops. It returns nil when ctx ends, or the first error fn returns.
// Client errors (4xx) from the stream endpoint are not retried.
func (c *Client) Watch(ctx context.Context, fn func(Event) error) error {
	b := newReconnectBackoff()

	operation := func() error {
		err := c.stream(ctx, func(e Event) error {
			// a live stream resets the reconnect delay
			b.Reset()
			return fn(e)
		})

		var apiErr *APIError
		var handlerErr *handlerError
		switch {
		case ctx.Err() != nil:
			return backoff.Permanent(ctx.Err())
		case errors.As(err, &handlerErr):
			return backoff.Permanent(handlerErr.err)
		case errors.As(err, &apiErr) && apiErr.StatusCode < 500:
			return backoff.Permanent(err)
		case err == nil:
			return errors.New("event stream closed")
		default:
			return err
		}
	}

	notify := func(err error, next time.Duration) {
		logging.Warn().Err(err).Dur("retryIn", next).Msg("Event stream lost, reconnecting")
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify)
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}

// handlerError marks an error returned by the Watch callback.
type handlerError struct{ err error }

func (e *handlerError) Error() string { return e.err.Error() }
func (e *handlerError) Unwrap() error { return e.err }

// stream reads one connection to /event until it ends.
func (c *Client) stream(ctx context.Context, fn func(Event) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/event", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// No timeout for SSE
	httpClient := &http.Client{Transport: c.HTTPClient.Transport}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		return &APIError{StatusCode: resp.StatusCode, Message: "unexpected content type: " + ct}
	}

	return readEvents(resp.Body, func(e Event) error {
		if err := fn(e); err != nil {
			return &handlerError{err: err}
		}
		return nil
	})
}

// readEvents parses SSE frames from r. Comments (heartbeats) are skipped and frames whose data
// is not an event envelope are ignored.
func readEvents(r io.Reader, fn func(Event) error) error {
	reader := bufio.NewReader(r)
	var data strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimRight(line, "\r\n")

		// Empty line = event complete
		if line == "" {
			if data.Len() > 0 {
				var e Event
				if jsonErr := json.Unmarshal([]byte(data.String()), &e); jsonErr == nil && e.Type != "" {
					if err := fn(e); err != nil {
						return err
					}
				}
			}
			data.Reset()
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}
		if strings.HasPrefix(line, "data:") {
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
}
