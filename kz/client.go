package kz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/misscatmint/kzkitty/model"
	"github.com/misscatmint/kzkitty/utils"
)

const (
	maxAttempts    = 3
	initialBackoff = 500 * time.Millisecond
)

// Client is a stateless facade over the global KZ ranking API. It owns the
// retry and rate-limit backoff policy; identity and mode fallback are the
// resolver's business.
type Client struct {
	baseURL    string
	vnlBaseURL string
	http       *http.Client
}

func New(cfg *model.Config) *Client {
	return &Client{
		baseURL:    cfg.APIBaseURL,
		vnlBaseURL: cfg.VnlAPIBaseURL,
		http:       utils.GlobalHTTPClient,
	}
}

// getJSON fetches url and decodes the response body into v. A 429 is
// retried with exponential backoff up to maxAttempts before surfacing
// ErrUpstreamUnavailable; network failures and 5xx responses surface it
// immediately. Anything else outside the expected shape is a protocol
// error.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("building request for %s: %w", url, err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", model.ErrUpstreamUnavailable, err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			err = json.NewDecoder(resp.Body).Decode(v)
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("%w: decoding %s: %v", model.ErrUpstreamProtocol, url, err)
			}
			return nil
		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			if attempt >= maxAttempts {
				return fmt.Errorf("%w: rate limited after %d attempts", model.ErrUpstreamUnavailable, attempt)
			}
			log.Printf("Global API rate limited, retrying in %v (attempt %d/%d)", backoff, attempt, maxAttempts)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", model.ErrUpstreamUnavailable, ctx.Err())
			}
			backoff *= 2
		case resp.StatusCode >= 500:
			resp.Body.Close()
			return fmt.Errorf("%w: HTTP %d from %s", model.ErrUpstreamUnavailable, resp.StatusCode, url)
		default:
			resp.Body.Close()
			return fmt.Errorf("%w: HTTP %d from %s", model.ErrUpstreamProtocol, resp.StatusCode, url)
		}
	}
}
