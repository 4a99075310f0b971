// Package collector implements the wire contract with the remote log
// collector: the HTTP delivery client used by the send queue, and a small
// collector server for local development.
package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/wayfarerhq/logpipe/pkg/log"
)

// DefaultBaseURL is used when no API base URL is configured.
const DefaultBaseURL = "http://localhost:8000"

// IngestPath is the collector endpoint receiving frontend log batches.
const IngestPath = "/api/logs/frontend"

// ErrNetworkUnavailable indicates the host provides no network facility.
// The send queue folds it into the ordinary re-queue path.
var ErrNetworkUnavailable = errors.New("collector: network unavailable")

// Envelope is the request body delivered to the collector.
type Envelope struct {
	Logs      []log.Entry `json:"logs"`
	Timestamp string      `json:"timestamp"`
	SessionID string      `json:"sessionId,omitempty"`
}

// ClientOptions configure a Client.
type ClientOptions struct {
	// BaseURL of the collector; "" selects DefaultBaseURL.
	BaseURL string
	// SessionID is stamped on every delivered envelope.
	SessionID string
	// HasNetwork gates whether sends are attempted at all.
	HasNetwork bool
	// HTTPClient overrides the transport. Nil selects a 10s-timeout client.
	HTTPClient *http.Client
}

// Client posts batches of entries to the collector. Any 2xx response is
// success; everything else, including transport errors, is a delivery
// failure.
type Client struct {
	baseURL    string
	sessionID  string
	hasNetwork bool
	httpc      *http.Client
}

// NewClient builds a Client.
func NewClient(opts ClientOptions) *Client {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    base,
		sessionID:  opts.SessionID,
		hasNetwork: opts.HasNetwork,
		httpc:      httpc,
	}
}

// Send delivers one batch as a single request.
func (c *Client) Send(ctx context.Context, batch []log.Entry) error {
	if !c.hasNetwork {
		return ErrNetworkUnavailable
	}

	body, err := json.Marshal(Envelope{
		Logs:      batch,
		Timestamp: log.Now(),
		SessionID: c.sessionID,
	})
	if err != nil {
		return fmt.Errorf("collector: encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+IngestPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("collector: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("collector: send batch: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("collector: unexpected status %s", resp.Status)
	}
	return nil
}
