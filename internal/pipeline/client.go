package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deppfellow/ctxword/internal/config"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	findPath   = "/find"
	healthPath = "/health"

	// maxResponseBytes caps how much of a model server answer is read.
	maxResponseBytes = 16 << 20

	// maxErrorBodyBytes is how much of a failed answer ends up in UpstreamError.
	maxErrorBodyBytes = 512
)

// UpstreamError reports a non-successful answer from the model server.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("model server answered %d", e.StatusCode)
	}
	return fmt.Sprintf("model server answered %d: %s", e.StatusCode, e.Body)
}

// findRequest is the body of POST /find.
type findRequest struct {
	Sentence  string `json:"sentence"`
	Positions Span   `json:"positions"`
	Limit     int    `json:"limit"`
}

// Client talks to the model server over HTTP.
//
// It is safe for concurrent use. Outbound calls are recorded as New Relic
// external segments when the request context carries a transaction.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zerolog.Logger
}

// NewClient creates a Client for the model server described by cfg.
func NewClient(cfg config.PipelineConfig, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newrelic.NewRoundTripper(http.DefaultTransport),
		},
		logger: logger,
	}
}

// Find asks the model server for at most limit candidates replacing span in sentence.
func (c *Client) Find(ctx context.Context, sentence string, span Span, limit int) (*Table, error) {
	payload, err := json.Marshal(findRequest{
		Sentence:  sentence,
		Positions: span,
		Limit:     limit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: encode find request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+findPath, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: create find request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("sentence", sentence).
			Str("span", span.String()).
			Msg("model server request failed")
		return nil, errors.Wrap(err, "pipeline: find request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.WithStack(newUpstreamError(resp))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: read find response")
	}

	var table Table
	if err := json.Unmarshal(body, &table); err != nil {
		return nil, errors.Wrap(err, "pipeline: decode find response")
	}

	c.logger.Debug().
		Str("span", span.String()).
		Int("limit", limit).
		Int("rows", table.Len()).
		Dur("duration", time.Since(start)).
		Msg("model server answered")

	return &table, nil
}

// Ping checks the model server's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return errors.Wrap(err, "pipeline: create health request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "pipeline: health request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.WithStack(newUpstreamError(resp))
	}
	return nil
}

func newUpstreamError(resp *http.Response) *UpstreamError {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return &UpstreamError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(snippet)),
	}
}
