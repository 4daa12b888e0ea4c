package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"farewatch/internal/config"
)

// ErrTransport wraps every failure to obtain a usable search response.
var ErrTransport = errors.New("fare search transport")

const bodyExcerptLen = 200

// Client defines the fare search transport used by the checker.
type Client interface {
	Search(ctx context.Context, req Request) ([]byte, error)
}

// StatusError is returned when the search endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrTransport
}

// SNCFClient implements the Client interface for the SNCF Connect itineraries API.
type SNCFClient struct {
	logger     *slog.Logger
	cfg        config.SearchConfig
	httpClient *http.Client
}

// NewClient creates a new SNCFClient.
func NewClient(cfg config.SearchConfig, logger *slog.Logger) *SNCFClient {
	return &SNCFClient{
		logger:     logger,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Search posts the request and returns the raw JSON document.
func (c *SNCFClient) Search(ctx context.Context, req Request) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrTransport, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	c.setHeaders(httpReq)

	c.logger.Debug("SNCFClient: searching", "origin", req.MainJourney.Origin.Label, "destination", req.MainJourney.Destination.Label, "outward", req.Schedule.Outward.Date)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt := data
		if len(excerpt) > bodyExcerptLen {
			excerpt = excerpt[:bodyExcerptLen]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(excerpt)}
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrTransport)
	}
	return data, nil
}

func (c *SNCFClient) setHeaders(req *http.Request) {
	h := req.Header
	h.Set("User-Agent", c.cfg.UserAgent)
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Accept-Language", "fr,fr-FR;q=0.9,en;q=0.8")
	h.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		h.Set("x-bff-key", c.cfg.APIKey)
	}
	h.Set("x-client-channel", "web")
	h.Set("x-client-app-id", "front-web")
	h.Set("x-market-locale", "fr_FR")
	h.Set("x-api-env", "production")
	h.Set("Origin", "https://www.sncf-connect.com")
	h.Set("Referer", "https://www.sncf-connect.com/home/shop/results/outward")
}
