// Package mixpanel sends events and profile updates to the Mixpanel ingestion API.
package mixpanel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/HarshArya1405/typescriptDemo/pkg/breaker"
	"github.com/HarshArya1405/typescriptDemo/pkg/config"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
	"github.com/sony/gobreaker"
)

// Client posts to the /track and /engage endpoints.
type Client struct {
	token   string
	apiHost string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker
	now     func() time.Time
}

// NewClient builds a client for the configured project token.
func NewClient(cfg config.MixpanelConfig, logg *logger.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("mixpanel token is required")
	}
	host := strings.TrimRight(cfg.APIHost, "/")
	if host == "" {
		host = "https://api.mixpanel.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		token:   cfg.Token,
		apiHost: host,
		http:    &http.Client{Timeout: timeout},
		cb:      breaker.New("mixpanel", logg),
		now:     time.Now,
	}, nil
}

type trackEvent struct {
	Event      string         `json:"event"`
	Properties map[string]any `json:"properties"`
}

type engageUpdate struct {
	Token      string         `json:"$token"`
	DistinctID string         `json:"$distinct_id"`
	Set        map[string]any `json:"$set"`
}

// Track records one event attributed to distinctID.
func (c *Client) Track(ctx context.Context, event, distinctID string, props map[string]any) error {
	properties := make(map[string]any, len(props)+3)
	for k, v := range props {
		properties[k] = v
	}
	properties["token"] = c.token
	properties["time"] = c.now().UnixMilli()
	if distinctID != "" {
		properties["distinct_id"] = distinctID
	}
	return c.post(ctx, "/track", []trackEvent{{Event: event, Properties: properties}})
}

// SetProfile sets people properties on distinctID.
func (c *Client) SetProfile(ctx context.Context, distinctID string, props map[string]any) error {
	if distinctID == "" {
		return errors.New("distinct id is required")
	}
	return c.post(ctx, "/engage", []engageUpdate{{Token: c.token, DistinctID: distinctID, Set: props}})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return breaker.Run(c.cb, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiHost+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "text/plain")

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("mixpanel %s: %w", path, err)
		}
		defer resp.Body.Close()

		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		if resp.StatusCode >= http.StatusMultipleChoices {
			return fmt.Errorf("mixpanel %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
		}
		if strings.TrimSpace(string(raw)) == "0" {
			return fmt.Errorf("mixpanel %s: payload rejected", path)
		}
		return nil
	})
}
