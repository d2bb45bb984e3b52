// Package feeds reads the public tag and protocol catalogs used to seed
// reference data.
package feeds

import (
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

// maxFeedBytes bounds a single feed response.
const maxFeedBytes = 64 << 20

// Category is one entry of the CoinGecko categories feed.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Protocol is one entry of the DefiLlama protocols feed. Optional fields are
// frequently null upstream.
type Protocol struct {
	ID          string  `json:"id"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Logo        *string `json:"logo"`
	Category    *string `json:"category"`
	URL         *string `json:"url"`
	Symbol      *string `json:"symbol"`
}

// Client fetches both catalog feeds.
type Client struct {
	tagURL      string
	protocolURL string
	http        *http.Client
	cb          *gobreaker.CircuitBreaker
}

// NewClient builds a feed client from the catalog configuration.
func NewClient(cfg config.CatalogConfig, logg *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		tagURL:      cfg.TagFeedURL,
		protocolURL: cfg.ProtocolFeedURL,
		http:        &http.Client{Timeout: timeout},
		cb:          breaker.New("catalog-feeds", logg),
	}
}

// Categories returns every category with a non-empty id and name.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var raw []Category
	if err := c.getJSON(ctx, c.tagURL, &raw); err != nil {
		return nil, err
	}
	out := raw[:0]
	for _, cat := range raw {
		cat.ID = strings.TrimSpace(cat.ID)
		cat.Name = strings.TrimSpace(cat.Name)
		if cat.ID == "" || cat.Name == "" {
			continue
		}
		out = append(out, cat)
	}
	return out, nil
}

// Protocols returns every protocol with a non-empty id and name.
func (c *Client) Protocols(ctx context.Context) ([]Protocol, error) {
	var raw []Protocol
	if err := c.getJSON(ctx, c.protocolURL, &raw); err != nil {
		return nil, err
	}
	out := raw[:0]
	for _, p := range raw {
		if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Name) == "" {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, url string, dest any) error {
	if url == "" {
		return errors.New("feed url is not configured")
	}
	return breaker.Run(c.cb, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
			return fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxFeedBytes)).Decode(dest); err != nil {
			return fmt.Errorf("decode %s: %w", url, err)
		}
		return nil
	})
}
