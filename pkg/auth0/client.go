// Package auth0 calls the Auth0 Management API to link and unlink identities.
package auth0

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/HarshArya1405/typescriptDemo/pkg/breaker"
	"github.com/HarshArya1405/typescriptDemo/pkg/config"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const defaultProvider = "auth0"

// Linker links secondary identities onto a primary Auth0 user.
type Linker interface {
	LinkIdentity(ctx context.Context, primarySub, secondarySub string) error
	UnlinkIdentity(ctx context.Context, primarySub, provider, secondaryUserID string) error
}

// Client is a Management API client authenticated with client credentials.
type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker
	logg    *logger.Logger
}

// APIError is a non-2xx response from the Management API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth0 management api: status %d: %s", e.StatusCode, e.Body)
}

// NewClient builds a client for the configured tenant.
func NewClient(cfg config.Auth0Config, logg *logger.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("auth0 domain, client id and client secret are required")
	}

	base := cfg.BaseURL()
	creds := clientcredentials.Config{
		ClientID:       cfg.ClientID,
		ClientSecret:   cfg.ClientSecret,
		TokenURL:       base + "/oauth/token",
		EndpointParams: url.Values{"audience": {cfg.ManagementAudience()}},
		AuthStyle:      oauth2.AuthStyleInParams,
	}

	tokenHTTP := &http.Client{Timeout: cfg.Timeout}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, tokenHTTP)
	httpClient := creds.Client(tokenCtx)
	httpClient.Timeout = cfg.Timeout

	return &Client{
		baseURL: base,
		http:    httpClient,
		cb:      breaker.New("auth0-management", logg),
		logg:    logg,
	}, nil
}

type linkRequest struct {
	Provider string `json:"provider"`
	UserID   string `json:"user_id"`
}

// LinkIdentity links secondarySub (e.g. "google-oauth2|123") onto primarySub.
func (c *Client) LinkIdentity(ctx context.Context, primarySub, secondarySub string) error {
	if primarySub == "" || secondarySub == "" {
		return errors.New("primary and secondary subjects are required")
	}
	if primarySub == secondarySub {
		return nil
	}
	provider, userID := SplitSubject(secondarySub)
	body, err := json.Marshal(linkRequest{Provider: provider, UserID: userID})
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/api/v2/users/%s/identities", c.baseURL, url.PathEscape(primarySub))
	return c.do(ctx, http.MethodPost, endpoint, body)
}

// UnlinkIdentity removes the provider/userID identity from primarySub.
func (c *Client) UnlinkIdentity(ctx context.Context, primarySub, provider, secondaryUserID string) error {
	if primarySub == "" || provider == "" || secondaryUserID == "" {
		return errors.New("primary subject, provider and secondary user id are required")
	}
	if p, id := SplitSubject(secondaryUserID); p == provider {
		secondaryUserID = id
	}
	endpoint := fmt.Sprintf("%s/api/v2/users/%s/identities/%s/%s",
		c.baseURL,
		url.PathEscape(primarySub),
		url.PathEscape(provider),
		url.PathEscape(secondaryUserID),
	)
	return c.do(ctx, http.MethodDelete, endpoint, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) error {
	return breaker.Run(c.cb, func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("auth0 %s %s: %w", method, req.URL.Path, err)
		}
		defer closeBody(resp.Body)

		if resp.StatusCode >= http.StatusMultipleChoices {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
			return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	})
}

// SplitSubject splits "provider|id" into its parts. Subjects without a
// separator are treated as auth0 database users.
func SplitSubject(sub string) (provider, userID string) {
	provider, userID, ok := strings.Cut(sub, "|")
	if !ok {
		return defaultProvider, sub
	}
	return provider, userID
}

func closeBody(body io.ReadCloser) {
	if body != nil {
		_ = body.Close()
	}
}
