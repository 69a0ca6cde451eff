package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	consulapi "github.com/hashicorp/consul/api"

	"shopcart/internal/consul"
)

const (
	DefaultCatalogURL   = "https://65c38b5339055e7482c12050.mockapi.io/api/products"
	DefaultSuggestedURL = "https://65c38b5339055e7482c12050.mockapi.io/api/suggestedProducts"

	catalogPath   = "/products"
	suggestedPath = "/suggestedProducts"
)

// ErrUpstream is returned when the catalog answers with a non-200 status.
var ErrUpstream = errors.New("catalog: unexpected upstream response")

// Client fetches product lists from the remote catalog API. Endpoints are
// either fixed URLs or resolved through consul on every call.
type Client struct {
	http         *http.Client
	catalogURL   string
	suggestedURL string

	consul      *consulapi.Client
	serviceName string
}

type ClientOption func(*Client)

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithURLs sets fixed endpoints; empty values keep the current ones.
func WithURLs(catalogURL, suggestedURL string) ClientOption {
	return func(c *Client) {
		if catalogURL != "" {
			c.catalogURL = catalogURL
		}
		if suggestedURL != "" {
			c.suggestedURL = suggestedURL
		}
	}
}

// WithConsul resolves the catalog service through consul instead of fixed URLs.
func WithConsul(client *consulapi.Client, serviceName string) ClientOption {
	return func(c *Client) {
		c.consul = client
		c.serviceName = serviceName
		c.catalogURL, c.suggestedURL = "", ""
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:         &http.Client{Timeout: 10 * time.Second},
		catalogURL:   DefaultCatalogURL,
		suggestedURL: DefaultSuggestedURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchCatalogPage returns every product of every catalog category as one list.
func (c *Client) FetchCatalogPage(ctx context.Context) ([]Product, error) {
	url, err := c.endpoint(c.catalogURL, catalogPath)
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, url)
}

func (c *Client) FetchSuggested(ctx context.Context) ([]Product, error) {
	url, err := c.endpoint(c.suggestedURL, suggestedPath)
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, url)
}

func (c *Client) endpoint(fixed, path string) (string, error) {
	if fixed != "" {
		return fixed, nil
	}
	address, port, err := consul.GetServiceAddress(c.consul, c.serviceName)
	if err != nil {
		return "", fmt.Errorf("catalog service unavailable: %w", err)
	}
	return fmt.Sprintf("http://%s:%d%s", address, port, path), nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUpstream, url, resp.StatusCode)
	}

	var categories []Category
	if err := json.NewDecoder(resp.Body).Decode(&categories); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return Flatten(categories), nil
}

// String is used in startup logs.
func (c *Client) String() string {
	if c.consul != nil {
		return "consul:" + c.serviceName
	}
	return strings.Join([]string{c.catalogURL, c.suggestedURL}, ",")
}
