// Package gateway implements the REST clients this module consumes: the
// storefront API (cart, wishlist, products, orders) and the hosted
// identity provider. Responses are normalized into canonical domain
// shapes at this boundary; nothing past it deals with wire quirks.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// TokenSource supplies the bearer credential for authenticated calls.
// An empty token sends the request unauthenticated.
type TokenSource interface {
	AccessToken() string
}

// anonymousTokens is used where no session exists (identity endpoints).
type anonymousTokens struct{}

func (anonymousTokens) AccessToken() string { return "" }

// Client is the shared HTTP plumbing for every gateway.
type Client struct {
	http   *resty.Client
	tokens TokenSource
	logger *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, logger *zap.Logger) *Client {
	if tokens == nil {
		tokens = anonymousTokens{}
	}
	return &Client{
		http:   resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		tokens: tokens,
		logger: logger,
	}
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if token := c.tokens.AccessToken(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// apiError turns a non-2xx response into an error carrying the status and
// a truncated body for logs.
func apiError(op string, resp *resty.Response) error {
	body := resp.Body()
	if len(body) > 256 {
		body = body[:256]
	}
	return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode(), string(body))
}

func isNotFound(resp *resty.Response) bool {
	return resp.StatusCode() == http.StatusNotFound
}
