// Package client is the Go SDK for the agrimarket server. It wraps every
// request with bearer token handling and keeps outgoing chat messages in a
// local outbox so they survive connectivity loss.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const gatewayRetryDelay = 2 * time.Second

var ErrUnauthorized = errors.New("authentication failed")

// APIError carries the server's error envelope for non-2xx responses.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

type envelope struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Data    jsoniter.RawMessage `json:"data"`
}

// Client talks to the agrimarket HTTP API. A 401 response triggers one
// transparent token refresh before the request is replayed; gateway errors
// (502/503/504) are replayed once after a short delay.
type Client struct {
	baseURL string
	httpc   *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// SetTokens installs the token pair obtained from signin or signup.
func (c *Client) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
}

func (c *Client) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SignIn authenticates with phone and hashed password and installs the
// returned token pair.
func (c *Client) SignIn(ctx context.Context, phone, password string) error {
	var pair tokenPair
	err := c.Do(ctx, http.MethodPost, "/auth/signin",
		map[string]string{"phone": phone, "password": password}, &pair)
	if err != nil {
		return err
	}
	c.SetTokens(pair.AccessToken, pair.RefreshToken)
	return nil
}

func (c *Client) refresh(ctx context.Context) error {
	_, refreshTok := c.tokens()
	if refreshTok == "" {
		return ErrUnauthorized
	}
	var pair tokenPair
	err := c.doOnce(ctx, http.MethodPost, "/auth/refresh",
		map[string]string{"refresh_token": refreshTok}, &pair, false)
	if err != nil {
		return errors.Wrap(ErrUnauthorized, err.Error())
	}
	c.SetTokens(pair.AccessToken, pair.RefreshToken)
	return nil
}

// Do performs a request against the API. The body is JSON-encoded when
// non-nil; the envelope's data field is decoded into out when non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	err := c.doOnce(ctx, method, path, body, out, true)

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized:
			if rerr := c.refresh(ctx); rerr != nil {
				return rerr
			}
			return c.doOnce(ctx, method, path, body, out, true)
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(gatewayRetryDelay):
			}
			return c.doOnce(ctx, method, path, body, out, true)
		}
	}
	return err
}

func (c *Client) doOnce(ctx context.Context, method, path string, body, out interface{}, auth bool) error {
	var reader io.Reader
	if body != nil {
		payload, err := jsoniter.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if auth {
		if access, _ := c.tokens(); access != "" {
			req.Header.Set("Authorization", "Bearer "+access)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if len(raw) > 0 {
		if err := jsoniter.Unmarshal(raw, &env); err != nil {
			env = envelope{}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
		if apiErr.Code == "" {
			apiErr.Code = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := jsoniter.Unmarshal(env.Data, out); err != nil {
			return errors.Wrap(err, "decode response")
		}
	}
	return nil
}
