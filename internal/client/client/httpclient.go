package client

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
	"time"

	"github.com/dmitrijs2005/gymkeeper/internal/client/models"
	"github.com/dmitrijs2005/gymkeeper/internal/common"
	"github.com/dmitrijs2005/gymkeeper/internal/logging"
	"github.com/google/uuid"
)

const maxErrorBody = 4 << 10

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	log     logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client. Its transport is still
// wrapped to add request ids.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *HTTPClient) {
		cl.http = c
	}
}

func WithTimeout(d time.Duration) Option {
	return func(cl *HTTPClient) {
		cl.timeout = d
	}
}

func WithLogger(l logging.Logger) Option {
	return func(cl *HTTPClient) {
		cl.log = l
	}
}

func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base url scheme %q", u.Scheme)
	}

	c := &HTTPClient{
		baseURL: u,
		http:    http.DefaultClient,
		timeout: 10 * time.Second,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.http
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	next := hc.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	hc.Transport = &requestIDTransport{next: next}
	c.http = &hc

	return c, nil
}

func (c *HTTPClient) endpoint(path ...string) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path
	for _, p := range path {
		u.Path += "/" + p
	}
	return u.String()
}

// VerifyToken exchanges a token for the role and id of its owner.
func (c *HTTPClient) VerifyToken(ctx context.Context, token string) (*models.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("verify-token", token), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	withBearer(req, token)

	var resp struct {
		Message string `json:"message"`
		Role    string `json:"role"`
		UserID  *int64 `json:"user_id"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if resp.Role == "" || resp.UserID == nil {
		return nil, fmt.Errorf("%w: verify-token answer without role or user_id", ErrMalformedResponse)
	}

	return &models.Identity{Message: resp.Message, Role: resp.Role, UserID: *resp.UserID}, nil
}

// Login posts the credentials as a form and returns the access token.
func (c *HTTPClient) Login(ctx context.Context, username string, password []byte) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", string(password))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("token"), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp models.TokenResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access_token", ErrMalformedResponse)
	}
	return resp.AccessToken, nil
}

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	body, err := json.Marshal(reg)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("register"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var user models.User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) Profile(ctx context.Context, token string) (*models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("user", "profile"), nil)
	if err != nil {
		return nil, err
	}
	withBearer(req, token)

	var user models.User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Ping reports whether the backend answers at all. Any response below 500
// counts as reachable.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.mapError(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return &APIError{StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	reqID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		return c.mapError(err)
	}
	defer resp.Body.Close()

	c.log.Debug(req.Context(), "api call",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"request_id", reqID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

func (c *HTTPClient) mapError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// readDetail pulls the "detail" field out of an error body. Validation
// errors carry a structured detail, which is returned as raw JSON.
func readDetail(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(b) == 0 {
		return ""
	}

	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(b, &body); err != nil || len(body.Detail) == 0 {
		return strings.TrimSpace(string(b))
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	return string(body.Detail)
}
