package vortex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultBaseURL is the production Vortex API
	DefaultBaseURL = "https://api.vortexsoftware.com/api/v1"
	// DefaultTimeout bounds a single upstream call
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 1 << 20
	userAgent    = "vortex-bridge"
)

// CallObserver is notified after every upstream call
type CallObserver func(operation string, statusCode int, duration time.Duration, err error)

// Client talks to the Vortex API and signs user JWTs.
// It is safe for concurrent use.
type Client struct {
	apiKey     string
	key        *apiKey
	keyErr     error
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	observer   CallObserver
	now        func() time.Time
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another API root
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-call timeout. It applies to a copy of the HTTP
// client, so a client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithObserver registers a hook called after each upstream call
func WithObserver(o CallObserver) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithClock replaces the time source used for JWT timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a client for the given API key. A malformed key still
// yields a client; signing then fails with ErrInvalidAPIKey.
func NewClient(key string, opts ...Option) *Client {
	c := &Client{
		apiKey:  key,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		now: time.Now,
	}
	c.key, c.keyErr = parseAPIKey(key)

	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// GetInvitationsByTarget lists invitations addressed to a target
func (c *Client) GetInvitationsByTarget(ctx context.Context, targetType, targetValue string) ([]Invitation, error) {
	q := url.Values{}
	q.Set("targetType", targetType)
	q.Set("targetValue", targetValue)

	var resp invitationsResponse
	if err := c.do(ctx, "list_by_target", http.MethodGet, "/invitations", q, nil, &resp); err != nil {
		return nil, err
	}
	return nonNil(resp.Invitations), nil
}

// GetInvitation fetches a single invitation
func (c *Client) GetInvitation(ctx context.Context, id string) (*Invitation, error) {
	var inv Invitation
	if err := c.do(ctx, "get", http.MethodGet, "/invitations/"+url.PathEscape(id), nil, nil, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// RevokeInvitation revokes a single invitation
func (c *Client) RevokeInvitation(ctx context.Context, id string) error {
	return c.do(ctx, "revoke", http.MethodDelete, "/invitations/"+url.PathEscape(id), nil, nil, nil)
}

// AcceptInvitations accepts the given invitations on behalf of target
func (c *Client) AcceptInvitations(ctx context.Context, ids []string, target Target) (*Invitation, error) {
	body := acceptRequest{InvitationIDs: ids, Target: target}

	var inv Invitation
	if err := c.do(ctx, "accept", http.MethodPost, "/invitations/accept", nil, body, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetInvitationsByGroup lists invitations attached to a group
func (c *Client) GetInvitationsByGroup(ctx context.Context, groupType, groupID string) ([]Invitation, error) {
	var resp invitationsResponse
	if err := c.do(ctx, "list_by_group", http.MethodGet, groupPath(groupType, groupID), nil, nil, &resp); err != nil {
		return nil, err
	}
	return nonNil(resp.Invitations), nil
}

// DeleteInvitationsByGroup deletes every invitation attached to a group
func (c *Client) DeleteInvitationsByGroup(ctx context.Context, groupType, groupID string) error {
	return c.do(ctx, "delete_by_group", http.MethodDelete, groupPath(groupType, groupID), nil, nil, nil)
}

// Reinvite re-sends an invitation and returns the refreshed record
func (c *Client) Reinvite(ctx context.Context, id string) (*Invitation, error) {
	var inv Invitation
	path := "/invitations/" + url.PathEscape(id) + "/reinvite"
	if err := c.do(ctx, "reinvite", http.MethodPost, path, nil, nil, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func groupPath(groupType, groupID string) string {
	return "/invitations/by-group/" + url.PathEscape(groupType) + "/" + url.PathEscape(groupID)
}

func nonNil(invs []Invitation) []Invitation {
	if invs == nil {
		return []Invitation{}
	}
	return invs
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) (err error) {
	start := time.Now()
	status := 0
	defer func() {
		if c.observer != nil {
			c.observer(op, status, time.Since(start), err)
		}
	}()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vortex request failed: %w", err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("failed to decode vortex response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := ""
	if json.Unmarshal(data, &payload) == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Error
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(data))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
