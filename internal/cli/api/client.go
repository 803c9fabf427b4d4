package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/codeanytime/blogctl/internal/cli/credstore"
	"github.com/codeanytime/blogctl/internal/logger"
)

// Headers attached to every outbound request. X-Skip-Auth-Redirect tells
// the backend to answer API errors as errors instead of substituting a
// federated-login redirect.
const (
	headerAuthMethod   = "X-Auth-Method"
	headerSkipRedirect = "X-Skip-Auth-Redirect"
	headerRequestID    = "X-Request-ID"
)

// FederatedExchangePath is the backend endpoint that initiates/completes
// the federated identity exchange. Requests to it are guarded.
const FederatedExchangePath = "/auth/google"

const (
	requestTimeout  = 30 * time.Second
	maxReadAttempts = 3
	backoffBase     = 1 * time.Second
)

// FlowState is the federated-flow reentrancy guard. It is set around an
// explicit, user-initiated sign-in and inspected atomically before any
// request to the exchange path leaves the process.
type FlowState int32

const (
	FlowIdle FlowState = iota
	FlowInProgress
)

// Client is the single shared HTTP calling surface. It attaches
// authorization headers, suppresses stray federated redirects, intercepts
// authorization failures and retries transient read failures.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      credstore.Store
	log        zerolog.Logger

	flow             atomic.Int32
	onSessionExpired func()
}

// New creates a client for the given API base URL (no trailing slash)
// backed by the given credential store.
func New(baseURL string, creds credstore.Store) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		creds: creds,
		log:   logger.GetLogger().With().Str("component", "api").Logger(),
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// OnSessionExpired registers the hook fired after an authorization
// failure has cleared the stored token. The session provider uses it to
// drop the process-wide state back to logged-out.
func (c *Client) OnSessionExpired(fn func()) {
	c.onSessionExpired = fn
}

// BeginFederatedFlow marks the start of an explicit, user-initiated
// federated sign-in, exempting the exchange path from the guard.
func (c *Client) BeginFederatedFlow() {
	c.flow.Store(int32(FlowInProgress))
}

// EndFederatedFlow clears the exemption, success or failure.
func (c *Client) EndFederatedFlow() {
	c.flow.Store(int32(FlowIdle))
}

// FederatedFlow returns the current flow state.
func (c *Client) FederatedFlow() FlowState {
	return FlowState(c.flow.Load())
}

// Get issues a GET and decodes the JSON response into out. Transient
// network failures are retried with exponential backoff; reads are
// idempotent so this is safe.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.doRetry(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body. Writes are never auto-retried, to
// avoid duplicate side effects.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body. Never auto-retried.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE. Never auto-retried.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil)
}

// PostMultipart uploads a single file field as multipart/form-data.
func (c *Client) PostMultipart(ctx context.Context, path, field, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, buf.Bytes(), w.FormDataContentType(), out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}
	return c.do(ctx, method, path, payload, "application/json", out)
}

// doRetry wraps do with the read-only backoff policy: 3 attempts with
// 1s/2s/4s delays, retrying network-level failures only.
func (c *Client) doRetry(ctx context.Context, method, path string, body []byte, out any) error {
	var err error
	for attempt := 0; attempt < maxReadAttempts; attempt++ {
		if attempt > 0 {
			delay := backoffBase << (attempt - 1)
			c.log.Debug().Str("path", path).Dur("delay", delay).Int("attempt", attempt+1).
				Msg("retrying read after network failure")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return &NetworkError{URL: c.baseURL + path, Err: ctx.Err()}
			}
		}
		err = c.do(ctx, method, path, body, "application/json", out)
		if !IsNetworkError(err) {
			return err
		}
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	target := c.baseURL + path

	token, err := c.creds.Token()
	if err != nil {
		return err
	}

	federated := isFederatedPath(path)

	// A stray request to the exchange path while already authenticated
	// means some asynchronous action is about to be hijacked into a
	// full identity-provider round trip. Only an explicit sign-in, which
	// sets the flow state, may pass.
	if federated && token != "" && c.FederatedFlow() == FlowIdle {
		c.log.Warn().Str("path", path).Msg("blocked federated exchange while authenticated")
		return ErrFederatedBlocked
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" && body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	// The token is never attached to the exchange path itself: the
	// backend would short-circuit the exchange into a redirect loop.
	if token != "" && !federated {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	req.Header.Set(headerAuthMethod, string(c.creds.Method()))
	req.Header.Set(headerSkipRedirect, "true")
	req.Header.Set(headerRequestID, ulid.Make().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return c.interceptAuthFailure(resp, path, token)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Status: resp.StatusCode, Message: readMessage(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// interceptAuthFailure applies the centralized 401/403 policy. The
// identity-flow endpoints are exempt: a wrong password on login must not
// tear down an existing session. A benign "User not authenticated" payload
// is an expected probe answer, not an invalidation.
func (c *Client) interceptAuthFailure(resp *http.Response, path, token string) error {
	msg := readMessage(resp.Body)

	if msg == "User not authenticated" {
		return ErrNotAuthenticated
	}

	if isIdentityFlowPath(path) || token == "" {
		return &StatusError{Status: resp.StatusCode, Message: msg}
	}

	c.log.Warn().Int("status", resp.StatusCode).Str("path", path).
		Msg("authorization failure, clearing stored token")

	// Keep the method tag so the next login attempt can favour the
	// user's preferred flow.
	if err := c.creds.ClearToken(); err != nil {
		c.log.Error().Err(err).Msg("failed to clear stored token")
	}
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
	return ErrSessionExpired
}

func isFederatedPath(path string) bool {
	return trimQuery(path) == FederatedExchangePath
}

// isIdentityFlowPath reports whether path belongs to an identity flow
// whose 401/403 answers carry flow-specific meaning.
func isIdentityFlowPath(path string) bool {
	switch trimQuery(path) {
	case "/auth/login", "/auth/register", FederatedExchangePath:
		return true
	}
	return false
}

func trimQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

// readMessage extracts the backend's error message from a failure body.
func readMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 1<<16))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return strings.TrimSpace(string(data))
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
