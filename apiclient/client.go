// Package apiclient is the authorized request pipeline for the launcher
// backend: it attaches a valid bearer token to every outbound call, retries a
// 401 exactly once after a forced refresh, and tears the session down when
// authorization cannot be recovered.
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/mihira-vl/launcher/internal/config"
	apperrors "github.com/mihira-vl/launcher/internal/errors"
)

// DefaultTimeout bounds ordinary backend calls.
const DefaultTimeout = 10 * time.Second

const sessionExpiredReason = "Session expired. Please log in again."

// TokenSource is the session-manager surface the pipeline depends on.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	ForceExpire()
	Logout(ctx context.Context)
}

// SessionExpiredFunc receives a human-readable reason when the session has
// become unrecoverable. The caller is expected to force the user back to an
// unauthenticated state.
type SessionExpiredFunc func(reason string)

// RequestOptions carries the optional parts of an outbound call. Body is a
// byte slice so the single 401 retry can replay it; caller headers are
// preserved, except Authorization which is always overwritten.
type RequestOptions struct {
	Header      http.Header
	Query       url.Values
	Body        []byte
	ContentType string
}

// Client executes authorized calls against the backend API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	session        TokenSource
	sessionExpired SessionExpiredFunc
}

type Option func(*Client)

// WithHTTPClient overrides the HTTP client (primarily for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSessionExpiredFunc registers the out-of-band notification invoked when
// the session is torn down.
func WithSessionExpiredFunc(fn SessionExpiredFunc) Option {
	return func(c *Client) {
		c.sessionExpired = fn
	}
}

// New creates the pipeline around a session manager.
func New(cfg config.BackendConfig, session TokenSource, options ...Option) (*Client, error) {
	if session == nil {
		return nil, errors.New("[apiclient.New] session is required")
	}

	client := &Client{
		baseURL:        strings.TrimRight(cfg.GetAPIBaseURL(), "/"),
		httpClient:     &http.Client{Timeout: DefaultTimeout},
		session:        session,
		sessionExpired: func(string) {},
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

// Do executes one logical call. On a 401 it forces a refresh and retries
// exactly once; a second 401 (or a failed forced refresh) terminates the
// session and surfaces ErrSessionExpired instead of the response. Every other
// status, including non-401 errors, is returned to the caller as-is.
// Transport failures propagate unchanged and never touch session state.
func (c *Client) Do(ctx context.Context, method, path string, opts *RequestOptions) (*http.Response, error) {
	token, err := c.session.AccessToken(ctx)
	if err != nil {
		return nil, c.raiseSessionExpired(err)
	}

	requestID := uuid.New().String()

	resp, err := c.send(ctx, method, path, opts, token, requestID)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	drain(resp)

	// One forced refresh, one retry. The pipeline never loops on repeated
	// 401s.
	c.session.ForceExpire()
	token, err = c.session.AccessToken(ctx)
	if err != nil {
		c.session.Logout(ctx)
		return nil, c.raiseSessionExpired(err)
	}

	log.Debug().Str("method", method).Str("path", path).Str("request_id", requestID).Msg("retrying after 401")
	resp, err = c.send(ctx, method, path, opts, token, requestID)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		c.session.Logout(ctx)
		return nil, c.raiseSessionExpired(nil)
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, method, path string, opts *RequestOptions, token, requestID string) (*http.Response, error) {
	var body io.Reader
	if opts != nil && len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.send] build request")
	}

	if opts != nil {
		for key, values := range opts.Header {
			for _, value := range values {
				req.Header.Add(key, value)
			}
		}
		if len(opts.Query) > 0 {
			req.URL.RawQuery = opts.Query.Encode()
		}
		if opts.ContentType != "" {
			req.Header.Set("Content-Type", opts.ContentType)
		}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", requestID)

	return c.httpClient.Do(req)
}

// raiseSessionExpired fires the notification and returns the error the
// caller sees. An underlying ErrSessionExpired is passed through so its
// context is not lost.
func (c *Client) raiseSessionExpired(cause error) error {
	c.sessionExpired(sessionExpiredReason)
	if cause != nil && apperrors.Is(cause, apperrors.ErrSessionExpired) {
		return cause
	}
	if cause != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrSessionExpired, cause)
	}
	return fmt.Errorf("%w: backend rejected the renewed token", apperrors.ErrSessionExpired)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
