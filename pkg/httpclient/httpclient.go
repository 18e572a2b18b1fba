// Package httpclient builds the http.Client shared by all remote API
// services: it injects the bearer token of the current session into every
// request and reports unauthorized responses to the session owner.
package httpclient

import (
	"net/http"
	"time"
)

const (
	AuthorizationHeader = "Authorization"
	bearer              = "Bearer "
)

// TokenSource yields the current bearer token, empty when logged out.
type TokenSource interface {
	Token() string
}

type Option func(*transport)

// WithUnauthorized installs the handler invoked whenever any request comes
// back with 401. The handler is injected at construction so there is no
// mutable package-level hook; it may be called from any in-flight request
// and must be idempotent.
func WithUnauthorized(fn func()) Option {
	return func(t *transport) {
		t.onUnauthorized = fn
	}
}

// WithBase overrides the underlying RoundTripper.
func WithBase(rt http.RoundTripper) Option {
	return func(t *transport) {
		t.base = rt
	}
}

func New(tokens TokenSource, opts ...Option) *http.Client {
	t := &transport{
		base:   http.DefaultTransport,
		tokens: tokens,
	}
	for _, opt := range opts {
		opt(t)
	}
	return &http.Client{
		Timeout:   time.Minute,
		Transport: t,
	}
}

type transport struct {
	base           http.RoundTripper
	tokens         TokenSource
	onUnauthorized func()
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if token := t.tokens.Token(); token != "" && req.Header.Get(AuthorizationHeader) == "" {
		req = req.Clone(req.Context())
		req.Header.Set(AuthorizationHeader, bearer+token)
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized && t.onUnauthorized != nil {
		t.onUnauthorized()
	}
	return resp, nil
}
