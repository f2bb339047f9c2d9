// Package middleware holds the client side round trippers shared by every
// REST call: credential injection and request correlation.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// ErrNoToken is returned, without touching the network, when the token
// source has nothing to authenticate with.
var ErrNoToken = errors.New("no bearer credential available")

type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// RoundTripperFunc lets a plain function serve as an http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

type Middleware func(http.RoundTripper) http.RoundTripper

// Chain wraps base so that the first middleware sees the request first.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}

// Auth attaches "Authorization: Bearer <token>", reading the token for every
// request so a fresh login is picked up immediately.
func Auth(tokens TokenSource) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			token, err := tokens.Token(r.Context())
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrNoToken, err)
			}
			if token == "" {
				return nil, ErrNoToken
			}

			r = r.Clone(r.Context())
			r.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(r)
		})
	}
}

// RequestID stamps each request with a fresh correlation id unless the
// caller already set one.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(RequestIDHeader) != "" {
				return next.RoundTrip(r)
			}
			r = r.Clone(r.Context())
			r.Header.Set(RequestIDHeader, uuid.NewString())
			return next.RoundTrip(r)
		})
	}
}
