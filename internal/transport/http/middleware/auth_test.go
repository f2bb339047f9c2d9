package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) Token(context.Context) (string, error) {
	return s.token, s.err
}

func TestAuthAndRequestID(t *testing.T) {
	var gotAuth, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotID = r.Header.Get(RequestIDHeader)
	}))
	defer srv.Close()

	client := &http.Client{Transport: Chain(nil, RequestID(), Auth(staticTokens{token: "abc"}))}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer abc", gotAuth)
	_, err = uuid.Parse(gotID)
	assert.NoError(t, err)
	assert.Empty(t, req.Header.Get("Authorization"), "caller's request must not be mutated")
}

func TestRequestIDKeepsCallerValue(t *testing.T) {
	var gotID string
	rt := Chain(RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		gotID = r.Header.Get(RequestIDHeader)
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	}), RequestID())

	req := httptest.NewRequest(http.MethodGet, "http://example.test", nil)
	req.Header.Set(RequestIDHeader, "fixed")
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, "fixed", gotID)
}

func TestAuthWithoutTokenNeverSends(t *testing.T) {
	sent := false
	base := RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		sent = true
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	storeErr := errors.New("nothing stored")
	for _, tokens := range []staticTokens{{}, {err: storeErr}} {
		_, err := Chain(base, Auth(tokens)).RoundTrip(httptest.NewRequest(http.MethodGet, "http://example.test", nil))
		assert.ErrorIs(t, err, ErrNoToken)
	}
	assert.False(t, sent)

	_, err := Chain(base, Auth(staticTokens{err: storeErr})).RoundTrip(httptest.NewRequest(http.MethodGet, "http://example.test", nil))
	assert.ErrorIs(t, err, storeErr)
}
