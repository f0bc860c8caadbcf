package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questifyAPI/middleware"
)

type staticVerifier struct {
	userID string
	err    error
	seen   string
}

func (v *staticVerifier) Verify(ctx context.Context, token string) (string, error) {
	v.seen = token
	if v.err != nil {
		return "", v.err
	}
	return v.userID, nil
}

func runAuth(t *testing.T, verifier middleware.TokenVerifier, mutate func(*http.Request)) (*httptest.ResponseRecorder, string, bool) {
	t.Helper()
	var gotID string
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = middleware.GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state", nil)
	mutate(req)
	rr := httptest.NewRecorder()
	middleware.AuthMiddleware(verifier)(next).ServeHTTP(rr, req)
	return rr, gotID, gotOK
}

func TestAuthMiddleware_BearerToken(t *testing.T) {
	verifier := &staticVerifier{userID: "user-1"}
	rr, gotID, gotOK := runAuth(t, verifier, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer good-token")
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, gotOK)
	assert.Equal(t, "user-1", gotID)
	assert.Equal(t, "good-token", verifier.seen)
}

func TestAuthMiddleware_QueryTokenFallback(t *testing.T) {
	// Websocket clients cannot set headers, so ?token= must work too.
	verifier := &staticVerifier{userID: "user-1"}
	rr, gotID, _ := runAuth(t, verifier, func(r *http.Request) {
		r.URL.RawQuery = "token=ws-token"
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user-1", gotID)
	assert.Equal(t, "ws-token", verifier.seen)
}

func TestAuthMiddleware_HeaderWinsOverQuery(t *testing.T) {
	verifier := &staticVerifier{userID: "user-1"}
	_, _, _ = runAuth(t, verifier, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer header-token")
		r.URL.RawQuery = "token=query-token"
	})

	assert.Equal(t, "header-token", verifier.seen)
}

func TestAuthMiddleware_MissingCredentials(t *testing.T) {
	rr, _, gotOK := runAuth(t, &staticVerifier{userID: "user-1"}, func(r *http.Request) {})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, gotOK)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "Authorization header required")
}

func TestAuthMiddleware_BadScheme(t *testing.T) {
	rr, _, _ := runAuth(t, &staticVerifier{userID: "user-1"}, func(r *http.Request) {
		r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthMiddleware_VerifierRejection(t *testing.T) {
	rr, _, gotOK := runAuth(t, &staticVerifier{err: errors.New("expired")}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer stale-token")
	})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, gotOK)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Invalid token", body["error"])
}

func TestGetUserID_AbsentFromContext(t *testing.T) {
	_, ok := middleware.GetUserID(context.Background())
	assert.False(t, ok)
}
