package mockapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(Options{
		Prefix:     "/api",
		Users:      []User{{Email: "ada@example.com", Password: "correct horse"}},
		SigningKey: []byte("test-signing-key-test-signing-key"),
	})
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestLoginMeLogout(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"correct horse"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res loginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)
	assert.Equal(t, s.UserID("ada@example.com"), res.User.ID)

	rec = do(t, s, http.MethodGet, "/api/me", "", res.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ada@example.com")

	rec = do(t, s, http.MethodPost, "/api/auth/logout", "", res.Token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/me", "", res.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Session expired")
}

func TestLoginFailures(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid credentials"}`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/api/auth/login", `{"email":"","password":""}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"email and password required"}`, rec.Body.String())
}

func TestMeRequiresBearer(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/me", "", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFailRoute(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/fail/503?message=down", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"message":"down"}`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/api/fail/404", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestBearerToken(t *testing.T) {
	tok, ok := bearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)
	_, ok = bearerToken("Bearer ")
	assert.False(t, ok)
	_, ok = bearerToken("Basic abc")
	assert.False(t, ok)
}

func TestCredentialsRejectDuplicates(t *testing.T) {
	c := newCredentials()
	_, err := c.add("a@b.c", "pw")
	require.NoError(t, err)
	_, err = c.add("A@B.C", "pw2")
	assert.ErrorIs(t, err, errUserExists)

	_, err = c.verify("a@b.c", "wrong")
	assert.ErrorIs(t, err, errWrongPassword)
	acc, err := c.verify(" A@b.c ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", acc.email)
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	s, err := New(Options{
		Prefix:      "/api",
		SigningKey:  []byte("test-signing-key-test-signing-key"),
		MetricsPath: "/metrics",
	})
	require.NoError(t, err)

	do(t, s, http.MethodGet, "/api/fail/503", "", "")
	do(t, s, http.MethodGet, "/api/me", "", "")

	rec := do(t, s, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `mockapi_requests_total{route="/api/fail/:status",status="503"} 1`)
	assert.Contains(t, body, `mockapi_requests_total{route="/api/me",status="401"} 1`)
}

func TestLoginThrottledAfterRepeatedFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s, err := New(Options{
		Prefix:        "/api",
		Users:         []User{{Email: "ada@example.com", Password: "correct horse"}},
		SigningKey:    []byte("test-signing-key-test-signing-key"),
		Redis:         rdb,
		LoginAttempts: 2,
	})
	require.NoError(t, err)

	bad := `{"email":"ada@example.com","password":"nope"}`
	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodPost, "/api/auth/login", bad, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodPost, "/api/auth/login", bad, "").Code)

	rec := do(t, s, http.MethodPost, "/api/auth/login", bad, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too many login attempts")

	good := `{"email":"ada@example.com","password":"correct horse"}`
	assert.Equal(t, http.StatusTooManyRequests, do(t, s, http.MethodPost, "/api/auth/login", good, "").Code)

	mr.FastForward(16 * time.Minute)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/auth/login", good, "").Code)
	assert.False(t, mr.Exists("mockapi:login:ada@example.com"))
}
