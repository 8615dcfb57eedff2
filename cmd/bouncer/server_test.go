package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bouncer-bot/bouncer/bouncer/platform"
)

func testServer(t *testing.T) (*Server, *platform.MockClient) {
	t.Helper()
	client := platform.NewMockClient()
	srv, err := NewServer(Config{
		VerifyBaseURL: "http://localhost:8100",
		Platform:      client,
		Logger:        nil,
	})
	require.NoError(t, err)
	return srv, client
}

func submitCode(srv *Server, token, code string) *httptest.ResponseRecorder {
	form := url.Values{}
	form.Set("code", code)
	req := httptest.NewRequest(http.MethodPost, "/verify/"+token, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestVerifyEndpointHappyPath(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	srv, client := testServer(t)

	client.AddMember("g1", platform.Profile{
		UserID:     "u1",
		Username:   "alice",
		AvatarHash: "x",
		RoleIDs:    []string{"r1"},
		CreatedAt:  time.Now().Add(-365 * 24 * time.Hour),
	})
	rec, err := srv.Engine().Ledger.Issue(ctx, "u1", "alice", "g1")
	require.NoError(err)

	// lookup renders who is verifying, never the code
	req := httptest.NewRequest(http.MethodGet, "/verify/"+rec.Token, nil)
	w := httptest.NewRecorder()
	srv.echo.ServeHTTP(w, req)
	assert.Equal(http.StatusOK, w.Code)
	assert.Contains(w.Body.String(), "alice")
	assert.NotContains(w.Body.String(), rec.Code)

	w = submitCode(srv, rec.Token, rec.Code)
	assert.Equal(http.StatusOK, w.Code)
	assert.Contains(w.Body.String(), "success")
	assert.Equal([]string{"g1/u1"}, client.Unrestricted)

	// token is one-time: the record is gone now
	w = submitCode(srv, rec.Token, rec.Code)
	assert.Equal(http.StatusNotFound, w.Code)
}

func TestVerifyEndpointWrongCode(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	srv, client := testServer(t)

	client.AddMember("g1", platform.Profile{UserID: "u1", Username: "alice"})
	rec, err := srv.Engine().Ledger.Issue(ctx, "u1", "alice", "g1")
	require.NoError(err)

	w := submitCode(srv, rec.Token, "nope")
	assert.Equal(http.StatusBadRequest, w.Code)
	assert.Contains(w.Body.String(), "wrong-code")

	w = submitCode(srv, rec.Token, "")
	assert.Equal(http.StatusBadRequest, w.Code)
	assert.Contains(w.Body.String(), "missing-code")
}

func TestVerifyEndpointUnknownToken(t *testing.T) {
	srv, _ := testServer(t)
	w := submitCode(srv, "no-such-token", "whatever")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthCheck(t *testing.T) {
	srv, _ := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/_health", nil)
	w := httptest.NewRecorder()
	srv.echo.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
