package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func writeOK(w http.ResponseWriter, data interface{}) {
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": "OK", "data": data})
}

func writeFail(w http.ResponseWriter, status int, code, message string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": code, "message": message})
}

func TestDoAttachesBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		writeOK(w, map[string]string{"pong": "yes"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetTokens("access-1", "refresh-1")

	var out map[string]string
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/ping", nil, &out))
	require.Equal(t, "yes", out["pong"])
}

func TestDoRefreshesOnUnauthorized(t *testing.T) {
	var refreshed int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "refresh-old", body["refresh_token"])
			atomic.AddInt32(&refreshed, 1)
			writeOK(w, map[string]string{
				"access_token":  "access-new",
				"refresh_token": "refresh-new",
			})
		case "/orders":
			if r.Header.Get("Authorization") != "Bearer access-new" {
				writeFail(w, http.StatusUnauthorized, "INVALID_TOKEN", "token expired")
				return
			}
			writeOK(w, []string{})
		default:
			writeFail(w, http.StatusNotFound, "NOT_FOUND", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetTokens("access-stale", "refresh-old")

	var out []string
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/orders", nil, &out))
	require.EqualValues(t, 1, atomic.LoadInt32(&refreshed))

	access, refresh := c.tokens()
	require.Equal(t, "access-new", access)
	require.Equal(t, "refresh-new", refresh)
}

func TestDoFailsWhenRefreshRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			writeFail(w, http.StatusUnauthorized, "INVALID_TOKEN", "refresh expired")
			return
		}
		writeFail(w, http.StatusUnauthorized, "INVALID_TOKEN", "token expired")
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetTokens("stale", "also-stale")

	err := c.Do(context.Background(), http.MethodGet, "/orders", nil, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnauthorized))
}

func TestDoRetriesGatewayErrorsOnce(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			writeFail(w, http.StatusServiceUnavailable, "UNAVAILABLE", "restarting")
			return
		}
		writeOK(w, map[string]string{"status": "up"})
	}))
	defer srv.Close()

	var out map[string]string
	require.NoError(t, New(srv.URL).Do(context.Background(), http.MethodGet, "/health", nil, &out))
	require.Equal(t, "up", out["status"])
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestDoSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFail(w, http.StatusConflict, "DUPLICATE", "already exists")
	}))
	defer srv.Close()

	err := New(srv.URL).Do(context.Background(), http.MethodPost, "/things", map[string]string{"a": "b"}, nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusConflict, apiErr.Status)
	require.Equal(t, "DUPLICATE", apiErr.Code)
	require.Equal(t, "already exists", apiErr.Message)
}

func TestSignInInstallsTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/signin", r.URL.Path)
		writeOK(w, map[string]string{
			"access_token":  "a-token",
			"refresh_token": "r-token",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.SignIn(context.Background(), "9876543210", "hash"))
	access, refresh := c.tokens()
	require.Equal(t, "a-token", access)
	require.Equal(t, "r-token", refresh)
}
