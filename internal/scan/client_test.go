package scan

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/croplink/agrimarket/config"
)

func newTestClient(endpoint string) *Client {
	return NewClient(config.ScanConfig{Endpoint: endpoint, ApiKey: "test-key", Timeout: 5})
}

func TestAnalyzeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "rose", body["crop"])
		require.Equal(t, "en", body["language"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"plant":           "Rose",
			"disease_or_pest": "Black spot",
			"description":     "Fungal infection of the leaves",
			"keywords":        []string{"fungicide", "pruning"},
		})
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).Analyze(context.Background(), "aW1n", "rose", "en")
	require.NoError(t, err)
	require.Equal(t, "Rose", result.Plant)
	require.Equal(t, "Black spot", result.Condition)
	require.Equal(t, []string{"fungicide", "pruning"}, result.Keywords)
}

func TestAnalyzeRetriesThrottling(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"plant": "Tomato", "disease_or_pest": "Healthy",
		})
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).Analyze(context.Background(), "aW1n", "tomato", "en")
	require.NoError(t, err)
	require.Equal(t, "Tomato", result.Plant)
	require.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestAnalyzeGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Analyze(context.Background(), "aW1n", "rose", "en")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUpstream))
	require.EqualValues(t, maxAttempts, atomic.LoadInt32(&calls))
}

func TestAnalyzeDoesNotRetryRejection(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Analyze(context.Background(), "not-an-image", "rose", "en")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrUpstream))
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestAnalyzeWithoutEndpoint(t *testing.T) {
	client := NewClient(config.ScanConfig{})
	_, err := client.Analyze(context.Background(), "aW1n", "rose", "en")
	require.True(t, errors.Is(err, ErrUpstream))
}
