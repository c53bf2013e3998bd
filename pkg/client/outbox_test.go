package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// chatServer fakes the conversation endpoints, failing the first failSends
// message posts with 503 and recording every accepted client_ref.
type chatServer struct {
	mu        sync.Mutex
	failSends int
	nextConv  int64
	convs     map[string]int64 // peer user id -> conversation id
	accepted  []string
}

func newChatServer() *chatServer {
	return &chatServer{nextConv: 1000, convs: map[string]int64{}}
}

func (cs *chatServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/conversations", func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		peer := body["with_user_id"]
		id, ok := cs.convs[peer]
		if !ok {
			cs.nextConv++
			id = cs.nextConv
			cs.convs[peer] = id
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"code": "OK",
			"data": map[string]interface{}{"id": strconv.FormatInt(id, 10)},
		})
	})
	mux.HandleFunc("/conversations/", func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		if cs.failSends > 0 {
			cs.failSends--
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"code": "UNAVAILABLE"})
			return
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, ref := range cs.accepted {
			if ref == body["client_ref"] {
				// replay of a known ref is acknowledged, not duplicated
				_ = json.NewEncoder(w).Encode(map[string]string{"code": "OK"})
				return
			}
		}
		cs.accepted = append(cs.accepted, body["client_ref"])
		_ = json.NewEncoder(w).Encode(map[string]string{"code": "OK"})
	})
	return mux
}

func (cs *chatServer) acceptedRefs() []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]string(nil), cs.accepted...)
}

func newTestOutbox(t *testing.T, baseURL string, onFail FailFunc) *Outbox {
	t.Helper()
	path := filepath.Join(t.TempDir(), "outbox.db")
	o, err := OpenOutbox(path, New(baseURL), onFail)
	require.NoError(t, err)
	t.Cleanup(func() { _ = o.Close() })
	return o
}

func TestOutboxSendsImmediately(t *testing.T) {
	cs := newChatServer()
	srv := httptest.NewServer(cs.handler())
	defer srv.Close()

	o := newTestOutbox(t, srv.URL, nil)

	ref, err := o.Send(context.Background(), 42, "hello")
	require.NoError(t, err)
	require.Equal(t, []string{ref}, cs.acceptedRefs())

	pending, err := o.Pending()
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestOutboxRetriesUntilHealthyWithoutDuplicates(t *testing.T) {
	cs := newChatServer()
	cs.failSends = 3 // gateway retry absorbs one failure per flush
	srv := httptest.NewServer(cs.handler())
	defer srv.Close()

	o := newTestOutbox(t, srv.URL, nil)
	ctx := context.Background()

	ref, err := o.Send(ctx, 42, "are you there")
	require.NoError(t, err)

	// still queued after the failing flush
	pending, err := o.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, StatePending, pending[0].State)
	require.Equal(t, 1, pending[0].Attempts)

	// transport recovers, next flush drains the queue
	require.NoError(t, o.Flush(ctx))
	pending, err = o.Pending()
	require.NoError(t, err)
	require.Empty(t, pending)

	require.Equal(t, []string{ref}, cs.acceptedRefs())
}

func TestOutboxPreservesQueueOrder(t *testing.T) {
	cs := newChatServer()
	cs.failSends = 100 // everything fails while queueing
	srv := httptest.NewServer(cs.handler())
	defer srv.Close()

	o := newTestOutbox(t, srv.URL, nil)
	ctx := context.Background()

	ref1, err := o.Send(ctx, 42, "first")
	require.NoError(t, err)
	ref2, err := o.Send(ctx, 42, "second")
	require.NoError(t, err)

	cs.mu.Lock()
	cs.failSends = 0
	cs.mu.Unlock()

	require.NoError(t, o.Flush(ctx))
	require.Equal(t, []string{ref1, ref2}, cs.acceptedRefs())
}

func TestOutboxResolvesPlaceholderConversation(t *testing.T) {
	cs := newChatServer()
	srv := httptest.NewServer(cs.handler())
	defer srv.Close()

	o := newTestOutbox(t, srv.URL, nil)

	ref, err := o.SendToUser(context.Background(), 77, "hello stranger")
	require.NoError(t, err)

	require.Equal(t, []string{ref}, cs.acceptedRefs())
	cs.mu.Lock()
	require.Contains(t, cs.convs, "77")
	cs.mu.Unlock()
}

func TestOutboxMarksFailedAfterMaxTriesAndRetryRequeues(t *testing.T) {
	cs := newChatServer()
	cs.failSends = 1000
	srv := httptest.NewServer(cs.handler())
	defer srv.Close()

	var failedMu sync.Mutex
	var failed []Entry
	o := newTestOutbox(t, srv.URL, func(entry Entry, err error) {
		failedMu.Lock()
		failed = append(failed, entry)
		failedMu.Unlock()
	})
	ctx := context.Background()

	ref, err := o.Send(ctx, 42, "doomed for now")
	require.NoError(t, err)

	for i := 0; i < maxSendTries; i++ {
		_ = o.Flush(ctx)
	}

	pending, err := o.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, StateFailed, pending[0].State)

	failedMu.Lock()
	require.Len(t, failed, 1)
	require.Equal(t, ref, failed[0].Ref)
	failedMu.Unlock()

	// a failed entry is kept and can be requeued once the user asks
	cs.mu.Lock()
	cs.failSends = 0
	cs.mu.Unlock()
	require.NoError(t, o.Retry(ref))
	require.NoError(t, o.Flush(ctx))

	pending, err = o.Pending()
	require.NoError(t, err)
	require.Empty(t, pending)
	require.Equal(t, []string{ref}, cs.acceptedRefs())
}
