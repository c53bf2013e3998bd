package client

import (
	"context"
	"encoding/binary"
	"strconv"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/croplink/agrimarket/pkg/common"
)

const (
	outboxBucket  = "outbox"
	flushInterval = 15 * time.Second
	maxSendTries  = 5
)

type EntryState string

const (
	StatePending EntryState = "pending"
	StateSent    EntryState = "sent"
	StateFailed  EntryState = "failed"
)

// Entry is one queued chat message. ConversationID may be a negative
// placeholder when the conversation has not been created on the server yet;
// PeerUserID then names the other participant and the id is reconciled on
// first flush.
type Entry struct {
	Ref            string     `json:"ref"`
	ConversationID int64      `json:"conversation_id,string"`
	PeerUserID     int64      `json:"peer_user_id,string"`
	Body           string     `json:"body"`
	State          EntryState `json:"state"`
	Attempts       int        `json:"attempts"`
	LastError      string     `json:"last_error"`
	CreatedAt      time.Time  `json:"created_at"`
}

// FailFunc is invoked when an entry exhausts its retries.
type FailFunc func(Entry, error)

// Outbox is the client-side message queue. Every send is written to a bbolt
// bucket before any network activity, then flushed in order by a background
// ticker and opportunistically on each new send. The server deduplicates on
// the client-generated ref, so a replayed send never creates a duplicate.
type Outbox struct {
	db     *bolt.DB
	client *Client
	onFail FailFunc

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

// OpenOutbox opens (or creates) the outbox store and starts the flush loop.
func OpenOutbox(path string, c *Client, onFail FailFunc) (*Outbox, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open outbox store")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(outboxBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	o := &Outbox{db: db, client: c, onFail: onFail, stop: make(chan struct{})}
	o.wg.Add(1)
	go o.flushLoop()
	return o, nil
}

// Close stops the flush loop and closes the store.
func (o *Outbox) Close() error {
	close(o.stop)
	o.wg.Wait()
	return o.db.Close()
}

func (o *Outbox) flushLoop() {
	defer o.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-o.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), flushInterval)
			_ = o.Flush(ctx)
			cancel()
		}
	}
}

// Send queues a message for an existing conversation and attempts an
// immediate flush. The returned ref identifies the entry for state queries.
func (o *Outbox) Send(ctx context.Context, conversationID int64, body string) (string, error) {
	return o.enqueue(ctx, conversationID, 0, body)
}

// SendToUser queues a message for a conversation that may not exist yet.
// A negative placeholder conversation id is stored and resolved to the real
// id during flush.
func (o *Outbox) SendToUser(ctx context.Context, peerUserID int64, body string) (string, error) {
	return o.enqueue(ctx, -peerUserID, peerUserID, body)
}

func (o *Outbox) enqueue(ctx context.Context, conversationID, peerUserID int64, body string) (string, error) {
	entry := Entry{
		Ref:            strconv.FormatInt(common.UUIDint64(), 10),
		ConversationID: conversationID,
		PeerUserID:     peerUserID,
		Body:           body,
		State:          StatePending,
		CreatedAt:      time.Now(),
	}
	err := o.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(outboxBucket))
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		return putEntry(bucket, seq, entry)
	})
	if err != nil {
		return "", errors.Wrap(err, "queue message")
	}

	_ = o.Flush(ctx)
	return entry.Ref, nil
}

// Flush replays pending entries in queue order. Sent entries are removed;
// an entry that exhausts its retries is marked failed, reported through the
// failure callback and kept for a later Retry.
func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	type queued struct {
		key   uint64
		entry Entry
	}
	var pending []queued
	err := o.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(outboxBucket)).ForEach(func(k, v []byte) error {
			var entry Entry
			if err := jsoniter.Unmarshal(v, &entry); err != nil {
				return nil
			}
			if entry.State == StatePending {
				pending = append(pending, queued{key: binary.BigEndian.Uint64(k), entry: entry})
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	for _, item := range pending {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		entry := item.entry

		if entry.ConversationID < 0 {
			convID, err := o.resolveConversation(ctx, entry.PeerUserID)
			if err != nil {
				o.recordAttempt(item.key, entry, err)
				continue
			}
			entry.ConversationID = convID
			if err := o.update(item.key, entry); err != nil {
				return err
			}
		}

		err := o.client.Do(ctx, "POST",
			"/conversations/"+strconv.FormatInt(entry.ConversationID, 10)+"/messages",
			map[string]string{"client_ref": entry.Ref, "body": entry.Body}, nil)
		if err != nil {
			o.recordAttempt(item.key, entry, err)
			continue
		}

		if err := o.delete(item.key); err != nil {
			return err
		}
	}
	return nil
}

func (o *Outbox) resolveConversation(ctx context.Context, peerUserID int64) (int64, error) {
	var conv struct {
		ID int64 `json:"id,string"`
	}
	err := o.client.Do(ctx, "POST", "/conversations",
		map[string]string{"with_user_id": strconv.FormatInt(peerUserID, 10)}, &conv)
	if err != nil {
		return 0, err
	}
	return conv.ID, nil
}

func (o *Outbox) recordAttempt(key uint64, entry Entry, cause error) {
	entry.Attempts++
	entry.LastError = cause.Error()
	if entry.Attempts >= maxSendTries {
		entry.State = StateFailed
		if o.onFail != nil {
			o.onFail(entry, cause)
		}
	}
	_ = o.update(key, entry)
}

// Pending returns the queued entries in order, failed entries included.
func (o *Outbox) Pending() ([]Entry, error) {
	var out []Entry
	err := o.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(outboxBucket)).ForEach(func(k, v []byte) error {
			var entry Entry
			if err := jsoniter.Unmarshal(v, &entry); err != nil {
				return nil
			}
			out = append(out, entry)
			return nil
		})
	})
	return out, err
}

// Retry resets a failed entry so the next flush replays it.
func (o *Outbox) Retry(ref string) error {
	return o.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(outboxBucket))
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var entry Entry
			if err := jsoniter.Unmarshal(v, &entry); err != nil {
				continue
			}
			if entry.Ref != ref {
				continue
			}
			entry.State = StatePending
			entry.Attempts = 0
			entry.LastError = ""
			raw, err := jsoniter.Marshal(entry)
			if err != nil {
				return err
			}
			return bucket.Put(k, raw)
		}
		return errors.New("outbox entry not found")
	})
}

func (o *Outbox) update(key uint64, entry Entry) error {
	return o.db.Update(func(tx *bolt.Tx) error {
		return putEntry(tx.Bucket([]byte(outboxBucket)), key, entry)
	})
}

func (o *Outbox) delete(key uint64) error {
	return o.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(outboxBucket)).Delete(seqKey(key))
	})
}

func putEntry(bucket *bolt.Bucket, seq uint64, entry Entry) error {
	raw, err := jsoniter.Marshal(entry)
	if err != nil {
		return err
	}
	return bucket.Put(seqKey(seq), raw)
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
