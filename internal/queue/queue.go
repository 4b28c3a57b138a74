package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKey is the redis list the API publishes to and the audit worker
// drains.
const DefaultKey = "attendance:scans"

// ScanEvent describes one recorded scan. The API publishes it after the
// attendance row is committed; the worker turns it into an audit entry.
type ScanEvent struct {
	RecordID   string    `json:"record_id"`
	SessionID  string    `json:"session_id"`
	StudentID  string    `json:"student_id"`
	Status     string    `json:"status"`
	ObservedAt time.Time `json:"observed_at"`
}

// Queue is the abstraction over the channel and redis backends.
type Queue interface {
	Publish(ctx context.Context, ev ScanEvent) error
	Consume(ctx context.Context) (<-chan ScanEvent, error)
}

// InMemory is a channel-backed queue for dev and tests.
type InMemory struct {
	ch chan ScanEvent
}

// NewInMemory creates a bounded in-memory queue.
func NewInMemory(size int) *InMemory {
	return &InMemory{ch: make(chan ScanEvent, size)}
}

// Publish enqueues an event, blocking when the buffer is full.
func (q *InMemory) Publish(ctx context.Context, ev ScanEvent) error {
	select {
	case q.ch <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume returns the worker-side channel.
func (q *InMemory) Consume(ctx context.Context) (<-chan ScanEvent, error) {
	out := make(chan ScanEvent)
	go func() {
		defer close(out)
		for {
			select {
			case ev := <-q.ch:
				out <- ev
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// RedisQueue is a redis-list queue using LPUSH/BRPOP with JSON bodies.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds a queue on the given list key.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = DefaultKey
	}
	return &RedisQueue{client: client, key: key}
}

// Publish enqueues an event.
func (q *RedisQueue) Publish(ctx context.Context, ev ScanEvent) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, raw).Err()
}

// Consume streams events until ctx is cancelled. Entries that fail to
// decode are dropped; the attendance row is the source of truth and the
// audit trail tolerates gaps.
func (q *RedisQueue) Consume(ctx context.Context) (<-chan ScanEvent, error) {
	out := make(chan ScanEvent)
	go func() {
		defer close(out)
		for {
			res, err := q.client.BRPop(ctx, 5*time.Second, q.key).Result()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				continue
			}
			if len(res) != 2 {
				continue
			}
			var ev ScanEvent
			if err := json.Unmarshal([]byte(res[1]), &ev); err != nil {
				continue
			}
			out <- ev
		}
	}()
	return out, nil
}
