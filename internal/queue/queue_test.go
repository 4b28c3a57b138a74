package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	events, err := q.Consume(ctx)
	assert.NoError(t, err)

	want := ScanEvent{
		RecordID:   "rec-1",
		SessionID:  "sess-1",
		StudentID:  "stu-1",
		Status:     "present",
		ObservedAt: time.Date(2026, 3, 2, 9, 10, 0, 0, time.UTC),
	}
	assert.NoError(t, q.Publish(ctx, want))

	select {
	case got := <-events:
		assert.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestInMemoryPreservesOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(8)
	events, err := q.Consume(ctx)
	assert.NoError(t, err)

	ids := []string{"rec-1", "rec-2", "rec-3"}
	for _, id := range ids {
		assert.NoError(t, q.Publish(ctx, ScanEvent{RecordID: id}))
	}
	for _, id := range ids {
		select {
		case got := <-events:
			assert.Equal(t, id, got.RecordID)
		case <-time.After(time.Second):
			t.Fatalf("event %s not delivered", id)
		}
	}
}

func TestPublishRespectsCancellation(t *testing.T) {
	q := NewInMemory(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := q.Publish(ctx, ScanEvent{RecordID: "rec-1"})
	assert.ErrorIs(t, err, context.Canceled)
}
