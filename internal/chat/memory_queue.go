package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MemoryQueue is a queueClient backed by an in-memory buffered channel.
// Used in local development and tests instead of SQS. Delete is a no-op
// since a received message is already gone from the channel.
type MemoryQueue struct {
	ch chan queueMessage
}

// NewMemoryQueue creates a MemoryQueue with the provided buffer capacity.
func NewMemoryQueue(buffer int) *MemoryQueue {
	if buffer <= 0 {
		buffer = 128
	}
	return &MemoryQueue{ch: make(chan queueMessage, buffer)}
}

// Send enqueues a payload or blocks until ctx is done.
func (q *MemoryQueue) Send(ctx context.Context, body string) error {
	select {
	case q.ch <- queueMessage{ID: uuid.NewString(), Body: body}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive blocks until a message is available, ctx is done, or
// waitSeconds elapses. With waitSeconds <= 0 it waits indefinitely, which
// matches how the worker polls.
func (q *MemoryQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error) {
	if maxMessages <= 0 {
		maxMessages = 1
	}

	// A nil channel never fires, so no wait deadline means block until
	// a message or cancellation.
	var deadline <-chan time.Time
	if waitSeconds > 0 {
		timer := time.NewTimer(time.Duration(waitSeconds) * time.Second)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case msg := <-q.ch:
		return q.drain(msg, maxMessages), nil
	case <-deadline:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Delete is a no-op for the in-memory queue.
func (q *MemoryQueue) Delete(_ context.Context, _ string) error {
	return nil
}

// drain grabs whatever else is already buffered, up to max, without
// waiting for more.
func (q *MemoryQueue) drain(first queueMessage, max int) []queueMessage {
	batch := []queueMessage{first}
	for len(batch) < max {
		select {
		case msg := <-q.ch:
			batch = append(batch, msg)
		default:
			return batch
		}
	}
	return batch
}
