package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/daryeelcare/caafimaad-platform/pkg/logging"
)

// ErrEmptyMessage indicates a chat request without any text.
var ErrEmptyMessage = errors.New("chat: message is required")

// Publisher accepts chat requests, records a pending job and enqueues the
// work for the worker.
type Publisher struct {
	queue  queueClient
	jobs   JobRecorder
	logger *logging.Logger
}

// NewPublisher creates a publisher over the given queue and job store.
func NewPublisher(queue queueClient, jobs JobRecorder, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("chat: queue cannot be nil")
	}
	if jobs == nil {
		panic("chat: job recorder cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{queue: queue, jobs: jobs, logger: logger}
}

// PublishStart enqueues a conversation-opening request and returns the
// job id to poll.
func (p *Publisher) PublishStart(ctx context.Context, req *StartRequest) (string, error) {
	if req == nil || strings.TrimSpace(req.Message) == "" {
		return "", ErrEmptyMessage
	}

	payload, body, err := encodePayload(queuePayload{Kind: jobTypeStart, Start: req})
	if err != nil {
		return "", err
	}

	record := &JobRecord{
		JobID:    payload.ID,
		Kind:     jobTypeStart,
		Topic:    req.Topic,
		Question: req.Message,
	}
	if err := p.jobs.PutPending(ctx, record); err != nil {
		return "", err
	}
	if err := p.queue.Send(ctx, body); err != nil {
		return "", fmt.Errorf("chat: failed to enqueue start request: %w", err)
	}

	p.logger.Info("chat start queued", "job_id", payload.ID, "topic", req.Topic)
	return payload.ID, nil
}

// PublishMessage enqueues a follow-up turn and returns the job id.
func (p *Publisher) PublishMessage(ctx context.Context, req *MessageRequest) (string, error) {
	if req == nil || strings.TrimSpace(req.Message) == "" {
		return "", ErrEmptyMessage
	}

	payload, body, err := encodePayload(queuePayload{Kind: jobTypeMessage, Message: req})
	if err != nil {
		return "", err
	}

	record := &JobRecord{
		JobID:          payload.ID,
		Kind:           jobTypeMessage,
		ConversationID: req.ConversationID,
		Question:       req.Message,
		HistoryTurns:   len(req.History),
	}
	if err := p.jobs.PutPending(ctx, record); err != nil {
		return "", err
	}
	if err := p.queue.Send(ctx, body); err != nil {
		return "", fmt.Errorf("chat: failed to enqueue message: %w", err)
	}

	p.logger.Info("chat message queued", "job_id", payload.ID, "conversation_id", req.ConversationID)
	return payload.ID, nil
}
