package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/daryeelcare/caafimaad-platform/pkg/logging"
)

// systemPrompt frames the assistant. It must never diagnose; it explains
// and steers the patient toward booking a doctor when appropriate.
const systemPrompt = `You are a health information assistant for a clinic in Somalia.
Answer general health questions in clear, simple language.
You are not a doctor and must not diagnose, prescribe, or promise outcomes.
When a question needs professional judgement, advise the patient to book an
appointment with one of the clinic's doctors.
If the message describes an emergency, tell the patient to seek urgent care immediately.`

const (
	defaultMaxTokens   = 1024
	defaultTemperature = 0.3
)

// Worker drains the chat queue, runs completions and finalizes job
// records.
type Worker struct {
	queue  queueClient
	jobs   JobUpdater
	llm    LLMClient
	model  string
	logger *logging.Logger
}

// NewWorker wires a worker over the queue, job store and model client.
func NewWorker(queue queueClient, jobs JobUpdater, llm LLMClient, model string, logger *logging.Logger) *Worker {
	if queue == nil {
		panic("chat: queue cannot be nil")
	}
	if jobs == nil {
		panic("chat: job updater cannot be nil")
	}
	if llm == nil {
		panic("chat: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{queue: queue, jobs: jobs, llm: llm, model: model, logger: logger}
}

// Run polls the queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("chat worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("chat worker stopping")
			return ctx.Err()
		default:
		}

		messages, err := w.queue.Receive(ctx, 10, 5)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Error("chat queue receive failed", "error", err)
			continue
		}

		for _, msg := range messages {
			w.process(ctx, msg)
		}
	}
}

// process handles one queue message end to end. Poison messages are
// deleted after being marked failed so they do not loop forever.
func (w *Worker) process(ctx context.Context, msg queueMessage) {
	var payload queuePayload
	if err := json.Unmarshal([]byte(msg.Body), &payload); err != nil {
		w.logger.Error("chat worker dropping undecodable message", "error", err, "message_id", msg.ID)
		_ = w.queue.Delete(ctx, msg.ReceiptHandle)
		return
	}

	reply, convID, err := w.complete(ctx, payload)
	if err != nil {
		w.logger.Error("chat completion failed", "error", err, "job_id", payload.ID)
		if markErr := w.jobs.MarkFailed(ctx, payload.ID, err.Error()); markErr != nil {
			w.logger.Error("failed to mark chat job failed", "error", markErr, "job_id", payload.ID)
		}
		_ = w.queue.Delete(ctx, msg.ReceiptHandle)
		return
	}

	if err := w.jobs.MarkCompleted(ctx, payload.ID, reply, convID); err != nil {
		w.logger.Error("failed to mark chat job completed", "error", err, "job_id", payload.ID)
		// Leave the message on the queue so the completion can be retried.
		return
	}
	_ = w.queue.Delete(ctx, msg.ReceiptHandle)
	w.logger.Info("chat job completed", "job_id", payload.ID, "conversation_id", convID)
}

// complete runs the model and returns the reply text together with the
// conversation id the answer belongs to.
func (w *Worker) complete(ctx context.Context, payload queuePayload) (string, string, error) {
	req := LLMRequest{
		Model:       w.model,
		System:      []string{systemPrompt},
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	}

	var convID string
	switch payload.Kind {
	case jobTypeStart:
		if payload.Start == nil {
			return "", "", fmt.Errorf("chat: start payload missing body")
		}
		convID = uuid.NewString()
		if topic := strings.TrimSpace(payload.Start.Topic); topic != "" {
			req.System = append(req.System, "The patient opened this conversation about: "+topic)
		}
		req.Messages = []ChatMessage{{Role: ChatRoleUser, Content: payload.Start.Message}}
	case jobTypeMessage:
		if payload.Message == nil {
			return "", "", fmt.Errorf("chat: message payload missing body")
		}
		convID = payload.Message.ConversationID
		if convID == "" {
			convID = uuid.NewString()
		}
		req.Messages = append(req.Messages, payload.Message.History...)
		req.Messages = append(req.Messages, ChatMessage{Role: ChatRoleUser, Content: payload.Message.Message})
	default:
		return "", "", fmt.Errorf("chat: unknown job type %q", payload.Kind)
	}

	out, err := w.llm.Complete(ctx, req)
	if err != nil {
		return "", "", err
	}
	return out.Text, convID, nil
}
