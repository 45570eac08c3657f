// Package chat runs the patient-facing health assistant. Requests are
// queued, answered asynchronously by an LLM worker and collected by
// polling the job id, so a slow model never blocks an HTTP handler.
package chat

import "context"

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn of the conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TokenUsage reports model token consumption.
type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// LLMRequest is a provider-neutral completion request.
type LLMRequest struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// LLMResponse is the completion result.
type LLMResponse struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// LLMClient completes chat requests against a model provider.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

// StartRequest opens a new assistant conversation.
type StartRequest struct {
	Topic   string `json:"topic,omitempty"`
	Message string `json:"message"`
}

// MessageRequest continues an existing conversation. The service is
// stateless; the caller replays the prior turns.
type MessageRequest struct {
	ConversationID string        `json:"conversationId"`
	History        []ChatMessage `json:"history,omitempty"`
	Message        string        `json:"message"`
}
