// Package messages implements direct patient to doctor messaging.
package messages

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound indicates the message does not exist.
var ErrNotFound = errors.New("messages: message not found")

// ErrEmptyBody indicates a blank message body.
var ErrEmptyBody = errors.New("messages: body is required")

// ErrSelfMessage indicates sender and recipient are the same account.
var ErrSelfMessage = errors.New("messages: cannot message yourself")

const maxBodyLen = 4000

// Message is one direct message between two accounts.
type Message struct {
	ID          string    `json:"_id"`
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SendRequest is the payload for sending a message.
type SendRequest struct {
	RecipientID string `json:"recipientId"`
	Body        string `json:"body"`
}

// Validate normalizes and checks the payload.
func (r *SendRequest) Validate(senderID string) error {
	r.Body = strings.TrimSpace(r.Body)
	if r.Body == "" {
		return ErrEmptyBody
	}
	if len(r.Body) > maxBodyLen {
		r.Body = r.Body[:maxBodyLen]
	}
	if strings.TrimSpace(r.RecipientID) == "" {
		return errors.New("messages: recipient is required")
	}
	if r.RecipientID == senderID {
		return ErrSelfMessage
	}
	return nil
}

// Thread summarizes the latest exchange with one correspondent.
type Thread struct {
	PartnerID string    `json:"partnerId"`
	LastBody  string    `json:"lastBody"`
	LastAt    time.Time `json:"lastAt"`
}
