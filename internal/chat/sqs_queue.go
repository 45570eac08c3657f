package chat

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQS caps a single receive at ten messages.
const sqsMaxBatch = 10

// SQSQueue implements queueClient backed by AWS SQS.
type SQSQueue struct {
	api *sqs.Client
	url string
}

// NewSQSQueue creates a queue wrapper around the provided SQS client.
func NewSQSQueue(api *sqs.Client, url string) *SQSQueue {
	if api == nil {
		panic("chat: SQS client cannot be nil")
	}
	if url == "" {
		panic("chat: SQS queue URL cannot be empty")
	}
	return &SQSQueue{api: api, url: url}
}

func (q *SQSQueue) Send(ctx context.Context, body string) error {
	_, err := q.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.url),
		MessageBody: aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("chat: failed to send SQS message: %w", err)
	}
	return nil
}

func (q *SQSQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error) {
	if maxMessages <= 0 {
		maxMessages = 1
	}
	if maxMessages > sqsMaxBatch {
		maxMessages = sqsMaxBatch
	}

	out, err := q.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.url),
		MaxNumberOfMessages: int32(maxMessages),
		WaitTimeSeconds:     int32(waitSeconds),
	})
	if err != nil {
		return nil, fmt.Errorf("chat: failed to receive SQS messages: %w", err)
	}

	batch := make([]queueMessage, 0, len(out.Messages))
	for _, msg := range out.Messages {
		batch = append(batch, queueMessage{
			ID:            aws.ToString(msg.MessageId),
			Body:          aws.ToString(msg.Body),
			ReceiptHandle: aws.ToString(msg.ReceiptHandle),
		})
	}
	return batch, nil
}

func (q *SQSQueue) Delete(ctx context.Context, receiptHandle string) error {
	if receiptHandle == "" {
		return nil
	}
	_, err := q.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.url),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("chat: failed to delete SQS message: %w", err)
	}
	return nil
}
