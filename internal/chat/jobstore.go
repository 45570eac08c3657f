package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/daryeelcare/caafimaad-platform/pkg/logging"
)

// Answered jobs stay pollable for a day, then the TTL reaps them.
const jobTTL = 24 * time.Hour

// JobStatus represents the lifecycle of a chat job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// ErrJobNotFound indicates the requested job ID does not exist.
var ErrJobNotFound = errors.New("chat: job not found")

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// JobRecord is one assistant question and, once the worker finishes, its
// answer. The record stores flat fields rather than the queued request
// body: the queue payload is transient, the record is what patients poll.
type JobRecord struct {
	JobID          string    `dynamodbav:"jobId" json:"jobId"`
	Status         JobStatus `dynamodbav:"status" json:"status"`
	Kind           jobType   `dynamodbav:"kind" json:"kind"`
	ConversationID string    `dynamodbav:"conversationId,omitempty" json:"conversationId,omitempty"`
	Topic          string    `dynamodbav:"topic,omitempty" json:"topic,omitempty"`
	Question       string    `dynamodbav:"question" json:"question"`
	HistoryTurns   int       `dynamodbav:"historyTurns,omitempty" json:"historyTurns,omitempty"`
	Reply          string    `dynamodbav:"reply,omitempty" json:"reply,omitempty"`
	ErrorMessage   string    `dynamodbav:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	CreatedAt      string    `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt      string    `dynamodbav:"updatedAt" json:"updatedAt"`
	ExpiresAt      int64     `dynamodbav:"expiresAt,omitempty" json:"-"`
}

// JobRecorder creates and reads job records.
type JobRecorder interface {
	PutPending(ctx context.Context, job *JobRecord) error
	GetJob(ctx context.Context, jobID string) (*JobRecord, error)
}

// JobUpdater finalizes job records.
type JobUpdater interface {
	MarkCompleted(ctx context.Context, jobID, reply, conversationID string) error
	MarkFailed(ctx context.Context, jobID string, errMsg string) error
}

// JobStore persists job records to DynamoDB.
type JobStore struct {
	client dynamoAPI
	table  string
	logger *logging.Logger
	now    func() time.Time
}

var _ JobRecorder = (*JobStore)(nil)
var _ JobUpdater = (*JobStore)(nil)

// NewJobStore builds a store backed by the provided DynamoDB client.
func NewJobStore(client dynamoAPI, table string, logger *logging.Logger) *JobStore {
	if client == nil {
		panic("chat: dynamodb client cannot be nil")
	}
	if table == "" {
		panic("chat: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &JobStore{
		client: client,
		table:  table,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// PutPending inserts a new pending job record. The jobId condition keeps
// a retried publish from silently resetting an already-answered job.
func (s *JobStore) PutPending(ctx context.Context, job *JobRecord) error {
	if job == nil {
		return errors.New("chat: job cannot be nil")
	}
	now := s.now()
	job.Status = JobStatusPending
	job.CreatedAt = now.Format(time.RFC3339Nano)
	job.UpdatedAt = job.CreatedAt
	if job.ExpiresAt == 0 {
		job.ExpiresAt = now.Add(jobTTL).Unix()
	}

	item, err := attributevalue.MarshalMap(job)
	if err != nil {
		return fmt.Errorf("chat: failed to marshal job: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(jobId)"),
	})
	if err != nil {
		return fmt.Errorf("chat: failed to persist job: %w", err)
	}
	return nil
}

// MarkCompleted records the assistant's reply and the conversation it
// belongs to.
func (s *JobStore) MarkCompleted(ctx context.Context, jobID, reply, conversationID string) error {
	return s.finalize(ctx, jobID, map[string]string{
		"status":         string(JobStatusCompleted),
		"reply":          reply,
		"conversationId": conversationID,
		"errorMessage":   "",
	})
}

// MarkFailed records why the job produced no answer.
func (s *JobStore) MarkFailed(ctx context.Context, jobID string, errMsg string) error {
	return s.finalize(ctx, jobID, map[string]string{
		"status":       string(JobStatusFailed),
		"reply":        "",
		"errorMessage": errMsg,
	})
}

// finalize applies a set of string attributes to a job plus the updatedAt
// stamp. Every attribute is aliased since "status" is a DynamoDB reserved
// word; sorting keeps the expression deterministic.
func (s *JobStore) finalize(ctx context.Context, jobID string, set map[string]string) error {
	if jobID == "" {
		return errors.New("chat: jobID required")
	}
	set["updatedAt"] = s.now().Format(time.RFC3339Nano)

	attrs := make([]string, 0, len(set))
	for attr := range set {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)

	names := make(map[string]string, len(attrs))
	values := make(map[string]types.AttributeValue, len(attrs))
	expr := "SET "
	for i, attr := range attrs {
		if i > 0 {
			expr += ", "
		}
		expr += fmt.Sprintf("#a%d = :v%d", i, i)
		names[fmt.Sprintf("#a%d", i)] = attr
		values[fmt.Sprintf(":v%d", i)] = &types.AttributeValueMemberS{Value: set[attr]}
	}

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"jobId": &types.AttributeValueMemberS{Value: jobID},
		},
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		UpdateExpression:          aws.String(expr),
	})
	if err != nil {
		return fmt.Errorf("chat: failed to update job %s: %w", jobID, err)
	}
	return nil
}

// GetJob fetches a job by ID.
func (s *JobStore) GetJob(ctx context.Context, jobID string) (*JobRecord, error) {
	if jobID == "" {
		return nil, errors.New("chat: jobID required")
	}
	res, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"jobId": &types.AttributeValueMemberS{Value: jobID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat: failed to fetch job: %w", err)
	}
	if res.Item == nil {
		return nil, ErrJobNotFound
	}

	var job JobRecord
	if err := attributevalue.UnmarshalMap(res.Item, &job); err != nil {
		return nil, fmt.Errorf("chat: failed to decode job: %w", err)
	}
	return &job, nil
}
