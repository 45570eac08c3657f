package contacts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for contact message storage
type Repository interface {
	Create(ctx context.Context, req *CreateContactRequest) (*ContactMessage, error)
	GetByID(ctx context.Context, id string) (*ContactMessage, error)
	List(ctx context.Context) ([]*ContactMessage, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu       sync.RWMutex
	messages map[string]*ContactMessage
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		messages: make(map[string]*ContactMessage),
	}
}

// Create creates a new contact message in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateContactRequest) (*ContactMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	msg := &ContactMessage{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Subject:   req.Subject,
		Message:   req.Message,
		CreatedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.messages[msg.ID] = msg
	r.mu.Unlock()

	return msg, nil
}

// GetByID retrieves a contact message by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*ContactMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msg, ok := r.messages[id]
	if !ok {
		return nil, ErrNotFound
	}

	return msg, nil
}

// List returns all contact messages, newest first
func (r *InMemoryRepository) List(ctx context.Context) ([]*ContactMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ContactMessage, 0, len(r.messages))
	for _, msg := range r.messages {
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Delete removes a contact message
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.messages[id]; !ok {
		return ErrNotFound
	}
	delete(r.messages, id)
	return nil
}
