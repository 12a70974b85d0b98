package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/campusloop/campusloop-backend/internal/domain"
	"github.com/campusloop/campusloop-backend/pkg/kvstore"
)

// MessageLogRepository conversation log data access interface
type MessageLogRepository interface {
	Load(ctx context.Context, key domain.ConversationKey) ([]domain.Message, error)
	Append(ctx context.Context, key domain.ConversationKey, msg domain.Message) error
	Save(ctx context.Context, key domain.ConversationKey, msgs []domain.Message) error
}

type messageLogRepository struct {
	store kvstore.Store
}

// NewMessageLogRepository creates a new MessageLogRepository
func NewMessageLogRepository(store kvstore.Store) MessageLogRepository {
	return &messageLogRepository{store: store}
}

// Load returns the log in stored order. An absent log is empty, not an error.
func (r *messageLogRepository) Load(ctx context.Context, key domain.ConversationKey) ([]domain.Message, error) {
	raw, err := r.store.Get(ctx, key.String())
	if errors.Is(err, kvstore.ErrNotFound) {
		return []domain.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return decodeMessages(key, raw)
}

// Append reads the whole log, appends msg and writes it back.
// Two concurrent appends to the same key can lose one message: the last write wins.
func (r *messageLogRepository) Append(ctx context.Context, key domain.ConversationKey, msg domain.Message) error {
	msgs, err := r.Load(ctx, key)
	if err != nil {
		return err
	}
	return r.Save(ctx, key, append(msgs, msg))
}

// Save replaces the whole log
func (r *messageLogRepository) Save(ctx context.Context, key domain.ConversationKey, msgs []domain.Message) error {
	if msgs == nil {
		msgs = []domain.Message{}
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key.String(), string(data)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func decodeMessages(key domain.ConversationKey, raw string) ([]domain.Message, error) {
	if raw == "" {
		return []domain.Message{}, nil
	}
	var msgs []domain.Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}
