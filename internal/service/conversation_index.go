package service

import (
	"context"
	"sort"

	"github.com/campusloop/campusloop-backend/internal/domain"
	"github.com/campusloop/campusloop-backend/internal/repository"
	"github.com/campusloop/campusloop-backend/pkg/kvstore"
	pkglogger "github.com/campusloop/campusloop-backend/pkg/logger"
)

// ConversationIndex derives the conversation list from the stored logs
type ConversationIndex interface {
	ListConversations(ctx context.Context) ([]domain.ConversationSummary, error)
}

type conversationIndex struct {
	store    kvstore.Store
	logs     repository.MessageLogRepository
	listings repository.ListingRepository
}

// NewConversationIndex creates a new ConversationIndex
func NewConversationIndex(store kvstore.Store, logs repository.MessageLogRepository, listings repository.ListingRepository) ConversationIndex {
	return &conversationIndex{store: store, logs: logs, listings: listings}
}

// ListConversations returns one summary per non-empty log, newest first.
// Store failures are logged and yield an empty list; only context cancellation is returned.
func (ci *conversationIndex) ListConversations(ctx context.Context) ([]domain.ConversationSummary, error) {
	log := pkglogger.FromContext(ctx)
	summaries := []domain.ConversationSummary{}

	keys, err := ci.store.Keys(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Error().Err(err).Msg("list conversation keys")
		return summaries, nil
	}

	// listings are read once for the whole scan
	var byID map[string]*domain.Listing
	items, err := ci.listings.FindAll(ctx)
	if err == nil {
		byID = indexListings(items)
	}

	for _, raw := range keys {
		if !domain.IsConversationKey(raw) {
			continue
		}
		key, err := domain.ParseConversationKey(raw)
		if err != nil {
			log.Warn().Err(err).Str("key", raw).Msg("skip malformed conversation key")
			continue
		}

		msgs, err := ci.logs.Load(ctx, key)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Warn().Err(err).Str("key", raw).Msg("skip unreadable conversation")
			continue
		}
		if len(msgs) == 0 {
			continue
		}

		last := msgs[len(msgs)-1]
		summary := domain.ConversationSummary{
			Key:                  raw,
			ItemID:               key.ItemID,
			CounterpartyID:       key.CounterpartyID,
			CounterpartyName:     domain.FallbackCounterpartyName(key.CounterpartyID),
			ItemTitle:            domain.FallbackItemTitle(key.ItemID),
			LastMessage:          last.Text,
			LastMessageTimestamp: last.Timestamp,
		}
		if item, ok := byID[key.ItemID]; ok {
			summary.ItemTitle = item.Title
			summary.CounterpartyName = item.Username
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastMessageTimestamp > summaries[j].LastMessageTimestamp
	})
	return summaries, nil
}
