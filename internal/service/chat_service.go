package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/campusloop/campusloop-backend/internal/domain"
	"github.com/campusloop/campusloop-backend/internal/repository"
	"github.com/campusloop/campusloop-backend/pkg/i18n"
	pkglogger "github.com/campusloop/campusloop-backend/pkg/logger"
)

// greetingID is the id of the seeded first message of every conversation
const greetingID = "1"

// OpenHint carries display data the caller already knows (item title, seller name).
// Empty fields are resolved from the listings.
type OpenHint struct {
	ItemTitle        string
	CounterpartyName string
}

// ChatService opens conversations
type ChatService interface {
	Open(ctx context.Context, key domain.ConversationKey, hint OpenHint) (*domain.ConversationInfo, []domain.Message, error)
}

type chatService struct {
	logs     repository.MessageLogRepository
	listings repository.ListingRepository
	clock    func() time.Time
}

// NewChatService creates a new ChatService
func NewChatService(logs repository.MessageLogRepository, listings repository.ListingRepository) ChatService {
	return &chatService{logs: logs, listings: listings, clock: time.Now}
}

// Open loads the log of a conversation. An absent or empty log is seeded with a greeting
// mentioning the item title, so a conversation never opens empty.
func (s *chatService) Open(ctx context.Context, key domain.ConversationKey, hint OpenHint) (*domain.ConversationInfo, []domain.Message, error) {
	info := s.resolve(ctx, key, hint)

	msgs, err := s.logs.Load(ctx, key)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		// unreadable log: show nothing and leave it untouched
		pkglogger.FromContext(ctx).Error().Err(err).Str("key", key.String()).Msg("load chat log")
		return info, []domain.Message{}, nil
	}
	if len(msgs) > 0 {
		return info, msgs, nil
	}

	greeting := domain.Message{
		ID:        greetingID,
		Text:      defaultBundle.T(i18n.LocaleEn, "chat.greeting", info.ItemTitle),
		Sender:    domain.SenderSelf,
		Timestamp: s.clock().UnixMilli(),
	}
	seeded := []domain.Message{greeting}
	if err := s.logs.Save(ctx, key, seeded); err != nil {
		return nil, nil, err
	}
	chatMessagesAppended.WithLabelValues(string(domain.SenderSelf)).Inc()
	return info, seeded, nil
}

func (s *chatService) resolve(ctx context.Context, key domain.ConversationKey, hint OpenHint) *domain.ConversationInfo {
	info := &domain.ConversationInfo{
		Key:              key.String(),
		ItemID:           key.ItemID,
		CounterpartyID:   key.CounterpartyID,
		ItemTitle:        hint.ItemTitle,
		CounterpartyName: hint.CounterpartyName,
	}
	if info.ItemTitle != "" && info.CounterpartyName != "" {
		return info
	}

	if item := findListing(ctx, s.listings, key.ItemID); item != nil {
		if info.ItemTitle == "" {
			info.ItemTitle = item.Title
		}
		if info.CounterpartyName == "" {
			info.CounterpartyName = item.Username
		}
	}
	if info.ItemTitle == "" {
		info.ItemTitle = domain.FallbackItemTitle(key.ItemID)
	}
	if info.CounterpartyName == "" {
		info.CounterpartyName = domain.FallbackCounterpartyName(key.CounterpartyID)
	}
	return info
}

// findListing looks an item up without seeding; failures count as not found
func findListing(ctx context.Context, repo repository.ListingRepository, itemID string) *domain.Listing {
	items, err := repo.FindAll(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrListingsAbsent) {
			pkglogger.FromContext(ctx).Warn().Err(err).Msg("lookup listing")
		}
		return nil
	}
	return indexListings(items)[itemID]
}

// indexListings maps listing id to listing, filling item-<index> ids like Load does
func indexListings(items []domain.Listing) map[string]*domain.Listing {
	byID := make(map[string]*domain.Listing, len(items))
	for i := range items {
		id := items[i].ID
		if id == "" {
			id = "item-" + strconv.Itoa(i)
		}
		if _, dup := byID[id]; !dup {
			byID[id] = &items[i]
		}
	}
	return byID
}
