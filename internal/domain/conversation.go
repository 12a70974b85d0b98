package domain

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ConversationKeyPrefix 채팅 로그 키 접두사
	ConversationKeyPrefix = "chat_"
	conversationDelimiter = "_"
)

var (
	// ErrInvalidConversationID is returned for identifiers that cannot round-trip through a key
	ErrInvalidConversationID = errors.New("invalid conversation identifier")
	// ErrNotConversationKey is returned when parsing a key outside the chat_ namespace
	ErrNotConversationKey = errors.New("not a conversation key")
)

// ConversationKey identifies one conversation: a listed item and the other party.
// The zero value is not a valid key; use NewConversationKey or ParseConversationKey.
type ConversationKey struct {
	ItemID         string
	CounterpartyID string
}

// NewConversationKey validates both identifiers.
// Empty identifiers and identifiers containing the delimiter are rejected, since they
// would decode to a different pair.
func NewConversationKey(itemID, counterpartyID string) (ConversationKey, error) {
	if err := validateConversationID(itemID); err != nil {
		return ConversationKey{}, fmt.Errorf("item id %q: %w", itemID, err)
	}
	if err := validateConversationID(counterpartyID); err != nil {
		return ConversationKey{}, fmt.Errorf("counterparty id %q: %w", counterpartyID, err)
	}
	return ConversationKey{ItemID: itemID, CounterpartyID: counterpartyID}, nil
}

func validateConversationID(id string) error {
	if id == "" || strings.Contains(id, conversationDelimiter) {
		return ErrInvalidConversationID
	}
	return nil
}

// String encodes the key as chat_<itemId>_<counterpartyId>
func (k ConversationKey) String() string {
	return ConversationKeyPrefix + k.ItemID + conversationDelimiter + k.CounterpartyID
}

// ParseConversationKey decodes a storage key written by String
func ParseConversationKey(key string) (ConversationKey, error) {
	if !IsConversationKey(key) {
		return ConversationKey{}, ErrNotConversationKey
	}
	parts := strings.Split(strings.TrimPrefix(key, ConversationKeyPrefix), conversationDelimiter)
	if len(parts) != 2 {
		return ConversationKey{}, fmt.Errorf("%q: %w", key, ErrInvalidConversationID)
	}
	return NewConversationKey(parts[0], parts[1])
}

// IsConversationKey reports whether key lives in the chat namespace
func IsConversationKey(key string) bool {
	return strings.HasPrefix(key, ConversationKeyPrefix)
}

// ConversationSummary one row of the conversation list
type ConversationSummary struct {
	Key                  string `json:"id"`
	ItemID               string `json:"itemId"`
	CounterpartyID       string `json:"userId"`
	CounterpartyName     string `json:"userName"`
	ItemTitle            string `json:"itemTitle"`
	LastMessage          string `json:"lastMessage"`
	LastMessageTimestamp int64  `json:"timestamp"`
}

// ConversationInfo header data shown when a conversation is opened
type ConversationInfo struct {
	Key              string `json:"id"`
	ItemID           string `json:"itemId"`
	CounterpartyID   string `json:"userId"`
	CounterpartyName string `json:"userName"`
	ItemTitle        string `json:"itemTitle"`
}

// FallbackCounterpartyName display name used when the seller is unknown
func FallbackCounterpartyName(counterpartyID string) string {
	return "User " + counterpartyID
}

// FallbackItemTitle title used when the listing is unknown
func FallbackItemTitle(itemID string) string {
	return "Item " + itemID
}
