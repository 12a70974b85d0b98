package service

import (
	"github.com/campusloop/campusloop-backend/internal/repository"
	"github.com/campusloop/campusloop-backend/pkg/kvstore"
)

// Device groups the services bound to one user's key-value namespace.
// It stands in for the state the mobile client keeps on the phone.
type Device struct {
	UserID        string
	Store         kvstore.Store
	Logs          repository.MessageLogRepository
	ListingRepo   repository.ListingRepository
	Listings      ListingService
	Chats         ChatService
	Conversations ConversationIndex
}

// NewDevice wires the services over store
func NewDevice(userID string, store kvstore.Store) *Device {
	logs := repository.NewMessageLogRepository(store)
	listingRepo := repository.NewListingRepository(store)
	return &Device{
		UserID:        userID,
		Store:         store,
		Logs:          logs,
		ListingRepo:   listingRepo,
		Listings:      NewListingService(listingRepo),
		Chats:         NewChatService(logs, listingRepo),
		Conversations: NewConversationIndex(store, logs, listingRepo),
	}
}

// DeviceProvider hands out per-user devices over one shared store
type DeviceProvider struct {
	base kvstore.Store
}

// NewDeviceProvider creates a new DeviceProvider
func NewDeviceProvider(base kvstore.Store) *DeviceProvider {
	return &DeviceProvider{base: base}
}

// ForUser returns the device of userID (namespace user:<id>:)
func (p *DeviceProvider) ForUser(userID string) *Device {
	return NewDevice(userID, kvstore.Prefixed(p.base, UserNamespace(userID)))
}

// UserNamespace key prefix of a user's device state
func UserNamespace(userID string) string {
	return "user:" + userID + ":"
}
