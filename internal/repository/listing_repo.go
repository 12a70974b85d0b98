package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/campusloop/campusloop-backend/internal/domain"
	"github.com/campusloop/campusloop-backend/pkg/kvstore"
)

// ErrListingsAbsent is returned by FindAll when nothing has been stored yet
var ErrListingsAbsent = errors.New("listings not stored")

// ListingRepository marketplace listing data access interface.
// All listings live in one JSON array under domain.ListingsKey.
type ListingRepository interface {
	FindAll(ctx context.Context) ([]domain.Listing, error)
	SaveAll(ctx context.Context, items []domain.Listing) error
}

type listingRepository struct {
	store kvstore.Store
}

// NewListingRepository creates a new ListingRepository
func NewListingRepository(store kvstore.Store) ListingRepository {
	return &listingRepository{store: store}
}

// FindAll returns the stored array as is (ids are not filled in here)
func (r *listingRepository) FindAll(ctx context.Context) ([]domain.Listing, error) {
	raw, err := r.store.Get(ctx, domain.ListingsKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, ErrListingsAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}

	var items []domain.Listing
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	return items, nil
}

// SaveAll rewrites the whole array
func (r *listingRepository) SaveAll(ctx context.Context, items []domain.Listing) error {
	if items == nil {
		items = []domain.Listing{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode listings: %w", err)
	}
	if err := r.store.Set(ctx, domain.ListingsKey, string(data)); err != nil {
		return fmt.Errorf("save listings: %w", err)
	}
	return nil
}
