package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campusloop/campusloop-backend/internal/common"
	"github.com/campusloop/campusloop-backend/internal/domain"
	"github.com/campusloop/campusloop-backend/internal/repository"
	pkglogger "github.com/campusloop/campusloop-backend/pkg/logger"
	"github.com/google/uuid"
)

const (
	defaultCategory = "Electronics"
	uploadUsername  = "You"
)

// ListingService marketplace listing business logic for one namespace
type ListingService interface {
	Load(ctx context.Context) []domain.Listing
	List(ctx context.Context, filter domain.ListingFilter) []domain.Listing
	Categories(ctx context.Context) []string
	ToggleLike(ctx context.Context, id string) (*domain.Listing, error)
	Upload(ctx context.Context, req *domain.UploadListingRequest) (*domain.Listing, error)
}

type listingService struct {
	repo  repository.ListingRepository
	clock func() time.Time
}

// NewListingService creates a new ListingService
func NewListingService(repo repository.ListingRepository) ListingService {
	return &listingService{repo: repo, clock: time.Now}
}

// Load returns the stored listings. A missing or empty list is seeded with the defaults;
// a store failure degrades to the defaults without writing.
func (s *listingService) Load(ctx context.Context) []domain.Listing {
	items, err := s.repo.FindAll(ctx)
	switch {
	case errors.Is(err, repository.ErrListingsAbsent) || (err == nil && len(items) == 0):
		defaults := domain.DefaultListings()
		if err := s.repo.SaveAll(ctx, defaults); err != nil {
			pkglogger.FromContext(ctx).Error().Err(err).Msg("seed default listings")
		}
		return defaults
	case err != nil:
		pkglogger.FromContext(ctx).Error().Err(err).Msg("load listings")
		return domain.DefaultListings()
	}

	fillListingIDs(items)
	return items
}

// fillListingIDs gives id-less entries their positional item-<index> id
func fillListingIDs(items []domain.Listing) {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = fmt.Sprintf("item-%d", i)
		}
	}
}

// List loads and filters
func (s *listingService) List(ctx context.Context, filter domain.ListingFilter) []domain.Listing {
	return FilterListings(s.Load(ctx), filter)
}

// Categories returns "All" followed by the distinct tags
func (s *listingService) Categories(ctx context.Context) []string {
	return Categories(s.Load(ctx))
}

// ToggleLike flips isLiked on one listing and rewrites the whole array.
// A failed read is returned without writing, so stored listings are never replaced by defaults.
func (s *listingService) ToggleLike(ctx context.Context, id string) (*domain.Listing, error) {
	items, err := s.repo.FindAll(ctx)
	switch {
	case errors.Is(err, repository.ErrListingsAbsent) || (err == nil && len(items) == 0):
		items = domain.DefaultListings()
	case err != nil:
		return nil, err
	}
	fillListingIDs(items)

	idx := -1
	for i := range items {
		if items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, common.ErrListingNotFound
	}

	items[idx].IsLiked = !items[idx].IsLiked
	if err := s.repo.SaveAll(ctx, items); err != nil {
		return nil, err
	}
	updated := items[idx]
	return &updated, nil
}

// Upload validates the form and prepends a new listing
func (s *listingService) Upload(ctx context.Context, req *domain.UploadListingRequest) (*domain.Listing, error) {
	method, images, err := validateUpload(req)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.FindAll(ctx)
	if err != nil && !errors.Is(err, repository.ErrListingsAbsent) {
		return nil, err
	}

	tag := strings.TrimSpace(req.Category)
	if tag == "" {
		tag = defaultCategory
	}

	listing := domain.Listing{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Price:       domain.FormatPrice(method, req.Price),
		Tag:         tag,
		Image:       images[0],
		Images:      images,
		Negotiable:  method == domain.MethodSell && req.Negotiable,
		Username:    uploadUsername,
		ListedDate:  s.clock().UTC().Format(time.RFC3339),
		Type:        method,
	}

	items = append([]domain.Listing{listing}, items...)
	if err := s.repo.SaveAll(ctx, items); err != nil {
		return nil, err
	}
	return &listing, nil
}

func validateUpload(req *domain.UploadListingRequest) (domain.UploadMethod, []string, error) {
	method, ok := domain.ParseUploadMethod(req.Method)
	if !ok {
		return "", nil, newValidationError("method", "validation.missing_information", "validation.method_invalid")
	}
	if strings.TrimSpace(req.Title) == "" {
		return "", nil, newValidationError("title", "validation.missing_information", "validation.title_required")
	}
	if strings.TrimSpace(req.Description) == "" {
		return "", nil, newValidationError("description", "validation.missing_information", "validation.description_required")
	}
	if method == domain.MethodSell {
		price, err := domain.ParsePrice(req.Price)
		if err != nil || price <= 0 {
			return "", nil, newValidationError("price", "validation.invalid_price", "validation.price_required")
		}
	}

	images := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		if img != "" && img != domain.PlaceholderImage {
			images = append(images, img)
		}
	}
	if len(images) == 0 {
		return "", nil, newValidationError("images", "validation.missing_information", "validation.image_required")
	}
	return method, images, nil
}

// FilterListings applies tag, search and wishlist filters
func FilterListings(items []domain.Listing, filter domain.ListingFilter) []domain.Listing {
	query := strings.ToLower(filter.Query)
	out := make([]domain.Listing, 0, len(items))
	for _, it := range items {
		if filter.Tag != "" && filter.Tag != domain.CategoryAll && it.Tag != filter.Tag {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(it.Title), query) &&
			!strings.Contains(strings.ToLower(it.Description), query) {
			continue
		}
		if filter.WishlistOnly && !it.IsLiked {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Categories returns "All" plus distinct tags in first-seen order
func Categories(items []domain.Listing) []string {
	seen := make(map[string]bool, len(items))
	cats := []string{domain.CategoryAll}
	for _, it := range items {
		if seen[it.Tag] {
			continue
		}
		seen[it.Tag] = true
		cats = append(cats, it.Tag)
	}
	return cats
}
