package service

import (
	"context"
	"errors"

	"github.com/campusloop/campusloop-backend/internal/common"
	"github.com/campusloop/campusloop-backend/internal/domain"
	"github.com/campusloop/campusloop-backend/internal/repository"
	"github.com/campusloop/campusloop-backend/pkg/cache"
	pkglogger "github.com/campusloop/campusloop-backend/pkg/logger"
	"gorm.io/gorm"
)

// ProductService product business logic
type ProductService interface {
	Create(ctx context.Context, sellerID uint, req *domain.CreateProductRequest) (*domain.ProductResponse, error)
	List(ctx context.Context) ([]*domain.ProductResponse, error)
	Delete(ctx context.Context, id, requesterID uint) error
}

type productService struct {
	repo  repository.ProductRepository
	cache cache.Service
}

// NewProductService creates a new ProductService. cacheService may be nil.
func NewProductService(repo repository.ProductRepository, cacheService cache.Service) ProductService {
	if cacheService == nil {
		cacheService = cache.NewService(nil)
	}
	return &productService{repo: repo, cache: cacheService}
}

// Create stores a product owned by sellerID
func (s *productService) Create(ctx context.Context, sellerID uint, req *domain.CreateProductRequest) (*domain.ProductResponse, error) {
	product := &domain.Product{
		SellerID:    sellerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Negotiable:  req.Negotiable,
		ImageURL:    req.ImageURL,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return product.ToResponse(), nil
}

// List returns all products with their sellers, served from cache when possible
func (s *productService) List(ctx context.Context) ([]*domain.ProductResponse, error) {
	responses, _, err := cache.Remember(ctx, s.cache, cache.KeyProducts, cache.TTLProducts,
		func(ctx context.Context) ([]*domain.ProductResponse, error) {
			products, err := s.repo.FindAllWithSeller(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]*domain.ProductResponse, len(products))
			for i, p := range products {
				out[i] = p.ToResponse()
			}
			return out, nil
		})
	return responses, err
}

// Delete removes a product; only its seller may do so
func (s *productService) Delete(ctx context.Context, id, requesterID uint) error {
	product, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrProductNotFound
	}
	if err != nil {
		return err
	}
	if product.SellerID != requesterID {
		return common.ErrForbidden
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return common.ErrProductNotFound
	}
	s.invalidate(ctx)
	return nil
}

func (s *productService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.KeyProducts); err != nil {
		pkglogger.FromContext(ctx).Warn().Err(err).Msg("product cache invalidate")
	}
}
