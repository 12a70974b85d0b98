package repository

import (
	"context"

	"github.com/campusloop/campusloop-backend/internal/domain"
	"gorm.io/gorm"
)

// ProductRepository product data access interface
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint) (*domain.Product, error)
	FindAllWithSeller(ctx context.Context) ([]*domain.Product, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindByID finds a product by primary key, with its seller
func (r *productRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.WithContext(ctx).Preload("Seller").First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindAllWithSeller returns all products, newest first, with the seller preloaded
func (r *productRepository) FindAllWithSeller(ctx context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	err := r.db.WithContext(ctx).
		Preload("Seller").
		Order("created_at DESC, id DESC").
		Find(&products).Error
	return products, err
}

// Delete removes a product. Returns false when no row matched.
func (r *productRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Product{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
