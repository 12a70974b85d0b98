package domain

import "time"

// Product represents a product listed through the backend (products table)
type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SellerID    uint      `gorm:"column:seller_id;index;not null" json:"-"`
	Seller      *User     `gorm:"foreignKey:SellerID" json:"-"`
	Title       string    `gorm:"column:title;size:255;not null" json:"title"`
	Description string    `gorm:"column:description;type:text;not null" json:"description"`
	Category    string    `gorm:"column:category;size:100;not null" json:"category"`
	Price       float64   `gorm:"column:price;not null" json:"price"`
	Negotiable  bool      `gorm:"column:negotiable;default:false" json:"negotiable"`
	ImageURL    string    `gorm:"column:image_url;size:1024;not null" json:"imageUrl"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

// CreateProductRequest represents a product upload request
type CreateProductRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Price       float64 `json:"price" binding:"gte=0"`
	Negotiable  bool    `json:"negotiable"`
	ImageURL    string  `json:"imageUrl" binding:"required"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uint        `json:"id"`
	Seller      *SellerInfo `json:"seller,omitempty"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Price       float64     `json:"price"`
	Negotiable  bool        `json:"negotiable"`
	ImageURL    string      `json:"imageUrl"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// ToResponse converts Product to ProductResponse
func (p *Product) ToResponse() *ProductResponse {
	resp := &ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Negotiable:  p.Negotiable,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Seller != nil {
		resp.Seller = p.Seller.ToSellerInfo()
	}
	return resp
}
