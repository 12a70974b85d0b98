package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ListingsKey 마켓플레이스 목록 저장 키
const ListingsKey = "marketplaceItems"

// PlaceholderImage marks an empty image slot of the upload form
const PlaceholderImage = "https://via.placeholder.com/150"

// CategoryAll matches every tag
const CategoryAll = "All"

// UploadMethod 등록 방식
type UploadMethod string

const (
	MethodSell   UploadMethod = "sell"
	MethodSwap   UploadMethod = "swap"
	MethodDonate UploadMethod = "donate"
)

// ParseUploadMethod is case-insensitive
func ParseUploadMethod(s string) (UploadMethod, bool) {
	switch m := UploadMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodSell, MethodSwap, MethodDonate:
		return m, true
	}
	return "", false
}

// Listing an item on the marketplace.
// The whole list is stored as one JSON array and rewritten on every change.
type Listing struct {
	ID          string       `json:"id,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Price       string       `json:"price"`
	Tag         string       `json:"tag"`
	Image       string       `json:"image"`
	Images      []string     `json:"images,omitempty"`
	IsLiked     bool         `json:"isLiked"`
	Negotiable  bool         `json:"negotiable"`
	Username    string       `json:"username"`
	ListedDate  string       `json:"listedDate,omitempty"`
	Type        UploadMethod `json:"type,omitempty"`
}

// ListingFilter 목록 필터 조건
type ListingFilter struct {
	Tag          string
	Query        string
	WishlistOnly bool
}

// UploadListingRequest represents the upload form
type UploadListingRequest struct {
	Method      string   `json:"method" binding:"required"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       string   `json:"price"`
	Negotiable  bool     `json:"negotiable"`
	Images      []string `json:"images"`
}

// FormatPrice renders the display price for a listing
func FormatPrice(method UploadMethod, price string) string {
	switch method {
	case MethodSell:
		return "₹" + strings.TrimSpace(price)
	case MethodSwap:
		return "For Swap"
	default:
		return "Free"
	}
}

// ErrInvalidPrice is returned for NaN and infinite prices
var ErrInvalidPrice = errors.New("price is not a finite number")

// ParsePrice parses the numeric price entered in the form. NaN and Inf are rejected.
func ParsePrice(price string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(price), 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", price, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("parse price %q: %w", price, ErrInvalidPrice)
	}
	return v, nil
}

const unsplash = "https://images.unsplash.com/"

func unsplashImage(id string) string {
	return unsplash + id + "?ixlib=rb-1.2.1&auto=format&fit=crop&w=500&q=60"
}

// DefaultListings seed data written when a namespace has no listings yet
func DefaultListings() []Listing {
	laptop := unsplashImage("photo-1588872657578-7efd1f1555ed")
	books := unsplashImage("photo-1544947950-fa07a98d237f")
	keyboard := unsplashImage("photo-1618384887929-16ec33fab9ef")
	calculator := unsplashImage("photo-1564466809058-bf4114d55352")

	return []Listing{
		{
			ID:          "1",
			Image:       laptop,
			Images:      []string{laptop, unsplashImage("photo-1603302576837-37561b2e2302")},
			Price:       "₹299",
			Title:       "Refurbished Laptop",
			Description: "Like new condition, 1 year warranty",
			Tag:         "Electronics",
			Username:    "John Doe",
			Negotiable:  true,
		},
		{
			ID:          "2",
			Image:       books,
			Images:      []string{books},
			Price:       "₹45",
			Title:       "Engineering Books Set",
			Description: "Perfect condition, 2nd year",
			Tag:         "Books",
			Username:    "Jane Smith",
		},
		{
			ID:          "3",
			Image:       keyboard,
			Images:      []string{keyboard},
			Price:       "₹99",
			Title:       "Mechanical Keyboard",
			Description: "Brand new, RGB lighting",
			Tag:         "Electronics",
			Username:    "Alice Johnson",
			Negotiable:  true,
		},
		{
			ID:          "4",
			Image:       calculator,
			Images:      []string{calculator},
			Price:       "₹199",
			Title:       "Student Calculator",
			Description: "Scientific calculator, lightly used",
			Tag:         "Electronics",
			Username:    "Bob Brown",
		},
	}
}
