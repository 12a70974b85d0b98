package handler

import (
	"errors"
	"net/http"

	"github.com/campusloop/campusloop-backend/internal/common"
	"github.com/campusloop/campusloop-backend/internal/domain"
	"github.com/campusloop/campusloop-backend/internal/middleware"
	"github.com/campusloop/campusloop-backend/internal/service"
	"github.com/campusloop/campusloop-backend/pkg/ginutil"
	"github.com/campusloop/campusloop-backend/pkg/i18n"
	"github.com/gin-gonic/gin"
)

// ListingHandler handles marketplace listing requests on the caller's namespace
type ListingHandler struct {
	devices *service.DeviceProvider
	bundle  *i18n.Bundle
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(devices *service.DeviceProvider, bundle *i18n.Bundle) *ListingHandler {
	return &ListingHandler{devices: devices, bundle: bundle}
}

// List handles GET /api/v1/marketplace/items?tag=&q=&wishlist=
func (h *ListingHandler) List(c *gin.Context) {
	device, ok := currentDevice(c, h.devices)
	if !ok {
		return
	}

	filter := domain.ListingFilter{
		Tag:          c.DefaultQuery("tag", domain.CategoryAll),
		Query:        c.Query("q"),
		WishlistOnly: ginutil.QueryBool(c, "wishlist"),
	}

	items := device.Listings.List(c.Request.Context(), filter)
	common.SuccessResponse(c, items, &common.Meta{
		Total:    int64(len(items)),
		Category: filter.Tag,
		Query:    filter.Query,
	})
}

// Categories handles GET /api/v1/marketplace/categories
func (h *ListingHandler) Categories(c *gin.Context) {
	device, ok := currentDevice(c, h.devices)
	if !ok {
		return
	}
	common.SuccessResponse(c, device.Listings.Categories(c.Request.Context()), nil)
}

// Create handles POST /api/v1/marketplace/items
func (h *ListingHandler) Create(c *gin.Context) {
	device, ok := currentDevice(c, h.devices)
	if !ok {
		return
	}

	var req domain.UploadListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item, err := device.Listings.Upload(c.Request.Context(), &req)
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		title, msg := verr.Localize(h.bundle, middleware.GetLocale(c))
		common.AlertResponse(c, title, msg)
		return
	}
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to save your item. Please try again.", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":    item,
		"message": middleware.Translate(c, h.bundle, "listing.created"),
	})
}

// ToggleLike handles POST /api/v1/marketplace/items/:id/like
func (h *ListingHandler) ToggleLike(c *gin.Context) {
	device, ok := currentDevice(c, h.devices)
	if !ok {
		return
	}

	item, err := device.Listings.ToggleLike(c.Request.Context(), c.Param("id"))
	if errors.Is(err, common.ErrListingNotFound) {
		common.ErrorResponse(c, http.StatusNotFound, "Listing not found", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to update wishlist", err)
		return
	}

	key := "listing.unliked"
	if item.IsLiked {
		key = "listing.liked"
	}
	c.JSON(http.StatusOK, gin.H{
		"data":    item,
		"message": middleware.Translate(c, h.bundle, key),
	})
}

// currentDevice resolves the authenticated user's device, writing 401 when absent
func currentDevice(c *gin.Context, devices *service.DeviceProvider) (*service.Device, bool) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Login required", nil)
		return nil, false
	}
	return devices.ForUser(userID), true
}
