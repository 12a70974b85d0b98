package handler

import (
	"errors"
	"net/http"

	"github.com/campusloop/campusloop-backend/internal/common"
	"github.com/campusloop/campusloop-backend/internal/domain"
	"github.com/campusloop/campusloop-backend/internal/middleware"
	"github.com/campusloop/campusloop-backend/internal/service"
	"github.com/campusloop/campusloop-backend/pkg/ginutil"
	pkglogger "github.com/campusloop/campusloop-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// imageField multipart field of the image upload
const imageField = "image"

// ProductHandler handles product HTTP requests
type ProductHandler struct {
	service service.ProductService
	media   *service.MediaService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(service service.ProductService, media *service.MediaService) *ProductHandler {
	return &ProductHandler{service: service, media: media}
}

// Upload handles POST /products/upload
func (h *ProductHandler) Upload(c *gin.Context) {
	sellerID := middleware.GetUserIDUint(c)
	if sellerID == 0 {
		common.MessageResponse(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req domain.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.MessageResponse(c, http.StatusBadRequest, "Invalid product data")
		return
	}

	product, err := h.service.Create(c.Request.Context(), sellerID, &req)
	if err != nil {
		pkglogger.FromContext(c.Request.Context()).Error().Err(err).Msg("upload product")
		common.MessageResponse(c, http.StatusInternalServerError, "Server error")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.service.List(c.Request.Context())
	if err != nil {
		pkglogger.FromContext(c.Request.Context()).Error().Err(err).Msg("list products")
		common.MessageResponse(c, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	c.JSON(http.StatusOK, products)
}

// Delete handles DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := ginutil.ParamUint(c, "id")
	if err != nil {
		common.MessageResponse(c, http.StatusNotFound, "Product not found")
		return
	}

	err = h.service.Delete(c.Request.Context(), id, middleware.GetUserIDUint(c))
	if err == nil {
		common.MessageResponse(c, http.StatusOK, "Product deleted successfully")
		return
	}
	switch status := common.StatusOf(err); status {
	case http.StatusNotFound:
		common.MessageResponse(c, status, "Product not found")
	case http.StatusForbidden:
		common.MessageResponse(c, status, "Not allowed to delete this product")
	default:
		pkglogger.FromContext(c.Request.Context()).Error().Err(err).Msg("delete product")
		common.MessageResponse(c, status, "Error deleting product")
	}
}

// UploadImage handles POST /products/upload-image (multipart field "image")
func (h *ProductHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile(imageField)
	if err != nil {
		common.MessageResponse(c, http.StatusBadRequest, "Image file is required")
		return
	}

	result, err := h.media.UploadImage(c.Request.Context(), imageField, file)
	switch {
	case errors.Is(err, service.ErrFileTooLarge):
		common.MessageResponse(c, http.StatusRequestEntityTooLarge, err.Error())
		return
	case errors.Is(err, service.ErrUnsupportedImage):
		common.MessageResponse(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		common.MessageResponse(c, http.StatusInternalServerError, "Image upload failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"imageUrl": result.ImageURL})
}
