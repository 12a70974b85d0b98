package handler

import (
	"errors"
	"net/http"

	"github.com/campusloop/campusloop-backend/internal/common"
	"github.com/campusloop/campusloop-backend/internal/domain"
	"github.com/campusloop/campusloop-backend/internal/middleware"
	"github.com/campusloop/campusloop-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ChatHandler handles conversation requests on the caller's namespace
type ChatHandler struct {
	devices  *service.DeviceProvider
	sessions *service.SessionRegistry
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(devices *service.DeviceProvider, sessions *service.SessionRegistry) *ChatHandler {
	return &ChatHandler{devices: devices, sessions: sessions}
}

// conversationURI binds /:itemId/:counterpartyId
type conversationURI struct {
	ItemID         string `uri:"itemId" binding:"required,chatid"`
	CounterpartyID string `uri:"counterpartyId" binding:"required,chatid"`
}

// OpenRequest optional display data the client already has
type OpenRequest struct {
	ItemTitle        string `json:"itemTitle"`
	CounterpartyName string `json:"userName"`
}

// OpenResponse conversation header plus its log
type OpenResponse struct {
	Conversation *domain.ConversationInfo `json:"conversation"`
	Messages     []domain.Message         `json:"messages"`
}

// List handles GET /api/v1/chats
func (h *ChatHandler) List(c *gin.Context) {
	device, ok := currentDevice(c, h.devices)
	if !ok {
		return
	}

	summaries, err := device.Conversations.ListConversations(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load conversations", err)
		return
	}
	common.SuccessResponse(c, summaries, &common.Meta{Total: int64(len(summaries))})
}

// Open handles POST /api/v1/chats/:itemId/:counterpartyId
func (h *ChatHandler) Open(c *gin.Context) {
	device, ok := currentDevice(c, h.devices)
	if !ok {
		return
	}
	key, ok := bindConversationKey(c)
	if !ok {
		return
	}

	var req OpenRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	info, msgs, err := device.Chats.Open(c.Request.Context(), key, service.OpenHint{
		ItemTitle:        req.ItemTitle,
		CounterpartyName: req.CounterpartyName,
	})
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to open conversation", err)
		return
	}

	// the session starts with the conversation so replies can be scheduled
	h.sessions.Get(device.UserID, key)
	common.SuccessResponse(c, &OpenResponse{Conversation: info, Messages: msgs}, nil)
}

// SendMessage handles POST /api/v1/chats/:itemId/:counterpartyId/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := middleware.GetUserID(c)
	key, ok := bindConversationKey(c)
	if !ok {
		return
	}

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	msg, err := h.sessions.Get(userID, key).SendText(c.Request.Context(), req.Text)
	h.respondSend(c, msg, err)
}

// SendImage handles POST /api/v1/chats/:itemId/:counterpartyId/images
func (h *ChatHandler) SendImage(c *gin.Context) {
	userID := middleware.GetUserID(c)
	key, ok := bindConversationKey(c)
	if !ok {
		return
	}

	var req domain.SendImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Image uri is required", err)
		return
	}

	msg, err := h.sessions.Get(userID, key).SendImage(c.Request.Context(), req.URI)
	h.respondSend(c, msg, err)
}

// CloseSession handles DELETE /api/v1/chats/:itemId/:counterpartyId/session
func (h *ChatHandler) CloseSession(c *gin.Context) {
	key, ok := bindConversationKey(c)
	if !ok {
		return
	}
	closed := h.sessions.Close(middleware.GetUserID(c), key)
	common.SuccessResponse(c, gin.H{"closed": closed}, nil)
}

func (h *ChatHandler) respondSend(c *gin.Context, msg *domain.Message, err error) {
	switch {
	case errors.Is(err, common.ErrSessionClosed):
		common.ErrorResponse(c, common.StatusOf(err), "Conversation is closed", err)
	case err != nil:
		common.ErrorResponse(c, common.StatusOf(err), "Failed to send message", err)
	case msg == nil:
		// blank input, nothing was sent
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusCreated, common.APIResponse{Data: msg})
	}
}

func bindConversationKey(c *gin.Context) (domain.ConversationKey, bool) {
	var uri conversationURI
	if err := c.ShouldBindUri(&uri); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid conversation id", err)
		return domain.ConversationKey{}, false
	}
	key, err := domain.NewConversationKey(uri.ItemID, uri.CounterpartyID)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid conversation id", err)
		return domain.ConversationKey{}, false
	}
	return key, true
}
