package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/campusloop/campusloop-backend/internal/common"
	"github.com/campusloop/campusloop-backend/internal/domain"
	"github.com/campusloop/campusloop-backend/internal/middleware"
	"github.com/campusloop/campusloop-backend/internal/service"
	"github.com/campusloop/campusloop-backend/internal/ws"
	pkglogger "github.com/campusloop/campusloop-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// frameTimeout bounds a send triggered from the socket
const frameTimeout = 5 * time.Second

// WSHandler upgrades chat sockets and applies the composer frames they send
type WSHandler struct {
	hub      *ws.Hub
	sessions *service.SessionRegistry
	origins  map[string]struct{} // empty: any origin
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler. allowedOrigins is comma separated, "*" allows any.
func NewWSHandler(hub *ws.Hub, sessions *service.SessionRegistry, allowedOrigins string) *WSHandler {
	h := &WSHandler{
		hub:      hub,
		sessions: sessions,
		origins:  make(map[string]struct{}),
	}
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" && o != "*" {
			h.origins[o] = struct{}{}
		}
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *WSHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	// 네이티브 앱은 Origin 없음
	if origin == "" || len(h.origins) == 0 {
		return true
	}
	_, ok := h.origins[origin]
	return ok
}

// Connect handles GET /ws/chats: pushes every message appended to the user's conversations
func (h *WSHandler) Connect(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Login required", nil)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := ws.NewClient(h.hub, conn, userID, h)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// HandleFrame applies a composer frame to the user's session of that conversation.
// Results reach the client through the hub like any other append.
func (h *WSHandler) HandleFrame(userID string, frame ws.Frame) {
	log := pkglogger.GetLogger().With().Str("user_id", userID).Str("frame", frame.Type).Logger()

	key, err := domain.ParseConversationKey(frame.Conversation)
	if err != nil {
		log.Debug().Str("conversation", frame.Conversation).Msg("ws frame with invalid conversation")
		return
	}

	// 알 수 없는 타입은 세션을 만들지 않음
	switch frame.Type {
	case ws.FrameCompose:
		err = h.sessions.Get(userID, key).Compose(frame.Text)
	case ws.FrameSend:
		ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
		defer cancel()
		session := h.sessions.Get(userID, key)
		if strings.TrimSpace(frame.Text) == "" {
			_, err = session.Send(ctx)
		} else {
			_, err = session.SendText(ctx, frame.Text)
		}
	default:
		log.Debug().Str("conversation", key.String()).Msg("ws frame with unknown type")
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("conversation", key.String()).Msg("ws frame failed")
	}
}
