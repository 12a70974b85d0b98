package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	maxFrameSize = 4096
	sendBuffer   = 64
)

// Frame types a client may send
const (
	FrameCompose = "compose" // draft update, nothing is appended
	FrameSend    = "send"    // send text (or the buffered draft when text is empty)
)

// Frame is a client to server message on the chat socket
type Frame struct {
	Type         string `json:"type"`
	Conversation string `json:"conversation"`
	Text         string `json:"text"`
}

// FrameHandler receives decoded client frames
type FrameHandler interface {
	HandleFrame(userID string, frame Frame)
}

// Client is one chat socket of a user
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	userID  string
	handler FrameHandler
}

// NewClient creates a client. handler may be nil: frames are then discarded.
func NewClient(hub *Hub, conn *websocket.Conn, userID string, handler FrameHandler) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		userID:  userID,
		handler: handler,
	}
}

// ReadPump decodes client frames until the socket closes
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var frame Frame
		if json.Unmarshal(data, &frame) != nil || c.handler == nil {
			continue
		}
		c.handler.HandleFrame(c.userID, frame)
	}
}

// WritePump drains the send queue and keeps the socket alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub dropped us
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
