package domain

// Sender 메시지 발신자 ("user" = 본인, "other" = 상대방)
type Sender string

const (
	SenderSelf         Sender = "user"
	SenderCounterparty Sender = "other"
)

// Message one entry of a conversation log.
// Logs are append-only: entries are never reordered, edited or removed.
type Message struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Sender    Sender `json:"sender"`
	Timestamp int64  `json:"timestamp"` // epoch ms
	Image     string `json:"image,omitempty"`
}

// SendMessageRequest represents a text send request
type SendMessageRequest struct {
	Text string `json:"text"`
}

// SendImageRequest represents an image send request
type SendImageRequest struct {
	URI string `json:"uri" binding:"required"`
}

// ChatEvent is pushed to websocket clients when a message is appended
type ChatEvent struct {
	Type            string   `json:"type"`
	ConversationKey string   `json:"conversation"`
	Message         *Message `json:"message"`
}

// ChatEventMessage 메시지 추가 이벤트 타입
const ChatEventMessage = "message"
