package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/campusloop/campusloop-backend/internal/common"
	"github.com/campusloop/campusloop-backend/internal/domain"
	"github.com/campusloop/campusloop-backend/internal/repository"
	"github.com/campusloop/campusloop-backend/pkg/i18n"
	pkglogger "github.com/campusloop/campusloop-backend/pkg/logger"
)

// DefaultAutoReplyDelay delay before the synthetic counterparty reply
const DefaultAutoReplyDelay = time.Second

// SessionState 채팅 세션 상태
type SessionState int

const (
	StateIdle SessionState = iota
	StateComposing
	StateSent
	StateAutoReplyPending
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateComposing:
		return "composing"
	case StateSent:
		return "sent"
	case StateAutoReplyPending:
		return "auto_reply_pending"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// MessageNotifier is told about every appended message
type MessageNotifier interface {
	NotifyMessage(userID string, key domain.ConversationKey, msg domain.Message)
}

// SessionOptions configures a ChatSession
type SessionOptions struct {
	UserID         string
	AutoReplyDelay time.Duration
	Notifier       MessageNotifier
	Clock          func() time.Time
}

// ChatSession is one open conversation: it holds the draft, appends sends to the log
// and schedules the synthetic reply. Appends made through one session are serialized;
// writes from elsewhere to the same key still race (last writer wins).
type ChatSession struct {
	key      domain.ConversationKey
	userID   string
	logs     repository.MessageLogRepository
	notifier MessageNotifier
	delay    time.Duration
	clock    func() time.Time

	mu         sync.Mutex
	state      SessionState
	draft      string
	pending    int
	lastID     int64
	lastActive time.Time

	// ctx bounds every pending reply; Close cancels it
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewChatSession creates a session for key
func NewChatSession(key domain.ConversationKey, logs repository.MessageLogRepository, opts SessionOptions) *ChatSession {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.AutoReplyDelay <= 0 {
		opts.AutoReplyDelay = DefaultAutoReplyDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	chatSessionsActive.Inc()
	return &ChatSession{
		key:        key,
		userID:     opts.UserID,
		logs:       logs,
		notifier:   opts.Notifier,
		delay:      opts.AutoReplyDelay,
		clock:      opts.Clock,
		state:      StateIdle,
		lastActive: opts.Clock(),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Key returns the conversation key
func (s *ChatSession) Key() domain.ConversationKey {
	return s.key
}

// State returns the current state
func (s *ChatSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Draft returns the buffered text
func (s *ChatSession) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// LastActive returns the time of the last compose or send
func (s *ChatSession) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Compose buffers text without sending it
func (s *ChatSession) Compose(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return common.ErrSessionClosed
	}
	s.draft = text
	s.lastActive = s.clock()
	if s.pending == 0 {
		s.state = s.restingState()
	}
	return nil
}

// Send sends the buffered draft
func (s *ChatSession) Send(ctx context.Context) (*domain.Message, error) {
	s.mu.Lock()
	draft := s.draft
	s.mu.Unlock()
	return s.SendText(ctx, draft)
}

// SendText appends a text message and schedules the auto reply.
// Whitespace-only text is a no-op and returns a nil message. The draft is cleared only
// when it still holds text, so a Compose that raced the send survives.
func (s *ChatSession) SendText(ctx context.Context, text string) (*domain.Message, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state == StateClosed {
			return nil, common.ErrSessionClosed
		}
		return nil, nil
	}
	return s.send(ctx, domain.Message{Text: trimmed, Sender: domain.SenderSelf}, &text)
}

// SendImage appends an image message (empty text) and schedules the auto reply.
// An empty uri is a no-op.
func (s *ChatSession) SendImage(ctx context.Context, uri string) (*domain.Message, error) {
	if strings.TrimSpace(uri) == "" {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state == StateClosed {
			return nil, common.ErrSessionClosed
		}
		return nil, nil
	}
	return s.send(ctx, domain.Message{Text: "", Image: uri, Sender: domain.SenderSelf}, nil)
}

// send appends msg; sentDraft is the raw text sent, nil for images
func (s *ChatSession) send(ctx context.Context, msg domain.Message, sentDraft *string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return nil, common.ErrSessionClosed
	}

	now := s.clock()
	msg.ID = s.nextID(now)
	msg.Timestamp = now.UnixMilli()
	if err := s.logs.Append(ctx, s.key, msg); err != nil {
		return nil, err
	}
	chatMessagesAppended.WithLabelValues(string(msg.Sender)).Inc()
	s.notify(msg)

	if sentDraft != nil && s.draft == *sentDraft {
		s.draft = ""
	}
	s.lastActive = now
	s.state = StateSent
	s.scheduleReply()
	return &msg, nil
}

// scheduleReply must be called with mu held
func (s *ChatSession) scheduleReply() {
	s.pending++
	s.state = StateAutoReplyPending
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer := time.NewTimer(s.delay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			chatAutoReplies.WithLabelValues("cancelled").Inc()
			return
		case <-timer.C:
		}
		s.deliverReply()
	}()
}

func (s *ChatSession) deliverReply() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		chatAutoReplies.WithLabelValues("cancelled").Inc()
		return
	}

	s.pending--
	if s.pending == 0 {
		s.state = s.restingState()
	}

	now := s.clock()
	reply := domain.Message{
		ID:        s.nextID(now),
		Text:      defaultBundle.T(i18n.LocaleEn, "chat.auto_reply"),
		Sender:    domain.SenderCounterparty,
		Timestamp: now.UnixMilli(),
	}
	if err := s.logs.Append(s.ctx, s.key, reply); err != nil {
		chatAutoReplies.WithLabelValues("failed").Inc()
		pkglogger.GetLogger().Error().Err(err).Str("key", s.key.String()).Msg("append auto reply")
		return
	}
	chatAutoReplies.WithLabelValues("sent").Inc()
	chatMessagesAppended.WithLabelValues(string(reply.Sender)).Inc()
	s.notify(reply)
}

// Close cancels pending replies and waits for them to stop.
// No message is appended by this session after Close returns.
func (s *ChatSession) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	s.pending = 0
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	chatSessionsActive.Dec()
}

// nextID returns a time based id that is unique within the session; mu must be held
func (s *ChatSession) nextID(now time.Time) string {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func (s *ChatSession) restingState() SessionState {
	if s.draft != "" {
		return StateComposing
	}
	return StateIdle
}

func (s *ChatSession) notify(msg domain.Message) {
	if s.notifier != nil {
		s.notifier.NotifyMessage(s.userID, s.key, msg)
	}
}
