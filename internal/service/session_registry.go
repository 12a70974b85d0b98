package service

import (
	"context"
	"sync"
	"time"

	"github.com/campusloop/campusloop-backend/internal/domain"
	pkglogger "github.com/campusloop/campusloop-backend/pkg/logger"
)

// DefaultSessionIdleTimeout idle time after which a session is closed
const DefaultSessionIdleTimeout = 30 * time.Minute

// RegistryOptions configures a SessionRegistry
type RegistryOptions struct {
	AutoReplyDelay time.Duration
	IdleTimeout    time.Duration
	Notifier       MessageNotifier
	Clock          func() time.Time
}

type sessionKey struct {
	userID string
	key    domain.ConversationKey
}

// SessionRegistry keeps one live ChatSession per (user, conversation)
type SessionRegistry struct {
	devices *DeviceProvider
	opts    RegistryOptions

	mu       sync.Mutex
	sessions map[sessionKey]*ChatSession
}

// NewSessionRegistry creates a new SessionRegistry
func NewSessionRegistry(devices *DeviceProvider, opts RegistryOptions) *SessionRegistry {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultSessionIdleTimeout
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &SessionRegistry{
		devices:  devices,
		opts:     opts,
		sessions: make(map[sessionKey]*ChatSession),
	}
}

// Get returns the live session, creating it on first use
func (r *SessionRegistry) Get(userID string, key domain.ConversationKey) *ChatSession {
	sk := sessionKey{userID: userID, key: key}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sk]; ok {
		return s
	}
	s := NewChatSession(key, r.devices.ForUser(userID).Logs, SessionOptions{
		UserID:         userID,
		AutoReplyDelay: r.opts.AutoReplyDelay,
		Notifier:       r.opts.Notifier,
		Clock:          r.opts.Clock,
	})
	r.sessions[sk] = s
	return s
}

// Close closes and forgets a session. Returns false when none was open.
func (r *SessionRegistry) Close(userID string, key domain.ConversationKey) bool {
	sk := sessionKey{userID: userID, key: key}

	r.mu.Lock()
	s, ok := r.sessions[sk]
	delete(r.sessions, sk)
	r.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

// Len returns the number of live sessions
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the idle timeout.
// Sessions waiting on a reply are left alone. Session state is read outside the registry
// lock: a session stuck in a slow append must not block Get for other users.
func (r *SessionRegistry) Sweep() int {
	cutoff := r.opts.Clock().Add(-r.opts.IdleTimeout)

	r.mu.Lock()
	live := make(map[sessionKey]*ChatSession, len(r.sessions))
	for sk, s := range r.sessions {
		live[sk] = s
	}
	r.mu.Unlock()

	var idle []sessionKey
	for sk, s := range live {
		if s.State() == StateAutoReplyPending || s.LastActive().After(cutoff) {
			continue
		}
		idle = append(idle, sk)
	}

	var expired []*ChatSession
	r.mu.Lock()
	for _, sk := range idle {
		// Close 후 다시 만들어진 세션은 건드리지 않음
		if r.sessions[sk] == live[sk] {
			expired = append(expired, live[sk])
			delete(r.sessions, sk)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	return len(expired)
}

// Run sweeps periodically until ctx is done, then closes every session
func (r *SessionRegistry) Run(ctx context.Context) {
	interval := r.opts.IdleTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.CloseAll()
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				pkglogger.GetLogger().Debug().Int("closed", n).Msg("expired chat sessions")
			}
		}
	}
}

// CloseAll closes every session
func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[sessionKey]*ChatSession)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
