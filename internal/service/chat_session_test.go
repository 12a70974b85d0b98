package service

import (
	"context"
	"testing"
	"time"

	"github.com/campusloop/campusloop-backend/internal/common"
	"github.com/campusloop/campusloop-backend/internal/domain"
	"github.com/campusloop/campusloop-backend/internal/repository"
	"github.com/campusloop/campusloop-backend/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyMessage(userID string, key domain.ConversationKey, msg domain.Message) {
	m.Called(userID, key, msg)
}

func newTestSession(t *testing.T, delay time.Duration, notifier MessageNotifier) (*ChatSession, repository.MessageLogRepository) {
	t.Helper()
	logs := repository.NewMessageLogRepository(kvstore.NewMemoryStore())
	s := NewChatSession(conversationKey(t, "42", "7"), logs, SessionOptions{
		UserID:         "u1",
		AutoReplyDelay: delay,
		Notifier:       notifier,
	})
	t.Cleanup(s.Close)
	return s, logs
}

func logLen(t *testing.T, logs repository.MessageLogRepository, s *ChatSession) int {
	t.Helper()
	msgs, err := logs.Load(context.Background(), s.Key())
	require.NoError(t, err)
	return len(msgs)
}

func TestSendBlankIsNoop(t *testing.T) {
	ctx := context.Background()
	s, logs := newTestSession(t, 10*time.Millisecond, nil)

	for _, text := range []string{"", "   ", "\n\t"} {
		msg, err := s.SendText(ctx, text)
		assert.NoError(t, err)
		assert.Nil(t, msg)
	}
	assert.Equal(t, StateIdle, s.State())

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 0, logLen(t, logs, s), "no append and no auto reply")
}

func TestSendAppendsAndAutoReplies(t *testing.T) {
	ctx := context.Background()
	n := new(mockNotifier)
	n.On("NotifyMessage", "u1", mock.Anything, mock.Anything).Return()
	s, logs := newTestSession(t, 20*time.Millisecond, n)

	require.NoError(t, s.Compose("  is it available?  "))
	assert.Equal(t, StateComposing, s.State())

	msg, err := s.Send(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "is it available?", msg.Text)
	assert.Equal(t, domain.SenderSelf, msg.Sender)
	assert.Empty(t, s.Draft())
	assert.Equal(t, StateAutoReplyPending, s.State())

	assert.Eventually(t, func() bool { return logLen(t, logs, s) == 2 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return s.State() == StateIdle }, time.Second, 5*time.Millisecond)

	msgs, err := logs.Load(ctx, s.Key())
	require.NoError(t, err)
	assert.Equal(t, domain.SenderCounterparty, msgs[1].Sender)
	assert.Equal(t, "Yes, it's still available! When would you like to meet?", msgs[1].Text)
	assert.NotEqual(t, msgs[0].ID, msgs[1].ID)

	// Close waits for the reply goroutine, so every notification has been delivered
	s.Close()
	n.AssertNumberOfCalls(t, "NotifyMessage", 2)
}

func TestSendImageSchedulesReply(t *testing.T) {
	ctx := context.Background()
	s, logs := newTestSession(t, 10*time.Millisecond, nil)

	msg, err := s.SendImage(ctx, "")
	assert.NoError(t, err)
	assert.Nil(t, msg)

	msg, err = s.SendImage(ctx, "file:///photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, "", msg.Text)
	assert.Equal(t, "file:///photo.jpg", msg.Image)

	assert.Eventually(t, func() bool { return logLen(t, logs, s) == 2 }, time.Second, 5*time.Millisecond)
}

// Send reads the draft before appending; a Compose landing in between must survive.
func TestSendKeepsDraftComposedMeanwhile(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t, time.Hour, nil)

	require.NoError(t, s.Compose("first question"))
	// Send 가 draft 를 읽은 뒤 새 Compose 가 들어온 상황
	require.NoError(t, s.Compose("second question"))
	msg, err := s.SendText(ctx, "first question")
	require.NoError(t, err)
	assert.Equal(t, "first question", msg.Text)
	assert.Equal(t, "second question", s.Draft())

	msg, err = s.Send(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second question", msg.Text)
	assert.Empty(t, s.Draft())
}

func TestCloseCancelsPendingReply(t *testing.T) {
	ctx := context.Background()
	s, logs := newTestSession(t, 30*time.Millisecond, nil)

	_, err := s.SendText(ctx, "hello")
	require.NoError(t, err)
	s.Close()
	assert.Equal(t, StateClosed, s.State())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, logLen(t, logs, s), "no stale reply after close")

	_, err = s.SendText(ctx, "again")
	assert.ErrorIs(t, err, common.ErrSessionClosed)
	_, err = s.SendImage(ctx, "file:///x.jpg")
	assert.ErrorIs(t, err, common.ErrSessionClosed)
	assert.ErrorIs(t, s.Compose("x"), common.ErrSessionClosed)

	s.Close()
}

func TestRapidSendsEachGetAReply(t *testing.T) {
	ctx := context.Background()
	s, logs := newTestSession(t, 15*time.Millisecond, nil)

	_, err := s.SendText(ctx, "one")
	require.NoError(t, err)
	_, err = s.SendText(ctx, "two")
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return logLen(t, logs, s) == 4 }, time.Second, 5*time.Millisecond)

	msgs, err := logs.Load(ctx, s.Key())
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, m := range msgs {
		assert.False(t, seen[m.ID], "duplicate id %s", m.ID)
		seen[m.ID] = true
	}
}

func TestSessionStateString(t *testing.T) {
	assert.Equal(t, "auto_reply_pending", StateAutoReplyPending.String())
	assert.Equal(t, "closed", StateClosed.String())
}
