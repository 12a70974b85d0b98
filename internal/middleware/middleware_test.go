package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/campusloop/campusloop-backend/pkg/i18n"
	"github.com/campusloop/campusloop-backend/pkg/jwt"
	pkglogger "github.com/campusloop/campusloop-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(mgr *jwt.Manager) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(), JWTAuth(mgr))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "uid": GetUserIDUint(c), "email": GetEmail(c)})
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	mgr := jwt.NewManager("secret", time.Hour)
	token, err := mgr.GenerateToken("12", "ada@campus.edu")
	require.NoError(t, err)
	r := newAuthRouter(mgr)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + token, http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"id":"12","uid":12,"email":"ada@campus.edu"}`, w.Body.String())
}

func TestJWTAuthQueryTokenOnlyForWebsocket(t *testing.T) {
	mgr := jwt.NewManager("secret", time.Hour)
	token, err := mgr.GenerateToken("12", "")
	require.NoError(t, err)
	r := newAuthRouter(mgr)

	req := httptest.NewRequest(http.MethodGet, "/me?token="+token, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/me?token="+token, nil)
	req.Header.Set("Connection", "upgrade")
	req.Header.Set("Upgrade", "websocket")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestI18nLocale(t *testing.T) {
	r := gin.New()
	r.Use(I18n())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, string(GetLocale(c))) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "ko", w.Body.String())
	assert.Equal(t, "ko", w.Header().Get("Content-Language"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "en", w.Body.String())

	// ?lang 가 헤더보다 우선
	req = httptest.NewRequest(http.MethodGet, "/?lang=en", nil)
	req.Header.Set("Accept-Language", "ko")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "en", w.Body.String())
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	// 분 경계에 걸리지 않도록 고정 시각
	now := time.Date(2026, 3, 1, 12, 0, 10, 0, time.UTC)
	r := gin.New()
	r.Use(I18n(), RateLimit(client, i18n.NewDefaultBundle(), RateLimitConfig{
		RequestsPerMinute: 2,
		KeyPrefix:         "test:rl:",
		Now:               func() time.Time { return now },
	}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.Contains(t, w.Body.String(), "Too many requests")
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestRateLimitSlidesAcrossWindows(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := gin.New()
	r.Use(RateLimit(client, i18n.NewDefaultBundle(), RateLimitConfig{
		RequestsPerMinute: 2,
		KeyPrefix:         "test:slide:",
		Now:               func() time.Time { return now },
	}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w
	}

	assert.Equal(t, http.StatusOK, hit().Code)
	w := hit()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusTooManyRequests, hit().Code)

	// 다음 윈도우 절반: 이전 윈도우 2건이 1건으로 계산됨
	now = now.Add(90 * time.Second)
	assert.Equal(t, http.StatusOK, hit().Code)
	w = hit()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimitWithoutRedisPasses(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(nil, i18n.NewDefaultBundle(), DefaultRateLimitConfig()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

type chatURI struct {
	ItemID string `uri:"itemId" binding:"required,chatid"`
}

func TestChatIDValidator(t *testing.T) {
	require.NoError(t, RegisterValidators())

	r := gin.New()
	r.GET("/chats/:itemId", func(c *gin.Context) {
		var uri chatURI
		if err := c.ShouldBindUri(&uri); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	for path, code := range map[string]int{
		"/chats/42":     http.StatusOK,
		"/chats/a_b":    http.StatusBadRequest,
		"/chats/item-3": http.StatusOK,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, code, w.Code, path)
	}
}

func TestRequestLoggerRequestID(t *testing.T) {
	var buf bytes.Buffer
	pkglogger.InitWithWriter("production", &buf)

	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/x", func(c *gin.Context) {
		pkglogger.FromContext(c.Request.Context()).Info().Msg("inside")
		c.String(http.StatusOK, GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), `"message":"inside"`)
	assert.Equal(t, 2, strings.Count(buf.String(), `"request_id":"abc-123"`))

	// 너무 긴 id 는 새로 발급
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("a", 100))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Len(t, w.Body.String(), 36)
}
