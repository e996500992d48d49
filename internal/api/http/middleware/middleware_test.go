package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/parley-server/internal/logger"
	"github.com/dtroode/parley-server/internal/mocks"
	"github.com/dtroode/parley-server/internal/model"
	"github.com/dtroode/parley-server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "bearer", header: "Bearer abc", want: "abc"},
		{name: "lowercase scheme", header: "bearer abc", want: "abc"},
		{name: "missing", header: "", want: ""},
		{name: "other scheme", header: "Basic abc", want: ""},
		{name: "scheme only", header: "Bearer", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, BearerToken(req))
		})
	}
}

func TestAuthenticate_Handle(t *testing.T) {
	identity := model.Identity{UserID: uuid.New(), Email: "a@b.co"}

	tests := []struct {
		name       string
		header     string
		setup      func(tm *mocks.TokenManager, cm *mocks.ContextManager)
		wantStatus int
	}{
		{
			name:       "missing token",
			setup:      func(*mocks.TokenManager, *mocks.ContextManager) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "invalid token",
			header: "Bearer bad",
			setup: func(tm *mocks.TokenManager, _ *mocks.ContextManager) {
				tm.On("Verify", "bad").Return(model.Identity{}, model.ErrInvalidCredentials)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "valid token",
			header: "Bearer good",
			setup: func(tm *mocks.TokenManager, cm *mocks.ContextManager) {
				tm.On("Verify", "good").Return(identity, nil)
				cm.On("SetIdentityToContext", mock.Anything, identity).
					Return(func(ctx context.Context, _ model.Identity) context.Context { return ctx })
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := mocks.NewTokenManager(t)
			cm := mocks.NewContextManager(t)
			tt.setup(tm, cm)

			r := gin.New()
			r.GET("/", NewAuthenticate(tm, cm, testutil.MakeNoopLogger()).Handle, func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestLogging_Handle(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(&buf, 0, "text")

	r := gin.New()
	r.Use(NewLogging(l).Handle)
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Contains(t, buf.String(), "HTTP request completed")
	assert.Contains(t, buf.String(), "path=/ok")

	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Contains(t, buf.String(), "HTTP request failed")
	assert.Contains(t, buf.String(), "status=500")
}

func TestLogging_Handle_WebSocketUpgrade(t *testing.T) {
	var buf syncBuffer
	l := logger.NewWithWriter(&buf, int(slog.LevelDebug), "text")

	upgrader := websocket.Upgrader{}
	r := gin.New()
	r.Use(NewLogging(l).Handle)
	r.GET("/ws", func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		_ = ws.Close()
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	ws, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	defer ws.Close()

	require.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "HTTP connection upgraded")
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, buf.String(), "status=101")
	assert.NotContains(t, buf.String(), "HTTP request completed")
}

// syncBuffer guards a bytes.Buffer written by the server goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS)
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
