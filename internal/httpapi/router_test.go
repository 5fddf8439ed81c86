package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/suPer8Hu/codeassist/internal/ai"
	"github.com/suPer8Hu/codeassist/internal/auth"
	"github.com/suPer8Hu/codeassist/internal/db"
	"github.com/suPer8Hu/codeassist/internal/httpapi/handlers"
	"github.com/suPer8Hu/codeassist/internal/store"
	"github.com/suPer8Hu/codeassist/internal/store/rabbitmq"
)

type replyProvider struct{ reply string }

func (p replyProvider) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	return p.reply, nil
}

type memPublisher struct {
	mu   sync.Mutex
	sent []rabbitmq.UsageMessage
}

func (p *memPublisher) PublishUsage(ctx context.Context, m rabbitmq.UsageMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, m)
	return nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	router *gin.Engine
	store  *store.Store
	pub    *memPublisher
}

func newTestServer(t *testing.T, secret, reply string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.New(db.Opener("sqlite", filepath.Join(t.TempDir(), "api.db")))
	t.Cleanup(func() { _ = st.Close() })

	reg := ai.NewRegistry()
	reg.RegisterProvider(ai.ProviderSpec{
		Name:         "Fake",
		StaticModels: []ai.ModelInfo{{Name: "fake-1", Label: "Fake One"}},
		Factory: func(ctx context.Context, model string) (ai.Provider, error) {
			return replyProvider{reply: reply}, nil
		},
	})

	pub := &memPublisher{}
	h := handlers.NewHandler(st, reg, zap.NewNop(), handlers.Options{Publisher: pub})
	return &testServer{router: NewRouter(h, Options{JWTSecret: secret, CORSOrigins: []string{"http://localhost:5173"}}, zap.NewNop()), store: st, pub: pub}
}

func (s *testServer) do(t *testing.T, method, path, body string, header ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestRouter_PingAndFallbacks(t *testing.T) {
	s := newTestServer(t, "", "")

	w, env := s.do(t, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w, env = s.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40400, env.Code)

	w, env = s.do(t, http.MethodPost, "/ping", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, 40500, env.Code)
}

func TestRouter_Metrics(t *testing.T) {
	s := newTestServer(t, "", "")
	s.do(t, http.MethodGet, "/ping", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "codeassist_http_requests_total")
}

const chatBody = `{
	"urlId": "hello",
	"description": "Hello app",
	"timestamp": "2024-05-01T12:00:00.000Z",
	"messages": [
		{"id": "m1", "role": "user", "content": "build a hello app"},
		{"id": "m2", "role": "assistant", "content": "done"},
		{"id": "m3", "role": "user", "content": "thanks"}
	]
}`

func TestRouter_ChatLifecycle(t *testing.T) {
	s := newTestServer(t, "", "")

	w, _ := s.do(t, http.MethodPut, "/api/chats/1", chatBody)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := s.do(t, http.MethodGet, "/api/chats/hello", "")
	require.Equal(t, http.StatusOK, w.Code)
	var item struct {
		ID       string `json:"id"`
		Messages []any  `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &item))
	assert.Equal(t, "1", item.ID)
	assert.Len(t, item.Messages, 3)

	w, env = s.do(t, http.MethodPost, "/api/chats/1/fork", `{"messageId":"m2"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var forked struct {
		URLID string `json:"urlId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &forked))
	assert.Equal(t, "2", forked.URLID)

	w, env = s.do(t, http.MethodPost, "/api/chats/1/fork", `{"messageId":"zzz"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40402, env.Code)

	w, env = s.do(t, http.MethodPatch, "/api/chats/1/description", `{"description":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 10003, env.Code)

	w, env = s.do(t, http.MethodGet, "/api/chats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 2)

	w, _ = s.do(t, http.MethodDelete, "/api/chats/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = s.do(t, http.MethodGet, "/api/chats/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40401, env.Code)
}

func TestRouter_InvalidTimestamp(t *testing.T) {
	s := newTestServer(t, "", "")
	w, env := s.do(t, http.MethodPut, "/api/chats/1", `{"messages":[],"timestamp":"yesterday"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 10002, env.Code)
}

func TestRouter_Snapshot(t *testing.T) {
	s := newTestServer(t, "", "")

	w, env := s.do(t, http.MethodGet, "/api/chats/1/snapshot", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40403, env.Code)

	snap := `{"chatIndex":"m2","files":{"/home/project/a.ts":{"type":"file","content":"x"}}}`
	w, _ = s.do(t, http.MethodPut, "/api/chats/1/snapshot", snap)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/chats/1/snapshot", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"chatIndex":"m2"`)

	w, _ = s.do(t, http.MethodDelete, "/api/chats/1/snapshot", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_SelectContext(t *testing.T) {
	s := newTestServer(t, "", `<updateContextBuffer><includeFile path="src/header.tsx"/></updateContextBuffer>`)

	body := `{
		"chatId": "9",
		"messages": [{"id":"u1","role":"user","content":"how does the header look"}],
		"files": {
			"/home/project/src/header.tsx": {"type":"file","content":"export const Header = () => null"},
			"/home/project/src/footer.tsx": {"type":"file","content":"export const Footer = () => null"}
		}
	}`
	w, env := s.do(t, http.MethodPost, "/api/context/select", body)
	require.Equal(t, http.StatusOK, w.Code, string(env.Data))

	var resp struct {
		Files  map[string]any `json:"files"`
		Source string         `json:"source"`
		Model  string         `json:"model"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "llm", resp.Source)
	assert.Equal(t, "fake-1", resp.Model)
	assert.Contains(t, resp.Files, "/home/project/src/header.tsx")
	assert.Len(t, resp.Files, 1)

	s.pub.mu.Lock()
	defer s.pub.mu.Unlock()
	require.Len(t, s.pub.sent, 1)
	assert.Equal(t, "9", s.pub.sent[0].ChatID)
	assert.Equal(t, "Fake", s.pub.sent[0].Provider)
}

func TestRouter_SelectContextBadModelReply(t *testing.T) {
	s := newTestServer(t, "", "no idea")
	body := `{"messages":[{"id":"u1","role":"user","content":"how does the header look"}],"files":{}}`
	w, env := s.do(t, http.MethodPost, "/api/context/select", body)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, 50201, env.Code)

	w, env = s.do(t, http.MethodPost, "/api/context/select", `{"messages":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 10004, env.Code)

	w, env = s.do(t, http.MethodPost, "/api/context/select", `{"messages":[{"id":"a1","role":"assistant","content":"hi"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 10006, env.Code)
}

func TestRouter_Models(t *testing.T) {
	s := newTestServer(t, "", "")

	w, env := s.do(t, http.MethodGet, "/api/models/fake", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"fake-1"`)

	w, env = s.do(t, http.MethodGet, "/api/models/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40404, env.Code)

	_, env = s.do(t, http.MethodGet, "/api/models", "")
	assert.Contains(t, string(env.Data), `"default":"Fake"`)
}

func TestRouter_Preview(t *testing.T) {
	s := newTestServer(t, "", "")

	w, env := s.do(t, http.MethodPut, "/api/preview/status", `{"status":"sleeping"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 10005, env.Code)

	_, env = s.do(t, http.MethodPost, "/api/preview/output", `{"lines":["$ npm install","$ npm run dev"]}`)
	assert.Contains(t, string(env.Data), `"status":"starting"`)

	_, env = s.do(t, http.MethodPut, "/api/preview/status", `{"status":"ready"}`)
	assert.Contains(t, string(env.Data), `"status":"ready"`)
}

func TestRouter_AuthRequired(t *testing.T) {
	s := newTestServer(t, "s3cret", "")

	w, env := s.do(t, http.MethodGet, "/api/chats", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 40101, env.Code)

	w, env = s.do(t, http.MethodGet, "/api/chats", "", "Authorization", "Bearer junk")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 40102, env.Code)

	tok, err := auth.SignJWT("ops", "s3cret", time.Hour)
	require.NoError(t, err)
	w, _ = s.do(t, http.MethodGet, "/api/chats", "", "Authorization", "Bearer "+tok)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_CORS(t *testing.T) {
	s := newTestServer(t, "", "")

	req := httptest.NewRequest(http.MethodOptions, "/api/chats", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
