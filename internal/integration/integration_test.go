// Package integration exercises the full stack over real HTTP and websocket
// connections: router, middlewares, services, hub and a fake scoring backend.
package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Bristo123/smart-task-analyser/internal/client"
	"github.com/Bristo123/smart-task-analyser/internal/handler"
	"github.com/Bristo123/smart-task-analyser/internal/middleware"
	"github.com/Bristo123/smart-task-analyser/internal/model"
	"github.com/Bristo123/smart-task-analyser/internal/service"
	"github.com/Bristo123/smart-task-analyser/internal/websocket"
	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// backend conta as análises recebidas e aceita qualquer feedback
type backend struct {
	mu       sync.Mutex
	analyses int
	votes    []model.FeedbackSignal
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case client.AnalyzePath:
		b.analyses++
		var req model.AnalyzeRequest
		json.NewDecoder(r.Body).Decode(&req)
		results := make([]model.TaskResult, len(req.Tasks))
		for i, t := range req.Tasks {
			results[i] = model.TaskResult{TaskDraft: t, Score: model.NumberOf(float64(5 + i))}
		}
		json.NewEncoder(w).Encode(model.AnalyzeResponse{Results: results})
	case client.FeedbackPath:
		var s model.FeedbackSignal
		json.NewDecoder(r.Body).Decode(&s)
		b.votes = append(b.votes, s)
		w.Write([]byte(`{"message":"ok"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *backend) analyzeCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.analyses
}

type stack struct {
	t      *testing.T
	app    *httptest.Server
	api    *backend
	csrf   *middleware.CSRFMiddleware
	cookie *http.Cookie
}

func newStack(t *testing.T) *stack {
	t.Helper()

	api := &backend{}
	apiServer := httptest.NewServer(api)
	t.Cleanup(apiServer.Close)

	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	sessions := service.NewSessionStore(time.Hour)
	t.Cleanup(sessions.Stop)

	analyzer := client.NewClient(apiServer.URL, 5*time.Second)
	analysis := service.NewAnalysisService(analyzer, hub, nil)
	feedback := service.NewFeedbackService(analyzer, analysis, hub, nil, 20*time.Millisecond, 150*time.Millisecond)
	csrf := middleware.NewCSRFMiddleware(middleware.CSRFConfig{})

	router, err := handler.NewRouter(handler.RouterConfig{
		Page:       handler.NewPageHandler(analysis, feedback, service.NewResultsExporter()),
		API:        handler.NewAPIHandler(analysis, feedback, analyzer, nil),
		Health:     handler.NewHealthHandler(nil, hub, sessions, "test"),
		WebSocket:  handler.NewWebSocketHandler(hub),
		Sessions:   sessions,
		CSRF:       csrf,
		SessionTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	app := httptest.NewServer(router)
	t.Cleanup(app.Close)

	s := &stack{t: t, app: app, api: api, csrf: csrf}

	resp, err := http.Get(app.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	for _, ck := range resp.Cookies() {
		if ck.Name == middleware.SessionCookieName {
			s.cookie = ck
		}
	}
	if s.cookie == nil {
		t.Fatal("session cookie not issued")
	}
	return s
}

func (s *stack) postJSON(path string, body interface{}) *http.Response {
	s.t.Helper()
	token, err := s.csrf.Token(s.cookie.Value)
	if err != nil {
		s.t.Fatal(err)
	}
	raw, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, s.app.URL+path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.CSRFTokenHeader, token)
	req.AddCookie(s.cookie)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.t.Fatal(err)
	}
	s.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *stack) dial() *gorilla.Conn {
	s.t.Helper()
	url := "ws" + strings.TrimPrefix(s.app.URL, "http") + "/ws"
	header := http.Header{"Cookie": {s.cookie.Name + "=" + s.cookie.Value}}
	conn, _, err := gorilla.DefaultDialer.Dial(url, header)
	if err != nil {
		s.t.Fatalf("dial: %v", err)
	}
	s.t.Cleanup(func() { conn.Close() })

	first := readMessage(s.t, conn)
	if first.Type != websocket.TypeConnection {
		s.t.Fatalf("first message = %q, want %q", first.Type, websocket.TypeConnection)
	}
	return conn
}

type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readMessage(t *testing.T, conn *gorilla.Conn) wsMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg wsMessage
	if _, raw, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read: %v", err)
	} else if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return msg
}

// collect lê mensagens até stop devolver true
func collect(t *testing.T, conn *gorilla.Conn, stop func(wsMessage) bool) []wsMessage {
	t.Helper()
	var out []wsMessage
	for {
		msg := readMessage(t, conn)
		out = append(out, msg)
		if stop(msg) {
			return out
		}
	}
}

func flag(t *testing.T, msg wsMessage, key string) bool {
	t.Helper()
	var data map[string]bool
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("decode %s data: %v", msg.Type, err)
	}
	return data[key]
}

func types(msgs []wsMessage) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Type
	}
	return out
}

func TestAnalysisPushesLoadingAndResults(t *testing.T) {
	s := newStack(t)
	conn := s.dial()

	resp := s.postJSON("/api/session/analyze", model.AnalyzeForm{
		JSONInput: `[{"title":"Write report"},{"title":"Review PR"}]`,
		Strategy:  model.StrategySmartBalance,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analyze status = %d", resp.StatusCode)
	}

	msgs := collect(t, conn, func(m wsMessage) bool {
		return m.Type == websocket.TypeLoading && !flag(t, m, "visible")
	})
	if len(msgs) != 2 || !flag(t, msgs[0], "visible") {
		t.Fatalf("messages = %v, want loading on then off", types(msgs))
	}

	results := readMessage(t, conn)
	if results.Type != websocket.TypeResults {
		t.Fatalf("after loading got %q, want results", results.Type)
	}
	if !bytes.Contains(results.Data, []byte("Write report")) {
		t.Errorf("results payload missing task: %s", results.Data)
	}
}

func TestFeedbackLocksReanalyzesAndUnlocks(t *testing.T) {
	s := newStack(t)

	resp := s.postJSON("/api/session/analyze", model.AnalyzeForm{
		JSONInput: `[{"title":"Write report"}]`,
		Strategy:  model.StrategyFastestWins,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analyze status = %d", resp.StatusCode)
	}

	conn := s.dial()
	helpful := true
	resp = s.postJSON("/api/session/feedback", model.FeedbackForm{Title: "Write report", Helpful: &helpful})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("feedback status = %d", resp.StatusCode)
	}

	// Um segundo voto durante o bloqueio é recusado
	again := s.postJSON("/api/session/feedback", model.FeedbackForm{Title: "Write report", Helpful: &helpful})
	if again.StatusCode != http.StatusTooManyRequests {
		t.Errorf("second feedback status = %d, want 429", again.StatusCode)
	}

	var sawNotice, sawResults bool
	msgs := collect(t, conn, func(m wsMessage) bool {
		switch m.Type {
		case websocket.TypeNotice:
			sawNotice = true
		case websocket.TypeResults:
			sawResults = true
		case websocket.TypeFeedbackControls:
			return !flag(t, m, "disabled")
		}
		return false
	})

	if msgs[0].Type != websocket.TypeFeedbackControls || !flag(t, msgs[0], "disabled") {
		t.Errorf("first message = %v, want controls disabled", types(msgs))
	}
	if !sawNotice {
		t.Errorf("no notice in %v", types(msgs))
	}
	if !sawResults {
		t.Errorf("no re-analysis results before unlock in %v", types(msgs))
	}
	if n := s.api.analyzeCount(); n != 2 {
		t.Errorf("backend analyses = %d, want 2", n)
	}

	s.api.mu.Lock()
	votes := len(s.api.votes)
	s.api.mu.Unlock()
	if votes != 1 {
		t.Errorf("backend votes = %d, want 1", votes)
	}
}

func TestPushesStayInSession(t *testing.T) {
	s := newStack(t)

	// Sem cookie o middleware cria uma sessão nova e isolada
	url := "ws" + strings.TrimPrefix(s.app.URL, "http") + "/ws"
	other, _, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer other.Close()
	readMessage(t, other)

	mine := s.dial()
	resp := s.postJSON("/api/session/analyze", model.AnalyzeForm{JSONInput: `[{"title":"Only mine"}]`, Strategy: model.StrategyHighImpact})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analyze status = %d", resp.StatusCode)
	}
	if msg := readMessage(t, mine); msg.Type != websocket.TypeLoading {
		t.Errorf("own session got %q", msg.Type)
	}

	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, raw, err := other.ReadMessage(); err == nil {
		t.Errorf("other session received %s", raw)
	}
}
