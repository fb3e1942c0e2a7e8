package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wakalAIagency/tamhid-chat-api/answer"
	"github.com/wakalAIagency/tamhid-chat-api/core"
	"github.com/wakalAIagency/tamhid-chat-api/store"
)

type fakeService struct {
	lastReq answer.Request
	res     answer.Result
	err     error
}

func (f *fakeService) Ask(ctx context.Context, req answer.Request) (answer.Result, error) {
	f.lastReq = req
	if f.err != nil {
		return answer.Result{}, f.err
	}
	return f.res, nil
}

type fakeLogs struct {
	feedback []store.Feedback
	logs     map[string]store.ChatLog
}

func newFakeLogs() *fakeLogs {
	return &fakeLogs{logs: map[string]store.ChatLog{}}
}

func (f *fakeLogs) AddLog(ctx context.Context, l store.ChatLog) error {
	f.logs[l.ID] = l
	return nil
}

func (f *fakeLogs) GetLog(ctx context.Context, id string) (store.ChatLog, error) {
	l, ok := f.logs[id]
	if !ok {
		return store.ChatLog{}, store.ErrNotFound
	}
	return l, nil
}

func (f *fakeLogs) ListLogs(ctx context.Context, limit int) ([]store.ChatLog, error) {
	var out []store.ChatLog
	for _, l := range f.logs {
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeLogs) AddFeedback(ctx context.Context, fb store.Feedback) error {
	f.feedback = append(f.feedback, fb)
	return nil
}

func (f *fakeLogs) Summary(ctx context.Context) (store.MetricsSummary, error) {
	return store.MetricsSummary{TotalLogs: len(f.logs)}, nil
}

func (f *fakeLogs) Close() error { return nil }

func newTestRouter(svc *fakeService, logs *fakeLogs) *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := New(Config{
		Service:     svc,
		Logs:        logs,
		DefaultLang: "ar",
		Log:         zap.NewNop().Sugar(),
	})
	return s.Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&fakeService{}, newFakeLogs())
	w := doJSON(t, router, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Fatalf("health = %d %q", w.Code, w.Body.String())
	}
}

func TestAskMissingQuestion(t *testing.T) {
	router := newTestRouter(&fakeService{}, newFakeLogs())

	for _, body := range []string{`{}`, `{"q": "   "}`} {
		w := doJSON(t, router, http.MethodPost, "/api/ask", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestAskSuccess(t *testing.T) {
	svc := &fakeService{res: answer.Result{
		Answer: core.Answer{Text: "نقدم خدمات التوثيق."},
		Matches: []core.Match{
			{Content: "chunk", ChunkID: 1, Score: 0.9, Metadata: core.ChunkMetadata{Lang: "ar"}},
		},
		LogID: "log-1",
	}}
	router := newTestRouter(svc, newFakeLogs())

	w := doJSON(t, router, http.MethodPost, "/api/ask", `{"q": "ما هي خدماتكم؟", "topK": 4, "sessionId": "s1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp askResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Answer != "نقدم خدمات التوثيق." || resp.LogID != "log-1" || len(resp.Matches) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if svc.lastReq.Lang != "ar" {
		t.Fatalf("lang = %q, want server default ar", svc.lastReq.Lang)
	}
	if svc.lastReq.TopK != 4 || svc.lastReq.SessionID != "s1" {
		t.Fatalf("request not forwarded: %+v", svc.lastReq)
	}
}

func TestAskExplicitEmptyLangDisablesFilter(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc, newFakeLogs())

	w := doJSON(t, router, http.MethodPost, "/api/ask", `{"q": "hello", "lang": ""}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if svc.lastReq.Lang != "" {
		t.Fatalf("lang = %q, want empty (no filter)", svc.lastReq.Lang)
	}
}

func TestAskServiceError(t *testing.T) {
	svc := &fakeService{err: fmt.Errorf("embed question: upstream 500")}
	router := newTestRouter(svc, newFakeLogs())

	w := doJSON(t, router, http.MethodPost, "/api/ask", `{"q": "hello"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestFeedbackRatings(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   int
	}{
		{"int up", `{"logId": "l1", "rating": 1}`, http.StatusOK, 1},
		{"int down", `{"logId": "l1", "rating": -1}`, http.StatusOK, -1},
		{"string up", `{"logId": "l1", "rating": "1"}`, http.StatusOK, 1},
		{"string down", `{"logId": "l1", "rating": "-1"}`, http.StatusOK, -1},
		{"zero", `{"logId": "l1", "rating": 0}`, http.StatusBadRequest, 0},
		{"other string", `{"logId": "l1", "rating": "up"}`, http.StatusBadRequest, 0},
		{"missing log id", `{"rating": 1}`, http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := newFakeLogs()
			router := newTestRouter(&fakeService{}, logs)

			w := doJSON(t, router, http.MethodPost, "/api/feedback", tt.body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.status, w.Body.String())
			}
			if tt.status == http.StatusOK {
				if len(logs.feedback) != 1 || logs.feedback[0].Rating != tt.want {
					t.Fatalf("feedback = %+v, want rating %d", logs.feedback, tt.want)
				}
			}
		})
	}
}

func TestGetLogNotFound(t *testing.T) {
	router := newTestRouter(&fakeService{}, newFakeLogs())
	w := doJSON(t, router, http.MethodGet, "/api/logs/missing", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestMetricsSummary(t *testing.T) {
	logs := newFakeLogs()
	logs.logs["a"] = store.ChatLog{ID: "a"}
	router := newTestRouter(&fakeService{}, logs)

	w := doJSON(t, router, http.MethodGet, "/api/metrics/summary", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var m store.MetricsSummary
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.TotalLogs != 1 {
		t.Fatalf("TotalLogs = %d, want 1", m.TotalLogs)
	}
}
