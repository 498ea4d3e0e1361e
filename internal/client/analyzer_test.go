package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Bristo123/smart-task-analyser/internal/model"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 5*time.Second)
}

func TestAnalyzeSendsTasksAndStrategy(t *testing.T) {
	var got map[string]json.RawMessage
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != AnalyzePath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("body is not JSON: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"title":"A","score":7.5,"working_days":2,"explanation":"ok","dependencies":[]}]}`))
	})

	results, err := c.Analyze(context.Background(), model.AnalyzeRequest{
		Tasks:    []model.TaskDraft{{Title: "A", EstimatedHours: model.NumberOf(2), Importance: model.NumberOf(8)}},
		Strategy: model.StrategyHighImpact,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(results) != 1 || results[0].Title != "A" || results[0].Explanation != "ok" {
		t.Fatalf("results = %+v", results)
	}
	if score, ok := results[0].Score.Float(); !ok || score != 7.5 {
		t.Errorf("score = %v %v", score, ok)
	}

	if string(got["strategy"]) != `"High Impact"` {
		t.Errorf("strategy = %s", got["strategy"])
	}
	var tasks []map[string]json.RawMessage
	if err := json.Unmarshal(got["tasks"], &tasks); err != nil || len(tasks) != 1 {
		t.Fatalf("tasks = %s", got["tasks"])
	}
	if string(tasks[0]["dependencies"]) != "[]" {
		t.Errorf("dependencies = %s", tasks[0]["dependencies"])
	}
}

func TestAnalyzeForwardsPastedTaskVerbatim(t *testing.T) {
	var gotTasks []json.RawMessage
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Tasks []json.RawMessage `json:"tasks"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotTasks = body.Tasks
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Missing key: due_date"}`))
	})

	pasted := `{"id":7,"title":5,"dependencies":"0,1"}`
	_, err := c.Analyze(context.Background(), model.AnalyzeRequest{
		Tasks: []model.TaskDraft{model.DraftFromJSON(json.RawMessage(pasted)), {Title: "typed"}},
	})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Missing key: due_date" {
		t.Fatalf("err = %v, want backend error", err)
	}
	if len(gotTasks) != 2 || string(gotTasks[0]) != pasted {
		t.Fatalf("tasks = %s", gotTasks)
	}
	var typed map[string]json.RawMessage
	if err := json.Unmarshal(gotTasks[1], &typed); err != nil || string(typed["title"]) != `"typed"` {
		t.Errorf("typed task = %s", gotTasks[1])
	}
}

func TestAnalyzeMissingResultsIsEmpty(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	results, err := c.Analyze(context.Background(), model.AnalyzeRequest{Tasks: []model.TaskDraft{{Title: "A"}}})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("results = %#v", results)
	}
}

func TestAnalyzeAPIError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad date"}`))
	})

	_, err := c.Analyze(context.Background(), model.AnalyzeRequest{Tasks: []model.TaskDraft{{Title: "A"}}})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "bad date" {
		t.Errorf("apiErr = %+v", apiErr)
	}
	if model.UserMessage(err) != "bad date" {
		t.Errorf("message = %q", model.UserMessage(err))
	}
}

func TestAnalyzeAPIErrorWithoutMessage(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.Analyze(context.Background(), model.AnalyzeRequest{Tasks: []model.TaskDraft{{Title: "A"}}})
	if model.UserMessage(err) != model.MsgAPIError {
		t.Errorf("message = %q", model.UserMessage(err))
	}
}

func TestAnalyzeNonJSONBodyIsUnreachable(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	})

	_, err := c.Analyze(context.Background(), model.AnalyzeRequest{Tasks: []model.TaskDraft{{Title: "A"}}})
	if !errors.Is(err, model.ErrBackendUnreachable) {
		t.Fatalf("err = %v", err)
	}
	if model.UserMessage(err) != model.MsgBackendDown {
		t.Errorf("message = %q", model.UserMessage(err))
	}
}

func TestAnalyzeNetworkErrorIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second)
	_, err := c.Analyze(context.Background(), model.AnalyzeRequest{Tasks: []model.TaskDraft{{Title: "A"}}})
	if !errors.Is(err, model.ErrBackendUnreachable) {
		t.Fatalf("err = %v", err)
	}
}

func TestAnalyzeDoesNotRetry(t *testing.T) {
	var calls int32
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"busy"}`))
	})

	_, _ = c.Analyze(context.Background(), model.AnalyzeRequest{Tasks: []model.TaskDraft{{Title: "A"}}})
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestSendFeedback(t *testing.T) {
	var got model.FeedbackSignal
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != FeedbackPath {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`thanks`))
	})

	if err := c.SendFeedback(context.Background(), model.FeedbackSignal{Title: "A", Helpful: true}); err != nil {
		t.Fatalf("SendFeedback: %v", err)
	}
	if got.Title != "A" || !got.Helpful {
		t.Errorf("signal = %+v", got)
	}
}

func TestSendFeedbackFailure(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Task not found"}`))
	})

	err := c.SendFeedback(context.Background(), model.FeedbackSignal{Title: "A"})
	if model.FeedbackAlert(err) != "Task not found" {
		t.Errorf("alert = %q", model.FeedbackAlert(err))
	}

	c = newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	err = c.SendFeedback(context.Background(), model.FeedbackSignal{Title: "A"})
	if model.FeedbackAlert(err) != model.MsgFeedbackFailed {
		t.Errorf("alert = %q", model.FeedbackAlert(err))
	}
}

func TestSuggest(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != SuggestPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"suggestions":[{"title":"Fix bug","score":9,"reason":"urgent"}]}`))
	})

	got, err := c.Suggest(context.Background())
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Fix bug" || got[0].Reason != "urgent" {
		t.Errorf("suggestions = %+v", got)
	}
}
