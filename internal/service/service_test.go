package service

import (
	"context"
	"sync"
	"time"

	"github.com/Bristo123/smart-task-analyser/internal/model"
	"github.com/Bristo123/smart-task-analyser/internal/view"
)

// echoAnalyzer devolve uma TaskResult por tarefa recebida
type echoAnalyzer struct {
	mu       sync.Mutex
	calls    int
	requests []model.AnalyzeRequest
	err      error
	score    float64
}

func (a *echoAnalyzer) Analyze(_ context.Context, req model.AnalyzeRequest) ([]model.TaskResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	a.requests = append(a.requests, req)
	if a.err != nil {
		return nil, a.err
	}
	results := make([]model.TaskResult, len(req.Tasks))
	for i, t := range req.Tasks {
		results[i] = model.TaskResult{
			TaskDraft:   t,
			Score:       model.NumberOf(a.score),
			WorkingDays: model.NumberOf(2),
			Explanation: "echo",
		}
	}
	return results, nil
}

func (a *echoAnalyzer) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// fakeSender registra os feedbacks enviados
type fakeSender struct {
	signals []model.FeedbackSignal
	err     error
}

func (f *fakeSender) SendFeedback(_ context.Context, s model.FeedbackSignal) error {
	f.signals = append(f.signals, s)
	return f.err
}

type event struct {
	kind  string
	value interface{}
}

// recordingNotifier guarda todas as notificações em ordem
type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (n *recordingNotifier) add(kind string, v interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event{kind, v})
}

func (n *recordingNotifier) Loading(_ string, visible bool) { n.add("loading", visible) }
func (n *recordingNotifier) Results(_ string, p *view.Page) { n.add("results", p) }
func (n *recordingNotifier) Error(_ string, msg string) { n.add("error", msg) }
func (n *recordingNotifier) Notice(_ string, msg string) { n.add("notice", msg) }
func (n *recordingNotifier) Alert(_ string, msg string) { n.add("alert", msg) }
func (n *recordingNotifier) FeedbackControls(_ string, d bool) { n.add("feedback_controls", d) }

func (n *recordingNotifier) of(kind string) []interface{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []interface{}
	for _, e := range n.events {
		if e.kind == kind {
			out = append(out, e.value)
		}
	}
	return out
}

// manualScheduler guarda as funções agendadas para execução manual
type manualScheduler struct {
	mu    sync.Mutex
	tasks []scheduled
}

type scheduled struct {
	delay time.Duration
	fn    func()
}

func (s *manualScheduler) Schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, scheduled{d, fn})
}

// runDelay executa as funções agendadas com o atraso informado
func (s *manualScheduler) runDelay(d time.Duration) int {
	s.mu.Lock()
	var due []func()
	for _, t := range s.tasks {
		if t.delay == d {
			due = append(due, t.fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range due {
		fn()
	}
	return len(due)
}

func (s *manualScheduler) count(d time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if t.delay == d {
			n++
		}
	}
	return n
}
