package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Bristo123/smart-task-analyser/internal/logger"
	"github.com/Bristo123/smart-task-analyser/internal/metrics"
	"github.com/Bristo123/smart-task-analyser/internal/model"
	"github.com/Bristo123/smart-task-analyser/internal/view"
)

// Analyzer é o backend de pontuação
type Analyzer interface {
	Analyze(ctx context.Context, req model.AnalyzeRequest) ([]model.TaskResult, error)
}

// Notifier empurra mudanças de estado para os navegadores da sessão
type Notifier interface {
	Loading(sessionID string, visible bool)
	Results(sessionID string, page *view.Page)
	Error(sessionID, message string)
	Notice(sessionID, message string)
	Alert(sessionID, message string)
	FeedbackControls(sessionID string, disabled bool)
}

// HistoryRecorder registra análises aplicadas e feedbacks enviados
type HistoryRecorder interface {
	RecordAnalysis(ctx context.Context, sessionID, strategy string, tasks []model.TaskDraft, results []model.TaskResult) error
	RecordFeedback(ctx context.Context, sessionID string, signal model.FeedbackSignal, sendErr error) error
}

// NopNotifier descarta todas as notificações
type NopNotifier struct{}

func (NopNotifier) Loading(string, bool) {}
func (NopNotifier) Results(string, *view.Page) {}
func (NopNotifier) Error(string, string) {}
func (NopNotifier) Notice(string, string) {}
func (NopNotifier) Alert(string, string) {}
func (NopNotifier) FeedbackControls(string, bool) {}

// NopHistory é usado quando não há banco configurado
type NopHistory struct{}

func (NopHistory) RecordAnalysis(context.Context, string, string, []model.TaskDraft, []model.TaskResult) error {
	return nil
}

func (NopHistory) RecordFeedback(context.Context, string, model.FeedbackSignal, error) error {
	return nil
}

// AnalyzeInput é o pedido de análise: JSON colado (opcional) e estratégia
type AnalyzeInput struct {
	JSONOverride string
	Strategy     string
}

// AnalysisService envia a lista da sessão ao backend e aplica o resultado
type AnalysisService struct {
	analyzer Analyzer
	notifier Notifier
	history  HistoryRecorder
}

// NewAnalysisService cria o serviço. notifier e history podem ser nil.
func NewAnalysisService(analyzer Analyzer, notifier Notifier, history HistoryRecorder) *AnalysisService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if history == nil {
		history = NopHistory{}
	}
	return &AnalysisService{
		analyzer: analyzer,
		notifier: notifier,
		history:  history,
	}
}

// Analyze executa uma análise para a sessão.
// JSON inválido e lista vazia abortam sem contato com o backend.
// Uma resposta superada por outra mais recente retorna ErrStaleAnalysis e não altera a página.
func (s *AnalysisService) Analyze(ctx context.Context, sess *Session, in AnalyzeInput) (*view.Page, error) {
	log := logger.Get(ctx)
	sess.SetInput(in.JSONOverride, in.Strategy)

	if override := strings.TrimSpace(in.JSONOverride); override != "" {
		drafts, err := ParseOverride(override)
		if err != nil {
			return nil, s.reject(ctx, sess, err)
		}
		sess.Update(func([]model.TaskDraft) []model.TaskDraft { return drafts })
	}

	tasks := sess.Tasks()
	if len(tasks) == 0 {
		return nil, s.reject(ctx, sess, model.ErrNoTasks)
	}

	token := sess.beginAnalysis()
	s.notifier.Loading(sess.ID(), true)
	metrics.Get().IncrementAnalysisStarted()

	log.Info().
		Uint64("token", token).
		Int("tasks", len(tasks)).
		Str("strategy", in.Strategy).
		Msg("Iniciando análise")

	start := time.Now()
	results, err := s.analyzer.Analyze(ctx, model.AnalyzeRequest{Tasks: tasks, Strategy: in.Strategy})
	latency := time.Since(start).Milliseconds()

	var page *view.Page
	if err == nil {
		p := view.Build(results, in.Strategy)
		page = &p
	}

	stale, loading := sess.finishAnalysis(token, page, err)
	s.notifier.Loading(sess.ID(), loading)
	metrics.Get().IncrementAnalysisFinished(err == nil, latency)

	if stale {
		metrics.Get().IncrementAnalysisStale()
		log.Warn().
			Uint64("token", token).
			Msg("Resposta de análise descartada: uma análise mais recente já foi aplicada")
		return nil, model.ErrStaleAnalysis
	}

	if err != nil {
		log.Error().
			Err(err).
			Uint64("token", token).
			Int64("latency_ms", latency).
			Msg("Falha na análise")
		s.notifier.Error(sess.ID(), model.UserMessage(err))
		return nil, err
	}

	s.notifier.Results(sess.ID(), page)

	if herr := s.history.RecordAnalysis(ctx, sess.ID(), in.Strategy, tasks, results); herr != nil {
		log.Warn().Err(herr).Msg("Falha ao registrar histórico da análise")
	}

	log.Info().
		Uint64("token", token).
		Int("results", len(results)).
		Int64("latency_ms", latency).
		Msg("Análise aplicada")
	return page, nil
}

// Reanalyze repete a análise com a mesma entrada da última: lista da sessão,
// JSON colado (se houver) e estratégia
func (s *AnalysisService) Reanalyze(ctx context.Context, sess *Session) (*view.Page, error) {
	metrics.Get().IncrementReanalysis()
	jsonInput, strategy := sess.Input()
	return s.Analyze(ctx, sess, AnalyzeInput{JSONOverride: jsonInput, Strategy: strategy})
}

// reject registra um erro local (sem chamada de rede) e o expõe na página
func (s *AnalysisService) reject(ctx context.Context, sess *Session, err error) error {
	msg := model.UserMessage(err)
	sess.SetError(msg)
	s.notifier.Error(sess.ID(), msg)
	metrics.Get().IncrementAnalysisRejected()

	event := logger.Get(ctx).Info()
	if !errors.Is(err, model.ErrNoTasks) {
		event = event.Err(err)
	}
	event.Str("message", msg).Msg("Análise rejeitada antes do envio")
	return err
}
