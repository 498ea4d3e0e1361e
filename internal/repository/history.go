package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Bristo123/smart-task-analyser/internal/logger"
	"github.com/Bristo123/smart-task-analyser/internal/model"
	"github.com/Bristo123/smart-task-analyser/internal/service"
)

// DefaultListLimit é o número de análises devolvidas quando o limite não é informado
const DefaultListLimit = 20

// maxListLimit limita o tamanho da página do histórico
const maxListLimit = 100

var _ service.HistoryRecorder = (*HistoryRepository)(nil)

// HistoryRepository grava e lista o histórico de análises e feedback no PostgreSQL
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository cria um novo repositório de histórico
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// RecordAnalysis grava uma análise aplicada com as tarefas enviadas e os resultados recebidos
func (r *HistoryRepository) RecordAnalysis(ctx context.Context, sessionID, strategy string, tasks []model.TaskDraft, results []model.TaskResult) error {
	payloads, err := model.TaskPayloads(tasks)
	if err != nil {
		return fmt.Errorf("erro ao serializar tarefas: %w", err)
	}
	tasksJSON, err := json.Marshal(payloads)
	if err != nil {
		return fmt.Errorf("erro ao serializar tarefas: %w", err)
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("erro ao serializar resultados: %w", err)
	}

	query := `
		INSERT INTO analysis_runs (session_id, strategy, task_count, tasks, results, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id
	`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, sessionID, strategy, len(tasks), tasksJSON, resultsJSON).Scan(&id); err != nil {
		logger.Get(ctx).Error().Err(err).Msg("Erro ao gravar análise no histórico")
		return fmt.Errorf("erro ao gravar análise: %w", err)
	}

	logger.Get(ctx).Debug().Int64("run_id", id).Int("tasks", len(tasks)).Msg("Análise gravada no histórico")
	return nil
}

// RecordFeedback grava um voto. sendErr é o erro do envio ao backend, nil quando entregue.
func (r *HistoryRepository) RecordFeedback(ctx context.Context, sessionID string, signal model.FeedbackSignal, sendErr error) error {
	var errText sql.NullString
	if sendErr != nil {
		errText = sql.NullString{String: sendErr.Error(), Valid: true}
	}

	query := `
		INSERT INTO feedback_signals (session_id, title, helpful, delivered, error, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	if _, err := r.db.ExecContext(ctx, query, sessionID, signal.Title, signal.Helpful, sendErr == nil, errText); err != nil {
		logger.Get(ctx).Error().Err(err).Msg("Erro ao gravar feedback no histórico")
		return fmt.Errorf("erro ao gravar feedback: %w", err)
	}
	return nil
}

// ListRuns retorna as análises mais recentes da sessão, da mais nova para a mais antiga
func (r *HistoryRepository) ListRuns(ctx context.Context, sessionID string, limit int) ([]model.AnalysisRun, error) {
	limit = clampLimit(limit)

	query := `
		SELECT id, session_id, strategy, task_count, results, created_at
		FROM analysis_runs
		WHERE session_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar histórico: %w", err)
	}
	defer rows.Close()

	runs := []model.AnalysisRun{}
	for rows.Next() {
		var run model.AnalysisRun
		var resultsJSON []byte
		if err := rows.Scan(&run.ID, &run.SessionID, &run.Strategy, &run.TaskCount, &resultsJSON, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("erro ao ler histórico: %w", err)
		}
		if err := json.Unmarshal(resultsJSON, &run.Results); err != nil {
			return nil, fmt.Errorf("erro ao decodificar resultados: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListFeedback retorna os votos mais recentes da sessão
func (r *HistoryRepository) ListFeedback(ctx context.Context, sessionID string, limit int) ([]model.FeedbackRecord, error) {
	limit = clampLimit(limit)

	query := `
		SELECT id, session_id, title, helpful, delivered, COALESCE(error, ''), created_at
		FROM feedback_signals
		WHERE session_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar feedback: %w", err)
	}
	defer rows.Close()

	records := []model.FeedbackRecord{}
	for rows.Next() {
		var rec model.FeedbackRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Title, &rec.Helpful, &rec.Delivered, &rec.Error, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("erro ao ler feedback: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
