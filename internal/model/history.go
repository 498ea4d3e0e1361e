package model

import "time"

// AnalysisRun é uma análise aplicada registrada no histórico
type AnalysisRun struct {
	ID        int64        `json:"id"`
	SessionID string       `json:"session_id"`
	Strategy  string       `json:"strategy"`
	TaskCount int          `json:"task_count"`
	Results   []TaskResult `json:"results"`
	CreatedAt time.Time    `json:"created_at"`
}

// FeedbackRecord é um voto registrado no histórico
type FeedbackRecord struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Title     string    `json:"title"`
	Helpful   bool      `json:"helpful"`
	Delivered bool      `json:"delivered"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
