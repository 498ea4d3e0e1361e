package migration

// historyMigrations retorna o esquema do histórico de análises e feedback
func historyMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_analysis_runs",
			Up: `
				CREATE TABLE analysis_runs (
					id BIGSERIAL PRIMARY KEY,
					session_id UUID NOT NULL,
					strategy VARCHAR(64) NOT NULL,
					task_count INTEGER NOT NULL,
					tasks JSONB NOT NULL,
					results JSONB NOT NULL,
					created_at TIMESTAMPTZ DEFAULT NOW()
				);

				CREATE INDEX idx_analysis_runs_session ON analysis_runs(session_id, created_at DESC);
			`,
		},
		{
			Version: 2,
			Name:    "create_feedback_signals",
			Up: `
				CREATE TABLE feedback_signals (
					id BIGSERIAL PRIMARY KEY,
					session_id UUID NOT NULL,
					title TEXT NOT NULL,
					helpful BOOLEAN NOT NULL,
					delivered BOOLEAN NOT NULL,
					error TEXT,
					created_at TIMESTAMPTZ DEFAULT NOW()
				);

				CREATE INDEX idx_feedback_signals_session ON feedback_signals(session_id, created_at DESC);
			`,
		},
	}
}
