package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Bristo123/smart-task-analyser/internal/database"
	"github.com/Bristo123/smart-task-analyser/internal/migration"
	"github.com/Bristo123/smart-task-analyser/internal/model"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func setupTestDB(t *testing.T) *sql.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dbConfig := database.Config{
		Host:     getEnvOrDefault("TEST_DB_HOST", "127.0.0.1"),
		Port:     getEnvOrDefault("TEST_DB_PORT", "5432"),
		User:     getEnvOrDefault("TEST_DB_USER", "postgres"),
		Password: getEnvOrDefault("TEST_DB_PASSWORD", "postgres"),
		DBName:   fmt.Sprintf("test_history_%d", time.Now().UnixNano()),
		SSLMode:  "disable",
	}

	// Conecta ao postgres para criar o banco de teste
	adminConfig := dbConfig
	adminConfig.DBName = "postgres"

	adminDB, err := database.Connect(ctx, adminConfig)
	if err != nil {
		t.Skipf("Pulando teste: não foi possível conectar ao PostgreSQL: %v", err)
	}
	defer adminDB.Close()

	if _, err := adminDB.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", dbConfig.DBName)); err != nil {
		t.Fatalf("Erro ao criar banco de teste: %v", err)
	}

	testDB, err := database.Connect(ctx, dbConfig)
	if err != nil {
		t.Fatalf("Erro ao conectar ao banco de teste: %v", err)
	}

	if err := migration.NewMigrator(testDB).Run(ctx); err != nil {
		testDB.Close()
		t.Fatalf("Erro ao executar migrações: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
		adminDB, _ := database.Connect(context.Background(), adminConfig)
		if adminDB != nil {
			adminDB.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbConfig.DBName))
			adminDB.Close()
		}
	})

	return testDB
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func TestClampLimit(t *testing.T) {
	tests := map[int]int{0: DefaultListLimit, -5: DefaultListLimit, 7: 7, 100: 100, 500: maxListLimit}
	for in, want := range tests {
		if got := clampLimit(in); got != want {
			t.Errorf("clampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestRecordAndListRuns(t *testing.T) {
	db := setupTestDB(t)
	repo := NewHistoryRepository(db)
	ctx := context.Background()

	sessionID := uuid.New().String()
	other := uuid.New().String()

	tasks := []model.TaskDraft{{Title: "A", Dependencies: []model.Dependency{}}}
	results := []model.TaskResult{{TaskDraft: tasks[0], Score: model.NumberOf(7.5), Explanation: "due soon"}}

	if err := repo.RecordAnalysis(ctx, sessionID, model.StrategyHighImpact, tasks, results); err != nil {
		t.Fatalf("RecordAnalysis: %v", err)
	}
	if err := repo.RecordAnalysis(ctx, sessionID, model.StrategyFastestWins, tasks, results); err != nil {
		t.Fatalf("RecordAnalysis: %v", err)
	}
	if err := repo.RecordAnalysis(ctx, other, model.StrategySmartBalance, tasks, results); err != nil {
		t.Fatalf("RecordAnalysis: %v", err)
	}

	runs, err := repo.ListRuns(ctx, sessionID, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	if runs[0].Strategy != model.StrategyFastestWins {
		t.Errorf("newest run first, got %s", runs[0].Strategy)
	}
	if runs[0].TaskCount != 1 || len(runs[0].Results) != 1 || runs[0].Results[0].Title != "A" {
		t.Errorf("run = %+v", runs[0])
	}
	if f, _ := runs[0].Results[0].Score.Float(); f != 7.5 {
		t.Errorf("score = %v", f)
	}
}

// Para qualquer voto gravado, a listagem da sessão devolve o título, o voto e se foi entregue
func TestFeedbackRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewHistoryRepository(db)
	ctx := context.Background()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 10
	properties := gopter.NewProperties(parameters)

	properties.Property("feedback is listed as recorded", prop.ForAll(
		func(title string, helpful, delivered bool) bool {
			sessionID := uuid.New().String()
			var sendErr error
			if !delivered {
				sendErr = errors.New("backend down")
			}

			if err := repo.RecordFeedback(ctx, sessionID, model.FeedbackSignal{Title: title, Helpful: helpful}, sendErr); err != nil {
				t.Logf("RecordFeedback: %v", err)
				return false
			}

			records, err := repo.ListFeedback(ctx, sessionID, 0)
			if err != nil || len(records) != 1 {
				return false
			}
			rec := records[0]
			return rec.Title == title && rec.Helpful == helpful && rec.Delivered == delivered &&
				(delivered == (rec.Error == ""))
		},
		gen.AlphaString(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
