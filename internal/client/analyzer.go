package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Bristo123/smart-task-analyser/internal/logger"
	"github.com/Bristo123/smart-task-analyser/internal/model"
	"golang.org/x/time/rate"
)

const (
	// Caminhos do backend; precisam ser preservados (barra final inclusa)
	AnalyzePath  = "/api/tasks/analyze/"
	FeedbackPath = "/api/tasks/feedback/"
	SuggestPath  = "/api/tasks/suggest/"

	// DefaultTimeout cobre o cold start do backend hospedado
	DefaultTimeout = 60 * time.Second

	// RequestsPerMinute limita chamadas ao backend vindas de todas as sessões
	RequestsPerMinute = 600

	// maxResponseBytes limita o corpo lido de cada resposta
	maxResponseBytes = 4 << 20
)

// Client é o cliente HTTP para o backend de análise de tarefas.
// Não há retry: cada falha é terminal para a ação do usuário.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient cria um novo cliente para o backend em baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/RequestsPerMinute), 20),
	}
}

// Analyze envia as tarefas e a estratégia e devolve os resultados pontuados
func (c *Client) Analyze(ctx context.Context, req model.AnalyzeRequest) ([]model.TaskResult, error) {
	tasks := make([]model.TaskDraft, len(req.Tasks))
	for i, t := range req.Tasks {
		tasks[i] = t.Normalize()
	}
	req.Tasks = tasks

	status, body, err := c.postJSON(ctx, AnalyzePath, req)
	if err != nil {
		return nil, err
	}

	// Corpo não JSON é tratado como backend inacessível, qualquer que seja o status
	var resp model.AnalyzeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", model.ErrBackendUnreachable, err)
	}

	if !isSuccess(status) {
		return nil, &model.APIError{Status: status, Message: resp.Error}
	}

	if resp.Results == nil {
		resp.Results = []model.TaskResult{}
	}

	logger.Get(ctx).Info().
		Int("tasks", len(req.Tasks)).
		Int("results", len(resp.Results)).
		Str("strategy", req.Strategy).
		Msg("Análise concluída no backend")
	return resp.Results, nil
}

// SendFeedback envia o voto útil/não útil de uma tarefa.
// O corpo de sucesso é ignorado; só o status importa.
func (c *Client) SendFeedback(ctx context.Context, signal model.FeedbackSignal) error {
	status, body, err := c.postJSON(ctx, FeedbackPath, signal)
	if err != nil {
		return err
	}

	if !isSuccess(status) {
		var resp model.FeedbackResponse
		_ = json.Unmarshal(body, &resp)
		return &model.APIError{Status: status, Message: resp.Error}
	}

	logger.Get(ctx).Info().
		Str("title", signal.Title).
		Bool("helpful", signal.Helpful).
		Msg("Feedback enviado ao backend")
	return nil
}

// Suggest busca as sugestões estáticas do backend
func (c *Client) Suggest(ctx context.Context) ([]model.Suggestion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+SuggestPath, nil)
	if err != nil {
		return nil, fmt.Errorf("criar request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp model.SuggestResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", model.ErrBackendUnreachable, err)
	}
	if !isSuccess(status) {
		return nil, &model.APIError{Status: status}
	}
	return resp.Suggestions, nil
}

// postJSON serializa body e executa um POST em path
func (c *Client) postJSON(ctx context.Context, path string, body interface{}) (int, []byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return 0, nil, fmt.Errorf("criar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(ctx, req)
}

// do executa a requisição e lê o corpo inteiro
func (c *Client) do(ctx context.Context, req *http.Request) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("%w: rate limiter: %v", model.ErrBackendUnreachable, err)
	}

	if id := logger.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Get(ctx).Warn().
			Err(err).
			Str("url", req.URL.String()).
			Dur("latency", time.Since(start)).
			Msg("Falha ao contatar o backend")
		return 0, nil, fmt.Errorf("%w: %v", model.ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: ler resposta: %v", model.ErrBackendUnreachable, err)
	}

	logger.Get(ctx).Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Resposta do backend")
	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
