package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Bristo123/smart-task-analyser/internal/logger"
	"github.com/Bristo123/smart-task-analyser/internal/metrics"
	"github.com/Bristo123/smart-task-analyser/internal/middleware"
	"github.com/Bristo123/smart-task-analyser/internal/model"
	"github.com/Bristo123/smart-task-analyser/internal/service"
	"github.com/gin-gonic/gin"
)

// Suggester busca as sugestões do backend
type Suggester interface {
	Suggest(ctx context.Context) ([]model.Suggestion, error)
}

// HistoryLister lista as análises gravadas de uma sessão
type HistoryLister interface {
	ListRuns(ctx context.Context, sessionID string, limit int) ([]model.AnalysisRun, error)
}

// APIHandler exposes the page actions as JSON for scripts and the page itself
type APIHandler struct {
	analysis  *service.AnalysisService
	feedback  *service.FeedbackService
	suggester Suggester
	history   HistoryLister
}

// NewAPIHandler creates a new API handler. history may be nil when no database is configured.
func NewAPIHandler(analysis *service.AnalysisService, feedback *service.FeedbackService, suggester Suggester, history HistoryLister) *APIHandler {
	return &APIHandler{
		analysis:  analysis,
		feedback:  feedback,
		suggester: suggester,
		history:   history,
	}
}

// AddTask appends a draft to the session's task list
// @Router /api/session/tasks [post]
func (h *APIHandler) AddTask(c *gin.Context) {
	var form model.DraftForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "payload inválido",
			Details: err.Error(),
		})
		return
	}

	draft, count := service.AddTask(middleware.CurrentSession(c), form)

	c.JSON(http.StatusCreated, model.Response{
		Success: true,
		Data:    gin.H{"task": draft, "count": count},
		Message: model.MsgTaskAdded,
	})
}

// Analyze runs an analysis and returns the rendered page model
// @Router /api/session/analyze [post]
func (h *APIHandler) Analyze(c *gin.Context) {
	var form model.AnalyzeForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "payload inválido",
			Details: err.Error(),
		})
		return
	}

	page, err := h.analysis.Analyze(c.Request.Context(), middleware.CurrentSession(c), service.AnalyzeInput{
		JSONOverride: form.JSONInput,
		Strategy:     form.Strategy,
	})
	if err != nil {
		h.handleError(c, err, model.UserMessage(err))
		return
	}

	c.JSON(http.StatusOK, model.Response{Success: true, Data: page})
}

// Feedback sends a vote, either by control id or by title
// @Router /api/session/feedback [post]
func (h *APIHandler) Feedback(c *gin.Context) {
	var form model.FeedbackForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "payload inválido",
			Details: err.Error(),
		})
		return
	}

	sess := middleware.CurrentSession(c)
	ctx := c.Request.Context()

	var notice string
	var err error
	switch {
	case form.Control != "":
		notice, err = h.feedback.SendControl(ctx, sess, form.Version, form.Control)
	case form.Helpful != nil:
		notice, err = h.feedback.Send(ctx, sess, form.Title, *form.Helpful)
	default:
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "informe control ou title e helpful",
		})
		return
	}

	if err != nil {
		h.handleError(c, err, model.FeedbackAlert(err))
		return
	}

	c.JSON(http.StatusOK, model.Response{Success: true, Message: notice})
}

// View returns the session state without consuming notice or alert
// @Router /api/session/view [get]
func (h *APIHandler) View(c *gin.Context) {
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    middleware.CurrentSession(c).Snapshot(false),
	})
}

// History lists the session's recent analyses
// @Router /api/session/history [get]
func (h *APIHandler) History(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusOK, model.Response{
			Success: true,
			Data:    gin.H{"enabled": false, "runs": []model.AnalysisRun{}},
		})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	sess := middleware.CurrentSession(c)

	runs, err := h.history.ListRuns(c.Request.Context(), sess.ID(), limit)
	if err != nil {
		logger.FromGin(c).Error().Err(err).Msg("Erro ao listar histórico")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Error:   "erro ao listar histórico",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    gin.H{"enabled": true, "runs": runs},
	})
}

// Suggestions proxies the backend's suggestion list
// @Router /api/suggestions [get]
func (h *APIHandler) Suggestions(c *gin.Context) {
	metrics.Get().IncrementSuggestFetch()

	suggestions, err := h.suggester.Suggest(c.Request.Context())
	if err != nil {
		h.handleError(c, err, model.UserMessage(err))
		return
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    gin.H{"suggestions": suggestions},
	})
}

// handleError maps a service error to a status code; message is the text the page would show
func (h *APIHandler) handleError(c *gin.Context, err error, message string) {
	var apiErr *model.APIError
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, model.ErrInvalidJSON), errors.Is(err, model.ErrNoTasks), errors.Is(err, model.ErrUnknownControl):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrFeedbackLocked):
		status = http.StatusTooManyRequests
	case errors.Is(err, model.ErrStaleAnalysis):
		status = http.StatusConflict
	case errors.As(err, &apiErr), errors.Is(err, model.ErrBackendUnreachable):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		logger.FromGin(c).Warn().Err(err).Int("status", status).Msg("Erro na chamada ao backend")
	}

	c.JSON(status, model.ErrorResponse{
		Success: false,
		Error:   message,
		Details: err.Error(),
	})
}
