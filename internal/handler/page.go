package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Bristo123/smart-task-analyser/internal/logger"
	"github.com/Bristo123/smart-task-analyser/internal/metrics"
	"github.com/Bristo123/smart-task-analyser/internal/middleware"
	"github.com/Bristo123/smart-task-analyser/internal/model"
	"github.com/Bristo123/smart-task-analyser/internal/service"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PageHandler serves the HTML page and its forms (post/redirect/get)
type PageHandler struct {
	analysis *service.AnalysisService
	feedback *service.FeedbackService
	exporter *service.ResultsExporter
}

// NewPageHandler creates a new page handler
func NewPageHandler(analysis *service.AnalysisService, feedback *service.FeedbackService, exporter *service.ResultsExporter) *PageHandler {
	return &PageHandler{
		analysis: analysis,
		feedback: feedback,
		exporter: exporter,
	}
}

// Index renders the page. Notice and alert are shown once.
func (h *PageHandler) Index(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	data, err := newPageData(sess.Snapshot(true), middleware.CSRFTokenFrom(c))
	if err != nil {
		logger.FromGin(c).Error().Err(err).Msg("Erro ao montar a página")
		c.String(http.StatusInternalServerError, "erro interno")
		return
	}

	c.HTML(http.StatusOK, PageTemplate, data)
}

// AddTask appends the submitted draft to the session's task list
func (h *PageHandler) AddTask(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	var form model.DraftForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "formulário inválido",
			Details: err.Error(),
		})
		return
	}

	_, count := service.AddTask(sess, form)
	logger.FromGin(c).Info().Int("tasks", count).Msg("Tarefa adicionada")

	c.Redirect(http.StatusSeeOther, "/")
}

// Analyze runs an analysis and redirects back to the page.
// Errors are already stored in the session and shown inline.
func (h *PageHandler) Analyze(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	var form model.AnalyzeForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "formulário inválido",
			Details: err.Error(),
		})
		return
	}

	_, err := h.analysis.Analyze(c.Request.Context(), sess, service.AnalyzeInput{
		JSONOverride: form.JSONInput,
		Strategy:     form.Strategy,
	})
	if err != nil {
		logger.FromGin(c).Debug().Err(err).Msg("Análise não aplicada")
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// Feedback sends the vote bound to the clicked control
func (h *PageHandler) Feedback(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	var form model.FeedbackForm
	if err := c.ShouldBind(&form); err != nil {
		// Versão ilegível: nenhuma página atual corresponde a ela
		form = model.FeedbackForm{Control: c.PostForm("control")}
	}

	if _, err := h.feedback.SendControl(c.Request.Context(), sess, form.Version, form.Control); errors.Is(err, model.ErrFeedbackLocked) {
		sess.SetAlert(model.FeedbackAlert(err))
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// Export writes the last rendered results as an Excel sheet
func (h *PageHandler) Export(c *gin.Context) {
	log := logger.FromGin(c)
	sess := middleware.CurrentSession(c)

	page := sess.Page()
	if page.Empty() {
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Success: false,
			Error:   "nenhum resultado para exportar",
			Details: "execute uma análise antes de exportar",
		})
		return
	}

	buf, err := h.exporter.Generate(page.Results, page.Strategy)
	if err != nil {
		log.Error().Err(err).Msg("Erro ao gerar planilha")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Error:   "erro interno",
			Details: err.Error(),
		})
		return
	}
	metrics.Get().IncrementExport()

	log.Info().Int("results", len(page.Results)).Msg("Planilha exportada")

	c.Header("Content-Disposition", "attachment; filename=task-analysis.xlsx")
	c.Header("X-Total-Tasks", fmt.Sprintf("%d", len(page.Results)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
