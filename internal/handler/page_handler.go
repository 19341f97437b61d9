package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"xperto/internal/domain"
	"xperto/internal/report"
	"xperto/internal/service"
)

// PageHandler serves the HTML front-end: the input form and the rendered
// report. The engine must have report.Templates() loaded.
type PageHandler struct {
	analysisService service.AnalysisService
	maxFiles        int
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(analysisService service.AnalysisService, maxFiles int) *PageHandler {
	return &PageHandler{analysisService: analysisService, maxFiles: maxFiles}
}

// Index handles GET /
func (h *PageHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", h.page(""))
}

// Analyze handles POST /analyze. An empty submission re-renders the form;
// any failure is shown as a single banner above it.
func (h *PageHandler) Analyze(c *gin.Context) {
	input := service.AnalyzeInput{
		Question: c.PostForm("text"),
		Files:    formFiles(c),
	}
	page := h.page(input.Question)

	result, err := h.analysisService.Analyze(c.Request.Context(), input)
	if errors.Is(err, domain.ErrEmptyInput) {
		c.HTML(http.StatusOK, "index.html", page)
		return
	}
	if err != nil {
		status, _, msg := MapDomainError(err)
		if status >= 500 {
			_ = c.Error(err)
		}
		page.Error = msg
		c.HTML(status, "index.html", page)
		return
	}

	view, err := report.NewView(result.Record, result.Kind)
	if err != nil {
		_ = c.Error(err)
		page.Error = "No se pudo mostrar el informe."
		c.HTML(http.StatusInternalServerError, "index.html", page)
		return
	}
	page.Report = view
	c.HTML(http.StatusOK, "index.html", page)
}

func (h *PageHandler) page(question string) report.Page {
	return report.Page{
		Title:    "Análisis técnico",
		Question: question,
		MaxFiles: h.maxFiles,
	}
}
