package router

import (
	"html/template"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"xperto/internal/config"
	"xperto/internal/handler"
	"xperto/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Analysis *handler.AnalysisHandler
	Export   *handler.ExportHandler
	Page     *handler.PageHandler
	Health   *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware. The PDF
// link route is mounted only when report storage is enabled.
func Setup(
	cfg *config.Config,
	logger *zap.Logger,
	tmpl *template.Template,
	h Handlers,
	storageEnabled bool,
) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = cfg.Upload.MaxFileBytes()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	r.SetHTMLTemplate(tmpl)

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	// HTML front-end
	r.GET("/", h.Page.Index)
	r.POST("/analyze", h.Page.Analyze)
	page := r.Group("/report")
	page.POST("/pdf", h.Export.PDF)
	page.POST("/xlsx", h.Export.XLSX)
	page.POST("/csv", h.Export.CSV)

	v1 := r.Group("/api/v1")
	v1.POST("/analyses", h.Analysis.Analyze)

	reports := v1.Group("/reports")
	reports.POST("/pdf", h.Export.PDF)
	reports.POST("/xlsx", h.Export.XLSX)
	reports.POST("/csv", h.Export.CSV)
	reports.POST("/markdown", h.Export.Markdown)
	if storageEnabled {
		reports.POST("/pdf/link", h.Export.PublishPDF)
	}

	return r
}
