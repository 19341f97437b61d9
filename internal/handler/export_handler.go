package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"xperto/internal/domain"
	"xperto/internal/normalize"
	"xperto/internal/report"
	"xperto/internal/service"
)

// maxRecordBytes bounds a posted record body.
const maxRecordBytes = 4 << 20

// ExportHandler turns a record posted by the client into a downloadable
// report. The same endpoints serve the API (JSON body) and the HTML export
// forms (field "record").
type ExportHandler struct {
	exportService service.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// PDF handles POST /api/v1/reports/pdf and POST /report/pdf
func (h *ExportHandler) PDF(c *gin.Context) {
	h.download(c, domain.ExportPDF)
}

// XLSX handles POST /api/v1/reports/xlsx and POST /report/xlsx
func (h *ExportHandler) XLSX(c *gin.Context) {
	h.download(c, domain.ExportXLSX)
}

// CSV handles POST /api/v1/reports/csv and POST /report/csv
func (h *ExportHandler) CSV(c *gin.Context) {
	h.download(c, domain.ExportCSV)
}

// Markdown handles POST /api/v1/reports/markdown
func (h *ExportHandler) Markdown(c *gin.Context) {
	rec, ok := readRecord(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(rec)))
}

// PublishPDF handles POST /api/v1/reports/pdf/link
func (h *ExportHandler) PublishPDF(c *gin.Context) {
	rec, ok := readRecord(c)
	if !ok {
		return
	}

	published, err := h.exportService.PublishPDF(c.Request.Context(), rec)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, published)
}

func (h *ExportHandler) download(c *gin.Context, format domain.ExportFormat) {
	rec, ok := readRecord(c)
	if !ok {
		return
	}

	file, err := h.exportService.Export(c.Request.Context(), rec, format)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// readRecord decodes the record from a JSON body or the "record" form field.
// On failure the error response is already written.
func readRecord(c *gin.Context) (domain.AnalysisRecord, bool) {
	var data []byte
	if strings.HasPrefix(c.ContentType(), "application/json") {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRecordBytes))
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "no se pudo leer el cuerpo de la solicitud")
			return domain.AnalysisRecord{}, false
		}
		data = body
	} else {
		data = []byte(c.PostForm("record"))
	}

	rec, err := normalize.DecodeRecord(data)
	if err != nil {
		HandleError(c, err)
		return domain.AnalysisRecord{}, false
	}
	return rec, true
}
