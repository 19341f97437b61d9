package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"xperto/internal/domain"
	"xperto/internal/service"
)

// AnalysisHandler handles the JSON analysis API.
type AnalysisHandler struct {
	analysisService service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

type encodedFileRequest struct {
	Name string `json:"name"`
	// MediaType is advisory; the sniffed type of the decoded bytes wins.
	MediaType string `json:"mediaType"`
	Data      string `json:"data" binding:"required"`
}

type analyzeRequest struct {
	Text  string               `json:"text"`
	Files []encodedFileRequest `json:"files" binding:"dive"`
}

// AnalysisResponse is the body returned by a completed analysis.
type AnalysisResponse struct {
	Record      domain.AnalysisRecord `json:"record"`
	Kind        domain.ReplyKind      `json:"kind"`
	Attachments int                   `json:"attachments"`
}

// Analyze handles POST /api/v1/analyses. The body is either multipart
// (fields "text" and "files") or JSON with base64 files.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var input service.AnalyzeInput
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req analyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
		input.Question = req.Text
		for _, f := range req.Files {
			input.Encoded = append(input.Encoded, service.EncodedFile{Name: f.Name, Data: f.Data})
		}
	} else {
		input.Question = c.PostForm("text")
		input.Files = formFiles(c)
	}

	result, err := h.analysisService.Analyze(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, AnalysisResponse{
		Record:      result.Record,
		Kind:        result.Kind,
		Attachments: result.Attachments,
	})
}
