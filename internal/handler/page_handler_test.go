package handler_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"xperto/internal/domain"
	"xperto/internal/handler"
	"xperto/internal/report"
	"xperto/mocks"
)

func pageEngine(t *testing.T, h *handler.PageHandler) *gin.Engine {
	t.Helper()
	tmpl, err := report.Templates()
	require.NoError(t, err)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.GET("/", h.Index)
	r.POST("/analyze", h.Analyze)
	return r
}

func postForm(r *gin.Engine, text string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/analyze", strings.NewReader(url.Values{"text": {text}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	return w
}

func TestPageHandler_Index(t *testing.T) {
	r := pageEngine(t, handler.NewPageHandler(new(mocks.MockAnalysisService), 5))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="analyze-submit"`)
	assert.Contains(t, w.Body.String(), "Máximo 5 archivos.")
}

func TestPageHandler_Analyze_RendersReport(t *testing.T) {
	mockSvc := new(mocks.MockAnalysisService)
	r := pageEngine(t, handler.NewPageHandler(mockSvc, 5))

	mockSvc.On("Analyze", mock.Anything, mock.Anything).Return(sampleResult(), nil)

	w := postForm(r, "bomba")

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Bomba")
	assert.Contains(t, body, `action="/report/pdf"`)
	assert.NotContains(t, body, `class="banner"`)
}

func TestPageHandler_Analyze_EmptyRerendersForm(t *testing.T) {
	mockSvc := new(mocks.MockAnalysisService)
	r := pageEngine(t, handler.NewPageHandler(mockSvc, 5))

	mockSvc.On("Analyze", mock.Anything, mock.Anything).Return(nil, domain.ErrEmptyInput)

	w := postForm(r, "  ")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `class="banner"`)
	assert.NotContains(t, w.Body.String(), `id="report"`)
}

func TestPageHandler_Analyze_UpstreamFailureBanner(t *testing.T) {
	mockSvc := new(mocks.MockAnalysisService)
	r := pageEngine(t, handler.NewPageHandler(mockSvc, 5))

	mockSvc.On("Analyze", mock.Anything, mock.Anything).Return(nil, domain.ErrUpstreamUnavailable)

	w := postForm(r, "bomba")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := w.Body.String()
	assert.Equal(t, 1, strings.Count(body, `class="banner"`))
	assert.Contains(t, body, "Error de comunicación con el servidor experto.")
	assert.Contains(t, body, ">bomba</textarea>")
}
