package service_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"xperto/internal/config"
	"xperto/internal/domain"
	"xperto/internal/inference"
	"xperto/internal/port"
	"xperto/internal/service"
	"xperto/internal/upload"
	"xperto/mocks"
)

// pdfContent returns minimal valid PDF bytes.
func pdfContent() []byte {
	return []byte("%PDF-1.4 test content that is at least a few bytes long for detection purposes")
}

func testEncoder() *upload.Encoder {
	return upload.NewEncoder(config.UploadConfig{MaxFileSizeMB: 1, MaxFiles: 2, EncodeConcurrency: 2})
}

func fileSource(name string, data []byte) upload.Source {
	return upload.Source{Name: name, Open: func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}}
}

const structuredReply = `Resultado: {"productDetails":{"productName":"Válvula X","referenceCode":"V-100","rawTableData":[]},"variantsNarrative":"n/a","comparisonTable":[],"recommendations":"none","confidence":87} fin`

func TestAnalysisService_Analyze_Structured(t *testing.T) {
	client := new(mocks.MockInferenceClient)
	svc := service.NewAnalysisService(testEncoder(), client, nil)

	client.On("Ask", mock.Anything, port.InferenceRequest{Question: "válvula"}).Return(structuredReply, nil)

	result, err := svc.Analyze(context.Background(), service.AnalyzeInput{Question: "  válvula  "})
	require.NoError(t, err)

	assert.Equal(t, domain.ReplyKindStrict, result.Kind)
	assert.Equal(t, "Válvula X", result.Record.Product.Name)
	assert.Equal(t, float64(87), result.Record.Confidence)
	client.AssertExpectations(t)
}

func TestAnalysisService_Analyze_ProseReply(t *testing.T) {
	client := new(mocks.MockInferenceClient)
	svc := service.NewAnalysisService(testEncoder(), client, nil)

	client.On("Ask", mock.Anything, mock.Anything).Return("No encuentro esa pieza.", nil)

	result, err := svc.Analyze(context.Background(), service.AnalyzeInput{Question: "pieza"})
	require.NoError(t, err)

	assert.Equal(t, domain.ReplyKindProse, result.Kind)
	assert.Equal(t, "No encuentro esa pieza.", result.Record.Product.SpecRows[0].Value)
}

func TestAnalysisService_Analyze_EmptyInputSendsNothing(t *testing.T) {
	client := new(mocks.MockInferenceClient)
	svc := service.NewAnalysisService(testEncoder(), client, nil)

	result, err := svc.Analyze(context.Background(), service.AnalyzeInput{Question: "   "})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
	client.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
}

func TestAnalysisService_Analyze_AttachmentsInOrder(t *testing.T) {
	client := new(mocks.MockInferenceClient)
	svc := service.NewAnalysisService(testEncoder(), client, nil)

	var got port.InferenceRequest
	client.On("Ask", mock.Anything, mock.AnythingOfType("port.InferenceRequest")).
		Run(func(args mock.Arguments) { got = args.Get(1).(port.InferenceRequest) }).
		Return("{}", nil)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	result, err := svc.Analyze(context.Background(), service.AnalyzeInput{
		Files:   []upload.Source{fileSource("ficha.pdf", pdfContent())},
		Encoded: []service.EncodedFile{{Name: "foto.png", Data: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Attachments)
	require.Len(t, got.Attachments, 2)
	assert.Equal(t, "application/pdf", got.Attachments[0].MediaType)
	assert.Equal(t, "image/png", got.Attachments[1].MediaType)
	assert.Empty(t, got.Question)
}

func TestAnalysisService_Analyze_TooManyFiles(t *testing.T) {
	client := new(mocks.MockInferenceClient)
	svc := service.NewAnalysisService(testEncoder(), client, nil)

	src := fileSource("a.pdf", pdfContent())
	_, err := svc.Analyze(context.Background(), service.AnalyzeInput{
		Files:   []upload.Source{src, src},
		Encoded: []service.EncodedFile{{Name: "b.pdf", Data: base64.StdEncoding.EncodeToString(pdfContent())}},
	})

	assert.ErrorIs(t, err, domain.ErrTooManyFiles)
	client.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
}

func TestAnalysisService_Analyze_UnsupportedFile(t *testing.T) {
	client := new(mocks.MockInferenceClient)
	svc := service.NewAnalysisService(testEncoder(), client, nil)

	_, err := svc.Analyze(context.Background(), service.AnalyzeInput{
		Files: []upload.Source{fileSource("notas.txt", []byte("texto plano"))},
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	client.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
}

func TestAnalysisService_Analyze_TransportFailure(t *testing.T) {
	client := new(mocks.MockInferenceClient)
	svc := service.NewAnalysisService(testEncoder(), client, nil)

	client.On("Ask", mock.Anything, mock.Anything).
		Return("", inference.NewStatusError("webhook", 500, []byte("boom")))

	result, err := svc.Analyze(context.Background(), service.AnalyzeInput{Question: "q"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestAnalysisService_Analyze_RequestErrorsPassThrough(t *testing.T) {
	client := new(mocks.MockInferenceClient)
	svc := service.NewAnalysisService(testEncoder(), client, nil)

	client.On("Ask", mock.Anything, mock.Anything).
		Return("", errors.Join(domain.ErrMissingCredential, errors.New("gemini api_key")))

	_, err := svc.Analyze(context.Background(), service.AnalyzeInput{Question: "q"})

	assert.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.NotErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
