package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"xperto/internal/domain"
	"xperto/internal/normalize"
	"xperto/internal/port"
	"xperto/internal/upload"
)

// EncodedFile is an attachment that arrived already base64-encoded.
type EncodedFile struct {
	Name string
	Data string
}

// AnalyzeInput is the DTO for one user-initiated analysis.
type AnalyzeInput struct {
	Question string
	Files    []upload.Source
	Encoded  []EncodedFile
}

// IsEmpty reports whether the input carries neither text nor files.
func (in AnalyzeInput) IsEmpty() bool {
	return strings.TrimSpace(in.Question) == "" && len(in.Files) == 0 && len(in.Encoded) == 0
}

// AnalysisResult is a completed analysis.
type AnalysisResult struct {
	Record      domain.AnalysisRecord
	Kind        domain.ReplyKind
	Attachments int
}

// AnalysisService defines the analysis contract.
type AnalysisService interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*AnalysisResult, error)
}

type analysisService struct {
	encoder *upload.Encoder
	client  port.InferenceClient
	logger  *zap.Logger
}

// NewAnalysisService creates a new AnalysisService implementation.
func NewAnalysisService(encoder *upload.Encoder, client port.InferenceClient, logger *zap.Logger) AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &analysisService{
		encoder: encoder,
		client:  client,
		logger:  logger,
	}
}

// Analyze encodes the attachments, issues exactly one upstream request once
// every encoding has settled, and normalizes the reply. Either a complete
// record or an error is returned.
func (s *analysisService) Analyze(ctx context.Context, input AnalyzeInput) (*AnalysisResult, error) {
	if input.IsEmpty() {
		return nil, domain.ErrEmptyInput
	}
	if err := s.encoder.CheckCount(len(input.Files) + len(input.Encoded)); err != nil {
		return nil, err
	}

	attachments, err := s.encoder.EncodeAll(ctx, input.Files)
	if err != nil {
		return nil, err
	}
	for _, f := range input.Encoded {
		att, err := s.encoder.FromBase64(f.Name, f.Data)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, att)
	}

	start := time.Now()
	reply, err := s.client.Ask(ctx, port.InferenceRequest{
		Question:    strings.TrimSpace(input.Question),
		Attachments: attachments,
	})
	if err != nil {
		if isRequestError(err) {
			return nil, err
		}
		s.logger.Error("upstream request failed",
			zap.Error(err),
			zap.Int("attachments", len(attachments)),
			zap.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	rec, kind := normalize.NormalizeKind(reply)
	s.logger.Info("analysis completed",
		zap.String("reply_kind", string(kind)),
		zap.String("reference", rec.Product.ReferenceCode),
		zap.Float64("confidence", rec.Confidence),
		zap.Int("attachments", len(attachments)),
		zap.Duration("elapsed", time.Since(start)))

	return &AnalysisResult{
		Record:      rec,
		Kind:        kind,
		Attachments: len(attachments),
	}, nil
}

// isRequestError reports failures raised while building the request, which
// are surfaced as-is rather than as a connection error.
func isRequestError(err error) bool {
	return errors.Is(err, domain.ErrMissingCredential) ||
		errors.Is(err, domain.ErrUnsupportedFileType) ||
		errors.Is(err, domain.ErrInvalidAttachment)
}
