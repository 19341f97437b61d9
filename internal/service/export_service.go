package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"xperto/internal/config"
	"xperto/internal/csvexport"
	"xperto/internal/domain"
	"xperto/internal/normalize"
	"xperto/internal/pdfexport"
	"xperto/internal/port"
	"xperto/internal/xlsxexport"
)

// ExportedFile is a rendered report ready for download.
type ExportedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PublishedReport is a PDF handed off to object storage.
type PublishedReport struct {
	Filename  string `json:"filename"`
	Key       string `json:"key"`
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expires_in"`
}

// ExportService defines the report export contract.
type ExportService interface {
	Export(ctx context.Context, rec domain.AnalysisRecord, format domain.ExportFormat) (*ExportedFile, error)
	PublishPDF(ctx context.Context, rec domain.AnalysisRecord) (*PublishedReport, error)
	StorageEnabled() bool
}

type exportService struct {
	pdf     *pdfexport.Exporter
	storage port.ObjectStorage
	cfg     *config.StorageConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService creates a new ExportService implementation. storage may be
// nil, in which case PublishPDF reports ErrStorageDisabled.
func NewExportService(
	pdf *pdfexport.Exporter,
	storage port.ObjectStorage,
	cfg *config.StorageConfig,
	logger *zap.Logger,
) ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &exportService{
		pdf:     pdf,
		storage: storage,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *exportService) StorageEnabled() bool {
	return s.storage != nil
}

// Export renders rec in the requested format. The record is completed
// first, so a record posted back by a client renders like a fresh one.
func (s *exportService) Export(_ context.Context, rec domain.AnalysisRecord, format domain.ExportFormat) (*ExportedFile, error) {
	rec = normalize.Finalize(rec)

	var buf bytes.Buffer
	out := &ExportedFile{}
	switch format {
	case domain.ExportPDF:
		if err := s.pdf.Export(&buf, rec); err != nil {
			return nil, err
		}
		out.Filename = pdfexport.Filename(rec)
		out.ContentType = pdfexport.ContentType
	case domain.ExportXLSX:
		if err := xlsxexport.Write(&buf, rec); err != nil {
			return nil, err
		}
		out.Filename = xlsxexport.Filename(rec)
		out.ContentType = xlsxexport.ContentType
	case domain.ExportCSV:
		if err := csvexport.Export(&buf, rec); err != nil {
			return nil, err
		}
		out.Filename = csvexport.BuildFilename(rec.Product.ReferenceCode, s.now())
		out.ContentType = csvexport.ContentType
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
	out.Data = buf.Bytes()
	return out, nil
}

// PublishPDF uploads the rendered PDF and returns a time-limited link. The
// object is never read back by the service.
func (s *exportService) PublishPDF(ctx context.Context, rec domain.AnalysisRecord) (*PublishedReport, error) {
	if s.storage == nil {
		return nil, domain.ErrStorageDisabled
	}
	file, err := s.Export(ctx, rec, domain.ExportPDF)
	if err != nil {
		return nil, err
	}

	key := path.Join(s.cfg.Prefix, s.now().UTC().Format("2006-01-02"), uuid.NewString(), file.Filename)
	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(file.Data),
		ContentType: file.ContentType,
		Size:        int64(len(file.Data)),
		Filename:    file.Filename,
		Metadata:    reportMetadata(rec),
	})
	if err != nil {
		s.logger.Error("report upload failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.cfg.Bucket, key, s.cfg.PresignExpiry)
	if err != nil {
		s.logger.Error("report presign failed", zap.String("key", key), zap.Error(err))
		if delErr := s.storage.Delete(ctx, s.cfg.Bucket, key); delErr != nil {
			err = errors.Join(err, delErr)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	s.logger.Info("report published", zap.String("key", key), zap.Int("bytes", len(file.Data)))
	return &PublishedReport{
		Filename:  file.Filename,
		Key:       key,
		URL:       url,
		ExpiresIn: s.cfg.PresignExpiry,
	}, nil
}

// reportMetadata describes a published report for whoever lists the bucket.
// Values are kept ASCII because S3 metadata travels in HTTP headers.
func reportMetadata(rec domain.AnalysisRecord) map[string]string {
	return map[string]string{
		"reference":  csvexport.SanitizeFilename(rec.Product.ReferenceCode),
		"confidence": strconv.Itoa(int(math.Round(rec.Confidence))),
	}
}
