package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"xperto/internal/domain"
	"xperto/internal/service"
)

// MockExportService is a mock implementation of service.ExportService.
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Export(ctx context.Context, rec domain.AnalysisRecord, format domain.ExportFormat) (*service.ExportedFile, error) {
	args := m.Called(ctx, rec, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportedFile), args.Error(1)
}

func (m *MockExportService) PublishPDF(ctx context.Context, rec domain.AnalysisRecord) (*service.PublishedReport, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PublishedReport), args.Error(1)
}

func (m *MockExportService) StorageEnabled() bool {
	args := m.Called()
	return args.Bool(0)
}
