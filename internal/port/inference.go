package port

import (
	"context"

	"xperto/internal/domain"
)

// InferenceRequest carries one user analysis to the upstream endpoint.
type InferenceRequest struct {
	Question    string
	Attachments []domain.FileAttachment
}

// InferenceClient abstracts the upstream inference endpoint. Ask performs a
// single request-response exchange and returns the reply text extracted from
// the response envelope.
type InferenceClient interface {
	Ask(ctx context.Context, req InferenceRequest) (string, error)
}
