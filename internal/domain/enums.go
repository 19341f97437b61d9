package domain

// UpstreamMode selects which inference contract a deployment talks to.
type UpstreamMode string

const (
	UpstreamWebhook UpstreamMode = "webhook"
	UpstreamGemini  UpstreamMode = "gemini"
	UpstreamOpenAI  UpstreamMode = "openai"
)

// ReplyKind records how the normalizer interpreted an upstream reply.
type ReplyKind string

const (
	ReplyKindStrict ReplyKind = "strict"
	ReplyKindProse  ReplyKind = "prose"
)

// AllowedMediaTypes lists the attachment media types accepted for analysis.
var AllowedMediaTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
}

// ExportFormat is a downloadable report format.
type ExportFormat string

const (
	ExportPDF  ExportFormat = "pdf"
	ExportXLSX ExportFormat = "xlsx"
	ExportCSV  ExportFormat = "csv"
)
