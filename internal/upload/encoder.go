// Package upload converts user-selected files into transport-ready
// attachments: base64 text plus a sniffed media type and display name.
package upload

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"xperto/internal/config"
	"xperto/internal/domain"
)

// Source is a file awaiting encoding. Open is called exactly once.
type Source struct {
	Name         string
	DeclaredType string
	Open         func() (io.ReadCloser, error)
}

// Encoder turns sources into attachments within the configured limits.
type Encoder struct {
	maxBytes    int64
	maxFiles    int
	concurrency int
}

// NewEncoder creates an Encoder from upload settings.
func NewEncoder(cfg config.UploadConfig) *Encoder {
	concurrency := cfg.EncodeConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Encoder{
		maxBytes:    cfg.MaxFileBytes(),
		maxFiles:    cfg.MaxFiles,
		concurrency: concurrency,
	}
}

// Encode reads one source and returns its attachment.
func (e *Encoder) Encode(src Source) (domain.FileAttachment, error) {
	rc, err := src.Open()
	if err != nil {
		return domain.FileAttachment{}, fmt.Errorf("opening %s: %w", src.Name, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, e.maxBytes+1))
	if err != nil {
		return domain.FileAttachment{}, fmt.Errorf("reading %s: %w", src.Name, err)
	}
	return e.fromBytes(src.Name, data)
}

// EncodeAll encodes sources concurrently. The result keeps input order and
// is only returned once every encoding has settled.
func (e *Encoder) EncodeAll(ctx context.Context, sources []Source) ([]domain.FileAttachment, error) {
	if len(sources) == 0 {
		return nil, nil
	}
	if err := e.CheckCount(len(sources)); err != nil {
		return nil, err
	}

	results := make([]domain.FileAttachment, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			att, err := e.Encode(src)
			if err != nil {
				return err
			}
			results[i] = att
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CheckCount rejects a submission with more files than allowed.
func (e *Encoder) CheckCount(n int) error {
	if e.maxFiles > 0 && n > e.maxFiles {
		return fmt.Errorf("%w: %d attached, limit is %d", domain.ErrTooManyFiles, n, e.maxFiles)
	}
	return nil
}

// FromBase64 validates an attachment that arrived already encoded, either as
// bare base64 or as a data URL. The media type is re-sniffed from the bytes.
func (e *Encoder) FromBase64(name, data string) (domain.FileAttachment, error) {
	payload, _ := StripDataURL(data)
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return domain.FileAttachment{}, fmt.Errorf("%w: %s", domain.ErrInvalidAttachment, name)
	}
	if int64(len(raw)) > e.maxBytes {
		return domain.FileAttachment{}, fmt.Errorf("%w: %s", domain.ErrFileTooLarge, name)
	}
	return e.fromBytes(name, raw)
}

func (e *Encoder) fromBytes(name string, data []byte) (domain.FileAttachment, error) {
	if int64(len(data)) > e.maxBytes {
		return domain.FileAttachment{}, fmt.Errorf("%w: %s", domain.ErrFileTooLarge, name)
	}
	mediaType, err := DetectMediaType(data)
	if err != nil {
		return domain.FileAttachment{}, fmt.Errorf("%s: %w", name, err)
	}
	return domain.FileAttachment{
		Data:        base64.StdEncoding.EncodeToString(data),
		MediaType:   mediaType,
		DisplayName: displayName(name),
	}, nil
}

// DetectMediaType sniffs the content type from magic bytes and checks it
// against the accepted set.
func DetectMediaType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", domain.ErrUnsupportedFileType)
	}
	detected, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	detected = strings.TrimSpace(detected)
	if !domain.AllowedMediaTypes[detected] {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, detected)
	}
	return detected, nil
}

// StripDataURL splits "data:<type>;base64,<payload>" into payload and type.
// Input without the prefix is returned unchanged with an empty type.
func StripDataURL(s string) (payload, mediaType string) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return s, ""
	}
	header, body, ok := strings.Cut(s, ",")
	if !ok {
		return s, ""
	}
	mediaType, _, _ = strings.Cut(strings.TrimPrefix(header, "data:"), ";")
	return body, mediaType
}

// DataURL renders an attachment as a data URL.
func DataURL(att domain.FileAttachment) string {
	return "data:" + att.MediaType + ";base64," + att.Data
}

func displayName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == "/" || base == "" {
		return "adjunto"
	}
	return base
}
