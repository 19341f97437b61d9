package domain

import "errors"

var (
	ErrEmptyInput          = errors.New("analysis requires text or at least one file")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrTooManyFiles        = errors.New("too many files attached")
	ErrInvalidAttachment   = errors.New("attachment data is not valid base64")
	ErrMissingCredential   = errors.New("upstream credential is not configured")
	ErrUnknownUpstream     = errors.New("unknown upstream mode")
	ErrUpstreamUnavailable = errors.New("upstream inference endpoint unavailable")
	ErrInvalidRecord       = errors.New("analysis record is not valid JSON")
	ErrStorageDisabled     = errors.New("report storage is not configured")
	ErrUploadFailed        = errors.New("report upload to storage failed")
	ErrUnsupportedFormat   = errors.New("unsupported export format")
)
