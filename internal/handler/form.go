package handler

import (
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"xperto/internal/upload"
)

// formFiles returns the uploaded "files" parts as encoder sources, in the
// order the client sent them. A non-multipart request has no files.
func formFiles(c *gin.Context) []upload.Source {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	headers := form.File["files"]
	sources := make([]upload.Source, 0, len(headers))
	for _, fh := range headers {
		sources = append(sources, fileSource(fh))
	}
	return sources
}

func fileSource(fh *multipart.FileHeader) upload.Source {
	return upload.Source{
		Name:         fh.Filename,
		DeclaredType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
