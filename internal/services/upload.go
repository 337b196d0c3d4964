package services

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"
)

const pdfContentType = "application/pdf"

// ErrFileTooLarge is returned when an upload exceeds the configured limit.
var ErrFileTooLarge = errors.New("uploaded file is too large")

// UploadReader turns an uploaded CV into bytes. Uploads are never written to
// disk.
type UploadReader interface {
	ReadPDF(file *multipart.FileHeader) ([]byte, error)
}

type uploadReader struct {
	maxFileSize int64
}

func NewUploadReader(maxFileSize int64) UploadReader {
	return &uploadReader{maxFileSize: maxFileSize}
}

func (u *uploadReader) ReadPDF(file *multipart.FileHeader) ([]byte, error) {
	if file == nil {
		return nil, fmt.Errorf("%w: no file uploaded", ErrInvalidInputFormat)
	}

	// Validate content type
	contentType := file.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.EqualFold(mediaType, pdfContentType) {
		return nil, fmt.Errorf("%w: invalid file type %q, please upload a PDF", ErrInvalidInputFormat, contentType)
	}

	if u.maxFileSize > 0 && file.Size > u.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes, max size: %d bytes", ErrFileTooLarge, file.Size, u.maxFileSize)
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	reader := io.Reader(src)
	if u.maxFileSize > 0 {
		reader = io.LimitReader(src, u.maxFileSize+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if u.maxFileSize > 0 && int64(len(data)) > u.maxFileSize {
		return nil, fmt.Errorf("%w: max size: %d bytes", ErrFileTooLarge, u.maxFileSize)
	}

	return data, nil
}
