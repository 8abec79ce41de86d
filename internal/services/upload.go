package services

import (
	"io"
	"net/http"
	"strings"

	"jobboard_backend/pkg/apperrors"
)

// UploadPolicy bounds user supplied files.
type UploadPolicy struct {
	MaxSize     int64
	ResumeTypes []string
	ImageTypes  []string
}

func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{
		MaxSize: 5 << 20,
		ResumeTypes: []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"text/plain",
		},
		ImageTypes: []string{"image/jpeg", "image/png", "image/gif"},
	}
}

// FileUpload is a multipart file handed over by the HTTP layer.
type FileUpload struct {
	Filename string
	Size     int64
	Reader   io.ReadSeeker
}

// sniff checks the size and the detected content type against allowed.
// The reader is rewound afterwards.
func (p UploadPolicy) sniff(file *FileUpload, allowed []string) (string, error) {
	if p.MaxSize > 0 && file.Size > p.MaxSize {
		return "", apperrors.ErrFileTooLarge
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file.Reader, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", apperrors.InternalError(err)
	}
	if _, err := file.Reader.Seek(0, io.SeekStart); err != nil {
		return "", apperrors.InternalError(err)
	}

	contentType := http.DetectContentType(head[:n])
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}

	for _, t := range allowed {
		if t == contentType {
			return contentType, nil
		}
	}
	// DOCX files sniff as zip archives.
	if contentType == "application/zip" && strings.HasSuffix(strings.ToLower(file.Filename), ".docx") {
		for _, t := range allowed {
			if strings.Contains(t, "wordprocessingml") {
				return t, nil
			}
		}
	}
	return "", apperrors.ErrInvalidFileType
}
