package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

const (
	MaxImageSize = 10 << 20
	MaxVideoSize = 500 << 20
)

var (
	allowedImageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
	allowedVideoExts = map[string]bool{".mp4": true, ".mov": true, ".avi": true, ".webm": true, ".mkv": true}
)

// ValidateFileType checks the extension against the allowed list for mediaType.
func ValidateFileType(filename, mediaType string) error {
	ext := strings.ToLower(filepath.Ext(filename))

	switch mediaType {
	case "image":
		if !allowedImageExts[ext] {
			return fmt.Errorf("unsupported image format. Allowed formats: jpg, jpeg, png, gif, webp")
		}
	case "video":
		if !allowedVideoExts[ext] {
			return fmt.Errorf("unsupported video format. Allowed formats: mp4, mov, avi, webm, mkv")
		}
	default:
		return fmt.Errorf("invalid media type. Must be 'image' or 'video'")
	}
	return nil
}

// UploadedFile is a fully read multipart part.
type UploadedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReadUpload validates and reads a multipart file, enforcing maxSize.
func ReadUpload(header *multipart.FileHeader, mediaType string, maxSize int64) (*UploadedFile, error) {
	if err := ValidateFileType(header.Filename, mediaType); err != nil {
		return nil, err
	}
	if header.Size > maxSize {
		return nil, fmt.Errorf("file too large. Maximum size is %d MB", maxSize>>20)
	}

	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("file too large. Maximum size is %d MB", maxSize>>20)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &UploadedFile{Name: header.Filename, ContentType: contentType, Data: data}, nil
}
