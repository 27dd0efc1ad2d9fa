package storage

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/chronoduo/reportjob/internal/stringutil"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// Bucket stores report documents. Upload overwrites an existing object.
type Bucket interface {
	Upload(ctx context.Context, objectPath, contentType string, body []byte) error
}

// ContentType returns the MIME type for a document extension.
func ContentType(ext string) string {
	switch ext {
	case "pdf":
		return ContentTypePDF
	case "xlsx":
		return ContentTypeXLSX
	case "html":
		return ContentTypeHTML
	}
	return "application/octet-stream"
}

// BaseName returns the file name of a report without extension:
// <client>_<month>_<year>_<employee>, both names sanitized.
func BaseName(clientName, employeeName string, issued time.Time) string {
	return fmt.Sprintf("%s_%d_%d_%s",
		stringutil.SanitizeFilename(clientName),
		int(issued.Month()), issued.Year(),
		stringutil.SanitizeFilename(employeeName))
}

// ObjectPath returns the bucket path of a report document:
// <client_id>/<year>_<month>/<base name>.<ext>
func ObjectPath(clientID, clientName, employeeName string, issued time.Time, ext string) string {
	folder := fmt.Sprintf("%d_%d", issued.Year(), int(issued.Month()))
	return path.Join(clientID, folder, BaseName(clientName, employeeName, issued)+"."+ext)
}
