package bol

import (
	"path"
	"strings"
	"time"
)

// Content types of stored artifacts.
const (
	ContentTypePDF = "application/pdf"
	ContentTypeZIP = "application/zip"
)

// Artifact is a file written to an artifact store.
type Artifact struct {
	Name        string `json:"name"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	// Location is the store-specific address, a path or an s3:// URI.
	Location string `json:"location"`
	// URL is a time-limited download link when the store can issue one.
	URL string `json:"url,omitempty"`
}

// BundleName returns the ZIP name for a batch: BOLs_<batchID>.zip.
func BundleName(batchID string) string {
	id := clean(batchID)
	if id == "" {
		return "BOLs.zip"
	}
	return "BOLs_" + strings.ReplaceAll(id, " ", "-") + ".zip"
}

// ArtifactKey places name under prefix/YYYY/MM, using forward slashes for
// every store.
func ArtifactKey(prefix, name string, at time.Time) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	return path.Join(prefix, at.Format("2006"), at.Format("01"), clean(name))
}
