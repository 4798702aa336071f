package printing

import (
	"archive/zip"
	"bytes"
	"path"
	"strconv"
	"strings"
	"time"
)

// BundleEntry is one file of a ZIP bundle.
type BundleEntry struct {
	Name string
	Data []byte
}

// BuildBundle writes entries into a deflated ZIP in the given order.
// Duplicate names get a numeric suffix ("a.pdf", "a_2.pdf") so no
// document is silently overwritten.
func BuildBundle(entries []BundleEntry, modified time.Time) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	seen := make(map[string]int, len(entries))

	for _, e := range entries {
		name := uniqueName(e.Name, seen)
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, NewRenderError(ErrCodeBundleFailed, "failed to add "+name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, NewRenderError(ErrCodeBundleFailed, "failed to write "+name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, NewRenderError(ErrCodeBundleFailed, "failed to finalize bundle", err)
	}
	return buf.Bytes(), nil
}

func uniqueName(name string, seen map[string]int) string {
	name = strings.TrimLeft(path.Clean("/"+strings.ReplaceAll(name, "\\", "/")), "/")
	if name == "" {
		name = "document.pdf"
	}
	seen[name]++
	n := seen[name]
	if n == 1 {
		return name
	}
	ext := path.Ext(name)
	candidate := strings.TrimSuffix(name, ext) + "_" + strconv.Itoa(n) + ext
	if seen[candidate] > 0 {
		return uniqueName(candidate, seen)
	}
	seen[candidate] = 1
	return candidate
}
