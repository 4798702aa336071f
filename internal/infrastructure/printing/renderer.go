package printing

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// PageSize is a sheet in inches, the unit Chrome's PrintToPDF takes.
type PageSize struct {
	Name   string
	Width  float64
	Height float64
}

// Carrier BOL forms are printed on US sheets.
var (
	PageLetter = PageSize{Name: "letter", Width: 8.5, Height: 11}
	PageLegal  = PageSize{Name: "legal", Width: 8.5, Height: 14}
)

// ParsePageSize resolves a configured paper name. Empty means letter.
func ParsePageSize(name string) (PageSize, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PageLetter.Name:
		return PageLetter, nil
	case PageLegal.Name:
		return PageLegal, nil
	}
	return PageSize{}, fmt.Errorf("unknown paper size %q (want letter or legal)", name)
}

func (p PageSize) IsValid() bool {
	return p.Width > 0 && p.Height > 0
}

// Margins in inches.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargins leaves a third of an inch on every side, enough for the
// bordered BOL grid to clear most printers' unprintable area.
func DefaultMargins() Margins {
	return Margins{Top: 0.33, Right: 0.33, Bottom: 0.33, Left: 0.33}
}

// RenderRequest is one HTML document to print. A zero Timeout uses the
// renderer's default.
type RenderRequest struct {
	HTML      string
	Title     string
	PageSize  PageSize
	Margins   Margins
	Landscape bool
	Timeout   time.Duration
}

// RenderResult is the printed PDF.
type RenderResult struct {
	PDFData   []byte
	PageCount int
}

// PDFRenderer turns HTML into PDF bytes.
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// Error codes carried by RenderError.
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
	ErrCodeTemplateFailed   = "TEMPLATE_FAILED"
	ErrCodeBundleFailed     = "BUNDLE_FAILED"
	ErrCodeStorageFailed    = "STORAGE_FAILED"
)

// RenderError is returned by the template, renderer, bundle and store
// steps of BOL production.
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

func (e *RenderError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *RenderError) Unwrap() error { return e.Cause }
