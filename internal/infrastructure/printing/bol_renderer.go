package printing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/freightdesk/backend/internal/domain/bol"
)

// BOLRendererConfig holds page layout for BOL documents.
type BOLRendererConfig struct {
	PageSize PageSize
	Margins  Margins
	// Timeout is the per-document render timeout.
	Timeout time.Duration
}

// BOLRenderer fills the BOL template and prints it to PDF.
type BOLRenderer struct {
	template *BOLTemplate
	pdf      PDFRenderer
	config   BOLRendererConfig
	logger   *zap.Logger
}

// NewBOLRenderer creates a renderer over pdf. A nil tmpl uses the built-in
// layout.
func NewBOLRenderer(pdf PDFRenderer, tmpl *BOLTemplate, cfg BOLRendererConfig, logger *zap.Logger) (*BOLRenderer, error) {
	if tmpl == nil {
		var err error
		if tmpl, err = NewBOLTemplate(); err != nil {
			return nil, err
		}
	}
	if !cfg.PageSize.IsValid() {
		cfg.PageSize = PageLetter
	}
	if cfg.Margins == (Margins{}) {
		cfg.Margins = DefaultMargins()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BOLRenderer{template: tmpl, pdf: pdf, config: cfg, logger: logger}, nil
}

// RenderBOL returns the PDF bytes for doc.
func (r *BOLRenderer) RenderBOL(ctx context.Context, doc *bol.Document) ([]byte, error) {
	html, err := r.template.Execute(doc)
	if err != nil {
		return nil, err
	}
	res, err := r.pdf.Render(ctx, &RenderRequest{
		HTML:     html,
		PageSize: r.config.PageSize,
		Margins:  r.config.Margins,
		Title:    doc.FileName,
		Timeout:  r.config.Timeout,
	})
	if err != nil {
		r.logger.Warn("BOL render failed", zap.String("group", doc.Key), zap.Error(err))
		return nil, err
	}
	return res.PDFData, nil
}

// Close releases the underlying PDF renderer.
func (r *BOLRenderer) Close() error {
	return r.pdf.Close()
}
