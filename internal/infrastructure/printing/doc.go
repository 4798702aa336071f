// Package printing turns BOL documents into PDFs and stores the results.
//
// BOLTemplate fills an HTML layout from a bol.Document, ChromedpRenderer
// prints that HTML to PDF through headless Chrome, BuildBundle zips the
// PDFs of a batch and FileStore writes artifacts to local disk.
//
//	pdf := NewChromedpRenderer(ChromedpConfig{NoSandbox: true})
//	renderer, err := NewBOLRenderer(pdf, nil, BOLRendererConfig{}, logger)
//	if err != nil {
//	    return err
//	}
//	data, err := renderer.RenderBOL(ctx, doc)
package printing
