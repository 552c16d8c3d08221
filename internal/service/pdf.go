package service

import (
	"fmt"

	"billwise/pkg/config"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// PageParser returns the text of every page of the PDF at path, in page order.
type PageParser interface {
	Pages(path string) ([]string, error)
}

// NewPageParser picks the PDF engine named in the configuration.
func NewPageParser(engine string, logger *zap.Logger) PageParser {
	if engine == config.PDFEngineNative {
		return &NativePDFParser{logger: logger}
	}
	return &MuPDFParser{logger: logger}
}

// MuPDFParser extracts text with MuPDF through go-fitz.
type MuPDFParser struct {
	logger *zap.Logger
}

func (p *MuPDFParser) Pages(path string) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			p.logger.Warn("Failed to extract text from page",
				zap.Int("page", i+1),
				zap.Error(err),
			)
			pages = append(pages, "")
			continue
		}
		pages = append(pages, sanitizeUTF8(text))
	}

	p.logger.Debug("PDF text extracted using go-fitz", zap.Int("pages", len(pages)))
	return pages, nil
}

// NativePDFParser is a pure Go fallback for hosts without MuPDF.
type NativePDFParser struct {
	logger *zap.Logger
}

func (p *NativePDFParser) Pages(path string) (pages []string, err error) {
	// the reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			p.logger.Warn("Failed to extract text from page",
				zap.Int("page", i),
				zap.Error(err),
			)
			pages = append(pages, "")
			continue
		}
		pages = append(pages, sanitizeUTF8(text))
	}

	p.logger.Debug("PDF text extracted using ledongthuc/pdf", zap.Int("pages", len(pages)))
	return pages, nil
}
