package docinspect

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// Info summarizes an inspected PDF.
type Info struct {
	PageCount int
}

// Inspector validates uploaded vendor PDFs before they enter the approval
// chain.
type Inspector struct {
	logger *zap.Logger
}

// NewInspector creates a PDF inspector.
func NewInspector(logger *zap.Logger) *Inspector {
	return &Inspector{logger: logger}
}

// Inspect opens the PDF bytes with mupdf, rejecting files that are not valid
// PDFs, are empty, or are encrypted.
func (i *Inspector) Inspect(data []byte) (*Info, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	meta := doc.Metadata()
	if enc := meta["encryption"]; enc != "" && !strings.EqualFold(enc, "none") {
		return nil, fmt.Errorf("encrypted PDF not accepted: %s", enc)
	}

	i.logger.Debug("PDF inspected", zap.Int("pages", pageCount))
	return &Info{PageCount: pageCount}, nil
}
