package fileinspect

import (
	"bytes"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

const (
	mimePDF  = "application/pdf"
	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
)

var allowedTypes = map[string]string{
	mimePDF:  ".pdf",
	mimeJPEG: ".jpg",
	mimePNG:  ".png",
}

// Inspector accepts PDFs and JPEG/PNG scans, judged by content rather than
// the client's filename or header.
type Inspector struct{}

func New() *Inspector {
	return &Inspector{}
}

func (i *Inspector) Inspect(filename string, data []byte) (domain.InspectedFile, error) {
	if len(data) == 0 {
		return domain.InspectedFile{}, domain.InvalidInput("inspect file", "file is empty")
	}

	detected := mimetype.Detect(data)
	contentType, ext := "", ""
	for mt := detected; mt != nil; mt = mt.Parent() {
		if e, ok := allowedTypes[mt.String()]; ok {
			contentType, ext = mt.String(), e
			break
		}
	}
	if contentType == "" {
		return domain.InspectedFile{}, domain.InvalidInput("inspect file", fmt.Sprintf("unsupported file type %s", detected.String()))
	}

	out := domain.InspectedFile{ContentType: contentType, Extension: ext}
	if contentType == mimePDF {
		pages, err := countPages(data)
		if err != nil {
			return domain.InspectedFile{}, domain.WrapError(domain.ErrInvalidInput, "inspect file", fmt.Errorf("%s: %w", filename, err))
		}
		out.Pages = pages
	}
	return out, nil
}

// countPages parses the document structure. The parser panics on some
// corrupt inputs, so those are reported as unreadable.
func countPages(data []byte) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("unreadable pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("unreadable pdf: %w", err)
	}
	pages = reader.NumPage()
	if pages < 1 {
		return 0, fmt.Errorf("pdf has no pages")
	}
	return pages, nil
}
