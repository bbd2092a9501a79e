package fileinspect

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

// minimalPDF renders a valid one-page document with a correct xref table.
func minimalPDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func TestInspectAcceptsPDF(t *testing.T) {
	got, err := New().Inspect("lohn.pdf", minimalPDF())
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if got.ContentType != "application/pdf" || got.Extension != ".pdf" {
		t.Fatalf("unexpected result %+v", got)
	}
	if got.Pages != 1 {
		t.Fatalf("expected 1 page, got %d", got.Pages)
	}
}

func TestInspectAcceptsImagesRegardlessOfName(t *testing.T) {
	got, err := New().Inspect("scan.pdf", pngHeader)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if got.ContentType != "image/png" || got.Extension != ".png" {
		t.Fatalf("unexpected result %+v", got)
	}

	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 'J', 'F', 'I', 'F', 0}
	got, err = New().Inspect("photo", jpeg)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if got.Extension != ".jpg" {
		t.Fatalf("expected .jpg, got %q", got.Extension)
	}
}

func TestInspectRejects(t *testing.T) {
	cases := map[string][]byte{
		"empty":       nil,
		"text":        []byte("hello world"),
		"corrupt pdf": []byte("%PDF-1.4\nthis is not a pdf body"),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New().Inspect(name, data)
			if !domain.IsKind(err, domain.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}
}
