// Package extraction implements the certificate processing pipeline stages
// that run before registry verification: text extraction from PDF bytes,
// pattern-based field parsing, required-field validation, and content
// digest computation.
package extraction

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText extracts plain text from PDF bytes, concatenating per-page
// segments in document order. Pages that yield no text contribute an empty
// segment rather than failing the extraction; the result may therefore be
// empty overall. Returns ErrExtraction when the container itself cannot be
// opened or parsed.
func ExtractText(data []byte) (text string, err error) {
	// the pdf parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		segment, err := page.GetPlainText(nil)
		if err != nil {
			// image-only or damaged page: empty segment, keep going
			continue
		}
		b.WriteString(segment)
	}

	return b.String(), nil
}

// HasText reports whether extracted text contains anything beyond whitespace.
func HasText(text string) bool {
	return strings.TrimSpace(text) != ""
}
