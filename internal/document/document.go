// Package document extracts plain text from uploaded rubric files.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var (
	ErrEmpty       = errors.New("document is empty")
	ErrUnsupported = errors.New("unsupported document format")
)

var pdfMagic = []byte("%PDF-")

// Extractor is satisfied by TextExtractor; the rubric flow takes the interface.
type Extractor interface {
	ExtractText(data []byte, filename string) (string, error)
}

type TextExtractor struct{}

func New() *TextExtractor { return &TextExtractor{} }

// ExtractText returns the text of a PDF, or the content itself for UTF-8 text
// files (txt, md, csv). filename is only a hint.
func (TextExtractor) ExtractText(data []byte, filename string) (string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", ErrEmpty
	}
	if bytes.HasPrefix(data, pdfMagic) || strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return pdfText(data)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filename)
	}
	return strings.TrimSpace(string(data)), nil
}

// pdfText converts panics from the pdf reader on malformed input into errors.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("read pdf: malformed document: %v", rec)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	text = strings.TrimSpace(string(b))
	if text == "" {
		return "", fmt.Errorf("%w: pdf has no extractable text", ErrEmpty)
	}
	return text, nil
}
