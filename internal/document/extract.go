package document

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"scamshield/internal/domain"
)

const (
	ExtPDF = ".pdf"
	ExtTXT = ".txt"
)

// Supported reports whether filename has an extension Extract can parse.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ExtPDF, ExtTXT:
		return true
	}
	return false
}

// Extract returns the text of an uploaded .pdf or .txt file. Content that
// cannot be turned into text is reported as domain.ErrEmptyInput.
func Extract(filename string, r io.Reader) (string, error) {
	if !Supported(filename) {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, filepath.Ext(filename))
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ExtPDF:
		return extractPDF(data)
	default:
		return extractTXT(data)
	}
}

func extractTXT(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text is not valid utf-8", domain.ErrEmptyInput)
	}
	return string(data), nil
}

func extractPDF(data []byte) (text string, err error) {
	if mt := mimetype.Detect(data); !mt.Is("application/pdf") {
		return "", fmt.Errorf("%w: content is %s, not a pdf", domain.ErrEmptyInput, mt.String())
	}

	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: malformed pdf: %v", domain.ErrEmptyInput, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrEmptyInput, err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil || content == "" {
			continue
		}
		pages = append(pages, content)
	}

	return strings.Join(pages, " "), nil
}
