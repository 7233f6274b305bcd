// Package extract turns file bytes into the plain text that gets stored.
//
// HTML, DOCX and EML files are reduced to their readable text. Every other
// file must already be UTF-8 text and is returned unchanged.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/ltmc/internal/core/domain"
)

// Func extracts text from raw file content.
type Func func(data []byte) (string, error)

var byExtension = map[string]Func{
	".html":  HTML,
	".htm":   HTML,
	".xhtml": HTML,
	".docx":  DOCX,
	".eml":   EML,
}

// Text extracts the text of a file named name.
// Returns ErrValidation if the content is not text and no extractor
// recognises the extension, or if the extracted text is blank.
func Text(name string, data []byte) (string, error) {
	fn, ok := byExtension[strings.ToLower(filepath.Ext(name))]
	if !ok {
		fn = plain
	}

	text, err := fn(data)
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", filepath.Base(name), err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("extracting %s: %w: no text content", filepath.Base(name), domain.ErrValidation)
	}
	return text, nil
}

// Supported reports whether name has a dedicated extractor.
func Supported(name string) bool {
	_, ok := byExtension[strings.ToLower(filepath.Ext(name))]
	return ok
}

func plain(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: not UTF-8 text", domain.ErrValidation)
	}
	return string(data), nil
}
