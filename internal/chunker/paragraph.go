package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/ltmc/internal/core/ports/driven"
)

// Ensure Paragraph implements the interface.
var _ driven.Chunker = (*Paragraph)(nil)

// paragraphBreak matches a blank line, allowing trailing spaces or tabs.
var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)

// paragraphSeparator joins paragraphs packed into the same chunk.
const paragraphSeparator = "\n\n"

// Paragraph packs consecutive paragraphs into chunks of at most chunkSize
// characters. A paragraph longer than chunkSize is cut into fixed windows.
type Paragraph struct {
	chunkSize int
}

// NewParagraph creates a paragraph chunker with the given options.
func NewParagraph(opts ...Option) *Paragraph {
	c := newConfig(0, opts)
	return &Paragraph{chunkSize: c.chunkSize}
}

// Name returns the strategy name.
func (p *Paragraph) Name() string {
	return "paragraph"
}

// Split returns the packed chunks in document order.
func (p *Paragraph) Split(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, para := range paragraphBreak.Split(content, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		paraLen := utf8.RuneCountInString(para)
		if paraLen > p.chunkSize {
			flush()
			chunks = append(chunks, windows([]rune(para), p.chunkSize, 0)...)
			continue
		}

		if currentLen > 0 && currentLen+len(paragraphSeparator)+paraLen > p.chunkSize {
			flush()
		}
		if currentLen > 0 {
			current.WriteString(paragraphSeparator)
			currentLen += len(paragraphSeparator)
		}
		current.WriteString(para)
		currentLen += paraLen
	}
	flush()

	return chunks
}
