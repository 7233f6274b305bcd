package chunker

import (
	"strings"

	"github.com/custodia-labs/ltmc/internal/core/ports/driven"
)

// Ensure Fixed implements the interface.
var _ driven.Chunker = (*Fixed)(nil)

// Fixed splits content into fixed-size character windows.
type Fixed struct {
	chunkSize int
	overlap   int
}

// NewFixed creates a fixed-window chunker with the given options.
func NewFixed(opts ...Option) *Fixed {
	c := newConfig(DefaultChunkOverlap, opts)
	return &Fixed{
		chunkSize: c.chunkSize,
		overlap:   c.overlap,
	}
}

// Name returns the strategy name.
func (f *Fixed) Name() string {
	return "fixed"
}

// Split cuts content into windows of chunkSize characters, each starting
// chunkSize-overlap characters after the previous one. Windows are cut on
// rune boundaries. Whitespace-only content produces no chunks.
func (f *Fixed) Split(content string) []string {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	return windows([]rune(content), f.chunkSize, f.overlap)
}
