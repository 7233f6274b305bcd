// Package chunker splits resource content into chunk texts.
//
// Two strategies are available. Paragraph packs blank-line separated
// paragraphs into chunks up to a size limit and is the default. Fixed cuts
// fixed-size character windows with optional overlap.
package chunker

import (
	"fmt"

	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters for fixed windows.
const DefaultChunkOverlap = 200

// FromSettings builds the chunker selected by the settings.
func FromSettings(s domain.ChunkingSettings) (driven.Chunker, error) {
	switch s.Strategy {
	case domain.ChunkingParagraph, "":
		return NewParagraph(WithChunkSize(s.Size)), nil
	case domain.ChunkingFixed:
		return NewFixed(WithChunkSize(s.Size), WithOverlap(s.Overlap)), nil
	default:
		return nil, fmt.Errorf("%w: unknown chunking strategy %q", domain.ErrValidation, s.Strategy)
	}
}

// Option configures a chunker.
type Option func(*config)

type config struct {
	chunkSize int
	overlap   int
}

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *config) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
// Only the fixed strategy uses it.
func WithOverlap(overlap int) Option {
	return func(c *config) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

func newConfig(defaultOverlap int, opts []Option) config {
	c := config{
		chunkSize: DefaultChunkSize,
		overlap:   defaultOverlap,
	}
	for _, opt := range opts {
		opt(&c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}
	return c
}

// windows cuts runes into windows of size characters advancing by size-overlap.
func windows(runes []rune, size, overlap int) []string {
	if len(runes) == 0 {
		return nil
	}

	step := size - overlap
	out := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}
