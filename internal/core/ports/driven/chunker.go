package driven

// Chunker splits resource content into chunk texts.
type Chunker interface {
	// Name returns the chunking strategy name for logging.
	Name() string

	// Split returns the chunk texts in order. Empty content yields no chunks.
	Split(content string) []string
}
