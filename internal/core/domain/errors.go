package domain

import "errors"

// Domain errors represent business logic failures.
// Callers match them with errors.Is; adapters wrap them with context.
var (
	// ErrValidation indicates malformed or missing required input
	// (empty content, unknown type, unknown message id).
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConsistency indicates an internal invariant was violated,
	// such as a chunk whose vector id is absent from the index.
	ErrConsistency = errors.New("consistency violation")

	// ErrStorageUnavailable indicates the durable store could not be reached.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)

// Error kinds returned by ErrorKind.
const (
	KindValidation  = "validation"
	KindNotFound    = "not_found"
	KindConsistency = "consistency"
	KindStorage     = "storage_unavailable"
	KindInternal    = "internal"
)

// ErrorKind classifies err into one of the Kind* discriminators.
// Returns an empty string for a nil error.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConsistency):
		return KindConsistency
	case errors.Is(err, ErrStorageUnavailable):
		return KindStorage
	default:
		return KindInternal
	}
}
