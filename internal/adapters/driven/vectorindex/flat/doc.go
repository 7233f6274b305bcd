// Package flat provides an exact nearest-neighbour vector index persisted in SQLite.
// It implements the driven.VectorIndex interface.
//
// Vectors are L2-normalised on insert so that similarity is a dot product.
// Every mutation is committed to disk before the in-memory view changes, and
// the next vector id is persisted alongside the data so ids are never reused
// across restarts.
package flat
