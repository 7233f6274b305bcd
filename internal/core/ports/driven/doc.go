// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ResourceStore: Resource and chunk persistence (SQLite)
//   - VectorIndex: Vector storage and nearest-neighbour search
//   - EmbeddingService: Generates vector embeddings from text
//   - Chunker: Splits resource content into chunks
//   - ChatLog: Conversation message persistence, the source of valid message ids
//   - LinkStore: Context link persistence
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
