// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - IndexStore: Persistence of the embedding index artifact
//   - VectorIndex: Similarity search over loaded chunk vectors
//   - EmbeddingService: Generates vector embeddings
//   - GenerationService: Produces grounded answers, optionally streamed
//   - SessionStore: Bounded per-session conversation history
//
// # Optional Interfaces
//
// These can be absent - the application degrades gracefully:
//
//   - ResponseCache: Memoizes search results. Disabled ⇒ every get misses.
//     Callers must never depend on the cache for correctness, only latency.
//   - PromptStore: Overrides the built-in persona prompt.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or corpus package
package driven
