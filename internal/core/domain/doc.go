// Package domain defines the core business entities for Lakbay.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A titled unit of corpus text plus its embedding vector
//   - SearchResult: A chunk ranked by similarity to a query
//   - ConversationTurn: One user or assistant message in a session
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
