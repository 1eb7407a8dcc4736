package driving

import "context"

// ChatService answers natural-language questions grounded in the corpus.
type ChatService interface {
	// Answer retrieves relevant chunks for message, composes a grounded
	// prompt with the session's history, and generates a reply.
	//
	// If onFragment is non-nil the reply is streamed: onFragment is
	// invoked once per fragment in arrival order before Answer returns
	// the full text. The session's history is updated only after
	// generation completes successfully.
	//
	// Fails with domain.ErrEmptyMessage or domain.ErrGenerationFailed;
	// a retrieval miss returns a fixed no-information reply instead of
	// an error.
	Answer(ctx context.Context, message, sessionID string, onFragment func(string)) (string, error)
}
