package driven

// Well-known prompt names.
const (
	// PromptPersona is the persona/style preamble of the grounding prompt.
	PromptPersona = "persona"
)

// PromptStore loads customisable prompt text by name.
// Implementations typically read from a user-editable file; services fall
// back to built-in defaults when a prompt is unavailable.
type PromptStore interface {
	// Load returns the prompt text for the given name.
	Load(name string) (string, error)
}
