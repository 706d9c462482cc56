package adapter

import "context"

// TextGenerator is the provider port for diet generation. Implementations
// send a single prompt and return the raw model output; callers own
// prompt construction, parsing and validation.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}
