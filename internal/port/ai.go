package port

import "context"

// AIProvider abstracts the text-generation backend used for classification.
// Implementations can target Ollama, OpenAI, or any compatible API.
// The contract is deliberately narrow: one prompt in, one raw string out —
// all structure is recovered by the classification parser.
type AIProvider interface {
	// ModelName returns the identifier of the model being used.
	ModelName() string

	// Generate sends a prompt and returns the complete model output.
	// Calls run with temperature 0 so batches are deterministic.
	Generate(ctx context.Context, prompt string) (string, error)
}
