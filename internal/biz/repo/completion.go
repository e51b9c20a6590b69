package repo

import "context"

// CompletionRepo is the language-model text-completion interface.
// The far side enforces no schema; callers must defensively parse the reply.
// A nil CompletionRepo means no language model is configured.
type CompletionRepo interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
