package ai

import (
	"context"

	"github.com/spigell/resumebek/internal/lang"
)

// Analyzer produces a human-readable review of a resume in the given language.
type Analyzer interface {
	Analyze(ctx context.Context, text string, language lang.Language) (string, error)
}
