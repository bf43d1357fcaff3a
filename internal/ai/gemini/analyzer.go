package gemini

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spigell/resumebek/internal/lang"
	"github.com/spigell/resumebek/internal/logger"
	"github.com/spigell/resumebek/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultMaxLogLength  = 200
	defaultMaxInputChars = 3000
	resumePlaceholder    = "{{RESUME_TEXT}}"
	systemInstruction    = "You review resumes. Answer only with the review, formatted in Markdown."
)

//go:embed prompts/*.md
var promptFS embed.FS

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// AnalyzerOptions tunes the analyzer. Zero values select the defaults.
type AnalyzerOptions struct {
	MaxInputChars     int
	RequestsPerMinute int
	MaxLogLength      int
}

// Analyzer reviews resumes with Gemini using a prompt per language.
type Analyzer struct {
	generator contentGenerator
	limiter   *rate.Limiter
	logger    *zap.Logger
	maxInput  int
	maxLogLen int
	prompts   map[lang.Language]string
}

// NewAnalyzer creates an analyzer. Provider and model fields are attached to log here.
func NewAnalyzer(generator contentGenerator, log *zap.Logger, opts AnalyzerOptions) (*Analyzer, error) {
	if generator == nil {
		return nil, errors.New("gemini generator is required")
	}

	prompts := make(map[lang.Language]string, len(lang.All()))
	for _, l := range lang.All() {
		data, err := promptFS.ReadFile("prompts/" + string(l) + ".md")
		if err != nil {
			return nil, fmt.Errorf("load %s prompt: %w", l, err)
		}
		prompts[l] = string(data)
	}

	if opts.MaxInputChars <= 0 {
		opts.MaxInputChars = defaultMaxInputChars
	}
	if opts.MaxLogLength <= 0 {
		opts.MaxLogLength = defaultMaxLogLength
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60), 1)
	}

	return &Analyzer{
		generator: generator,
		limiter:   limiter,
		logger:    logger.WithCommonFields(log, "gemini", generator.Model()),
		maxInput:  opts.MaxInputChars,
		maxLogLen: opts.MaxLogLength,
		prompts:   prompts,
	}, nil
}

// Analyze sends the resume, cut to the configured number of characters, to Gemini
// and returns the review text.
func (a *Analyzer) Analyze(ctx context.Context, text string, language lang.Language) (string, error) {
	language = language.OrDefault()
	prompt := a.buildPrompt(text, language)

	log := a.logger.With(zap.String(logger.FieldLanguage, string(language)))

	if err := a.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for rate limiter: %w", err)
	}

	log.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return "", err
	}

	log.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	return strings.TrimSpace(raw), nil
}

func (a *Analyzer) buildPrompt(text string, language lang.Language) string {
	template := a.prompts[language]
	if strings.TrimSpace(template) == "" {
		template = "Resume:\n" + resumePlaceholder
	}
	return strings.ReplaceAll(template, resumePlaceholder, utils.TruncateRunes(text, a.maxInput))
}
