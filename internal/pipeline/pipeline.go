// Package pipeline runs an uploaded document through detection, analysis and
// delivery.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resumebek/internal/ai"
	"github.com/spigell/resumebek/internal/contact"
	"github.com/spigell/resumebek/internal/followup"
	"github.com/spigell/resumebek/internal/lang"
	"github.com/spigell/resumebek/internal/logger"
	"github.com/spigell/resumebek/internal/metrics"
	"github.com/spigell/resumebek/internal/notify"
	"github.com/spigell/resumebek/internal/resume"
)

const (
	DefaultMaxFileSize     int64 = 10 * 1024 * 1024
	DefaultMinTextLength         = 50
	DefaultAnalysisTimeout       = 60 * time.Second
)

var (
	ErrFileTooLarge  = errors.New("file is too large")
	ErrTextTooShort  = errors.New("document text is too short")
	ErrEmptyAnalysis = errors.New("analysis provider returned no text")

	errNoNotifier   = errors.New("notifier is required")
	errNoAnalyzer   = errors.New("analyzer is required")
	errNoClassifier = errors.New("classifier is required")
	errNoIdentifier = errors.New("identifier is required")
	errNoExtractor  = errors.New("contact extractor is required")
)

// Outcome is how the handling of a document ended.
type Outcome string

const (
	Rejected  Outcome = "rejected"
	NotResume Outcome = "not_resume"
	Failed    Outcome = "failed"
	Analyzed  Outcome = "analyzed"
)

// Classifier scores a document and decides whether it is a resume in one pass.
type Classifier interface {
	Evaluate(text string) (resume.Score, bool)
}

type Identifier interface {
	Identify(text string) lang.Detection
}

type Extractor interface {
	Extract(text string) contact.Info
}

type Scheduler interface {
	Schedule(ctx context.Context, userID, chatID int64, language lang.Language, delay time.Duration) (followup.Job, error)
}

// Deps aggregates the collaborators used by the handler. Metrics and Scheduler
// are optional.
type Deps struct {
	Classifier Classifier
	Identifier Identifier
	Extractor  Extractor
	Analyzer   ai.Analyzer
	Notifier   notify.Notifier
	Metrics    metrics.Sink
	Scheduler  Scheduler
	Logger     *zap.Logger
}

// Options tunes the handler. Zero values select the defaults.
type Options struct {
	MaxFileSize     int64
	MinTextLength   int
	AnalysisTimeout time.Duration
	// FollowUpDelay is passed to the scheduler, zero selects its default.
	FollowUpDelay time.Duration
	CTA           notify.CTA
}

// Upload is a document received from a user.
type Upload struct {
	UserID int64
	ChatID int64
	Size   int64
	Text   string
	// Force analyzes the document even when it does not look like a resume.
	Force bool
}

// Result describes what happened to an upload.
type Result struct {
	Outcome   Outcome         `json:"outcome" yaml:"outcome"`
	Score     resume.Score    `json:"score" yaml:"score"`
	Detection *lang.Detection `json:"detection,omitempty" yaml:"detection,omitempty"`
	Contacts  contact.Info    `json:"contacts" yaml:"contacts"`
	Analysis  string          `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	FollowUp  *followup.Job   `json:"followup,omitempty" yaml:"followup,omitempty"`
}

// Handler processes uploads.
type Handler struct {
	deps Deps
	opts Options
	log  *zap.Logger
}

func NewHandler(deps Deps, opts Options) (*Handler, error) {
	switch {
	case deps.Classifier == nil:
		return nil, errNoClassifier
	case deps.Identifier == nil:
		return nil, errNoIdentifier
	case deps.Extractor == nil:
		return nil, errNoExtractor
	case deps.Analyzer == nil:
		return nil, errNoAnalyzer
	case deps.Notifier == nil:
		return nil, errNoNotifier
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}

	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.MinTextLength <= 0 {
		opts.MinTextLength = DefaultMinTextLength
	}
	if opts.AnalysisTimeout <= 0 {
		opts.AnalysisTimeout = DefaultAnalysisTimeout
	}

	return &Handler{deps: deps, opts: opts, log: logger.WithFields(deps.Logger)}, nil
}

// Handle runs the upload through the pipeline. Rejections return ErrFileTooLarge
// or ErrTextTooShort, a failed analysis returns the provider error. The result
// is never nil.
func (h *Handler) Handle(ctx context.Context, up Upload) (*Result, error) {
	log := h.log.With(logger.UserFields(up.UserID, up.ChatID, "")...)

	if up.Size > h.opts.MaxFileSize {
		log.Info("document rejected", zap.String("reason", "file_too_large"), zap.Int64("size", up.Size))
		h.reply(ctx, log, up.ChatID, lang.FileTooLarge, lang.Default)
		return &Result{Outcome: Rejected}, ErrFileTooLarge
	}

	text := strings.TrimSpace(up.Text)
	if utf8.RuneCountInString(text) < h.opts.MinTextLength {
		log.Info("document rejected", zap.String("reason", "text_too_short"), zap.Int("length", utf8.RuneCountInString(text)))
		h.reply(ctx, log, up.ChatID, lang.FileReadError, lang.Default)
		return &Result{Outcome: Rejected}, ErrTextTooShort
	}

	score, isResume := h.deps.Classifier.Evaluate(up.Text)
	log.Info("classified document",
		zap.Float64("keyword_score", score.Keyword),
		zap.Float64("pattern_score", score.Pattern),
		zap.Float64("structure_score", score.Structure),
		zap.Float64("total_score", score.Total),
		zap.Bool("resume", isResume),
		zap.Bool("forced", up.Force),
	)

	result := &Result{Outcome: NotResume, Score: score}
	if !isResume && !up.Force {
		return result, nil
	}

	detection := h.deps.Identifier.Identify(up.Text)
	result.Detection = &detection
	result.Contacts = h.deps.Extractor.Extract(up.Text)
	language := detection.Language

	log = log.With(zap.String(logger.FieldLanguage, string(language)))
	log.Info("resume detected",
		zap.Float64("confidence", detection.Confidence),
		zap.Bool("script_fallback", detection.Script),
		zap.Bool("has_contacts", !result.Contacts.IsEmpty()),
	)

	ref, err := h.deps.Notifier.Send(ctx, up.ChatID, notify.Message{Text: lang.Text(lang.Processing, language)})
	if err != nil {
		result.Outcome = Failed
		return result, fmt.Errorf("send processing message: %w", err)
	}

	analysis, err := h.analyze(ctx, up.Text, language)
	if err != nil {
		result.Outcome = Failed
		key := errorKey(err)
		log.Error("resume analysis failed", zap.Stringer("message", key), zap.Error(err))
		if editErr := h.deps.Notifier.Edit(ctx, ref, notify.Message{Text: lang.Text(key, language)}); editErr != nil {
			log.Error("failed to report analysis error", zap.Error(editErr))
		}
		return result, fmt.Errorf("analyze resume: %w", err)
	}

	result.Analysis = analysis + "\n\n" + lang.Text(lang.PhotoCTA, language)
	button := notify.PhotoButton(h.opts.CTA, up.UserID, language)
	if err := h.deps.Notifier.Edit(ctx, ref, notify.Message{Text: result.Analysis, Button: &button}); err != nil {
		result.Outcome = Failed
		return result, fmt.Errorf("deliver analysis: %w", err)
	}
	result.Outcome = Analyzed

	event := metrics.Event{Name: metrics.ResumeAnalyzed, UserID: up.UserID, Language: string(language)}
	if err := h.deps.Metrics.Track(ctx, event); err != nil {
		log.Warn("failed to track analysis", zap.Error(err))
	}

	if h.deps.Scheduler != nil {
		job, err := h.deps.Scheduler.Schedule(ctx, up.UserID, up.ChatID, language, h.opts.FollowUpDelay)
		if err != nil {
			log.Error("failed to schedule follow-up", zap.Error(err))
		} else {
			result.FollowUp = &job
		}
	}

	log.Info("resume analyzed", zap.Int("analysis_length", utf8.RuneCountInString(analysis)))
	return result, nil
}

func (h *Handler) analyze(ctx context.Context, text string, language lang.Language) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, h.opts.AnalysisTimeout)
	defer cancel()

	analysis, err := h.deps.Analyzer.Analyze(ctx, text, language)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(analysis) == "" {
		return "", ErrEmptyAnalysis
	}
	return analysis, nil
}

func (h *Handler) reply(ctx context.Context, log *zap.Logger, chatID int64, key lang.Key, language lang.Language) {
	if _, err := h.deps.Notifier.Send(ctx, chatID, notify.Message{Text: lang.Text(key, language)}); err != nil {
		log.Error("failed to send reply", zap.Error(err))
	}
}

// errorKey picks the user-facing message for an analysis failure.
func errorKey(err error) lang.Key {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return lang.TimeoutError
	case errors.As(err, &netErr):
		return lang.NetworkError
	default:
		return lang.APIError
	}
}
