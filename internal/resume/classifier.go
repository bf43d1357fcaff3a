package resume

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spigell/resumebek/internal/utils"
)

const (
	// DefaultThreshold is the minimal total score for a document to be treated as a resume.
	DefaultThreshold = 40.0

	keywordWeight   = 0.4
	patternWeight   = 0.3
	structureWeight = 0.3

	// A single repeated signal stops contributing after this many matches.
	patternMatchCap = 3

	minStructureLength = 200
	minStructureLines  = 5
)

// Score is the breakdown of a single classification. Every component is in [0, 100].
type Score struct {
	Keyword   float64 `json:"keyword_score" yaml:"keyword_score"`
	Pattern   float64 `json:"pattern_score" yaml:"pattern_score"`
	Structure float64 `json:"structure_score" yaml:"structure_score"`
	Total     float64 `json:"total_score" yaml:"total_score"`
}

type signal struct {
	name   string
	re     *regexp.Regexp
	weight float64
	// leading and trailing require a word boundary on the corresponding edge of a match.
	leading  bool
	trailing bool
}

func (s signal) count(text string) int {
	n := 0
	for _, loc := range s.re.FindAllStringIndex(text, -1) {
		if s.leading && !utils.WordBoundaryAt(text, loc[0]) {
			continue
		}
		if s.trailing && !utils.WordBoundaryAt(text, loc[1]) {
			continue
		}
		n++
	}
	return n
}

const word = `\p{L}\p{N}_`

var signals = []signal{
	{
		name:    "phone",
		re:      regexp.MustCompile(`(?im)(?:phone|телефон|байланыс)[\s:]*[+\d\s\-()]+`),
		weight:  2,
		leading: true,
	},
	{
		name:    "email",
		re:      regexp.MustCompile(`(?im)[` + word + `][` + word + `.\-]*@[` + word + `.\-]+\.[` + word + `]+`),
		weight:  2,
		leading: true,
	},
	{
		name:     "date_range",
		re:       regexp.MustCompile(`(?im)\d{4}\s*[-–]\s*(?:\d{4}|present|настоящее время|қазір)`),
		weight:   1.5,
		leading:  true,
		trailing: true,
	},
	{
		name:    "profile_link",
		re:      regexp.MustCompile(`(?im)(?:github|linkedin|portfolio)\s*[:\s]*(?:https?://)?[` + word + `./\-]+`),
		weight:  1,
		leading: true,
	},
	{
		name:   "bullet",
		re:     regexp.MustCompile(`(?im)(?:^|\n)\s*[•·▪▫◦‣⁃]\s*`),
		weight: 1,
	},
	{
		name:   "numbered",
		re:     regexp.MustCompile(`(?im)(?:^|\n)\s*\d+\.\s*`),
		weight: 1,
	},
}

// Classifier decides whether a document is a resume. It keeps no per-call
// state and is safe for concurrent use.
type Classifier struct {
	threshold   float64
	keywords    []string
	signals     []signal
	patternBase float64
}

// NewClassifier creates a classifier with the given threshold. A non-positive
// threshold falls back to DefaultThreshold.
func NewClassifier(threshold float64) *Classifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	base := 0.0
	for _, s := range signals {
		base += s.weight * patternMatchCap
	}

	return &Classifier{
		threshold:   threshold,
		keywords:    allKeywords(),
		signals:     signals,
		patternBase: base,
	}
}

// Threshold returns the configured decision threshold.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Classify scores the text. It never fails; empty text yields a zero score.
func (c *Classifier) Classify(text string) Score {
	lower := strings.ToLower(text)

	s := Score{
		Keyword:   c.keywordScore(lower),
		Pattern:   c.patternScore(lower),
		Structure: structureScore(text, lower),
	}
	s.Total = s.Keyword*keywordWeight + s.Pattern*patternWeight + s.Structure*structureWeight

	return s
}

// Evaluate scores the text once and reports whether the total reaches the
// configured threshold.
func (c *Classifier) Evaluate(text string) (Score, bool) {
	s := c.Classify(text)
	return s, s.Total >= c.threshold
}

// IsResume reports whether the total score reaches the configured threshold.
func (c *Classifier) IsResume(text string) bool {
	return c.IsResumeWithThreshold(text, c.threshold)
}

// IsResumeWithThreshold is IsResume with an explicit threshold.
func (c *Classifier) IsResumeWithThreshold(text string, threshold float64) bool {
	return c.Classify(text).Total >= threshold
}

// PatternHits returns the raw, uncapped match count of every pattern signal.
func (c *Classifier) PatternHits(text string) map[string]int {
	lower := strings.ToLower(text)
	hits := make(map[string]int, len(c.signals))
	for _, s := range c.signals {
		hits[s.name] = s.count(lower)
	}
	return hits
}

// keywordScore counts indicators contained anywhere in the text. Containment
// is plain substring search, so "cv" also hits inside longer words.
func (c *Classifier) keywordScore(lower string) float64 {
	matched := 0
	for _, k := range c.keywords {
		if strings.Contains(lower, k) {
			matched++
		}
	}

	return float64(matched) / float64(len(c.keywords)) * 100
}

func (c *Classifier) patternScore(lower string) float64 {
	sum := 0.0
	for _, s := range c.signals {
		m := s.count(lower)
		sum += min(float64(m)*s.weight, s.weight*patternMatchCap)
	}

	return sum / c.patternBase * 100
}

func structureScore(text, lower string) float64 {
	indicators := []bool{
		containsAny(lower, educationSection),
		containsAny(lower, experienceSection),
		containsAny(lower, skillsSection),
		utf8.RuneCountInString(text) > minStructureLength,
		strings.Count(text, "\n")+1 > minStructureLines,
	}

	present := 0
	for _, ok := range indicators {
		if ok {
			present++
		}
	}

	return float64(present) / float64(len(indicators)) * 100
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
