package lang

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// Below this density the script fallback is consulted.
	minConfidence = 5.0
	// Confidence reported when the decision comes from the script fallback.
	scriptConfidence = 60.0
	maxConfidence    = 100.0

	// Indicators up to this many characters count half.
	shortIndicatorLen    = 3
	shortIndicatorWeight = 0.5
	longIndicatorWeight  = 1.0
)

// kazakhLetters exist in the Kazakh alphabet but not in the Russian one.
var kazakhLetters = []string{"қ", "ғ", "ұ"}

type indicatorTable map[Language][]string

var indicators = indicatorTable{
	Kazakh: {
		"қазақстан", "университеті", "білім", "жұмыс", "тәжірибе",
		"мен", "және", "үшін", "бойынша", "туралы", "қаласы",
		"облысы", "ақпан", "наурыз", "сәуір", "мамыр", "маусым",
		"шілде", "тамыз", "қыркүйек", "қазан", "қараша", "желтоқсан",
	},
	Russian: {
		"россия", "казахстан", "университет", "образование", "работа",
		"опыт", "я", "и", "для", "по", "о", "город", "область",
		"январь", "февраль", "март", "апрель", "май", "июнь",
		"июль", "август", "сентябрь", "октябрь", "ноябрь", "декабрь",
	},
	English: {
		"university", "education", "experience", "work", "skills",
		"i", "and", "for", "the", "of", "to", "in", "at",
		"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december",
	},
}

// Detection is the result of language identification.
type Detection struct {
	Language Language `json:"language" yaml:"language"`
	// Confidence is the density of the chosen language capped at 100, or 60
	// when the script fallback decided.
	Confidence float64 `json:"confidence" yaml:"confidence"`
	// Scores holds the indicator density of every language, per 100 words.
	Scores map[Language]float64 `json:"scores" yaml:"scores"`
	// Script is true when the decision came from the Cyrillic/Latin fallback.
	Script bool `json:"script_fallback" yaml:"script_fallback"`
}

// Identifier detects the language of a document. It is safe for concurrent use.
type Identifier struct {
	table indicatorTable
}

// NewIdentifier creates an identifier over the built-in indicator tables.
func NewIdentifier() *Identifier {
	return &Identifier{table: indicators}
}

// Identify returns the most likely language of text. Empty text resolves to
// Default with zero confidence.
func (i *Identifier) Identify(text string) Detection {
	lower := strings.ToLower(text)
	words := len(strings.Fields(text))

	scores := make(map[Language]float64, len(i.table))
	for _, l := range All() {
		scores[l] = 0
		if words == 0 {
			continue
		}
		scores[l] = i.raw(l, lower) / float64(words) * 100
	}

	// Russian goes first so that ties, including all-zero scores, keep the default.
	best := Default
	for _, l := range []Language{Russian, Kazakh, English} {
		if scores[l] > scores[best] {
			best = l
		}
	}

	d := Detection{Language: best, Confidence: scores[best], Scores: scores}
	if d.Confidence < minConfidence {
		if l, ok := byScript(text, lower); ok {
			d.Language = l
			d.Confidence = scriptConfidence
			d.Script = true
		}
	}

	d.Confidence = min(d.Confidence, maxConfidence)

	return d
}

func (i *Identifier) raw(l Language, lower string) float64 {
	score := 0.0
	for _, ind := range i.table[l] {
		n := strings.Count(lower, ind)
		if n == 0 {
			continue
		}
		weight := longIndicatorWeight
		if utf8.RuneCountInString(ind) <= shortIndicatorLen {
			weight = shortIndicatorWeight
		}
		score += float64(n) * weight
	}
	return score
}

// byScript decides by alphabet when one script clearly dominates the text before case folding.
func byScript(text, lower string) (Language, bool) {
	cyrillic, latin := 0, 0
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		case unicode.IsLetter(r) && unicode.Is(unicode.Latin, r):
			latin++
		}
	}

	switch {
	case cyrillic > latin*2:
		for _, letter := range kazakhLetters {
			if strings.Contains(lower, letter) {
				return Kazakh, true
			}
		}
		return Russian, true
	case latin > cyrillic*2:
		return English, true
	default:
		return "", false
	}
}
