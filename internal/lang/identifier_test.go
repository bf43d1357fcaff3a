package lang

import (
	"math"
	"strings"
	"testing"
)

func TestIdentifyEmpty(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   \n\t "} {
		d := NewIdentifier().Identify(in)
		if d.Language != Russian || d.Confidence != 0 {
			t.Fatalf("expected (ru, 0) for %q, got (%s, %v)", in, d.Language, d.Confidence)
		}
		if d.Script {
			t.Fatalf("script fallback must not decide empty text")
		}
	}
}

func TestIdentifyEnglishByFrequency(t *testing.T) {
	t.Parallel()

	text := strings.TrimSpace(strings.Repeat("university education experience skills ", 20))
	d := NewIdentifier().Identify(text)

	if d.Language != English {
		t.Fatalf("expected en, got %s", d.Language)
	}
	if d.Script {
		t.Fatalf("expected frequency decision, got script fallback")
	}
	if d.Confidence < 5 {
		t.Fatalf("expected confidence above fallback threshold, got %v", d.Confidence)
	}

	// Per repetition: four long indicators, five "i" and one "at" at half weight
	// over four words.
	wantDensity := (4 + 6*0.5) / 4.0 * 100
	if math.Abs(d.Scores[English]-wantDensity) > 1e-9 {
		t.Fatalf("expected density %v, got %v", wantDensity, d.Scores[English])
	}
	if d.Confidence != 100 {
		t.Fatalf("expected confidence capped at 100, got %v", d.Confidence)
	}
}

func TestIdentifyScriptFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect Language
	}{
		{name: "kazakh letters", input: "қғұ ұғқ ғұқ", expect: Kazakh},
		{name: "plain cyrillic", input: "жжж ббб ццц шшш", expect: Russian},
		{name: "latin", input: "xyz qwv bcd", expect: English},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := NewIdentifier().Identify(tt.input)
			if d.Language != tt.expect {
				t.Fatalf("expected %s, got %s", tt.expect, d.Language)
			}
			if d.Confidence != 60 {
				t.Fatalf("expected confidence 60, got %v", d.Confidence)
			}
			if !d.Script {
				t.Fatalf("expected script fallback")
			}
		})
	}
}

func TestIdentifyInconclusiveScriptKeepsFrequencyResult(t *testing.T) {
	t.Parallel()

	// Equal amounts of both scripts and no indicators.
	d := NewIdentifier().Identify("ццц xyz")
	if d.Language != Russian || d.Confidence != 0 || d.Script {
		t.Fatalf("expected frequency result (ru, 0), got %+v", d)
	}
}

func TestIdentifyRussianAndKazakh(t *testing.T) {
	t.Parallel()

	ru := "Опыт работы в городе Алматы. Образование: университет, 2015 год. Работа с клиентами."
	if d := NewIdentifier().Identify(ru); d.Language != Russian {
		t.Fatalf("expected ru, got %+v", d)
	}

	kk := "Жұмыс тәжірибесі: Алматы қаласы бойынша маман. Білім туралы мәлімет және жетістіктер."
	if d := NewIdentifier().Identify(kk); d.Language != Kazakh {
		t.Fatalf("expected kk, got %+v", d)
	}
}

func TestIdentifyIsDeterministic(t *testing.T) {
	t.Parallel()

	id := NewIdentifier()
	text := "Experience at Acme since March and education at the university"
	a, b := id.Identify(text), id.Identify(text)
	if a.Language != b.Language || a.Confidence != b.Confidence {
		t.Fatalf("expected identical detections, got %+v and %+v", a, b)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	for _, l := range All() {
		got, err := Parse(" " + strings.ToUpper(string(l)) + " ")
		if err != nil || got != l {
			t.Fatalf("parse %s: got %s, %v", l, got, err)
		}
	}

	got, err := Parse("de")
	if err == nil {
		t.Fatalf("expected error for unsupported language")
	}
	if got != Default {
		t.Fatalf("expected default on error, got %s", got)
	}

	if Language("fr").OrDefault() != Russian {
		t.Fatalf("expected unsupported language to fall back to ru")
	}
}

func TestTextCoversEveryLanguage(t *testing.T) {
	t.Parallel()

	keys := []Key{FileReadError, AnalysisError, NetworkError, TimeoutError, APIError, FileTooLarge, Processing, PhotoCTA, PhotoButton, FollowUp}
	for _, l := range All() {
		for _, k := range keys {
			if Text(k, l) == "" {
				t.Fatalf("missing text %d for %s", k, l)
			}
		}
	}

	if Text(Processing, Language("xx")) != Text(Processing, Russian) {
		t.Fatalf("expected russian fallback for unknown language")
	}
	if TimeoutError.String() != "timeout_error" || Key(999).String() != "unknown" {
		t.Fatalf("unexpected key names")
	}
	if Text(Key(999), English) != "" {
		t.Fatalf("expected empty text for unknown key")
	}
}
