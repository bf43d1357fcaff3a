// Package contact pulls contact details out of resume text.
package contact

import (
	"regexp"

	"github.com/spigell/resumebek/internal/utils"
)

// Info holds the first match of every contact field. Empty means not found.
type Info struct {
	Email    string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone    string `json:"phone,omitempty" yaml:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty" yaml:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty" yaml:"github,omitempty"`
}

// IsEmpty reports whether no field was found.
func (i Info) IsEmpty() bool {
	return i == Info{}
}

const word = `\p{L}\p{N}_`

var (
	emailRe = regexp.MustCompile(`[` + word + `][` + word + `.\-]*@[` + word + `.\-]+\.[` + word + `]+`)

	// Tried in order, the first format that matches wins.
	phoneRes = []*regexp.Regexp{
		regexp.MustCompile(`\+\d{1,3}\s*\d{3}\s*\d{3}\s*\d{2}\s*\d{2}`),
		regexp.MustCompile(`\+\d{1,3}\s*\(\d{3}\)\s*\d{3}-\d{2}-\d{2}`),
		regexp.MustCompile(`\d{11}`),
	}

	linkedInRe = regexp.MustCompile(`(?i)linkedin\.com/in/[` + word + `\-]+`)
	gitHubRe   = regexp.MustCompile(`(?i)github\.com/[` + word + `\-]+`)
)

// Extractor extracts contact details. It is stateless and safe for concurrent use.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the contact details found in text. Fields are extracted independently.
func (e *Extractor) Extract(text string) Info {
	info := Info{
		Email:    firstEmail(text),
		LinkedIn: linkedInRe.FindString(text),
		GitHub:   gitHubRe.FindString(text),
	}

	for _, re := range phoneRes {
		if m := re.FindString(text); m != "" {
			info.Phone = m
			break
		}
	}

	return info
}

func firstEmail(text string) string {
	for _, loc := range emailRe.FindAllStringIndex(text, -1) {
		if utils.WordBoundaryAt(text, loc[0]) {
			return text[loc[0]:loc[1]]
		}
	}
	return ""
}
