package contact

import "testing"

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect Info
	}{
		{
			name:  "mixed contacts",
			input: "Contact me at jane@example.com or +7 701 234 56 78, github.com/janedoe",
			expect: Info{
				Email:  "jane@example.com",
				Phone:  "+7 701 234 56 78",
				GitHub: "github.com/janedoe",
			},
		},
		{
			name:   "parenthesized phone",
			input:  "Тел: +7 (701) 234-56-78",
			expect: Info{Phone: "+7 (701) 234-56-78"},
		},
		{
			name:   "bare digits",
			input:  "phone 87012345678",
			expect: Info{Phone: "87012345678"},
		},
		{
			name:   "first format wins over later ones",
			input:  "87012345678 then +7 701 234 56 78",
			expect: Info{Phone: "+7 701 234 56 78"},
		},
		{
			name:   "profile links keep their case",
			input:  "LinkedIn.com/in/Jane-Doe and GITHUB.COM/jane_doe",
			expect: Info{LinkedIn: "LinkedIn.com/in/Jane-Doe", GitHub: "GITHUB.COM/jane_doe"},
		},
		{
			name:   "first email only",
			input:  "a@b.kz, c@d.ru",
			expect: Info{Email: "a@b.kz"},
		},
		{
			name:   "nothing",
			input:  "",
			expect: Info{},
		},
	}

	e := NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := e.Extract(tt.input); got != tt.expect {
				t.Fatalf("expected %+v, got %+v", tt.expect, got)
			}
		})
	}
}

func TestInfoIsEmpty(t *testing.T) {
	t.Parallel()

	if !(Info{}).IsEmpty() {
		t.Fatalf("expected empty info")
	}
	if (Info{GitHub: "github.com/x"}).IsEmpty() {
		t.Fatalf("expected non-empty info")
	}
}
