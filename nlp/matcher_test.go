package nlp

import "testing"

func TestDisabledNeverMatches(t *testing.T) {
	m := Disabled{}
	if m.Contains("zmywarka w kuchni", []string{"zmywarka"}) {
		t.Error("Disabled matcher reported a match")
	}
}

func TestFoldingMatcherContains(t *testing.T) {
	m := FoldingMatcher{}

	tests := []struct {
		name     string
		text     string
		keywords []string
		want     bool
	}{
		{
			"base form",
			"W kuchni znajduje się zmywarka.",
			[]string{"zmywarka"},
			true,
		},
		{
			"instrumental case",
			"Kuchnia wyposażona jest w piekarnik wraz ze zmywarką.",
			[]string{"zmywarka"},
			true,
		},
		{
			"capitalized plural",
			"Zmywarki i pralki w cenie.",
			[]string{"zmywarka"},
			true,
		},
		{
			"second keyword matches",
			"Mieszkanie z klimatyzatorem.",
			[]string{"klimatyzacja", "klimatyzator"},
			true,
		},
		{
			"absent keyword",
			"Jasne mieszkanie z balkonem.",
			[]string{"zmywarka"},
			false,
		},
		{
			"short keyword does not swallow longer words",
			"Pokój z oknem.",
			[]string{"okap"},
			false,
		},
		{
			"empty text",
			"",
			[]string{"zmywarka"},
			false,
		},
		{
			"no keywords",
			"zmywarka",
			nil,
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Contains(tt.text, tt.keywords); got != tt.want {
				t.Errorf("Contains(%q, %v) = %v; want %v", tt.text, tt.keywords, got, tt.want)
			}
		})
	}
}

func TestFoldPolish(t *testing.T) {
	if got := foldPolish("Zmywarką"); got != "zmywarka" {
		t.Errorf("foldPolish = %q; want zmywarka", got)
	}
}
