package services

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"How to Train Your Dragon", "how-to-train-your-dragon"},
		{"  spaces   everywhere  ", "spaces-everywhere"},
		{"Punctuation?! Removed...", "punctuation-removed"},
		{"Already-Hyphenated Title", "already-hyphenated-title"},
		{"123 Numbers", "123-numbers"},
		{"???", "article"},
	}
	for _, tc := range cases {
		if got := slugify(tc.title); got != tc.want {
			t.Errorf("slugify(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestSlugSuffixVaries(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		s := slugSuffix()
		if len(s) != 6 {
			t.Fatalf("expected 6 hex chars, got %q", s)
		}
		seen[s] = true
	}
	if len(seen) < 2 {
		t.Fatal("suffixes should vary")
	}
}
