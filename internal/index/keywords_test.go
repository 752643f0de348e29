package index

import (
	"strings"
	"testing"
)

func TestSampleKeywords(t *testing.T) {
	words := sampleKeywords("Markets Rally", "The markets rallied again on Monday, 5 points up. X!")
	if len(words) == 0 {
		t.Fatal("expected keywords")
	}
	joined := " " + strings.Join(words, " ") + " "
	if !strings.Contains(joined, " market ") {
		t.Fatalf("expected stemmed 'market' in %v", words)
	}
	for _, w := range words {
		if len(w) < 2 {
			t.Fatalf("short token %q leaked through", w)
		}
		if !isEnglishLike(w) {
			t.Fatalf("non-english-like token %q", w)
		}
	}
	// Stemming collapses "markets"/"rallied" with "Markets"/"Rally";
	// duplicates must not appear.
	seen := map[string]bool{}
	for _, w := range words {
		if seen[w] {
			t.Fatalf("duplicate keyword %q", w)
		}
		seen[w] = true
	}
}

func TestSampleKeywordsCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 3000; i++ {
		// Distinct words so dedup cannot shrink the pool.
		b.WriteString(word(i))
		b.WriteByte(' ')
	}
	words := sampleKeywords("", b.String())
	if len(words) != maxKeywords {
		t.Fatalf("got %d keywords, want %d", len(words), maxKeywords)
	}
}

// word generates distinct five-letter alphabetic tokens: aaazq, baazq,
// ..., abazq, bbazq, ...
func word(i int) string {
	letters := "abcdefghijklmnopqrstuvwxyz"
	out := []byte{letters[i%26], letters[(i/26)%26], letters[(i/676)%26], 'z', 'q'}
	return string(out)
}
