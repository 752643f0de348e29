package index

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
)

// maxKeywords caps the sample stored per document for display.
const maxKeywords = 150

// sampleKeywords extracts a display sample from the page text:
// lowercase alphabetic tokens of at least two characters, stemmed,
// de-duplicated in order of first appearance, then evenly sampled
// down to maxKeywords.
func sampleKeywords(title, body string) []string {
	seen := make(map[string]struct{})
	var words []string

	collect := func(text string) {
		for _, token := range strings.FieldsFunc(text, func(r rune) bool {
			return !unicode.IsLetter(r)
		}) {
			token = strings.ToLower(token)
			if len(token) < 2 || !isEnglishLike(token) {
				continue
			}
			stemmed, err := snowball.Stem(token, "english", true)
			if err != nil || len(stemmed) < 2 {
				continue
			}
			if _, dup := seen[stemmed]; dup {
				continue
			}
			seen[stemmed] = struct{}{}
			words = append(words, stemmed)
		}
	}
	collect(title)
	collect(body)

	if len(words) <= maxKeywords {
		return words
	}

	sampled := make([]string, 0, maxKeywords)
	step := float64(len(words)) / float64(maxKeywords)
	for i := 0; i < maxKeywords; i++ {
		sampled = append(sampled, words[int(float64(i)*step)])
	}
	return sampled
}

// isEnglishLike reports whether a token is plain lowercase ASCII
// letters, the shape worth showing as a keyword.
func isEnglishLike(token string) bool {
	for _, r := range token {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
