package feed

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SlugToLabel turns a tag slug such as "gaming-fever" into its label "Gaming Fever"
func SlugToLabel(slug string) string {
	if decoded, err := url.PathUnescape(slug); err == nil {
		slug = decoded
	}

	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' })
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

// LabelToSlug is the inverse of SlugToLabel
func LabelToSlug(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), "-"))
}

// NormalizeTag trims a free-form tag and Title Cases each word
func NormalizeTag(tag string) string {
	words := strings.Fields(tag)
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

// NormalizeTags normalizes tags and drops blanks and case-insensitive duplicates,
// keeping first occurrence order
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	r, size := utf8.DecodeRuneInString(w)
	return string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
}
