package practice

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// capitalize upper-cases only the leading letter.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// titleCase upper-cases the first letter of every word.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func capitalizeAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = capitalize(w)
	}
	return out
}

// slugify lower-cases s and joins its words with hyphens.
func slugify(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), "-"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func adjNoun(src Source) string {
	return Pick(src, adjectives) + " " + Pick(src, nouns)
}

func fence(lang, code string) string {
	return "```" + lang + "\n" + code + "\n```"
}
