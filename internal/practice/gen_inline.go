package practice

import (
	"fmt"
	"strings"

	"github.com/ashureev/markdown-labs/internal/domain"
)

// Heading builds a single heading challenge of the given level.
func Heading(level int, title string) domain.Challenge {
	return domain.Challenge{
		Markup: strings.Repeat("#", level) + " " + title,
		Explanation: fmt.Sprintf("Use %d hash %s (%s) followed by a space to create a level-%d heading.",
			level, plural(level, "symbol"), strings.Repeat("#", level), level),
	}
}

// TwoHeadings builds a pair of headings separated by a blank line.
// The second level is capped at 6.
func TwoHeadings(level1 int, title1 string, level2 int, title2 string) domain.Challenge {
	level2 = min(level2, 6)
	return domain.Challenge{
		Markup: strings.Repeat("#", level1) + " " + title1 + "\n\n" + strings.Repeat("#", level2) + " " + title2,
		Explanation: fmt.Sprintf("Create two headings: level %d (%d hashes) and level %d (%d hashes). "+
			"Each line starts with its hashes and a space. Separate them with a blank line.",
			level1, level1, level2, level2),
	}
}

func genHeading(src Source) domain.Challenge {
	return Heading(RandInt(src, 1, 4), capitalize(adjNoun(src)))
}

func genTwoHeadings(src Source) domain.Challenge {
	t1 := capitalize(adjNoun(src))
	t2 := capitalize(adjNoun(src))
	l1 := RandInt(src, 1, 3)
	l2 := l1 + RandInt(src, 1, 2)
	return TwoHeadings(l1, t1, l2, t2)
}

// emphasis wraps word in a symmetric delimiter.
func emphasis(word, delim, style, delimName string) domain.Challenge {
	return domain.Challenge{
		Markup: delim + word + delim,
		Explanation: fmt.Sprintf("Wrap the word in %s for %s: %s%s%s",
			delimName, style, delim, word, delim),
	}
}

func genItalic(src Source) domain.Challenge {
	return emphasis(Pick(src, nouns), "*", "italic", "single asterisks")
}

func genBold(src Source) domain.Challenge {
	return emphasis(Pick(src, adjectives), "**", "bold", "double asterisks")
}

func genBoldItalic(src Source) domain.Challenge {
	return emphasis(Pick(src, nouns), "***", "bold italic", "triple asterisks")
}

func genStrikethrough(src Source) domain.Challenge {
	return emphasis(Pick(src, nouns), "~~", "strikethrough", "double tildes")
}

func genBoldInSentence(src Source) domain.Challenge {
	adj := Pick(src, adjectives)
	noun := Pick(src, nouns)
	return domain.Challenge{
		Markup: fmt.Sprintf("The **%s** %s", adj, noun),
		Explanation: fmt.Sprintf("Only the word %q is bold, so only it is wrapped in double asterisks (**%s**). "+
			"The rest of the sentence is plain text.", adj, adj),
	}
}

// Link builds an inline link challenge.
func Link(text, url string) domain.Challenge {
	return domain.Challenge{
		Markup:      fmt.Sprintf("[%s](%s)", text, url),
		Explanation: "Inline link syntax: the display text in square brackets, immediately followed by the URL in parentheses: [display text](URL)",
		Hints:       []string{"URL: " + url},
	}
}

func genLink(src Source) domain.Challenge {
	return Link(capitalize(Pick(src, nouns)), Pick(src, urls))
}

func genTitledLink(src Source) domain.Challenge {
	text := adjNoun(src)
	url := Pick(src, urls)
	title := Pick(src, linkTitles)
	return domain.Challenge{
		Markup: fmt.Sprintf(`[%s](%s "%s")`, text, url, title),
		Explanation: "A link with a tooltip puts the title in double quotes after the URL, separated by a space: " +
			`[text](URL "title")`,
		Hints: []string{"URL: " + url, fmt.Sprintf("Title: %q", title)},
	}
}

func genImage(src Source) domain.Challenge {
	alt := adjNoun(src)
	imgURL := fmt.Sprintf("https://picsum.photos/seed/%s/200/100", slugify(alt))
	return domain.Challenge{
		Markup:      fmt.Sprintf("![%s](%s)", alt, imgURL),
		Explanation: "Image syntax is link syntax with a leading exclamation mark: ![alt text](image URL)",
		Hints:       []string{fmt.Sprintf("Alt text: %q", alt), "Image URL: " + imgURL},
	}
}
