package practice

import (
	"fmt"
	"strings"

	"github.com/ashureev/markdown-labs/internal/domain"
)

func genHeadingLinkList(src Source) domain.Challenge {
	heading := titleCase(Pick(src, adjectives) + " " + Pick(src, topics))
	url1, url2 := Pick(src, urls), Pick(src, urls)
	name1, name2 := capitalize(Pick(src, nouns)), capitalize(Pick(src, nouns))
	return domain.Challenge{
		Markup: fmt.Sprintf("## %s\n\n- [%s](%s)\n- [%s](%s)", heading, name1, url1, name2, url2),
		Explanation: "Combine a level-2 heading (## and a space) with a list of links after a blank line. " +
			"Each list item is \"- \" followed by inline link syntax: [text](url).",
		Hints: []string{
			fmt.Sprintf("%q URL: %s", name1, url1),
			fmt.Sprintf("%q URL: %s", name2, url2),
		},
		Expect: []string{"h2", "ul > li > a[href]"},
	}
}

func genEmphasisQuote(src Source) domain.Challenge {
	q := fmt.Sprintf("The **%s** %s will *%s* the %s.",
		Pick(src, adjectives), Pick(src, nouns), Pick(src, verbs), Pick(src, nouns))
	return domain.Challenge{
		Markup:      "> " + q,
		Explanation: "A blockquote (\"> \") containing both bold (**text**) and italic (*text*) emphasis.",
		Expect:      []string{"blockquote strong", "blockquote em"},
	}
}

func genHeadingCode(src Source) domain.Challenge {
	title := titleCase(adjNoun(src))
	s := Pick(src, snippets)
	return domain.Challenge{
		Markup: fmt.Sprintf("### %s\n\nRun this code:\n\n%s", title, fence(s.Lang, s.Code)),
		Explanation: "A level-3 heading (###), a blank line, the paragraph \"Run this code:\", another blank line, " +
			"then a fenced code block with a language identifier after the opening backticks.",
		Hints:  []string{"Language: " + s.Lang},
		Expect: []string{"h3", "h3 + p", `pre > code[class^="language-"]`},
	}
}

func genBoldTaskList(src Source) domain.Challenge {
	items := capitalizeAll(PickN(src, nouns, 3))
	items[0] = "**" + items[0] + "**"
	c := TaskList(items, RandInt(src, 1, len(items)-1))
	c.Explanation = "A task list with bold formatting on the first item. Combine \"- [x] \" / \"- [ ] \" with **bold** inside the label."
	c.Expect = []string{`li > input[type="checkbox"]`, "li strong"}
	return c
}

func genRichTable(src Source) domain.Challenge {
	n1, n2 := Pick(src, personNames), Pick(src, personNames)
	topic := capitalize(Pick(src, topics))
	lines := []string{
		tableRow("Name", "Topic"),
		"|---|---|",
		tableRow("**"+n1+"**", topic),
		tableRow("*"+n2+"*", "`"+Pick(src, nouns)+"`"),
	}
	return domain.Challenge{
		Markup: strings.Join(lines, "\n"),
		Explanation: "A table with emphasis and inline code inside cells. " +
			"**bold**, *italic* and `code` all work inside table cells.",
		Expect: []string{"table thead th", "td strong", "td em", "td code"},
	}
}
