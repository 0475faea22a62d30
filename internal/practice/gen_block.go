package practice

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ashureev/markdown-labs/internal/domain"
)

// UnorderedList builds a "- " list of the given items.
func UnorderedList(items []string) domain.Challenge {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return domain.Challenge{
		Markup:      strings.Join(lines, "\n"),
		Explanation: "Unordered list: start each line with a hyphen (-) followed by a space. Use the same marker on every line.",
	}
}

// OrderedList builds a list numbered from 1.
func OrderedList(items []string) domain.Challenge {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = strconv.Itoa(i+1) + ". " + item
	}
	return domain.Challenge{
		Markup:      strings.Join(lines, "\n"),
		Explanation: "Ordered list: start each line with its number, a period and a space, counting up from 1.",
	}
}

func genUnorderedList(src Source) domain.Challenge {
	return UnorderedList(capitalizeAll(PickN(src, nouns, RandInt(src, 3, 4))))
}

func genOrderedList(src Source) domain.Challenge {
	return OrderedList(capitalizeAll(PickN(src, nouns, RandInt(src, 3, 4))))
}

func genNestedList(src Source) domain.Challenge {
	var b strings.Builder
	for i := 0; i < 2; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		parent := capitalize(Pick(src, nouns))
		children := capitalizeAll(PickN(src, nouns, 2))
		fmt.Fprintf(&b, "- %s\n  - %s\n  - %s", parent, children[0], children[1])
	}
	return domain.Challenge{
		Markup:      b.String(),
		Explanation: "Nested list: each parent line starts with \"- \". Indent child items with exactly 2 spaces before their \"- \" marker.",
	}
}

// TaskList builds a task list where the first checked items are ticked.
func TaskList(labels []string, checked int) domain.Challenge {
	lines := make([]string, len(labels))
	for i, label := range labels {
		box := " "
		if i < checked {
			box = "x"
		}
		lines[i] = fmt.Sprintf("- [%s] %s", box, label)
	}
	return domain.Challenge{
		Markup:      strings.Join(lines, "\n"),
		Explanation: "Task list: use \"- [ ] \" for an unchecked item and \"- [x] \" for a checked item, followed by the label.",
	}
}

func genTaskList(src Source) domain.Challenge {
	actions := PickN(src, verbs, RandInt(src, 3, 5))
	labels := make([]string, len(actions))
	for i, v := range actions {
		labels[i] = capitalize(v) + " the " + Pick(src, nouns)
	}
	return TaskList(labels, RandInt(src, 1, len(labels)-1))
}

func genBlockquote(src Source) domain.Challenge {
	sentence := fmt.Sprintf("The %s %s will %s the %s.",
		Pick(src, adjectives), Pick(src, nouns), Pick(src, verbs), Pick(src, nouns))
	return domain.Challenge{
		Markup:      "> " + sentence,
		Explanation: "Blockquote: start the line with > followed by a space.",
	}
}

func genNestedBlockquote(src Source) domain.Challenge {
	s1 := capitalize(Pick(src, adjectives) + " things take time.")
	s2 := fmt.Sprintf("The %s is always %s.", Pick(src, nouns), Pick(src, adjectives))
	return domain.Challenge{
		Markup: "> " + s1 + "\n>\n>> " + s2,
		Explanation: "Nested blockquote: use \"> \" for the outer quote and \">> \" for the inner one. " +
			"Put a line containing only > between them to keep the quote going.",
	}
}

func genEmphasisBlockquote(src Source) domain.Challenge {
	noun := capitalize(Pick(src, nouns))
	adj := Pick(src, adjectives)
	return domain.Challenge{
		Markup:      fmt.Sprintf("> **%s** is *%s*.", noun, adj),
		Explanation: "Bold (**text**) and italic (*text*) work inside blockquotes. Start the line with \"> \".",
	}
}

func genInlineCode(src Source) domain.Challenge {
	fn := Pick(src, inlineFuncs)
	return domain.Challenge{
		Markup:      fmt.Sprintf("Use the `%s()` function.", fn),
		Explanation: "Inline code: wrap the code in single backticks inside the sentence.",
	}
}

// FencedCode builds a fenced block, with a language tag when lang is set.
func FencedCode(lang, code string) domain.Challenge {
	if lang == "" {
		return domain.Challenge{
			Markup:      fence("", code),
			Explanation: "Fenced code block without a language: put triple backticks on their own lines before and after the code.",
			Hints:       []string{"No language identifier needed"},
		}
	}
	return domain.Challenge{
		Markup: fence(lang, code),
		Explanation: fmt.Sprintf("Fenced code block: open with triple backticks followed directly by the language name (```%s), "+
			"put the code on the next line, and close with triple backticks on their own line.", lang),
		Hints: []string{"Language: " + lang},
	}
}

func genFencedCode(src Source) domain.Challenge {
	s := Pick(src, snippets)
	return FencedCode(s.Lang, s.Code)
}

func genPlainFencedCode(src Source) domain.Challenge {
	return FencedCode("", Pick(src, snippets).Code)
}

func tableRow(cells ...string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}

func genTable(src Source) domain.Challenge {
	cols := capitalizeAll(PickN(src, topics, 2))
	people := PickN(src, personNames, RandInt(src, 2, 3))
	lines := []string{tableRow(cols...), "|---|---|"}
	for _, p := range people {
		lines = append(lines, tableRow(p, capitalize(Pick(src, adjectives))))
	}
	return domain.Challenge{
		Markup: strings.Join(lines, "\n"),
		Explanation: "Table: separate columns with |, starting and ending each row with a pipe and spaces around cell text. " +
			"The second row (|---|---|) is the required separator between header and body.",
	}
}

func genAlignedTable(src Source) domain.Challenge {
	header := tableRow(capitalize(Pick(src, topics)), "Count", "Status")
	r1 := tableRow(Pick(src, personNames), strconv.Itoa(RandInt(src, 1, 99)), Pick(src, adjectives))
	r2 := tableRow(Pick(src, personNames), strconv.Itoa(RandInt(src, 1, 99)), Pick(src, adjectives))
	return domain.Challenge{
		Markup: strings.Join([]string{header, "|:---|:---:|---:|", r1, r2}, "\n"),
		Explanation: "Table with alignment: in the separator row, :--- is left-aligned, :---: is centered and ---: is right-aligned. " +
			"Here the columns are left, center, right.",
	}
}
