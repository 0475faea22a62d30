// Package practice implements the practice challenge engine: random
// generation of tiered Markdown challenges, answer evaluation and the
// per-learner session state machine.
package practice

import (
	"fmt"

	"github.com/ashureev/markdown-labs/internal/domain"
)

// Generator synthesizes one challenge. Generators keep no state between calls.
type Generator func(src Source) domain.Challenge

// Tier is a named group of generators teaching one concept.
type Tier struct {
	Name string
	// Expect is a CSS selector the rendered preview of every challenge in
	// the tier must match, unless the challenge lists its own.
	Expect     string
	Generators []Generator
}

// Expectations returns the selectors the rendered form of c must match.
func (t Tier) Expectations(c domain.Challenge) []string {
	if len(c.Expect) > 0 {
		return c.Expect
	}
	return []string{t.Expect}
}

// Label returns the display label for the tier at index i.
func Label(i int, t Tier) string {
	return fmt.Sprintf("Tier %d: %s", i+1, t.Name)
}

var defaultTiers = []Tier{
	{
		Name:       "Headings",
		Expect:     "h1, h2, h3, h4, h5, h6",
		Generators: []Generator{genHeading, genTwoHeadings},
	},
	{
		Name:       "Emphasis",
		Expect:     "em, strong, del",
		Generators: []Generator{genItalic, genBold, genBoldItalic, genStrikethrough, genBoldInSentence},
	},
	{
		Name:       "Links & Images",
		Expect:     "a[href], img[src]",
		Generators: []Generator{genLink, genTitledLink, genImage},
	},
	{
		Name:       "Lists",
		Expect:     "ul > li, ol > li",
		Generators: []Generator{genUnorderedList, genOrderedList, genNestedList},
	},
	{
		Name:       "Task Lists",
		Expect:     `li > input[type="checkbox"]`,
		Generators: []Generator{genTaskList},
	},
	{
		Name:       "Blockquotes",
		Expect:     "blockquote",
		Generators: []Generator{genBlockquote, genNestedBlockquote, genEmphasisBlockquote},
	},
	{
		Name:       "Code",
		Expect:     "code",
		Generators: []Generator{genInlineCode, genFencedCode, genPlainFencedCode},
	},
	{
		Name:       "Tables",
		Expect:     "table thead th",
		Generators: []Generator{genTable, genAlignedTable},
	},
	{
		// Each mixed generator lists the selectors for every concept it combines.
		Name:       "Mixed / Advanced",
		Expect:     "h2, h3, blockquote, pre > code, li > input, table",
		Generators: []Generator{genHeadingLinkList, genEmphasisQuote, genHeadingCode, genBoldTaskList, genRichTable},
	},
}

// DefaultTiers returns the built-in tier progression.
func DefaultTiers() []Tier {
	out := make([]Tier, len(defaultTiers))
	copy(out, defaultTiers)
	return out
}

// ValidateTiers reports a broken tier table. Call it at startup.
func ValidateTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("no tiers defined")
	}
	for i, t := range tiers {
		if t.Name == "" {
			return fmt.Errorf("tier %d has no name", i)
		}
		if len(t.Generators) == 0 {
			return fmt.Errorf("tier %q has no generators", t.Name)
		}
		for j, g := range t.Generators {
			if g == nil {
				return fmt.Errorf("tier %q generator %d is nil", t.Name, j)
			}
		}
	}
	return nil
}
