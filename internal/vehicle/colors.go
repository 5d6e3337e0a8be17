package vehicle

import (
	"regexp"
	"strings"
)

type colorRule struct {
	pattern *regexp.Regexp
	label   string
}

// Ordered first-match-wins rules mapping manufacturer color names onto the
// marketplace palette. "Slate Gray Metallic" and "Graphite" both land on Gray.
var colorRules = []colorRule{
	{regexp.MustCompile(`^(jet\s*)?black|ebony|onyx|midnight\s*black`), "Black"},
	{regexp.MustCompile(`slate|graphite|charcoal|gunmetal|dark\s*grey|dark\s*gray`), "Gray"},
	{regexp.MustCompile(`silver|aluminum|argent`), "Silver"},
	{regexp.MustCompile(`white|ivory|pearl|alabaster|snow`), "White"},
	{regexp.MustCompile(`blue|navy|indigo|cobalt|azure|teal|aqua`), "Blue"},
	{regexp.MustCompile(`red|maroon|burgundy|crimson`), "Red"},
	{regexp.MustCompile(`brown|bronze|mocha|cocoa|coffee|chocolate`), "Brown"},
	{regexp.MustCompile(`beige|tan|sand|cream|khaki|linen`), "Beige"},
	{regexp.MustCompile(`green|emerald|olive|forest`), "Green"},
	{regexp.MustCompile(`gold|champagne`), "Gold"},
	{regexp.MustCompile(`yellow|lemon|sulfur`), "Yellow"},
	{regexp.MustCompile(`orange|copper|tangerine`), "Orange"},
	{regexp.MustCompile(`purple|plum|violet|amethyst`), "Purple"},
}

// NormalizeColor classifies a free-text color into the marketplace palette.
// Unmatched input falls back to title-casing each word; empty input yields "".
func NormalizeColor(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	lowered := strings.ToLower(raw)
	for _, rule := range colorRules {
		if rule.pattern.MatchString(lowered) {
			return rule.label
		}
	}
	return titleCaseWords(raw)
}

func titleCaseWords(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
