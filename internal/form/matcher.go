package form

import (
	"encoding/json"
	"strings"
)

// LabelMatcher decides whether a form control's label text identifies the
// field we want. The marketplace exposes no stable identifiers, so matching
// runs against an assembled label blob inside the page; a matcher compiles
// to a JS predicate over that blob. Strategies are pluggable: keyword
// containment and regular-expression matchers are provided.
type LabelMatcher struct {
	keywords []string
	pattern  string
}

// Keywords matches when any keyword is a substring of the lowercased label
// blob.
func Keywords(words ...string) LabelMatcher {
	lowered := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word != "" {
			lowered = append(lowered, word)
		}
	}
	return LabelMatcher{keywords: lowered}
}

// Pattern matches the label blob against a case-insensitive JS regular
// expression source.
func Pattern(source string) LabelMatcher {
	return LabelMatcher{pattern: source}
}

func (m LabelMatcher) isZero() bool {
	return len(m.keywords) == 0 && m.pattern == ""
}

// predicate renders the matcher as a JS boolean expression over the named
// variable, which must hold lowercased text.
func (m LabelMatcher) predicate(varName string) string {
	if m.pattern != "" {
		return "new RegExp(" + jsString(m.pattern) + `, "i").test(` + varName + ")"
	}
	raw, _ := json.Marshal(m.keywords)
	return string(raw) + ".some(k => " + varName + ".includes(k))"
}

// String names the matcher for report entries and logs.
func (m LabelMatcher) String() string {
	if m.pattern != "" {
		return "/" + m.pattern + "/"
	}
	return strings.Join(m.keywords, "|")
}

// jsString renders a Go string as a JS string literal. JSON string encoding
// is valid JS.
func jsString(s string) string {
	raw, _ := json.Marshal(s)
	return string(raw)
}
