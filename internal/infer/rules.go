// Package infer maps loosely-structured vehicle attributes onto the
// marketplace's fixed form vocabulary. The target UI's accepted wording
// varies by locale, so rules that feed combo boxes return an ordered
// candidate list rather than a single value.
package infer

import (
	"regexp"
	"strings"

	"github.com/dealerbridge/lotposter/internal/vehicle"
)

type bodyRule struct {
	pattern *regexp.Regexp
	label   string
}

var bodyRules = []bodyRule{
	{regexp.MustCompile(`truck|pickup|f-?150|silverado|ram|tundra|sierra|tacoma`), "Truck"},
	{regexp.MustCompile(`van|minivan|transit|sienna|odyssey|caravan|pacifica|sprinter|promaster`), "Van"},
	{regexp.MustCompile(`coupe|mustang|challenger|camaro|brz|86|supra`), "Coupe"},
	{regexp.MustCompile(`convertible|roadster|spider|spyder|cabrio`), "Convertible"},
	{regexp.MustCompile(`hatch|golf|fit|yaris|versa|impreza hatch`), "Hatchback"},
	{regexp.MustCompile(`wagon|outback|allroad`), "Wagon"},
	{regexp.MustCompile(`suv|trailblazer|equinox|tahoe|suburban|escape|rav4|cr-?v|pilot|highlander|explorer|blazer|cx-|nx|rx|gv|x[3-7]|gl|telluride|seltos|palisa`), "SUV"},
}

// BodyStyle infers the body style category from make, model and trim text.
// Sedan when nothing matches.
func BodyStyle(r vehicle.Record) string {
	haystack := strings.ToLower(r.Make() + " " + r.Model() + " " + r.Trim())
	for _, rule := range bodyRules {
		if rule.pattern.MatchString(haystack) {
			return rule.label
		}
	}
	return "Sedan"
}

var (
	electricPattern = regexp.MustCompile(`electric|ev|kwh|kilowatt`)
	hybridPattern   = regexp.MustCompile(`hybrid|hev|plug-?in|phev`)
	dieselPattern   = regexp.MustCompile(`diesel|tdi|duramax|cummins`)
)

// FuelCandidates infers the fuel type from engine and description text and
// expands it into the locale spellings the form may use. Electric beats
// hybrid beats diesel; gasoline is the default.
func FuelCandidates(r vehicle.Record) []string {
	text := strings.ToLower(r.Engine() + " " + r.Description())

	inferred := "Gasoline"
	switch {
	case electricPattern.MatchString(text):
		inferred = "Electric"
	case hybridPattern.MatchString(text):
		inferred = "Hybrid"
	case dieselPattern.MatchString(text):
		inferred = "Diesel"
	}

	candidates := []string{inferred}
	if inferred == "Gasoline" {
		candidates = append(candidates, "Petrol", "Gas", "Gasoline")
	}
	return dedupe(candidates)
}

var grayFamily = regexp.MustCompile(`(?i)slate|graphite|charcoal|gunmetal|grey|gray`)

var paletteLabels = map[string]bool{
	"Black": true, "White": true, "Silver": true, "Blue": true, "Red": true,
	"Brown": true, "Beige": true, "Green": true, "Gold": true, "Yellow": true,
	"Orange": true, "Purple": true,
}

// ColorCandidates builds the ordered values to try for a color combo: the
// raw capture text, its normalized palette label, and the gray-family
// synonyms when either looks gray.
func ColorCandidates(raw string) []string {
	normalized := vehicle.NormalizeColor(raw)
	candidates := []string{raw, normalized}

	if grayFamily.MatchString(raw) || strings.EqualFold(normalized, "gray") {
		candidates = append(candidates, "Grey", "Gray", "Slate")
	}
	if paletteLabels[normalized] {
		candidates = append(candidates, normalized)
	}
	return dedupe(candidates)
}

var (
	manualPattern = regexp.MustCompile(`manual|mt`)
	cvtPattern    = regexp.MustCompile(`cvt`)
)

// Transmission maps raw transmission text onto the form's exact phrasing.
func Transmission(r vehicle.Record) string {
	t := strings.ToLower(r.Transmission())
	switch {
	case manualPattern.MatchString(t):
		return "Manual transmission"
	case cvtPattern.MatchString(t):
		return "CVT"
	default:
		return "Automatic transmission"
	}
}

// ConditionLabel derives the condition bucket from mileage alone: a known
// mileage under 30,000 reads "Used – Like New", anything else "Used – Good".
// Unparseable mileage counts as zero and therefore lands on "Used – Good".
func ConditionLabel(mileage string) string {
	n, ok := vehicle.ParseMiles(mileage)
	if !ok {
		n = 0
	}
	if n > 0 && n < 30000 {
		return "Used – Like New"
	}
	return "Used – Good"
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		out = append(out, trimmed)
	}
	return out
}
