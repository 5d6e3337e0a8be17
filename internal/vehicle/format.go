package vehicle

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	milesWithUnit = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})+|\d{2,6})\s*(?:mi\.?|miles?)`)
	firstNumber   = regexp.MustCompile(`(\d{1,3}(?:,\d{3})+|\d{2,6})`)
)

// ParseMiles extracts a mileage figure from free text. A number adjacent to a
// mile unit wins; otherwise the first number-looking token in the string is
// taken. The left-to-right first-match bias is relied on by callers that
// disambiguate mileage from price.
func ParseMiles(text string) (int, bool) {
	if m := milesWithUnit.FindStringSubmatch(text); m != nil {
		return parseThousands(m[1])
	}
	if m := firstNumber.FindStringSubmatch(text); m != nil {
		return parseThousands(m[1])
	}
	return 0, false
}

func parseThousands(token string) (int, bool) {
	n, err := strconv.Atoi(strings.ReplaceAll(token, ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

// RoundedMileage floors the mileage to the nearest lower thousand, accepting
// either a number or free text. Unknown mileage renders as the empty string
// so the form field is left blank.
func RoundedMileage(value any) string {
	var miles int
	switch v := value.(type) {
	case int:
		miles = v
	case float64:
		miles = int(v)
	case string:
		parsed, ok := ParseMiles(v)
		if !ok {
			return ""
		}
		miles = parsed
	default:
		return ""
	}
	return strconv.Itoa(miles / 1000 * 1000)
}

// TitleFromParts builds the listing title from year, make, model and trim,
// skipping absent parts, capped at 100 characters.
func TitleFromParts(r Record) string {
	parts := make([]string, 0, 4)
	for _, key := range []string{"year", "make", "model", "trim"} {
		if v := r.Str(key); v != "" {
			parts = append(parts, v)
		}
	}
	title := strings.Join(parts, " ")
	if runes := []rune(title); len(runes) > 100 {
		title = string(runes[:100])
	}
	return title
}

// DefaultDescription builds a fixed-order synopsis used when the capture
// carries no description of its own. Lines whose source field is absent are
// omitted.
func DefaultDescription(r Record) string {
	lines := []string{TitleFromParts(r)}
	if mileage := r.Mileage(); mileage != "" {
		lines = append(lines, "Mileage: "+groupThousands(mileage))
	}
	if drivetrain := r.Drivetrain(); drivetrain != "" {
		lines = append(lines, "Drivetrain: "+drivetrain)
	}
	if engine := r.Engine(); engine != "" {
		lines = append(lines, "Engine: "+engine)
	}
	if transmission := r.Transmission(); transmission != "" {
		lines = append(lines, "Transmission: "+transmission)
	}
	if exterior := r.ExteriorColor(); exterior != "" {
		lines = append(lines, "Exterior: "+exterior)
	}
	if interior := r.InteriorColor(); interior != "" {
		lines = append(lines, "Interior: "+interior)
	}
	lines = append(lines, "", "Available now at Capitol Chevrolet — schedule your test drive today!")
	return strings.Join(lines, "\n")
}

// groupThousands renders plain integers with thousands separators and leaves
// anything else untouched.
func groupThousands(value string) string {
	n, err := strconv.Atoi(value)
	if err != nil {
		return value
	}
	digits := strconv.Itoa(n)
	negative := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	var b strings.Builder
	for i, digit := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	if negative {
		return "-" + b.String()
	}
	return b.String()
}
