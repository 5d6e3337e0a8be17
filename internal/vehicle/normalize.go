package vehicle

import "strings"

var (
	exteriorAliases = []string{"exterior", "exteriorColor", "Exterior", "extColor", "color_exterior"}
	interiorAliases = []string{"interior", "interiorColor", "Interior", "intColor", "color_interior"}

	// Capture payloads sometimes wrap the vehicle under one of these keys.
	wrapperKeys = []string{"preview", "vehicle", "data", "form"}
)

// NormalizeAliases reconciles the historical color alias keys carried by
// different extension versions: the first non-empty alias wins and every
// known alias is back-filled to that value, so downstream readers see the
// same color regardless of which key they look up. Wrapped sub-objects are
// normalized the same way. The input is not mutated; a new tree is returned.
func NormalizeAliases(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for key, value := range payload {
		out[key] = value
	}

	fillAliases(out, exteriorAliases)
	fillAliases(out, interiorAliases)

	for _, key := range wrapperKeys {
		if nested, ok := out[key].(map[string]any); ok {
			out[key] = NormalizeAliases(nested)
		}
	}
	return out
}

func fillAliases(m map[string]any, aliases []string) {
	var chosen string
	for _, alias := range aliases {
		if s, ok := m[alias].(string); ok && strings.TrimSpace(s) != "" {
			chosen = s
			break
		}
	}
	if chosen == "" {
		return
	}
	for _, alias := range aliases {
		m[alias] = chosen
	}
}
