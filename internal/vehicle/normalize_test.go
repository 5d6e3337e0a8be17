package vehicle

import "testing"

func TestNormalizeAliasesBackfillsAll(t *testing.T) {
	out := NormalizeAliases(map[string]any{"exteriorColor": "Red"})
	for _, alias := range []string{"exterior", "exteriorColor", "Exterior", "extColor", "color_exterior"} {
		if out[alias] != "Red" {
			t.Fatalf("alias %q = %v, want Red", alias, out[alias])
		}
	}
}

func TestNormalizeAliasesFirstNonEmptyWins(t *testing.T) {
	out := NormalizeAliases(map[string]any{
		"exterior":      "  ",
		"exteriorColor": "Blue",
		"extColor":      "Green",
	})
	if out["exterior"] != "Blue" || out["extColor"] != "Blue" {
		t.Fatalf("expected first non-empty alias to win, got %v / %v", out["exterior"], out["extColor"])
	}
}

func TestNormalizeAliasesRecursesIntoWrappers(t *testing.T) {
	out := NormalizeAliases(map[string]any{
		"preview": map[string]any{"interior": "Beige"},
	})
	nested, ok := out["preview"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested map, got %T", out["preview"])
	}
	if nested["interiorColor"] != "Beige" {
		t.Fatalf("nested interiorColor = %v, want Beige", nested["interiorColor"])
	}
}

func TestNormalizeAliasesDoesNotMutateInput(t *testing.T) {
	in := map[string]any{"exteriorColor": "Red"}
	_ = NormalizeAliases(in)
	if _, ok := in["exterior"]; ok {
		t.Fatalf("input map was mutated")
	}
}

func TestNormalizeAliasesNoColors(t *testing.T) {
	out := NormalizeAliases(map[string]any{"year": float64(2020)})
	if _, ok := out["exterior"]; ok {
		t.Fatalf("unexpected alias key added")
	}
	if out["year"] != float64(2020) {
		t.Fatalf("unrelated key changed: %v", out["year"])
	}
}
