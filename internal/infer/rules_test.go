package infer

import (
	"testing"

	"github.com/dealerbridge/lotposter/internal/vehicle"
)

func TestBodyStyle(t *testing.T) {
	cases := []struct {
		record vehicle.Record
		want   string
	}{
		{vehicle.Record{"make": "Ford", "model": "F-150"}, "Truck"},
		{vehicle.Record{"make": "Honda", "model": "Odyssey"}, "Van"},
		{vehicle.Record{"make": "Chevrolet", "model": "Camaro"}, "Coupe"},
		{vehicle.Record{"make": "Subaru", "model": "Outback"}, "Wagon"},
		{vehicle.Record{"make": "Toyota", "model": "RAV4"}, "SUV"},
		{vehicle.Record{"make": "Honda", "model": "Accord"}, "Sedan"},
	}
	for _, tc := range cases {
		if got := BodyStyle(tc.record); got != tc.want {
			t.Fatalf("BodyStyle(%v %v) = %q, want %q", tc.record["make"], tc.record["model"], got, tc.want)
		}
	}
}

func TestFuelCandidatesHybridFirstDeduped(t *testing.T) {
	got := FuelCandidates(vehicle.Record{"engine": "2.0L Hybrid", "description": ""})
	if len(got) == 0 || got[0] != "Hybrid" {
		t.Fatalf("candidates = %v, want Hybrid first", got)
	}
	seen := map[string]bool{}
	for _, c := range got {
		if seen[c] {
			t.Fatalf("duplicate candidate %q in %v", c, got)
		}
		seen[c] = true
	}
}

func TestFuelCandidatesPriorityOrder(t *testing.T) {
	// Electric keywords outrank hybrid ones even when both appear.
	got := FuelCandidates(vehicle.Record{"engine": "", "description": "plug-in electric drive"})
	if got[0] != "Electric" {
		t.Fatalf("candidates = %v, want Electric first", got)
	}

	got = FuelCandidates(vehicle.Record{"engine": "6.6L Duramax"})
	if got[0] != "Diesel" {
		t.Fatalf("candidates = %v, want Diesel first", got)
	}
}

func TestFuelCandidatesGasolineSynonyms(t *testing.T) {
	got := FuelCandidates(vehicle.Record{"engine": "3.6L V6"})
	want := []string{"Gasoline", "Petrol", "Gas"}
	if len(got) != len(want) {
		t.Fatalf("candidates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidates = %v, want %v", got, want)
		}
	}
}

func TestColorCandidatesGrayFamily(t *testing.T) {
	got := ColorCandidates("Slate Gray Metallic")
	hasSlate := false
	for _, c := range got {
		if c == "Slate" {
			hasSlate = true
		}
	}
	if !hasSlate {
		t.Fatalf("candidates = %v, expected gray-family synonyms", got)
	}
	if got[0] != "Slate Gray Metallic" {
		t.Fatalf("candidates = %v, expected raw value first", got)
	}
}

func TestColorCandidatesNamedPrimary(t *testing.T) {
	got := ColorCandidates("Crimson Red Tintcoat")
	if got[0] != "Crimson Red Tintcoat" || got[1] != "Red" {
		t.Fatalf("candidates = %v", got)
	}
}

func TestTransmission(t *testing.T) {
	cases := map[string]string{
		"6-speed Manual": "Manual transmission",
		"CVT":            "CVT",
		"10-speed Auto":  "Automatic transmission",
		"":               "Automatic transmission",
	}
	for input, want := range cases {
		if got := Transmission(vehicle.Record{"transmission": input}); got != want {
			t.Fatalf("Transmission(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestConditionLabelThresholds(t *testing.T) {
	if got := ConditionLabel("29,999 miles"); got != "Used – Like New" {
		t.Fatalf("29,999 -> %q", got)
	}
	if got := ConditionLabel("30,000 miles"); got != "Used – Good" {
		t.Fatalf("30,000 -> %q", got)
	}
	// Unknown mileage counts as zero, which fails the n > 0 guard.
	if got := ConditionLabel("unknown"); got != "Used – Good" {
		t.Fatalf("unknown -> %q", got)
	}
}
