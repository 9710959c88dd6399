package heuristics

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTropesResolvesGenres(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"urban", "urban"},
		{"  Workplace ", "workplace"},
		{"古装", "historical"},
		{"ＳＣＩＦＩ", "scifi"},
		{"general/urban", "urban"},
		{"general/仙侠", "xianxia"},
		{"campus/scifi", "campus"},
		{"unknown genre", "urban"},
		{"", "urban"},
		{"Science Fiction", "scifi"},
	}
	for _, tc := range cases {
		if got := ResolveGenre(tc.input); got != tc.want {
			t.Errorf("ResolveGenre(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestTropesNeverEmptyAndIsolated(t *testing.T) {
	for _, genre := range append(Genres(), "nonsense") {
		tropes := Tropes(genre)
		if len(tropes) == 0 {
			t.Fatalf("Tropes(%q) returned nothing", genre)
		}
	}
	first := Tropes("urban")
	first[0] = "mutated"
	if Tropes("urban")[0] == "mutated" {
		t.Fatal("Tropes exposed shared storage")
	}
	if diff := cmp.Diff(Tropes("urban"), Tropes("mystery")); diff != "" {
		t.Fatalf("unknown genre should fall back to urban (-urban +got):\n%s", diff)
	}
}

func TestPacingTemplates(t *testing.T) {
	for _, style := range []string{"fast", "punchy", "glacial"} {
		tpl := Pacing(style)
		sum := 0.0
		for _, r := range tpl.Ratios {
			sum += r
		}
		if math.Abs(sum-1.0) > 1e-6 {
			t.Errorf("%s ratios sum to %f", style, sum)
		}
	}
	fast := Pacing(" FAST ")
	if fast.Name != PacingFast || len(fast.Ratios) != 6 || len(fast.Tips) != 4 {
		t.Fatalf("unexpected fast template %+v", fast)
	}
	if got := Pacing("glacial"); got.Name != PacingPunchy || len(got.Tips) != 3 {
		t.Fatalf("unknown style should resolve to punchy, got %+v", got)
	}
	fast.Ratios[0] = 0.9
	if Pacing("fast").Ratios[0] != 0.08 {
		t.Fatal("Pacing exposed shared storage")
	}
}

func TestPacingAllocate(t *testing.T) {
	got := Pacing("fast").Allocate(300)
	want := []int{24, 36, 54, 66, 60, 60}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("allocation mismatch (-want +got):\n%s", diff)
	}
	total := 0
	for _, v := range Pacing("punchy").Allocate(301) {
		total += v
	}
	if total != 301 {
		t.Fatalf("allocation total = %d", total)
	}
	if Pacing("fast").Allocate(0) != nil {
		t.Fatal("expected nil allocation for zero seconds")
	}
}

func TestTitleVariants(t *testing.T) {
	got := TitleVariants("  Courier   turned  CEO ", 2)
	want := []string{"Courier turned CEO: Instant Turnaround", "Courier turned CEO! Three Moves to Shame Them"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("titles mismatch (-want +got):\n%s", diff)
	}
	for count := 1; count <= 10; count++ {
		first := TitleVariants("Courier turned CEO", count)
		if len(first) != min(count, MaxTitleVariants) {
			t.Errorf("TitleVariants(count=%d) returned %d items, want %d", count, len(first), min(count, MaxTitleVariants))
		}
		if diff := cmp.Diff(first, TitleVariants("Courier turned CEO", count)); diff != "" {
			t.Errorf("TitleVariants(count=%d) not deterministic:\n%s", count, diff)
		}
	}
	if n := len(TitleVariants("x", 0)); n != 1 {
		t.Fatalf("count 0 should clamp to 1, got %d", n)
	}
	if n := len(TitleVariants("x", 99)); n != MaxTitleVariants {
		t.Fatalf("count 99 should clamp to 5, got %d", n)
	}
	if diff := cmp.Diff(TitleVariants("seed", 5), TitleVariants("seed", 5)); diff != "" {
		t.Fatalf("titles not deterministic:\n%s", diff)
	}
}

func TestDefaultCapabilities(t *testing.T) {
	caps := DefaultCapabilities()
	if diff := cmp.Diff([]string{CapabilityTropes, CapabilityPacing, CapabilityTitles}, caps.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	tropes, _ := caps.Lookup(CapabilityTropes)
	out, err := tropes.Invoke(json.RawMessage(`{"genre":"campus"}`))
	if err != nil {
		t.Fatalf("invoke tropes: %v", err)
	}
	if diff := cmp.Diff(Tropes("campus"), out); diff != "" {
		t.Fatalf("tropes mismatch (-want +got):\n%s", diff)
	}

	pacing, _ := caps.Lookup(CapabilityPacing)
	out, err = pacing.Invoke(nil)
	if err != nil {
		t.Fatalf("invoke pacing: %v", err)
	}
	if tpl, ok := out.(PacingTemplate); !ok || tpl.Name != PacingFast {
		t.Fatalf("expected fast template by default, got %#v", out)
	}

	titles, _ := caps.Lookup(CapabilityTitles)
	out, err = titles.Invoke(json.RawMessage(`{"seed":"Heiress"}`))
	if err != nil {
		t.Fatalf("invoke titles: %v", err)
	}
	if list, ok := out.([]string); !ok || len(list) != MaxTitleVariants {
		t.Fatalf("expected five titles, got %#v", out)
	}

	if _, err := titles.Invoke(json.RawMessage(`{"count":"many"}`)); err == nil {
		t.Fatal("expected decode error for bad arguments")
	}
	if _, ok := caps.Lookup("missing"); ok {
		t.Fatal("unexpected capability")
	}
}

func TestNewCapabilitiesReplacesByName(t *testing.T) {
	base := DefaultCapabilities().All()
	override := Capability{Name: CapabilityTropes, Description: "override"}
	set := NewCapabilities(append(base, override)...)
	if set.Len() != 3 {
		t.Fatalf("expected 3 capabilities, got %d", set.Len())
	}
	got, _ := set.Lookup(CapabilityTropes)
	if got.Description != "override" {
		t.Fatalf("expected override, got %q", got.Description)
	}
	if _, err := got.Invoke(nil); err == nil {
		t.Fatal("expected error for capability without implementation")
	}
}
