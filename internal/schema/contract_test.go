package schema

import (
	"strings"
	"testing"
)

func TestContractCoversEveryJSONField(t *testing.T) {
	cases := []struct {
		kind   Kind
		fields []string
	}{
		{KindSeasonBlueprint, []string{"theme", "premise", "genre", "audience", "episode_count", "episode_duration_minutes", "core_conflicts", "arcs", "main_characters", "episode_titles"}},
		{KindEpisodeOutline, []string{"episode_number", "title", "target_duration_minutes", "opening_hook", "beats", "cliffhanger", "production_notes"}},
	}
	for _, tc := range cases {
		specs := Contract(tc.kind)
		if len(specs) != len(tc.fields) {
			t.Fatalf("%s: expected %d fields, got %d", tc.kind, len(tc.fields), len(specs))
		}
		for i, name := range tc.fields {
			if specs[i].Name != name {
				t.Errorf("%s field %d = %q, want %q", tc.kind, i, specs[i].Name, name)
			}
		}
	}
}

func TestContractTextIncludesBounds(t *testing.T) {
	text := ContractText(KindEpisodeOutline)
	for _, want := range []string{"EpisodeOutline", "duration_seconds (integer, required, 11-599)", "twist (string, optional)"} {
		if !strings.Contains(text, want) {
			t.Errorf("contract text missing %q:\n%s", want, text)
		}
	}
	if ContractText(Kind("other")) != "" {
		t.Fatal("expected empty contract for unknown kind")
	}
}

func TestContractReturnsCopy(t *testing.T) {
	first := Contract(KindSeasonBlueprint)
	first[0].Name = "mutated"
	if Contract(KindSeasonBlueprint)[0].Name != "theme" {
		t.Fatal("Contract exposed shared state")
	}
}
