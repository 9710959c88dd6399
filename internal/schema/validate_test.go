package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func validBlueprint() SeasonBlueprint {
	return SeasonBlueprint{
		Theme:                  "Revenge of the heiress",
		Premise:                "A disowned heiress returns to reclaim the family firm.",
		Genre:                  "urban",
		Audience:               "general",
		EpisodeCount:           3,
		EpisodeDurationMinutes: 5,
		CoreConflicts:          []string{"heiress vs. stepmother", "love vs. duty"},
		Arcs:                   []string{"from outcast to chairwoman"},
		MainCharacters:         []string{"Lin Yue", "Chen Mo"},
		EpisodeTitles:          []string{"Return", "Reckoning", "Crown"},
	}
}

func validEpisode() EpisodeOutline {
	return EpisodeOutline{
		EpisodeNumber:         1,
		Title:                 "Return",
		TargetDurationMinutes: 5,
		OpeningHook:           "A slap at the wedding banquet.",
		Beats: []SceneBeat{{
			Index:           1,
			Title:           "The banquet",
			DurationSeconds: 60,
			Setting:         "hotel ballroom",
			Characters:      []string{"Lin Yue"},
			Synopsis:        "Lin Yue is humiliated in public.",
			Hook:            "She smiles.",
		}},
		Cliffhanger: "The chairman collapses.",
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func asValidationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	return verr
}

func TestValidateBlueprintRoundTrip(t *testing.T) {
	want := validBlueprint()
	got, err := Validate(mustJSON(t, want), KindSeasonBlueprint)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("blueprint mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateEpisodeOptionalFieldsDefaultEmpty(t *testing.T) {
	raw := mustJSON(t, validEpisode())
	ep, err := DecodeEpisode(raw)
	if err != nil {
		t.Fatalf("DecodeEpisode: %v", err)
	}
	beat := ep.Beats[0]
	if beat.Twist != "" || beat.GoldenLine != "" || len(beat.Notes) != 0 {
		t.Fatalf("expected empty optional beat fields, got %+v", beat)
	}
	if len(ep.ProductionNotes) != 0 {
		t.Fatalf("expected no production notes, got %v", ep.ProductionNotes)
	}
}

func TestBeatDurationBoundsReported(t *testing.T) {
	ep := validEpisode()
	ep.Beats[0].DurationSeconds = 5
	_, err := DecodeEpisode(mustJSON(t, ep))
	verr := asValidationError(t, err)
	if len(verr.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %v", verr.Violations)
	}
	v := verr.Violations[0]
	if v.Field != "beats[0].duration_seconds" {
		t.Fatalf("unexpected field path %q", v.Field)
	}
	for _, want := range []string{"11", "599"} {
		if !strings.Contains(v.Message, want) {
			t.Fatalf("message %q missing bound %s", v.Message, want)
		}
	}
}

func TestEpisodeTitleCountMismatch(t *testing.T) {
	bp := validBlueprint()
	bp.EpisodeTitles = bp.EpisodeTitles[:2]
	_, err := DecodeBlueprint(mustJSON(t, bp))
	verr := asValidationError(t, err)
	if len(verr.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %v", verr.Violations)
	}
	msg := verr.Violations[0].Message
	if verr.Violations[0].Field != "episode_titles" || !strings.Contains(msg, "expected 3") || !strings.Contains(msg, "got 2") {
		t.Fatalf("unexpected violation %+v", verr.Violations[0])
	}
}

func TestMissingCliffhangerIsViolation(t *testing.T) {
	raw := mustJSON(t, validEpisode())
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	delete(generic, "cliffhanger")
	_, err := Validate(mustJSON(t, generic), KindEpisodeOutline)
	verr := asValidationError(t, err)
	if diff := cmp.Diff([]string{"cliffhanger"}, verr.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestAllViolationsReported(t *testing.T) {
	bp := validBlueprint()
	bp.Premise = "   "
	bp.EpisodeCount = 0
	bp.EpisodeDurationMinutes = 45
	bp.CoreConflicts = []string{"only one"}
	bp.Arcs = nil
	_, err := DecodeBlueprint(mustJSON(t, bp))
	verr := asValidationError(t, err)

	got := map[string]bool{}
	for _, f := range verr.Fields() {
		got[f] = true
	}
	for _, want := range []string{"premise", "episode_count", "episode_duration_minutes", "core_conflicts", "arcs", "episode_titles"} {
		if !got[want] {
			t.Errorf("missing violation for %s in %v", want, verr.Fields())
		}
	}
}

func TestMalformedJSONSingleViolation(t *testing.T) {
	cases := map[string]string{
		"syntax":   `{"theme": `,
		"trailing": `{"theme": "x"} {}`,
		"empty":    "  ",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeBlueprint([]byte(raw))
			verr := asValidationError(t, err)
			if len(verr.Violations) != 1 || verr.Violations[0].Rule != "json" {
				t.Fatalf("expected single json violation, got %+v", verr.Violations)
			}
		})
	}
}

func TestValidateUnknownKind(t *testing.T) {
	if _, err := Validate([]byte(`{}`), Kind("poem")); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestBlankBeatCharacterReported(t *testing.T) {
	ep := validEpisode()
	ep.Beats[0].Characters = []string{"Lin Yue", " "}
	_, err := DecodeEpisode(mustJSON(t, ep))
	verr := asValidationError(t, err)
	if diff := cmp.Diff([]string{"beats[0].characters[1]"}, verr.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestWrongTypeReportedAlongsideRuleViolations(t *testing.T) {
	raw := `{
		"episode_number": "one",
		"title": "",
		"target_duration_minutes": 99,
		"opening_hook": "A slap at the wedding banquet.",
		"beats": [{"index": 1, "title": "The banquet", "duration_seconds": 60, "setting": "ballroom",
			"characters": "Lin Yue", "synopsis": "Humiliated.", "hook": "She smiles."}]
	}`
	_, err := Validate([]byte(raw), KindEpisodeOutline)
	verr := asValidationError(t, err)

	want := []string{"episode_number", "beats[0].characters", "title", "target_duration_minutes", "cliffhanger"}
	got := verr.Fields()
	if len(got) != len(want) {
		t.Fatalf("expected %d violations, got %+v", len(want), verr.Violations)
	}
	seen := map[string]bool{}
	for _, f := range got {
		seen[f] = true
	}
	for _, f := range want {
		if !seen[f] {
			t.Errorf("missing violation for %s in %v", f, got)
		}
	}
	if verr.Violations[0].Rule != "type" || !strings.Contains(verr.Violations[0].Message, `"one"`) {
		t.Fatalf("unexpected type violation %+v", verr.Violations[0])
	}
}

func TestIntegerFieldsAcceptNumericStringsAndIntegralFloats(t *testing.T) {
	raw := `{
		"episode_number": "2",
		"title": "Reckoning",
		"target_duration_minutes": 5.0,
		"opening_hook": "The will is read.",
		"beats": [{"index": " 1 ", "title": "Reading", "duration_seconds": "6e1", "setting": "study",
			"characters": ["Lin Yue"], "synopsis": "The lawyer reads.", "hook": "A second will."}],
		"cliffhanger": "The lawyer is bribed."
	}`
	ep, err := DecodeEpisode([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeEpisode: %v", err)
	}
	if ep.EpisodeNumber != 2 || ep.TargetDurationMinutes != 5 || ep.Beats[0].Index != 1 || ep.Beats[0].DurationSeconds != 60 {
		t.Fatalf("integers not coerced: %+v", ep)
	}
}

func TestIntegerFieldsRejectFractionalAndNonNumeric(t *testing.T) {
	cases := map[string]string{
		"fraction":        `5.5`,
		"fraction string": `"5.5"`,
		"word":            `"five"`,
		"hex":             `"0x5"`,
		"boolean":         `true`,
		"infinity":        `"Inf"`,
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			bp := validBlueprint()
			data := strings.Replace(string(mustJSON(t, bp)), `"episode_duration_minutes":5`, `"episode_duration_minutes":`+value, 1)
			_, err := DecodeBlueprint([]byte(data))
			verr := asValidationError(t, err)
			if diff := cmp.Diff([]string{"episode_duration_minutes"}, verr.Fields()); diff != "" {
				t.Fatalf("fields mismatch (-want +got):\n%s", diff)
			}
			if verr.Violations[0].Rule != "type" {
				t.Fatalf("expected type rule, got %+v", verr.Violations[0])
			}
		})
	}
}

func TestTopLevelWrongTypeSingleViolation(t *testing.T) {
	_, err := DecodeBlueprint([]byte(`["not", "an", "object"]`))
	verr := asValidationError(t, err)
	if len(verr.Violations) != 1 || verr.Violations[0].Rule != "type" {
		t.Fatalf("expected single type violation, got %+v", verr.Violations)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Kind: KindEpisodeOutline, Violations: []Violation{{Field: "cliffhanger", Rule: "notblank", Message: "is required"}}}
	want := "EpisodeOutline failed validation (1 violation): cliffhanger is required"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}
