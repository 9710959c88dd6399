package schema

import (
	"fmt"
	"strings"
)

// FieldSpec describes one field of a schema for prompt assembly.
type FieldSpec struct {
	Name        string
	Type        string
	Required    bool
	Min         int
	Max         int
	Description string
	Items       []FieldSpec
}

func (f FieldSpec) bounds() string {
	switch {
	case f.Min > 0 && f.Max > 0:
		return fmt.Sprintf("%d-%d", f.Min, f.Max)
	case f.Min > 0:
		return fmt.Sprintf(">=%d", f.Min)
	default:
		return ""
	}
}

var blueprintContract = []FieldSpec{
	{Name: "theme", Type: "string", Required: true, Description: "the season theme, restated"},
	{Name: "premise", Type: "string", Required: true, Description: "one paragraph story premise"},
	{Name: "genre", Type: "string", Required: true, Description: "genre label"},
	{Name: "audience", Type: "string", Required: true, Description: "target audience"},
	{Name: "episode_count", Type: "integer", Required: true, Min: 1, Max: 100, Description: "number of episodes in the season"},
	{Name: "episode_duration_minutes", Type: "integer", Required: true, Min: 3, Max: 30, Description: "minutes per episode"},
	{Name: "core_conflicts", Type: "array of strings", Required: true, Min: 2, Max: 5, Description: "the central conflicts driving the season"},
	{Name: "arcs", Type: "array of strings", Required: true, Min: 1, Description: "season or character arcs"},
	{Name: "main_characters", Type: "array of strings", Required: true, Min: 1, Description: "main characters with a short tag each"},
	{Name: "episode_titles", Type: "array of strings", Required: true, Description: "exactly episode_count catchy titles, in episode order"},
}

var beatContract = []FieldSpec{
	{Name: "index", Type: "integer", Required: true, Min: 1, Description: "1-based position of the beat"},
	{Name: "title", Type: "string", Required: true, Description: "short beat title"},
	{Name: "duration_seconds", Type: "integer", Required: true, Min: 11, Max: 599, Description: "suggested beat length in seconds"},
	{Name: "setting", Type: "string", Required: true, Description: "where the beat takes place"},
	{Name: "characters", Type: "array of strings", Required: true, Description: "characters on screen"},
	{Name: "synopsis", Type: "string", Required: true, Description: "what happens"},
	{Name: "hook", Type: "string", Required: true, Description: "the hook that keeps viewers watching"},
	{Name: "twist", Type: "string", Description: "optional reversal"},
	{Name: "golden_line", Type: "string", Description: "optional quotable line"},
	{Name: "notes", Type: "array of strings", Description: "optional staging notes"},
}

var episodeContract = []FieldSpec{
	{Name: "episode_number", Type: "integer", Required: true, Min: 1, Description: "the episode being outlined"},
	{Name: "title", Type: "string", Required: true, Description: "episode title"},
	{Name: "target_duration_minutes", Type: "integer", Required: true, Min: 3, Max: 30, Description: "target runtime in minutes"},
	{Name: "opening_hook", Type: "string", Required: true, Description: "the first seconds of the episode"},
	{Name: "beats", Type: "array of beat objects", Required: true, Min: 1, Description: "ordered scene beats", Items: beatContract},
	{Name: "cliffhanger", Type: "string", Required: true, Description: "the closing cliffhanger"},
	{Name: "production_notes", Type: "array of strings", Description: "optional production notes"},
}

// Contract returns the field descriptions for kind. The result is a copy.
func Contract(kind Kind) []FieldSpec {
	var src []FieldSpec
	switch kind {
	case KindSeasonBlueprint:
		src = blueprintContract
	case KindEpisodeOutline:
		src = episodeContract
	default:
		return nil
	}
	out := make([]FieldSpec, len(src))
	copy(out, src)
	return out
}

// ContractText renders the contract for kind as a JSON output instruction.
func ContractText(kind Kind) string {
	fields := Contract(kind)
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Respond with a single JSON object (%s) with these fields:\n", kind.Label())
	writeFields(&b, fields, "")
	return strings.TrimRight(b.String(), "\n")
}

func writeFields(b *strings.Builder, fields []FieldSpec, indent string) {
	for _, f := range fields {
		attrs := []string{f.Type}
		if f.Required {
			attrs = append(attrs, "required")
		} else {
			attrs = append(attrs, "optional")
		}
		if bounds := f.bounds(); bounds != "" {
			attrs = append(attrs, bounds)
		}
		fmt.Fprintf(b, "%s- %s (%s): %s\n", indent, f.Name, strings.Join(attrs, ", "), f.Description)
		if len(f.Items) > 0 {
			fmt.Fprintf(b, "%s  each item has:\n", indent)
			writeFields(b, f.Items, indent+"    ")
		}
	}
}
