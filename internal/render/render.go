// Package render turns a compiled script package into a document.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"dramagen/internal/schema"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Text renders pkg as a Markdown document. Rendering is deterministic and
// preserves the package order of every list.
func Text(pkg schema.ScriptPackage) string {
	bp := pkg.Blueprint
	lines := make([]string, 0, 64)
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("# Short Drama Project: %s", bp.Theme)
	add("")
	add("- Genre: %s    - Audience: %s", bp.Genre, bp.Audience)
	add("- Episodes: %d    - Per episode: %d minutes", bp.EpisodeCount, bp.EpisodeDurationMinutes)
	add("")
	add("**Premise**: %s", bp.Premise)
	add("")
	lines = appendNumbered(lines, "## Core Conflicts", bp.CoreConflicts, "%d. %s")
	lines = appendNumbered(lines, "## Arcs", bp.Arcs, "%d. %s")
	lines = appendNumbered(lines, "## Main Characters", bp.MainCharacters, "%d. %s")
	lines = appendNumbered(lines, "## Episode Titles", bp.EpisodeTitles, "%02d. %s")

	episodes := slices.Clone(pkg.Episodes)
	slices.SortStableFunc(episodes, func(a, b schema.EpisodeOutline) int {
		return a.EpisodeNumber - b.EpisodeNumber
	})
	for _, ep := range episodes {
		add("---")
		add("## Episode %d · %s (target %d minutes)", ep.EpisodeNumber, ep.Title, ep.TargetDurationMinutes)
		add("Opening hook: %s", ep.OpeningHook)
		add("")
		add("### Beats")
		beats := slices.Clone(ep.Beats)
		slices.SortStableFunc(beats, func(a, b schema.SceneBeat) int {
			return a.Index - b.Index
		})
		for _, beat := range beats {
			add("- [%d] %s · %ds · %s", beat.Index, beat.Title, beat.DurationSeconds, beat.Setting)
			add("  - Characters: %s", strings.Join(beat.Characters, ", "))
			add("  - Synopsis: %s", beat.Synopsis)
			add("  - Hook: %s", beat.Hook)
			if beat.Twist != "" {
				add("  - Twist: %s", beat.Twist)
			}
			if beat.GoldenLine != "" {
				add("  - Golden line: %s", beat.GoldenLine)
			}
			if len(beat.Notes) > 0 {
				add("  - Production notes: %s", strings.Join(beat.Notes, "; "))
			}
		}
		add("")
		add("Cliffhanger: %s", ep.Cliffhanger)
		if len(ep.ProductionNotes) > 0 {
			add("Production notes:")
			for _, note := range ep.ProductionNotes {
				add("- %s", note)
			}
		}
		add("")
	}

	if len(pkg.FailedEpisodes) > 0 {
		failed := make([]string, len(pkg.FailedEpisodes))
		for i, n := range pkg.FailedEpisodes {
			failed[i] = fmt.Sprint(n)
		}
		add("---")
		add("> Episodes not generated: %s", strings.Join(failed, ", "))
		add("")
	}

	return strings.Join(lines, "\n")
}

func appendNumbered(lines []string, heading string, items []string, format string) []string {
	lines = append(lines, heading)
	for i, item := range items {
		lines = append(lines, fmt.Sprintf(format, i+1, item))
	}
	return append(lines, "")
}

// Export renders pkg in the named format.
func Export(pkg schema.ScriptPackage, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return []byte(Text(pkg)), nil
	case FormatJSON:
		data, err := json.MarshalIndent(pkg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(pkg); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// Extension returns the conventional file extension for format.
func Extension(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	default:
		return ".md"
	}
}
