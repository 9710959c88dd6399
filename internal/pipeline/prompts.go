package pipeline

import (
	"fmt"
	"strings"

	"dramagen/internal/heuristics"
	"dramagen/internal/schema"
)

func blueprintPrompt(req Request) string {
	tropes := heuristics.Tropes(req.Genre)
	var b strings.Builder
	fmt.Fprintf(&b, "Theme or plot from the user: %s\n", req.Theme)
	b.WriteString("Produce the season blueprint for a high-payoff short drama:\n")
	fmt.Fprintf(&b, "- genre: %s\n", req.Genre)
	fmt.Fprintf(&b, "- audience: %s\n", req.Audience)
	fmt.Fprintf(&b, "- episode_count: %d\n", req.Episodes)
	fmt.Fprintf(&b, "- episode_duration_minutes: %d\n", req.Minutes)
	fmt.Fprintf(&b, "- suggested tropes for %s: %s\n", heuristics.ResolveGenre(req.Genre), strings.Join(tropes, "; "))
	b.WriteString("\nRequirements:\n")
	b.WriteString("1) premise: one high-concept sentence carrying conflict and contrast.\n")
	b.WriteString("2) core_conflicts: 2-5 items with strong verbs.\n")
	b.WriteString("3) arcs: the main arc plus one or two sub-arcs, one sentence each.\n")
	b.WriteString("4) main_characters: short persona tags for the core cast.\n")
	fmt.Fprintf(&b, "5) episode_titles: exactly %d short, catchy titles in episode order.\n", req.Episodes)
	b.WriteString("6) You may call get_tropes, rhythm_template, and catchy_titles to refine the result.\n")
	b.WriteString("7) Output strict JSON.")
	return b.String()
}

func episodePrompt(bp schema.SeasonBlueprint, number int, pacing heuristics.PacingTemplate) string {
	minutes := bp.EpisodeDurationMinutes
	var b strings.Builder
	fmt.Fprintf(&b, "Using the season blueprint, write the outline for episode %d:\n", number)
	fmt.Fprintf(&b, "- episode_number: %d\n", number)
	fmt.Fprintf(&b, "- theme: %s\n", bp.Theme)
	fmt.Fprintf(&b, "- premise: %s\n", bp.Premise)
	fmt.Fprintf(&b, "- genre: %s\n", bp.Genre)
	fmt.Fprintf(&b, "- audience: %s\n", bp.Audience)
	fmt.Fprintf(&b, "- title (keep or sharpen): %s\n", bp.TitleFor(number))
	fmt.Fprintf(&b, "- target_duration_minutes: %d\n", minutes)
	fmt.Fprintf(&b, "- arcs: %s\n", strings.Join(bp.Arcs, "; "))
	fmt.Fprintf(&b, "- main_characters: %s\n", strings.Join(bp.MainCharacters, "; "))
	fmt.Fprintf(&b, "- core conflicts: %s\n", strings.Join(bp.CoreConflicts, "; "))
	b.WriteString("\nRequirements:\n")
	b.WriteString("1) opening_hook: a strong hook within the first 10-20 seconds.\n")
	b.WriteString("2) beats: 6-10 scenes, each with setting, synopsis, hook, optional twist, optional golden_line, and editing notes.\n")
	fmt.Fprintf(&b, "3) give every beat a duration_seconds; the total should be about %d minutes.\n", minutes)
	b.WriteString("4) create an information jump, reversal, or payoff every 20-60 seconds.\n")
	b.WriteString("5) the cliffhanger must make viewers start the next episode.\n")
	fmt.Fprintf(&b, "6) follow the %q pacing style; you may call rhythm_template(%q) for ratios and directing tips.\n", pacing.Name, pacing.Name)
	fmt.Fprintf(&b, "   suggested segment lengths in seconds: %s\n", joinInts(pacing.Allocate(minutes*60)))
	for _, tip := range pacing.Tips {
		fmt.Fprintf(&b, "   - %s\n", tip)
	}
	b.WriteString("7) Output strict JSON.")
	return b.String()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
