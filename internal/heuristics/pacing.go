package heuristics

import (
	"math"
	"strings"
)

// Pacing style names.
const (
	PacingFast   = "fast"
	PacingPunchy = "punchy"
)

// PacingTemplate is a beat-ratio table plus directing tips.
type PacingTemplate struct {
	Name   string    `json:"name"`
	Ratios []float64 `json:"beat_ratios"`
	Tips   []string  `json:"directing_tips"`
}

var pacingTemplates = map[string]PacingTemplate{
	PacingFast: {
		Name:   PacingFast,
		Ratios: []float64{0.08, 0.12, 0.18, 0.22, 0.20, 0.20},
		Tips: []string{
			"Open on conflict with short lines and fast cuts; land the core hook within 10-20s",
			"Favour medium close-ups and close-ups to sell expressions and reactions",
			"Embed a reversal or reveal every one or two scenes",
			"Drive tempo with score and percussion; keep dead air under 3 seconds",
		},
	},
	PacingPunchy: {
		Name:   PacingPunchy,
		Ratios: []float64{0.12, 0.18, 0.20, 0.20, 0.15, 0.15},
		Tips: []string{
			"Set a strong hook in the first 20-30s",
			"Separate segments with transition music to create segment payoffs",
			"Deliver at least one information jump or small reversal every minute",
		},
	},
}

// Pacing returns the template for style. Unknown styles resolve to punchy.
// The returned template does not share storage with the library.
func Pacing(style string) PacingTemplate {
	tpl, ok := pacingTemplates[strings.ToLower(strings.TrimSpace(style))]
	if !ok {
		tpl = pacingTemplates[PacingPunchy]
	}
	return PacingTemplate{
		Name:   tpl.Name,
		Ratios: append([]float64(nil), tpl.Ratios...),
		Tips:   append([]string(nil), tpl.Tips...),
	}
}

// PacingStyles lists the known pacing styles.
func PacingStyles() []string {
	return []string{PacingFast, PacingPunchy}
}

// IsPacingStyle reports whether style names a known template.
func IsPacingStyle(style string) bool {
	_, ok := pacingTemplates[strings.ToLower(strings.TrimSpace(style))]
	return ok
}

// Allocate splits totalSeconds across the template ratios, giving any
// rounding remainder to the final beat.
func (p PacingTemplate) Allocate(totalSeconds int) []int {
	if totalSeconds <= 0 || len(p.Ratios) == 0 {
		return nil
	}
	out := make([]int, len(p.Ratios))
	used := 0
	for i, ratio := range p.Ratios {
		out[i] = int(math.Round(float64(totalSeconds) * ratio))
		used += out[i]
	}
	out[len(out)-1] += totalSeconds - used
	return out
}
