package pipeline

import (
	"slices"

	"dramagen/internal/schema"
)

// Compile assembles a package with episodes stably sorted by episode number.
// Inputs are not modified.
func Compile(blueprint schema.SeasonBlueprint, episodes []schema.EpisodeOutline, failed []int) schema.ScriptPackage {
	ordered := slices.Clone(episodes)
	slices.SortStableFunc(ordered, func(a, b schema.EpisodeOutline) int {
		return a.EpisodeNumber - b.EpisodeNumber
	})
	var failedCopy []int
	if len(failed) > 0 {
		failedCopy = slices.Clone(failed)
		slices.Sort(failedCopy)
	}
	return schema.ScriptPackage{
		Blueprint:      blueprint,
		Episodes:       ordered,
		FailedEpisodes: failedCopy,
	}
}
