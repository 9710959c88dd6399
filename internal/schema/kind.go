package schema

// Kind identifies the schema a generated payload must satisfy.
type Kind string

const (
	KindSeasonBlueprint Kind = "season_blueprint"
	KindEpisodeOutline  Kind = "episode_outline"
)

// Label returns a human readable name for prompts and logs.
func (k Kind) Label() string {
	switch k {
	case KindSeasonBlueprint:
		return "SeasonBlueprint"
	case KindEpisodeOutline:
		return "EpisodeOutline"
	default:
		return string(k)
	}
}
