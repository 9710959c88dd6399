package schema

// SeasonBlueprint is the season-level creative brief produced once per run.
type SeasonBlueprint struct {
	Theme                  string   `json:"theme" yaml:"theme" validate:"notblank"`
	Premise                string   `json:"premise" yaml:"premise" validate:"notblank"`
	Genre                  string   `json:"genre" yaml:"genre" validate:"notblank"`
	Audience               string   `json:"audience" yaml:"audience" validate:"notblank"`
	EpisodeCount           int      `json:"episode_count" yaml:"episode_count" validate:"between=1:100"`
	EpisodeDurationMinutes int      `json:"episode_duration_minutes" yaml:"episode_duration_minutes" validate:"between=3:30"`
	CoreConflicts          []string `json:"core_conflicts" yaml:"core_conflicts" validate:"between=2:5,dive,notblank"`
	Arcs                   []string `json:"arcs" yaml:"arcs" validate:"min=1,dive,notblank"`
	MainCharacters         []string `json:"main_characters" yaml:"main_characters" validate:"min=1,dive,notblank"`
	EpisodeTitles          []string `json:"episode_titles" yaml:"episode_titles" validate:"dive,notblank"`
}

// TitleFor returns the title planned for the 1-based episode number, or an
// empty string when the blueprint has no such episode.
func (b SeasonBlueprint) TitleFor(episode int) string {
	if episode < 1 || episode > len(b.EpisodeTitles) {
		return ""
	}
	return b.EpisodeTitles[episode-1]
}

// SceneBeat is one scene or plot point inside an episode outline.
type SceneBeat struct {
	Index           int      `json:"index" yaml:"index" validate:"min=1"`
	Title           string   `json:"title" yaml:"title" validate:"notblank"`
	DurationSeconds int      `json:"duration_seconds" yaml:"duration_seconds" validate:"between=11:599"`
	Setting         string   `json:"setting" yaml:"setting" validate:"notblank"`
	Characters      []string `json:"characters" yaml:"characters" validate:"required,dive,notblank"`
	Synopsis        string   `json:"synopsis" yaml:"synopsis" validate:"notblank"`
	Hook            string   `json:"hook" yaml:"hook" validate:"notblank"`
	Twist           string   `json:"twist,omitempty" yaml:"twist,omitempty"`
	GoldenLine      string   `json:"golden_line,omitempty" yaml:"golden_line,omitempty"`
	Notes           []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// EpisodeOutline is the expanded plan for a single episode.
type EpisodeOutline struct {
	EpisodeNumber         int         `json:"episode_number" yaml:"episode_number" validate:"min=1"`
	Title                 string      `json:"title" yaml:"title" validate:"notblank"`
	TargetDurationMinutes int         `json:"target_duration_minutes" yaml:"target_duration_minutes" validate:"between=3:30"`
	OpeningHook           string      `json:"opening_hook" yaml:"opening_hook" validate:"notblank"`
	Beats                 []SceneBeat `json:"beats" yaml:"beats" validate:"min=1,dive"`
	Cliffhanger           string      `json:"cliffhanger" yaml:"cliffhanger" validate:"notblank"`
	ProductionNotes       []string    `json:"production_notes,omitempty" yaml:"production_notes,omitempty"`
}

// TotalSeconds sums the suggested beat durations.
func (e EpisodeOutline) TotalSeconds() int {
	total := 0
	for _, beat := range e.Beats {
		total += beat.DurationSeconds
	}
	return total
}

// ScriptPackage is the compiled result of a pipeline run. Episodes may cover
// only a prefix of the season; FailedEpisodes lists episode numbers that were
// requested but could not be generated.
type ScriptPackage struct {
	Blueprint      SeasonBlueprint  `json:"blueprint" yaml:"blueprint"`
	Episodes       []EpisodeOutline `json:"episodes" yaml:"episodes"`
	FailedEpisodes []int            `json:"failed_episodes,omitempty" yaml:"failed_episodes,omitempty"`
}
