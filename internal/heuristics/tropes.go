package heuristics

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// DefaultGenre is used when a genre cannot be resolved.
const DefaultGenre = "urban"

var tropesByGenre = map[string][]string{
	"urban": {
		"workplace domination",
		"old classmates' reversal",
		"face-slapping the rich family",
		"viral social media moment",
		"the guest becomes the host",
		"stacked reversals",
	},
	"historical": {
		"mistaken identity",
		"duty to the realm",
		"schemes that backfire",
		"the weak defeat the strong",
		"court versus jianghu",
		"a noble benefactor appears",
	},
	"workplace": {
		"let the data speak",
		"power struggle",
		"leapfrogging the hierarchy",
		"blame and counter-blame",
		"last-second turnaround",
	},
	"campus": {
		"top student versus slacker",
		"club competition",
		"dark horse rising",
		"an open secret crush",
		"rivals forced to team up",
	},
	"xianxia": {
		"defiant spiritual root",
		"sect rivalry",
		"secret realm encounter",
		"the path of the strong",
		"karmic cycle",
	},
	"scifi": {
		"time rewind",
		"parallel worlds",
		"identity swap",
		"brain-computer interface",
		"the truth bites back",
	},
}

var genreAliases = map[string]string{
	"都市":              "urban",
	"city":            "urban",
	"modern":          "urban",
	"古装":              "historical",
	"costume":         "historical",
	"period":          "historical",
	"职场":              "workplace",
	"office":          "workplace",
	"校园":              "campus",
	"school":          "campus",
	"仙侠":              "xianxia",
	"fantasy":         "xianxia",
	"科幻":              "scifi",
	"sci-fi":          "scifi",
	"science fiction": "scifi",
}

var folder = cases.Fold()

// Tropes returns the trope labels for genre. Unknown genres resolve to the
// urban list. The returned slice is a copy.
func Tropes(genre string) []string {
	key := ResolveGenre(genre)
	src := tropesByGenre[key]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// ResolveGenre maps free-form genre text to a known genre key. The whole
// value is tried first, then each "/"-separated token in order.
func ResolveGenre(genre string) string {
	normalized := normalizeGenre(genre)
	if key, ok := lookupGenre(normalized); ok {
		return key
	}
	for _, token := range strings.Split(normalized, "/") {
		if key, ok := lookupGenre(strings.TrimSpace(token)); ok {
			return key
		}
	}
	return DefaultGenre
}

// Genres lists the known genre keys in sorted order.
func Genres() []string {
	keys := make([]string, 0, len(tropesByGenre))
	for key := range tropesByGenre {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func normalizeGenre(genre string) string {
	value := width.Fold.String(genre)
	value = folder.String(value)
	return strings.Join(strings.Fields(value), " ")
}

func lookupGenre(value string) (string, bool) {
	if value == "" {
		return "", false
	}
	if _, ok := tropesByGenre[value]; ok {
		return value, true
	}
	if key, ok := genreAliases[value]; ok {
		return key, true
	}
	return "", false
}
