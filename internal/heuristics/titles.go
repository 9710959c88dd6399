package heuristics

import (
	"strings"
)

// MaxTitleVariants is the number of title patterns available.
const MaxTitleVariants = 5

var titlePatterns = [MaxTitleVariants]string{
	"%s: Instant Turnaround",
	"%s! Three Moves to Shame Them",
	"%s, an Overnight Comeback",
	"%s: A Game Within a Game",
	"%s · The Guest Becomes the Host",
}

// TitleVariants derives up to five catchy titles from seed. The seed is
// trimmed and inner whitespace collapsed; count is clamped to [1, 5].
func TitleVariants(seed string, count int) []string {
	base := strings.Join(strings.Fields(seed), " ")
	count = max(1, min(count, MaxTitleVariants))
	out := make([]string, 0, count)
	for _, pattern := range titlePatterns[:count] {
		out = append(out, strings.Replace(pattern, "%s", base, 1))
	}
	return out
}
