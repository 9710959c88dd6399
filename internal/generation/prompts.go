package generation

import (
	"fmt"
	"strings"

	"dramagen/internal/schema"
	"dramagen/internal/services/llm"
)

// SystemPrompt frames every generation request.
const SystemPrompt = `You are a senior short-drama screenwriter and narrative designer. You excel at high-payoff moments, fast pacing, dense reversals, and quotable lines, and you leave room for editing and score.
- Write with high information density, short sentences, and strong verbs.
- Create a hook or reversal every 20-60 seconds.
- End every episode on a cliffhanger.
- Fit the target audience and vertical, fast-paced, subtitle-friendly viewing.
- Use the available tools (get_tropes, rhythm_template, catchy_titles) to refine structure when they are offered.
Always respond with a single JSON object and nothing else.`

func correctivePrompt(basePrompt, previous string, verr *schema.ValidationError) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\nYour previous response was rejected because it did not satisfy the contract:\n")
	for _, v := range verr.Violations {
		fmt.Fprintf(&b, "- %s\n", v.String())
	}
	fmt.Fprintf(&b, "Previous response (truncated): %s\n", llm.Snippet(previous))
	b.WriteString("Return a corrected JSON object that fixes every listed problem.")
	return b.String()
}
