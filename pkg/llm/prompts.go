package llm

import (
	"fmt"
	"strings"
)

const compressSystemPrompt = `You are a text editor. Compress the given text to the requested token count.

Rules:
1. Preserve core meaning and key points
2. Remove redundant information first, then less important details
3. Simplify complex phrases, use concise language
4. Never add new information or change the original meaning
5. Never simply truncate the text
6. Match the target token count as closely as possible

Output as JSON only, no other text:
{"text": "the compressed text"}`

const expandSystemPrompt = `You are a text editor. Expand the given text to the requested token count.

Rules:
1. Elaborate on the points already present in the text
2. Add context, explanation, or examples consistent with the original
3. Never contradict or alter the original facts
4. Keep the original structure and flow recognizable
5. Match the target token count as closely as possible

Output as JSON only, no other text:
{"text": "the expanded text"}`

const fragmentSystemPrompt = `You are a text editor. Restructure the given cohesive text into clearly separated fragments.

Rules:
1. Each fragment covers one distinct point from the text
2. Keep every fact, number, and name from the original
3. Order fragments as the original presents them
4. Keep overall length close to the original token count
5. Render fragments in the requested structure style

Output as JSON only, no other text:
{"text": "the fragmented text"}`

const joinSystemPrompt = `You are a text editor. Merge the given independent fragments into one cohesive text.

Rules:
1. Preserve every fact from every fragment
2. Connect fragments with natural transitions
3. Remove duplicated information across fragments
4. Keep overall length close to the combined token count
5. Maintain a single consistent voice

Output as JSON only, no other text:
{"text": "the joined text"}`

// systemPromptFor selects the strategy prompt for an operation kind.
// Unknown operations fall back to the compression strategy.
func systemPromptFor(operation string) string {
	switch operation {
	case "expand":
		return expandSystemPrompt
	case "fragment":
		return fragmentSystemPrompt
	case "join":
		return joinSystemPrompt
	default:
		return compressSystemPrompt
	}
}

func buildUserMessage(in GenerateInput) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Target length: %d tokens (%d%% of the original).\n", in.TargetTokens, in.TargetPercentage)

	if in.Style != "" {
		fmt.Fprintf(&sb, "Style: %s\n", in.Style)
	}
	if in.Tone != "" {
		fmt.Fprintf(&sb, "Use a %s tone.\n", in.Tone)
	}
	if len(in.Aspects) > 0 {
		fmt.Fprintf(&sb, "Focus on: %s\n", strings.Join(in.Aspects, ", "))
	}

	fmt.Fprintf(&sb, "\nText:\n%s", in.Text)

	return sb.String()
}
