package variants

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/memeulacra/memegen/internal/catalog"
)

// The prompt texts are opaque request/response contracts with the model.
// Treat the embedded JSON shapes as wire formats; the parsing side of each
// contract lives in generator.go.

const goalGenSystemPrompt = `You are an expert meme strategist who understands internet culture, viral content, and emotional resonance. Your role is to analyze given contexts and identify strategic goals for meme creation that will effectively engage with the conversation or content.
For each context, you should:

Identify the core emotional themes or narratives present
Consider multiple angles for meme responses (humorous, supportive, thought-provoking, etc.)
Propose specific meme goals that would create meaningful engagement
Consider the appropriate tone and impact level for the context

Your outputs must be formatted as a JSON array of meme goals, where each goal includes:

goal: The complete goal statement in natural language
emotion: The primary intended emotional response
message: The key message or takeaway
tone: A value from 1-10 where 1 is completely serious and 10 is maximum humor
impact: The desired impact on the conversation

Do not generate actual meme content or suggestions for specific images. Focus solely on articulating clear goals for what the meme should accomplish.`

func formatGoalGenUserPrompt(context string, numGoals int) string {
	return fmt.Sprintf(`Analyze the following context and generate exactly %d potential goals for meme creation. Format your response as a JSON array where each object contains the goal, intended emotion, key message, tone level (1-10), and desired impact.

    Context: %s
    Return your response in this exact format, with no additional text:
    {
    "meme_goals": [
    {
    "goal": "Generate a meme that...",
    "emotion": "primary emotion to evoke",
    "message": "key takeaway",
    "tone": number from 1-10,
    "impact": "desired effect on conversation"
    }
    ]
    }`, numGoals, context)
}

const generateTextSystemPrompt = `You are an expert meme creator who excels at crafting witty, impactful text for meme templates. Your role is to generate text variations that perfectly match both the meme template's style, the intended goal, and the original context.

For each template, you should:
1. Consider the template's format (number of text boxes as indicated by text_box_count)
2. If text box coordinates and labels are provided, generate text that fits each labeled box
3. Ensure text matches the template's typical usage pattern
4. Create text that achieves the goal's intended emotion and impact
5. Keep text concise and punchy - memes work best with brief, impactful text
6. Ensure the text relates back to the original context while achieving the goal
7. Study the provided successful examples to understand what resonates with users
8. Learn from less successful examples to avoid common pitfalls
9. Generate exactly the requested number of distinct variations that incorporate these insights

When analyzing examples:
- Look for patterns in successful memes' text structure and tone
- Note how successful memes balance humor with message delivery
- Identify what makes certain memes less effective
- Consider how text length and complexity affects engagement

When text box labels are provided:
- Pay close attention to the labels that describe what each text box represents
- Generate text that is appropriate for the described element
- Ensure the text for each box makes sense in relation to the other boxes
- Keep the narrative coherent across all text boxes

Your outputs must follow the meme's established format while delivering both the goal's message and maintaining relevance to the original context, informed by real engagement data from similar memes.`

func formatGenerateTextUserPrompt(tmpl catalog.Template, boxes []catalog.Box, goal Goal, context string, examples Examples, numVariants int) string {
	var b strings.Builder

	templateJSON, _ := json.MarshalIndent(map[string]any{
		"name":           tmpl.Name,
		"description":    tmpl.Description,
		"text_box_count": tmpl.BoxCount,
	}, "", "  ")
	goalJSON, _ := json.MarshalIndent(goal, "", "  ")

	fmt.Fprintf(&b, "Given this meme template, goal, and original context:\n\n")
	fmt.Fprintf(&b, "Template: %s\nGoal: %s\nOriginal Context: %s", templateJSON, goalJSON, context)

	writeExamplesSection(&b, examples)
	writeBoxInfoSection(&b, boxes)

	fmt.Fprintf(&b, "\n\nGenerate exactly %d text variation(s) for this meme that relate to both the goal and the original context. Use insights from the successful examples while avoiding patterns from less successful ones.\n", numVariants)

	if len(boxes) > 0 {
		b.WriteString("\nFor each text box, generate text that fits the description in the label.\n")
	}

	b.WriteString("\nFormat your response as a JSON object with no additional text:\n\n")
	fmt.Fprintf(&b, "{\n    \"text_choices\": [\n        {\n            \"box_count\": %d,\n            %s\n        }\n    ]\n}", boxCountOrDefault(tmpl), boxFieldsJSON(boxes))

	return b.String()
}

func writeExamplesSection(b *strings.Builder, examples Examples) {
	if len(examples.MostLiked) == 0 && len(examples.MostDisliked) == 0 {
		return
	}

	b.WriteString("\nLearn from these examples:\n\nHighly Successful Examples:\n")
	for _, ex := range examples.MostLiked {
		fmt.Fprintf(b, "- Thumbs up: %d\n  Text: %s\n", ex.Score, strings.Join(ex.Captions, " | "))
	}

	b.WriteString("\nLess Successful Examples to Learn From:\n")
	for _, ex := range examples.MostDisliked {
		fmt.Fprintf(b, "- Thumbs down: %d\n  Text: %s\n", ex.Score, strings.Join(ex.Captions, " | "))
	}
}

func writeBoxInfoSection(b *strings.Builder, boxes []catalog.Box) {
	if len(boxes) == 0 {
		return
	}

	b.WriteString("\nText Box Information:\n")
	for _, box := range boxes {
		label := box.Label
		if label == "" {
			label = "No label"
		}
		fmt.Fprintf(b, "- Box %d: %s\n", box.ID, label)
	}
}

func boxFieldsJSON(boxes []catalog.Box) string {
	if len(boxes) == 0 {
		return "\"text_1\": \"top text if box_count=2 or only text if box_count=1\",\n            \"text_2\": \"bottom text (only if box_count=2)\""
	}

	parts := make([]string, 0, len(boxes))
	for _, box := range boxes {
		label := box.Label
		if label == "" {
			label = fmt.Sprintf("box %d", box.ID)
		}
		parts = append(parts, fmt.Sprintf("%q: %q", fmt.Sprintf("text_%d", box.ID), "text for "+label))
	}
	return strings.Join(parts, ", ")
}

func boxCountOrDefault(tmpl catalog.Template) int {
	if tmpl.BoxCount > 0 {
		return tmpl.BoxCount
	}
	return 2
}
