package research

import "fmt"

// Prompts sent to the oracle. Judgment-shaped prompts demand strict JSON so
// answers can be validated before use; malformed answers fall back to the
// conservative defaults in the calling loop.

func decomposePrompt(topic string) string {
	return fmt.Sprintf(`Decompose the research topic %q into 5 to 7 key research dimensions. Respond with only a JSON array of short dimension names, e.g. ["market size","competitive landscape"].`, topic)
}

func keywordsPrompt(subject string) string {
	return fmt.Sprintf(`Generate 5 to 7 highly relevant web search keywords for the research dimension %q. Respond with only the keywords separated by single spaces.`, subject)
}

const summarizePrompt = `Write a concise, factual summary of the following text. Respond with only the summary.`

func contradictionPrompt(first, second string) string {
	return fmt.Sprintf(`Determine whether the following two statements logically contradict each other.
1. %s
2. %s
Respond with only JSON: {"contradiction": true|false}.`, first, second)
}

const sufficiencyPrompt = `Assess whether the provided information is sufficient to support research on this dimension, and identify information gaps. Respond with only JSON: {"sufficient": bool, "suggested_keywords": ["term", ...]}.`

const gapPrompt = `Check the report sections provided for data gaps or logical holes. Respond with only JSON: {"needs_search": bool, "search_clues": ["clue", ...]}.`

func knowledgePrompt(dim Dimension) string {
	return fmt.Sprintf(`Extract the key entities and relations from the following text for the research dimension %q. Respond with a compact plain-text list.`, string(dim))
}

func titlePrompt(topic string) string {
	return fmt.Sprintf(`Write a report title for a market research report on %q. Respond with only the title.`, topic)
}

func introPrompt(topic string) string {
	return fmt.Sprintf(`Write the introduction for a market research report on %q.`, topic)
}

func sectionPrompt(dim Dimension) string {
	return fmt.Sprintf(`Using the information provided, write the report section covering %q.`, string(dim))
}

func conclusionPrompt(topic string) string {
	return fmt.Sprintf(`Based on the report content provided, write the conclusion for the market research report on %q.`, topic)
}

const qualityPrompt = `Review the following report for data accuracy, logical coherence, and fluency, and suggest improvements.`
