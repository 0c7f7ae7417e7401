package research

import (
	"context"
	"encoding/json"
	"strings"
)

// scriptedOracle routes prompts by their instruction text and answers from
// configurable fields, so loop tests can script each oracle judgment.
type scriptedOracle struct {
	fail bool // every call degrades: Invoke → "", InvokeJSON → false

	keywords   string
	summary    string
	title      string
	intro      string
	section    string
	conclusion string
	quality    string
	knowledge  string

	decompose     []string                     // nil → unparsable answer
	sufficient    func(call int) (Verdict, bool)
	gap           func(call int) (GapVerdict, bool)
	contradiction func(first, second string) bool

	sufficiencyCalls int
	gapCalls         int
	invokeCalls      int
}

func newScriptedOracle() *scriptedOracle {
	return &scriptedOracle{
		keywords:   "alpha beta gamma",
		summary:    "Summarized evidence text.",
		title:      "Generated Title",
		intro:      "Generated introduction.",
		section:    "Generated section body.",
		conclusion: "Generated conclusion.",
		quality:    "Generated quality notes.",
	}
}

func (o *scriptedOracle) Invoke(_ context.Context, prompt, _ string) string {
	o.invokeCalls++
	if o.fail {
		return ""
	}
	switch {
	case strings.Contains(prompt, "search keywords"):
		return o.keywords
	case strings.Contains(prompt, "factual summary"):
		return o.summary
	case strings.Contains(prompt, "report title"):
		return o.title
	case strings.Contains(prompt, "introduction"):
		return o.intro
	case strings.Contains(prompt, "report section covering"):
		return o.section
	case strings.Contains(prompt, "conclusion"):
		return o.conclusion
	case strings.Contains(prompt, "entities and relations"):
		return o.knowledge
	case strings.Contains(prompt, "Review the following report"):
		return o.quality
	}
	return ""
}

func (o *scriptedOracle) InvokeJSON(_ context.Context, prompt, _ string, out any) bool {
	if o.fail {
		return false
	}
	switch {
	case strings.Contains(prompt, "Decompose the research topic"):
		if o.decompose == nil {
			return false
		}
		return setJSON(out, o.decompose)
	case strings.Contains(prompt, "sufficient"):
		o.sufficiencyCalls++
		if o.sufficient == nil {
			return setJSON(out, Verdict{})
		}
		v, ok := o.sufficient(o.sufficiencyCalls)
		if !ok {
			return false
		}
		return setJSON(out, v)
	case strings.Contains(prompt, "needs_search"):
		o.gapCalls++
		if o.gap == nil {
			return setJSON(out, GapVerdict{})
		}
		v, ok := o.gap(o.gapCalls)
		if !ok {
			return false
		}
		return setJSON(out, v)
	case strings.Contains(prompt, "contradict"):
		parts := strings.SplitN(prompt, "\n", 4)
		result := false
		if o.contradiction != nil && len(parts) >= 3 {
			first := strings.TrimPrefix(parts[1], "1. ")
			second := strings.TrimPrefix(parts[2], "2. ")
			result = o.contradiction(first, second)
		}
		return setJSON(out, map[string]bool{"contradiction": result})
	}
	return false
}

func setJSON(out, v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return json.Unmarshal(b, out) == nil
}

// stubProvider records search calls and serves scripted result sets.
type stubProvider struct {
	items        []EvidenceItem
	perCall      func(call int) []EvidenceItem
	calls        int
	lastKeywords []string
}

func (p *stubProvider) Search(_ context.Context, keywords []string, limit int) []EvidenceItem {
	p.calls++
	p.lastKeywords = append([]string(nil), keywords...)
	items := p.items
	if p.perCall != nil {
		items = p.perCall(p.calls)
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// stubExtractor maps URLs to fixed text; missing entries yield "".
type stubExtractor struct {
	texts map[string]string
	calls int
}

func (e *stubExtractor) Extract(_ context.Context, url string) string {
	e.calls++
	return e.texts[url]
}

func twoEvidenceItems() []EvidenceItem {
	return []EvidenceItem{
		{URL: "https://example.com/a", Title: "Source A", Text: "snippet a"},
		{URL: "https://data.gov/b", Title: "Source B", Text: "snippet b"},
	}
}

func extractorFor(items []EvidenceItem) *stubExtractor {
	texts := make(map[string]string, len(items))
	for _, it := range items {
		texts[it.URL] = "Extracted text from " + it.URL + "."
	}
	return &stubExtractor{texts: texts}
}
