// Package research implements the iterative research-and-refinement control
// loop: per-dimension evidence gathering with bounded retries and dynamic
// query expansion, and report assembly interleaved with validation-triggered
// supplementary search.
package research

import "context"

// Dimension is one facet of the research topic, e.g. "market size".
// Dimensions are produced once at decomposition time and their order fixes
// report section ordering.
type Dimension string

// EvidenceItem is one candidate source returned by the evidence provider.
// Read-only once created.
type EvidenceItem struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// FindingStatus tracks a dimension's research outcome.
type FindingStatus string

const (
	StatusPending    FindingStatus = "pending"
	StatusSufficient FindingStatus = "sufficient"
	StatusExhausted  FindingStatus = "exhausted"
)

// Finding is the accumulated, retry-refined research output for one
// dimension. It is mutated across retry iterations and final once the
// status leaves Pending.
type Finding struct {
	Dimension Dimension     `json:"dimension"`
	Summary   string        `json:"summary"`
	Status    FindingStatus `json:"status"`

	// Evidence is the item set from the last productive search iteration,
	// kept for reference assembly.
	Evidence []EvidenceItem `json:"evidence,omitempty"`

	// Credibility maps evidence URL to its coarse trust level.
	Credibility map[string]Credibility `json:"credibility,omitempty"`

	// Recency is the freshness classification of the summary.
	Recency Recency `json:"recency,omitempty"`

	// Contradictions holds sentence pairs the oracle judged conflicting.
	Contradictions []SentencePair `json:"contradictions,omitempty"`
}

// SentencePair is an unordered pair of conflicting summary sentences.
type SentencePair struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// Verdict is the oracle's sufficiency judgment over a dimension summary.
// Ephemeral: produced per iteration, consumed immediately, never persisted.
type Verdict struct {
	Sufficient bool     `json:"sufficient"`
	Keywords   []string `json:"suggested_keywords"`
}

// GapVerdict is the oracle's data-gap judgment over accumulated report
// sections.
type GapVerdict struct {
	NeedsSearch bool     `json:"needs_search"`
	SearchClues []string `json:"search_clues"`
}

// Report is the assembled research output. Section keys are assigned densely
// in append order starting at 1 and are never reused or reordered.
type Report struct {
	Title        string         `json:"title"`
	Introduction string         `json:"introduction"`
	Sections     map[int]string `json:"sections"`
	Conclusion   string         `json:"conclusion"`
	References   []string       `json:"references"`
	QualityNotes string         `json:"quality_notes"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{Sections: map[int]string{}}
}

// AppendSection adds draft at the next dense integer key and returns the key.
func (r *Report) AppendSection(draft string) int {
	key := len(r.Sections) + 1
	r.Sections[key] = draft
	return key
}

// Provider returns a bounded list of evidence candidates for a keyword set.
// Implementations return an empty slice on any failure, never an error.
type Provider interface {
	Search(ctx context.Context, keywords []string, limit int) []EvidenceItem
}

// Extractor fetches a URL and returns cleaned plain text, or an empty
// string on any failure.
type Extractor interface {
	Extract(ctx context.Context, url string) string
}

// Oracle is the LLM boundary. Invoke returns an empty string on failure;
// InvokeJSON returns false when the answer does not decode, so callers fall
// back to conservative defaults.
type Oracle interface {
	Invoke(ctx context.Context, prompt, contextText string) string
	InvokeJSON(ctx context.Context, prompt, contextText string, out any) bool
}
