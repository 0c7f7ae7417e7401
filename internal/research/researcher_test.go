package research

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/deep-research/internal/config"
	"github.com/sells-group/deep-research/internal/resilience"
)

func testResearchConfig() config.ResearchConfig {
	return config.ResearchConfig{
		Retries:         3,
		SearchResults:   10,
		SummaryMaxChars: 5000,
		MaxSentences:    12,
		KeywordCap:      25,
	}
}

func newTestResearcher(o Oracle, p Provider, e Extractor, cfg config.ResearchConfig) *Researcher {
	r := NewResearcher(o, p, e, cfg, resilience.Fixed(0))
	r.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return r
}

func TestResearchSufficientFirstIteration(t *testing.T) {
	t.Parallel()

	items := twoEvidenceItems()
	o := newScriptedOracle()
	o.summary = "EV sales doubled in 2024."
	o.sufficient = func(int) (Verdict, bool) { return Verdict{Sufficient: true}, true }
	p := &stubProvider{items: items}
	e := extractorFor(items)

	r := newTestResearcher(o, p, e, testResearchConfig())
	finding := r.Research(context.Background(), "market size")

	assert.Equal(t, StatusSufficient, finding.Status)
	assert.Equal(t, Dimension("market size"), finding.Dimension)
	assert.Equal(t, o.summary, finding.Summary)
	assert.Equal(t, items, finding.Evidence)
	assert.Equal(t, RecencyRecent, finding.Recency)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, 1, o.sufficiencyCalls)

	require.Len(t, finding.Credibility, 2)
	assert.Equal(t, CredibilityMedium, finding.Credibility["https://example.com/a"])
	assert.Equal(t, CredibilityHigh, finding.Credibility["https://data.gov/b"])
}

func TestResearchExhaustsRetryBudget(t *testing.T) {
	t.Parallel()

	items := twoEvidenceItems()
	o := newScriptedOracle()
	o.summary = "Inconclusive evidence."
	o.sufficient = func(int) (Verdict, bool) { return Verdict{Sufficient: false}, true }
	p := &stubProvider{items: items}
	e := extractorFor(items)

	r := newTestResearcher(o, p, e, testResearchConfig())
	finding := r.Research(context.Background(), "user needs")

	assert.Equal(t, StatusExhausted, finding.Status)
	// The last computed summary survives exhaustion.
	assert.Equal(t, o.summary, finding.Summary)
	assert.Equal(t, 3, p.calls)
	assert.Equal(t, 3, o.sufficiencyCalls)
}

func TestResearchEmptySearchResultsConsumeRetries(t *testing.T) {
	t.Parallel()

	o := newScriptedOracle()
	p := &stubProvider{}
	e := &stubExtractor{}

	r := newTestResearcher(o, p, e, testResearchConfig())
	finding := r.Research(context.Background(), "market size")

	assert.Equal(t, StatusExhausted, finding.Status)
	assert.Empty(t, finding.Summary)
	assert.Empty(t, finding.Evidence)
	assert.Equal(t, 3, p.calls)
	assert.Equal(t, 0, e.calls)
	assert.Equal(t, 0, o.sufficiencyCalls)
}

func TestResearchNoExtractableTextConsumesRetries(t *testing.T) {
	t.Parallel()

	o := newScriptedOracle()
	p := &stubProvider{items: twoEvidenceItems()}
	e := &stubExtractor{} // every extraction returns ""

	r := newTestResearcher(o, p, e, testResearchConfig())
	finding := r.Research(context.Background(), "market size")

	assert.Equal(t, StatusExhausted, finding.Status)
	assert.Equal(t, 3, p.calls)
	assert.Equal(t, 6, e.calls)
	assert.Equal(t, 0, o.sufficiencyCalls)
}

func TestResearchMalformedVerdictTreatedInsufficient(t *testing.T) {
	t.Parallel()

	items := twoEvidenceItems()
	o := newScriptedOracle()
	o.sufficient = func(int) (Verdict, bool) { return Verdict{}, false }
	p := &stubProvider{items: items}
	e := extractorFor(items)

	r := newTestResearcher(o, p, e, testResearchConfig())
	finding := r.Research(context.Background(), "technology trends")

	assert.Equal(t, StatusExhausted, finding.Status)
	assert.Equal(t, 3, p.calls)
}

func TestResearchAccumulatesSuggestedKeywords(t *testing.T) {
	t.Parallel()

	items := twoEvidenceItems()
	o := newScriptedOracle()
	o.keywords = "ev battery"
	o.sufficient = func(call int) (Verdict, bool) {
		if call == 1 {
			return Verdict{Sufficient: false, Keywords: []string{"solid state", "charging"}}, true
		}
		return Verdict{Sufficient: true}, true
	}
	p := &stubProvider{items: items}
	e := extractorFor(items)

	r := newTestResearcher(o, p, e, testResearchConfig())
	finding := r.Research(context.Background(), "technology trends")

	assert.Equal(t, StatusSufficient, finding.Status)
	assert.Equal(t, 2, p.calls)
	assert.Equal(t, []string{"ev", "battery", "solid state", "charging"}, p.lastKeywords)
}

func TestResearchKeywordSetStaysCapped(t *testing.T) {
	t.Parallel()

	items := twoEvidenceItems()
	o := newScriptedOracle()
	o.keywords = "k1 k2 k3 k4"
	o.sufficient = func(call int) (Verdict, bool) {
		return Verdict{Keywords: []string{"extra1", "extra2", "extra3"}}, true
	}
	p := &stubProvider{items: items}
	e := extractorFor(items)

	cfg := testResearchConfig()
	cfg.Retries = 5
	cfg.KeywordCap = 6
	r := newTestResearcher(o, p, e, cfg)
	r.Research(context.Background(), "market size")

	assert.LessOrEqual(t, len(p.lastKeywords), 6)
}

func TestResearchCancelledContextStopsEarly(t *testing.T) {
	t.Parallel()

	o := newScriptedOracle()
	p := &stubProvider{} // empty results force the backoff path
	e := &stubExtractor{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewResearcher(o, p, e, testResearchConfig(), resilience.Fixed(time.Second))
	finding := r.Research(ctx, "market size")

	assert.Equal(t, StatusExhausted, finding.Status)
	assert.Equal(t, 1, p.calls)
}

func TestResearchRecordsContradictions(t *testing.T) {
	t.Parallel()

	items := twoEvidenceItems()
	o := newScriptedOracle()
	o.summary = "Sales are rising fast. Sales are collapsing."
	o.sufficient = func(int) (Verdict, bool) { return Verdict{Sufficient: true}, true }
	o.contradiction = func(first, second string) bool {
		return first == "Sales are rising fast" && second == "Sales are collapsing"
	}
	p := &stubProvider{items: items}
	e := extractorFor(items)

	r := newTestResearcher(o, p, e, testResearchConfig())
	finding := r.Research(context.Background(), "market size")

	require.Len(t, finding.Contradictions, 1)
	assert.Equal(t, SentencePair{
		First:  "Sales are rising fast",
		Second: "Sales are collapsing",
	}, finding.Contradictions[0])
}

func TestSearchAndSummarize(t *testing.T) {
	t.Parallel()

	items := twoEvidenceItems()
	o := newScriptedOracle()
	o.summary = "Supplementary summary."
	p := &stubProvider{items: items}
	e := extractorFor(items)

	r := newTestResearcher(o, p, e, testResearchConfig())
	got := r.SearchAndSummarize(context.Background(), "charging gap")
	assert.Equal(t, "Supplementary summary.", got)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, p.lastKeywords)
}

func TestSearchAndSummarizeFallsBackToClueWords(t *testing.T) {
	t.Parallel()

	items := twoEvidenceItems()
	o := newScriptedOracle()
	o.fail = true
	p := &stubProvider{items: items}
	e := extractorFor(items)

	r := newTestResearcher(o, p, e, testResearchConfig())
	got := r.SearchAndSummarize(context.Background(), "charging gap")

	// The oracle is down, so the summary is empty, but the clue itself
	// still drives the search.
	assert.Empty(t, got)
	assert.Equal(t, []string{"charging", "gap"}, p.lastKeywords)
}

func TestSearchAndSummarizeNoResults(t *testing.T) {
	t.Parallel()

	o := newScriptedOracle()
	r := newTestResearcher(o, &stubProvider{}, &stubExtractor{}, testResearchConfig())
	assert.Empty(t, r.SearchAndSummarize(context.Background(), "anything"))
}
