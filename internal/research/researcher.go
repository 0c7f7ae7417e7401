package research

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/deep-research/internal/config"
	"github.com/sells-group/deep-research/internal/resilience"
)

// Researcher drives the per-dimension retry loop: keyword generation,
// evidence search, extraction, summarization, source scoring, contradiction
// detection, and the oracle sufficiency check.
type Researcher struct {
	oracle    Oracle
	provider  Provider
	extractor Extractor
	cfg       config.ResearchConfig
	backoff   resilience.Backoff
	now       func() time.Time
}

// NewResearcher creates a Researcher. backoff may be nil, in which case a
// fixed delay from the config is used.
func NewResearcher(o Oracle, p Provider, e Extractor, cfg config.ResearchConfig, backoff resilience.Backoff) *Researcher {
	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}
	if cfg.SearchResults <= 0 {
		cfg.SearchResults = 10
	}
	if cfg.SummaryMaxChars <= 0 {
		cfg.SummaryMaxChars = 5000
	}
	if cfg.KeywordCap <= 0 {
		cfg.KeywordCap = 25
	}
	if backoff == nil {
		backoff = resilience.Fixed(cfg.Backoff())
	}
	return &Researcher{
		oracle:    o,
		provider:  p,
		extractor: e,
		cfg:       cfg,
		backoff:   backoff,
		now:       time.Now,
	}
}

// Research gathers and validates evidence for one dimension. It always
// returns a Finding; every failure inside the loop degrades to another
// attempt or, once the retry budget is spent, an Exhausted finding carrying
// whatever summary was last computed.
func (r *Researcher) Research(ctx context.Context, dim Dimension) Finding {
	log := zap.L().With(zap.String("dimension", string(dim)))
	log.Info("research: dimension started", zap.Int("retries", r.cfg.Retries))

	finding := Finding{Dimension: dim, Status: StatusPending}
	var keywords []string

	retriesLeft := r.cfg.Retries
	attempt := 0

	retry := func(reason string) bool {
		retriesLeft--
		log.Debug("research: iteration unproductive",
			zap.String("reason", reason),
			zap.Int("retries_left", retriesLeft),
		)
		if retriesLeft == 0 {
			return false
		}
		if err := resilience.Wait(ctx, r.backoff.Delay(attempt)); err != nil {
			retriesLeft = 0
			return false
		}
		attempt++
		return true
	}

	for retriesLeft > 0 {
		// Keyword generation. An empty answer is a valid low-quality
		// outcome, not an error; accumulated terms from prior iterations
		// are kept, capped to bound prompt growth.
		fresh := strings.Fields(r.oracle.Invoke(ctx, keywordsPrompt(string(dim)), ""))
		keywords = appendKeywords(keywords, fresh, r.cfg.KeywordCap)
		log.Debug("research: keywords", zap.Strings("keywords", keywords))

		items := r.provider.Search(ctx, keywords, r.cfg.SearchResults)
		if len(items) == 0 {
			if !retry("no search results") {
				break
			}
			continue
		}

		var texts []string
		for _, item := range items {
			if text := r.extractor.Extract(ctx, item.URL); text != "" {
				texts = append(texts, text)
			}
		}
		combined := strings.Join(texts, "\n")
		if strings.TrimSpace(combined) == "" {
			if !retry("no extractable text") {
				break
			}
			continue
		}

		summary := r.oracle.Invoke(ctx, summarizePrompt, truncate(combined, r.cfg.SummaryMaxChars))
		finding.Summary = summary
		finding.Evidence = items

		finding.Credibility = make(map[string]Credibility, len(items))
		for _, item := range items {
			finding.Credibility[item.URL] = AssessCredibility(item.URL)
		}

		finding.Recency = CheckRecency(summary, r.now())
		finding.Contradictions = r.detectContradictions(ctx, summary)
		if len(finding.Contradictions) > 0 {
			log.Warn("research: contradictions detected",
				zap.Int("pairs", len(finding.Contradictions)),
			)
		}

		verdict := Verdict{}
		if !r.oracle.InvokeJSON(ctx, sufficiencyPrompt, summary, &verdict) {
			// Conservative default: not sufficient, no suggestions.
			verdict = Verdict{}
		}

		if verdict.Sufficient {
			finding.Status = StatusSufficient
			log.Info("research: dimension sufficient",
				zap.Int("iterations", attempt+1),
				zap.String("recency", string(finding.Recency)),
			)
			return finding
		}

		keywords = appendKeywords(keywords, verdict.Keywords, r.cfg.KeywordCap)
		if !retry("insufficient evidence") {
			break
		}
	}

	finding.Status = StatusExhausted
	log.Warn("research: dimension exhausted",
		zap.Bool("has_summary", finding.Summary != ""),
	)
	return finding
}

// SearchAndSummarize is the one-shot variant used for supplementary
// research during report assembly: keywords, search, extract, summarize —
// no retry loop. Returns "" when no usable text was found.
func (r *Researcher) SearchAndSummarize(ctx context.Context, clue string) string {
	keywords := strings.Fields(r.oracle.Invoke(ctx, keywordsPrompt(clue), ""))
	if len(keywords) == 0 {
		keywords = strings.Fields(clue)
	}

	items := r.provider.Search(ctx, keywords, r.cfg.SearchResults)
	if len(items) == 0 {
		return ""
	}

	var texts []string
	for _, item := range items {
		if text := r.extractor.Extract(ctx, item.URL); text != "" {
			texts = append(texts, text)
		}
	}
	combined := strings.Join(texts, "\n")
	if strings.TrimSpace(combined) == "" {
		return ""
	}

	return r.oracle.Invoke(ctx, summarizePrompt, truncate(combined, r.cfg.SummaryMaxChars))
}

// detectContradictions asks the oracle about every unordered pair of
// distinct summary sentences. Quadratic in sentence count, so the sentence
// list is capped upfront.
func (r *Researcher) detectContradictions(ctx context.Context, summary string) []SentencePair {
	sentences := SplitSentences(summary)
	if limit := r.cfg.MaxSentences; limit > 0 && len(sentences) > limit {
		sentences = sentences[:limit]
	}

	var pairs []SentencePair
	for i := 0; i < len(sentences); i++ {
		for j := i + 1; j < len(sentences); j++ {
			var out struct {
				Contradiction bool `json:"contradiction"`
			}
			if r.oracle.InvokeJSON(ctx, contradictionPrompt(sentences[i], sentences[j]), "", &out) && out.Contradiction {
				pairs = append(pairs, SentencePair{First: sentences[i], Second: sentences[j]})
			}
		}
	}
	return pairs
}

// appendKeywords merges additions into the keyword set, dropping duplicates
// and evicting the oldest entries once the cap is exceeded.
func appendKeywords(keywords, additions []string, limit int) []string {
	seen := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		seen[k] = true
	}
	for _, a := range additions {
		a = strings.TrimSpace(a)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		keywords = append(keywords, a)
	}
	if limit > 0 && len(keywords) > limit {
		keywords = keywords[len(keywords)-limit:]
	}
	return keywords
}
