package research

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Supplementer performs a one-shot search-and-summarize for a validation
// clue. Results are observational: they are logged, never merged back into
// section text.
type Supplementer interface {
	SearchAndSummarize(ctx context.Context, clue string) string
}

// assemblyState tracks the assembler through its strictly sequential
// lifecycle. No transition may be skipped.
type assemblyState int

const (
	stateEmpty assemblyState = iota
	stateTitleSet
	stateIntroductionSet
	stateSectionDrafted
	stateValidated
	stateConclusionSet
	stateReferencesAttached
	stateQualityReviewed
)

// Assembler drafts report sections from per-dimension findings and runs a
// validation pass after each section that may trigger supplementary
// research before the next section is drafted.
type Assembler struct {
	oracle Oracle
	supp   Supplementer
	state  assemblyState
}

// NewAssembler creates an Assembler. supp may be nil to disable
// supplementary research on validation gaps.
func NewAssembler(o Oracle, supp Supplementer) *Assembler {
	return &Assembler{oracle: o, supp: supp}
}

// Assemble builds the report for a topic from finalized findings. Sections
// are appended in the dimension order produced at decomposition time; keys
// are dense integers starting at 1. Assemble always returns a Report: under
// total oracle unavailability every field is empty, which is a quality
// failure, not an error.
func (a *Assembler) Assemble(ctx context.Context, topic string, dims []Dimension, findings map[Dimension]*Finding) *Report {
	log := zap.L().With(zap.String("topic", topic))
	log.Info("assemble: starting", zap.Int("dimensions", len(dims)))

	a.state = stateEmpty

	// Knowledge annotation pass: a lightweight entity/relation extraction
	// per dimension, free text only.
	knowledge := make(map[Dimension]string, len(dims))
	for _, dim := range dims {
		summary := ""
		if f := findings[dim]; f != nil {
			summary = f.Summary
		}
		annotated := a.oracle.Invoke(ctx, knowledgePrompt(dim), summary)
		if annotated == "" {
			annotated = summary
		}
		knowledge[dim] = annotated
	}

	report := NewReport()

	report.Title = a.oracle.Invoke(ctx, titlePrompt(topic), "")
	if report.Title == "" {
		report.Title = fmt.Sprintf("%s research report", topic)
	}
	a.state = stateTitleSet

	report.Introduction = a.oracle.Invoke(ctx, introPrompt(topic), "")
	a.state = stateIntroductionSet

	for _, dim := range dims {
		draft := a.oracle.Invoke(ctx, sectionPrompt(dim), knowledge[dim])
		key := report.AppendSection(draft)
		a.state = stateSectionDrafted
		log.Debug("assemble: section drafted",
			zap.String("dimension", string(dim)),
			zap.Int("section", key),
		)

		a.validateSections(ctx, report, dim)
		a.state = stateValidated
	}

	report.Conclusion = a.oracle.Invoke(ctx, conclusionPrompt(topic), "")
	a.state = stateConclusionSet

	report.References = buildReferences(dims, findings)
	a.state = stateReferencesAttached

	serialized, err := json.Marshal(report)
	if err == nil {
		report.QualityNotes = a.oracle.Invoke(ctx, qualityPrompt, string(serialized))
	}
	a.state = stateQualityReviewed

	log.Info("assemble: complete",
		zap.Int("sections", len(report.Sections)),
		zap.Int("references", len(report.References)),
	)
	return report
}

// validateSections asks the oracle whether the entire accumulated sections
// map has data gaps. A malformed answer means no search is needed. When
// gaps are reported, each clue gets a one-shot supplementary
// search-and-summarize whose result is logged only.
func (a *Assembler) validateSections(ctx context.Context, report *Report, dim Dimension) {
	sectionsJSON, err := json.Marshal(report.Sections)
	if err != nil {
		return
	}

	verdict := GapVerdict{}
	if !a.oracle.InvokeJSON(ctx, gapPrompt, string(sectionsJSON), &verdict) {
		verdict = GapVerdict{}
	}
	if !verdict.NeedsSearch || a.supp == nil {
		return
	}

	for _, clue := range verdict.SearchClues {
		result := a.supp.SearchAndSummarize(ctx, clue)
		zap.L().Info("assemble: supplementary research",
			zap.String("dimension", string(dim)),
			zap.String("clue", clue),
			zap.Int("summary_chars", len(result)),
		)
	}
}

// buildReferences aggregates the evidence of every dimension processed, in
// dimension order, deduplicated by URL.
func buildReferences(dims []Dimension, findings map[Dimension]*Finding) []string {
	seen := map[string]bool{}
	var refs []string
	for _, dim := range dims {
		f := findings[dim]
		if f == nil {
			continue
		}
		for _, item := range f.Evidence {
			if item.URL == "" || seen[item.URL] {
				continue
			}
			seen[item.URL] = true
			refs = append(refs, fmt.Sprintf("%s - %s", item.Title, item.URL))
		}
	}
	return refs
}
