package research

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/deep-research/internal/store"
)

// Result is the output of one workflow run.
type Result struct {
	RunID      string                 `json:"run_id,omitempty"`
	Topic      string                 `json:"topic"`
	Dimensions []Dimension            `json:"dimensions"`
	Findings   map[Dimension]*Finding `json:"findings"`
	Report     *Report                `json:"report"`
}

// Workflow runs the full research pipeline for one topic: decomposition,
// sequential per-dimension research, report assembly, and persistence. One
// Workflow is built per run; there is no shared mutable state across runs.
type Workflow struct {
	oracle     Oracle
	researcher *Researcher
	assembler  *Assembler
	store      store.Store // optional
}

// NewWorkflow wires the workflow from its collaborators. st may be nil to
// skip run persistence.
func NewWorkflow(o Oracle, r *Researcher, a *Assembler, st store.Store) *Workflow {
	return &Workflow{oracle: o, researcher: r, assembler: a, store: st}
}

// Run executes the workflow. Under the degraded failure modes of the
// research loops it still returns a Result with a complete (possibly
// hollow) Report; only infrastructure failures around run persistence
// surface as errors.
func (w *Workflow) Run(ctx context.Context, topic string) (*Result, error) {
	log := zap.L().With(zap.String("topic", topic))
	log.Info("workflow: starting")

	result := &Result{Topic: topic, Findings: map[Dimension]*Finding{}}

	var runID string
	if w.store != nil {
		run, err := w.store.CreateRun(ctx, topic)
		if err != nil {
			return nil, eris.Wrap(err, "workflow: create run")
		}
		runID = run.ID
		result.RunID = runID
	}

	setStatus := func(status store.RunStatus) {
		if w.store == nil {
			return
		}
		if err := w.store.UpdateRunStatus(ctx, runID, status); err != nil {
			log.Warn("workflow: failed to update status", zap.Error(err))
		}
	}

	setStatus(store.RunStatusResearching)
	result.Dimensions = Decompose(ctx, w.oracle, topic)

	// Dimensions are processed strictly in decomposition order; section
	// order depends on it.
	for _, dim := range result.Dimensions {
		finding := w.researcher.Research(ctx, dim)
		result.Findings[dim] = &finding
	}

	setStatus(store.RunStatusAssembling)
	result.Report = w.assembler.Assemble(ctx, topic, result.Dimensions, result.Findings)

	if w.store != nil {
		if err := w.store.SaveReport(ctx, runID, result.Report); err != nil {
			log.Warn("workflow: failed to save report", zap.Error(err))
		}
	}

	sufficient := 0
	for _, f := range result.Findings {
		if f.Status == StatusSufficient {
			sufficient++
		}
	}
	log.Info("workflow: complete",
		zap.String("run_id", runID),
		zap.Int("dimensions", len(result.Dimensions)),
		zap.Int("sufficient", sufficient),
		zap.Int("sections", len(result.Report.Sections)),
	)

	return result, nil
}
