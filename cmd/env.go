package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/deep-research/internal/evidence"
	"github.com/sells-group/deep-research/internal/extract"
	"github.com/sells-group/deep-research/internal/oracle"
	"github.com/sells-group/deep-research/internal/research"
	"github.com/sells-group/deep-research/internal/store"
	anthropicpkg "github.com/sells-group/deep-research/pkg/anthropic"
	"github.com/sells-group/deep-research/pkg/jina"
)

func initStore(ctx context.Context) (*store.SQLiteStore, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initWorkflow wires the full research pipeline from config. The returned
// cleanup closes the store; it is a no-op when persistence is disabled.
func initWorkflow(ctx context.Context) (*research.Workflow, func(), error) {
	if runNoStore {
		return buildWorkflow(nil), func() {}, nil
	}
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	return buildWorkflow(st), func() { _ = st.Close() }, nil
}

// buildWorkflow wires the full research pipeline from config. st may be nil
// to run without persistence or search caching.
func buildWorkflow(st store.Store) *research.Workflow {
	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)
	jinaClient := jina.NewClient(cfg.Jina.Key,
		jina.WithBaseURL(cfg.Jina.BaseURL),
		jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL),
	)

	var cache evidence.Cache
	if st != nil {
		cache = st
	}

	o := oracle.New(anthropicClient, cfg.Anthropic)
	provider := evidence.NewSearcher(jinaClient, cache)
	extractor := extract.NewChain(jinaClient)

	researcher := research.NewResearcher(o, provider, extractor, cfg.Research, nil)
	assembler := research.NewAssembler(o, researcher)
	return research.NewWorkflow(o, researcher, assembler, st)
}
