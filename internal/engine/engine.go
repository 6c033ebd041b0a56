// Package engine composes candidate gathering, the merged catalog, usage
// history and ranking behind the one query surface shared by the CLI and
// the daemon.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/google/shlex"

	"github.com/mfriesel/flint/internal/calc"
	"github.com/mfriesel/flint/internal/catalog"
	"github.com/mfriesel/flint/internal/history"
	"github.com/mfriesel/flint/internal/rank"
	"github.com/mfriesel/flint/internal/sources"
)

// Dependencies are the collaborators an Engine composes.
type Dependencies struct {
	Sources []sources.Source
	History *history.Store
	Ranker  *rank.Ranker
	Logger  *slog.Logger
}

// Config holds engine policy.
type Config struct {
	// RecordUsage enables history increments on Record. Disabled when the
	// caller supplies its own candidate lists without an explicit history
	// path, so ad-hoc runs don't pollute the launcher's usage counts.
	RecordUsage bool
}

// Results is the outcome of one query.
type Results struct {
	// Expression is set when the query evaluates as arithmetic. It is
	// presented before any matches.
	Expression *calc.Result

	// Matches are the ranked catalog items.
	Matches []rank.Match

	// Fallback is set when a non-empty query produced nothing at all,
	// neither expression nor matches: the raw query wrapped as a
	// runnable item.
	Fallback *catalog.Item
}

// Engine holds a built index and answers queries against it. Queries and
// refreshes may run concurrently; readers always see a complete index.
type Engine struct {
	srcs   []sources.Source
	hist   *history.Store
	ranker *rank.Ranker
	logger *slog.Logger
	record bool

	index atomic.Pointer[catalog.Index]
}

// New builds an Engine. The index starts empty; call Refresh to populate it.
func New(deps Dependencies, cfg Config) (*Engine, error) {
	if deps.Ranker == nil {
		return nil, errors.New("engine: ranker is required")
	}
	if deps.History == nil {
		return nil, errors.New("engine: history store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		srcs:   deps.Sources,
		hist:   deps.History,
		ranker: deps.Ranker,
		logger: logger,
		record: cfg.RecordUsage,
	}
	e.index.Store(catalog.Build())
	return e, nil
}

// Refresh gathers candidates from every source, builds a fresh index and
// swaps it in atomically. In-flight queries keep the old index.
func (e *Engine) Refresh(ctx context.Context) error {
	lists := sources.Gather(ctx, e.logger, e.srcs...)
	if err := ctx.Err(); err != nil {
		return err
	}

	idx := catalog.Build(lists...)
	e.index.Store(idx)
	e.logger.Debug("index refreshed", "items", idx.Len(), "sources", len(e.srcs))
	return nil
}

// Query ranks the current index against query. limit caps the returned
// matches on top of the ranker's own cap; 0 means no extra cap. Query does
// no I/O and never fails.
func (e *Engine) Query(query string, limit int) Results {
	var res Results

	if v, err := calc.Evaluate(query); err == nil {
		res.Expression = &v
	}

	res.Matches = e.ranker.Rank(query, e.index.Load(), e.hist)
	if limit > 0 && len(res.Matches) > limit {
		res.Matches = res.Matches[:limit]
	}

	if res.Expression == nil && len(res.Matches) == 0 && strings.TrimSpace(query) != "" {
		res.Fallback = rawItem(query)
	}
	return res
}

// Record increments the usage count for identity, if recording is enabled.
func (e *Engine) Record(identity string) {
	if !e.record {
		e.logger.Debug("usage recording disabled, skipping", "identity", identity)
		return
	}
	e.hist.Record(identity)
}

// Flush persists the history store.
func (e *Engine) Flush() error {
	return e.hist.Flush()
}

// Close flushes history. Call before process exit.
func (e *Engine) Close() error {
	if err := e.hist.Flush(); err != nil {
		return err
	}
	e.logger.Debug("engine closed")
	return nil
}

// Index returns the current index snapshot.
func (e *Engine) Index() *catalog.Index {
	return e.index.Load()
}

// History returns the engine's history store.
func (e *Engine) History() *history.Store {
	return e.hist
}

// rawItem wraps a query string as a runnable ad-hoc item.
func rawItem(query string) *catalog.Item {
	item := &catalog.Item{
		Identity: query,
		Name:     query,
		Source:   catalog.SourceExternal,
	}
	if argv, err := shlex.Split(query); err == nil {
		item.Exec = argv
	}
	return item
}
