package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"dataportal/domain/core"
	"dataportal/domain/dataset"
	"dataportal/internal"
	"dataportal/internal/analysis"
	"dataportal/internal/chart"
	"dataportal/internal/errors"
	"dataportal/internal/metrics"
	"dataportal/ports"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/semaphore"
)

// ExplorerConfig bounds the work the service does per request
type ExplorerConfig struct {
	MaxConcurrentParses int
	PreviewRows         int
}

// ExplorerService runs the exploration pipeline for a session: load a file
// once, then recompute every derived view from the stored table on demand
type ExplorerService struct {
	store       ports.SessionStore
	loader      ports.TableLoader
	parses      *semaphore.Weighted
	previewRows int
	clock       clockwork.Clock
	logger      *internal.Logger
}

// NewExplorerService creates an explorer service
func NewExplorerService(store ports.SessionStore, loader ports.TableLoader, cfg ExplorerConfig, clock clockwork.Clock, logger *internal.Logger) *ExplorerService {
	if cfg.MaxConcurrentParses < 1 {
		cfg.MaxConcurrentParses = 1
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ExplorerService{
		store:       store,
		loader:      loader,
		parses:      semaphore.NewWeighted(int64(cfg.MaxConcurrentParses)),
		previewRows: cfg.PreviewRows,
		clock:       clock,
		logger:      logger,
	}
}

// Overview is everything shown for a loaded table before any question is asked
type Overview struct {
	Filename         string               `json:"filename"`
	Format           dataset.Format       `json:"format"`
	Checksum         core.Hash            `json:"checksum"`
	Rows             int                  `json:"rows"`
	Columns          int                  `json:"columns"`
	Preview          dataset.TableView    `json:"preview"`
	PreviewTruncated bool                 `json:"preview_truncated"`
	Summary          analysis.Summary     `json:"summary"`
	HeadN            int                  `json:"head_n"`
	Head             dataset.TableView    `json:"head"`
	TailN            int                  `json:"tail_n"`
	Tail             dataset.TableView    `json:"tail"`
	DTypes           []dataset.ColumnType `json:"dtypes"`
	ColumnNames      []string             `json:"column_names"`
}

// GroupRequest selects the keys, column and reducer of a group-by
type GroupRequest struct {
	Keys    []string `json:"keys" form:"keys"`
	Column  string   `json:"column" form:"column"`
	Reducer string   `json:"reducer" form:"reducer"`
}

// CountResult is a value count together with its preset charts
type CountResult struct {
	Frequency *analysis.FrequencyTable `json:"frequency"`
	Charts    []*chart.Figure          `json:"charts"`
}

// NewSession registers a session for a new visitor
func (s *ExplorerService) NewSession(ctx context.Context) (core.SessionID, error) {
	return s.store.Create(ctx)
}

// SessionExists reports whether id names a live session, with or without a table
func (s *ExplorerService) SessionExists(ctx context.Context, id core.SessionID) (bool, error) {
	_, err := s.store.Get(ctx, id)
	switch {
	case err == nil, stderrors.Is(err, core.ErrNoTable):
		return true, nil
	case stderrors.Is(err, core.ErrSessionNotFound):
		return false, nil
	default:
		return false, errors.Wrap(err, "failed to read session")
	}
}

// Load reads an upload into the session, replacing any earlier table.
// At most MaxConcurrentParses uploads are parsed at once; others wait
// until ctx is done.
func (s *ExplorerService) Load(ctx context.Context, id core.SessionID, filename string, size int64, src io.Reader) (*dataset.Dataset, error) {
	if err := s.parses.Acquire(ctx, 1); err != nil {
		return nil, errors.Unavailable("too many uploads in progress, try again", err)
	}
	defer s.parses.Release(1)
	metrics.ParsesInFlight.Inc()
	defer metrics.ParsesInFlight.Dec()

	start := time.Now()
	hashed := core.NewHasher(src)
	table, format, err := s.loader.Load(ctx, filename, hashed)
	if err != nil {
		metrics.RecordLoad(string(format), 0, time.Since(start), err)
		s.logger.Warn("[ExplorerService] load of %s failed for session %s: %v", filename, id, err)
		return nil, err
	}

	ds := &dataset.Dataset{
		SessionID: id,
		Filename:  filename,
		Format:    format,
		FileSize:  size,
		Checksum:  hashed.Sum(),
		LoadedAt:  s.clock.Now(),
		Table:     table,
	}
	if err := s.store.Put(ctx, id, ds); err != nil {
		return nil, errors.Wrap(err, "failed to store dataset")
	}

	rows, _ := table.Shape()
	metrics.RecordLoad(string(format), rows, time.Since(start), nil)
	s.logger.Debug("[ExplorerService] session %s loaded %s sha256:%s", id, filename, ds.Checksum.Short())
	return ds, nil
}

// Reset drops the session's table
func (s *ExplorerService) Reset(ctx context.Context, id core.SessionID) error {
	return s.store.Delete(ctx, id)
}

// Dataset returns the session's dataset
func (s *ExplorerService) Dataset(ctx context.Context, id core.SessionID) (*dataset.Dataset, error) {
	ds, err := s.store.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, core.ErrSessionNotFound) || stderrors.Is(err, core.ErrNoTable) {
			return nil, errors.NoTable()
		}
		return nil, errors.Wrap(err, "failed to read session")
	}
	return ds, nil
}

func (s *ExplorerService) table(ctx context.Context, id core.SessionID) (*dataset.Table, error) {
	ds, err := s.Dataset(ctx, id)
	if err != nil {
		return nil, err
	}
	return ds.Table, nil
}

// Overview summarizes the session's table with head and tail of n rows
func (s *ExplorerService) Overview(ctx context.Context, id core.SessionID, head, tail int) (overview *Overview, err error) {
	defer s.record("overview", time.Now(), &err)

	ds, err := s.Dataset(ctx, id)
	if err != nil {
		return nil, err
	}
	t := ds.Table
	rows, cols := t.Shape()

	preview := t
	if s.previewRows > 0 && rows > s.previewRows {
		preview = t.Head(s.previewRows)
	}

	return &Overview{
		Filename:         ds.Filename,
		Format:           ds.Format,
		Checksum:         ds.Checksum,
		Rows:             rows,
		Columns:          cols,
		Preview:          preview.View(),
		PreviewTruncated: preview != t,
		Summary:          analysis.Describe(t),
		HeadN:            t.ClampRows(head),
		Head:             t.Head(head).View(),
		TailN:            t.ClampRows(tail),
		Tail:             t.Tail(tail).View(),
		DTypes:           t.DTypes(),
		ColumnNames:      t.ColumnNames(),
	}, nil
}

// Count returns the topN value count of column and its charts
func (s *ExplorerService) Count(ctx context.Context, id core.SessionID, column string, topN int) (result *CountResult, err error) {
	defer s.record("count", time.Now(), &err)

	t, err := s.table(ctx, id)
	if err != nil {
		return nil, err
	}
	freq, err := analysis.Count(t, column, topN)
	if err != nil {
		return nil, err
	}
	charts, err := chart.CountCharts(freq)
	if err != nil {
		return nil, fmt.Errorf("count charts: %w", err)
	}
	return &CountResult{Frequency: freq, Charts: charts}, nil
}

// Group aggregates the session's table
func (s *ExplorerService) Group(ctx context.Context, id core.SessionID, req GroupRequest) (agg *analysis.AggregationTable, err error) {
	defer s.record("group", time.Now(), &err)

	t, err := s.table(ctx, id)
	if err != nil {
		return nil, err
	}
	return analysis.GroupAggregate(t, req.Keys, req.Column, req.Reducer)
}

// Chart aggregates the session's table and charts the result
func (s *ExplorerService) Chart(ctx context.Context, id core.SessionID, req GroupRequest, spec chart.Spec) (fig *chart.Figure, err error) {
	defer s.record("chart", time.Now(), &err)

	t, err := s.table(ctx, id)
	if err != nil {
		return nil, err
	}
	agg, err := analysis.GroupAggregate(t, req.Keys, req.Column, req.Reducer)
	if err != nil {
		return nil, err
	}
	result, err := agg.Table()
	if err != nil {
		return nil, fmt.Errorf("aggregation table: %w", err)
	}
	return chart.Build(result, spec)
}

func (s *ExplorerService) record(operation string, start time.Time, err *error) {
	metrics.RecordOperation(operation, time.Since(start), *err)
	if *err != nil {
		s.logger.Debug("[ExplorerService] %s failed: %v", operation, *err)
	}
}
