package database

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/locvowork/performpulse/internal/domain"
	"github.com/locvowork/performpulse/internal/logger"
	"github.com/locvowork/performpulse/pkg/dataflow"
)

// EmployeeIndex is the write side of the employee mirror.
type EmployeeIndex interface {
	EnsureIndex(ctx context.Context) error
	DeleteIndex(ctx context.Context) error
	BulkIndexEmployees(ctx context.Context, employees []domain.Employee) error
	Count(ctx context.Context) (int64, error)
}

// DataSeeder copies the remote directory into the Elasticsearch mirror.
type DataSeeder struct {
	source domain.Directory
	index  EmployeeIndex
}

func NewDataSeeder(source domain.Directory, index EmployeeIndex) *DataSeeder {
	return &DataSeeder{source: source, index: index}
}

// SeedOptions tunes one seeding run.
type SeedOptions struct {
	PageSize   int
	Workers    int
	MaxRecords int // 0 mirrors everything
	BulkSize   int // documents per bulk request, defaults to PageSize
}

// SeedResult reports what a seeding run did.
type SeedResult struct {
	Total    int
	Indexed  int
	Failed   int
	Skipped  int
	// Mirrored is the document count of the index after the run, -1 when it
	// could not be read.
	Mirrored int64
	Elapsed  time.Duration
}

// SeedData pages through the directory with parallel fetchers and bulk-indexes
// the records in chunks of BulkSize. Pages that keep failing after retries are
// counted, not fatal. Records without an id are skipped.
func (ds *DataSeeder) SeedData(ctx context.Context, opts SeedOptions) (*SeedResult, error) {
	start := time.Now()
	if opts.PageSize < 1 {
		opts.PageSize = 50
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.BulkSize < 1 {
		opts.BulkSize = opts.PageSize
	}

	if err := ds.index.EnsureIndex(ctx); err != nil {
		return nil, err
	}

	first, err := ds.source.FetchEmployees(ctx, domain.EmployeeQuery{Limit: opts.PageSize})
	if err != nil {
		return nil, fmt.Errorf("fetch first page: %w", err)
	}

	total := first.Total
	if opts.MaxRecords > 0 && opts.MaxRecords < total {
		total = opts.MaxRecords
	}
	logger.InfoLog(ctx, "Seeding %d of %d employees", total, first.Total)

	var offsets []int
	for skip := opts.PageSize; skip < total; skip += opts.PageSize {
		offsets = append(offsets, skip)
	}

	var failed, skipped int64
	pages := dataflow.Map(ctx, dataflow.From(ctx, offsets...), func(skip int) ([]domain.Employee, error) {
		page, err := ds.source.FetchEmployees(ctx, domain.EmployeeQuery{Limit: opts.PageSize, Skip: skip})
		if err != nil {
			return nil, fmt.Errorf("fetch page at %d: %w", skip, err)
		}
		return page.Employees, nil
	},
		dataflow.WithWorkers(opts.Workers),
		dataflow.WithBufferSize(opts.Workers),
		dataflow.WithRetry(2, func(attempt int) time.Duration { return time.Duration(attempt) * 200 * time.Millisecond }),
		dataflow.WithErrorHandler(func(err error) bool {
			atomic.AddInt64(&failed, 1)
			logger.WarnLog(ctx, "Skipping page: %v", err)
			return true
		}),
	)

	records := dataflow.FanIn(ctx, dataflow.From(ctx, first.Employees...), dataflow.Flatten(ctx, pages))
	// documents are keyed by id
	valid := dataflow.Filter(ctx, records, func(e domain.Employee) bool {
		if e.ID > 0 {
			return true
		}
		atomic.AddInt64(&skipped, 1)
		return false
	})

	indexed := 0
	err = dataflow.ForEach(ctx, dataflow.Batch(ctx, valid, opts.BulkSize), func(batch []domain.Employee) error {
		if room := total - indexed; room < len(batch) {
			batch = batch[:max(room, 0)]
		}
		if len(batch) == 0 {
			return nil
		}
		if err := ds.index.BulkIndexEmployees(ctx, batch); err != nil {
			return err
		}
		indexed += len(batch)
		return nil
	})
	if err != nil {
		return nil, err
	}

	mirrored, err := ds.index.Count(ctx)
	if err != nil {
		logger.WarnLog(ctx, "Counting mirrored employees failed: %v", err)
		mirrored = -1
	}

	res := &SeedResult{
		Mirrored: mirrored,
		Total:   total,
		Indexed: indexed,
		Failed:  int(failed),
		Skipped: int(skipped),
		Elapsed: time.Since(start),
	}
	logger.InfoLog(ctx, "Seeded %d employees in %v (%d pages failed, %d records skipped)", res.Indexed, res.Elapsed, res.Failed, res.Skipped)
	return res, nil
}

// ClearData drops the mirror index.
func (ds *DataSeeder) ClearData(ctx context.Context) error {
	if err := ds.index.DeleteIndex(ctx); err != nil {
		return err
	}
	logger.InfoLog(ctx, "Cleared employee mirror")
	return nil
}

// Presets
type SeedPreset string

const (
	PresetSmall  SeedPreset = "small"
	PresetMedium SeedPreset = "medium"
	PresetFull   SeedPreset = "full"
)

// GetPresetConfig returns the record cap and page size of a preset.
func GetPresetConfig(preset SeedPreset) (maxRecords, pageSize int) {
	switch preset {
	case PresetSmall:
		return 30, 10
	case PresetMedium:
		return 100, 25
	case PresetFull:
		return 0, 50
	default:
		return 0, 50
	}
}
