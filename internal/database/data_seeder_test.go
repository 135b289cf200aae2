package database

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/performpulse/internal/domain"
)

type pagedDirectory struct {
	total   int
	fail    map[int]bool
	noID    map[int]bool
	callsMu sync.Mutex
	calls   int
}

func (d *pagedDirectory) FetchEmployees(ctx context.Context, q domain.EmployeeQuery) (*domain.EmployeePage, error) {
	d.callsMu.Lock()
	d.calls++
	d.callsMu.Unlock()

	if d.fail[q.Skip] {
		return nil, &domain.TransportError{Op: "directory list", StatusCode: 503, Err: errors.New("unavailable")}
	}
	var emps []domain.Employee
	for i := q.Skip; i < q.Skip+q.Limit && i < d.total; i++ {
		id := i + 1
		if d.noID[id] {
			id = 0
		}
		emps = append(emps, domain.Employee{ID: id})
	}
	return &domain.EmployeePage{Employees: emps, Total: d.total, Skip: q.Skip, Limit: q.Limit}, nil
}

func (d *pagedDirectory) FetchEmployeeByID(ctx context.Context, id int) (*domain.Employee, error) {
	return nil, domain.ErrNotFound
}

func (d *pagedDirectory) FetchDepartmentNames(ctx context.Context) ([]string, error) {
	return nil, nil
}

type memoryIndex struct {
	mu      sync.Mutex
	ensured bool
	deleted bool
	docs    map[int]domain.Employee
	batches  []int
	countErr error
}

func (m *memoryIndex) EnsureIndex(ctx context.Context) error {
	m.ensured = true
	return nil
}

func (m *memoryIndex) DeleteIndex(ctx context.Context) error {
	m.deleted = true
	return nil
}

func (m *memoryIndex) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	return int64(len(m.docs)), nil
}

func (m *memoryIndex) BulkIndexEmployees(ctx context.Context, employees []domain.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs == nil {
		m.docs = map[int]domain.Employee{}
	}
	for _, e := range employees {
		m.docs[e.ID] = e
	}
	m.batches = append(m.batches, len(employees))
	return nil
}

func TestDataSeeder_SeedData(t *testing.T) {
	ctx := context.Background()

	t.Run("mirrors every page", func(t *testing.T) {
		idx := &memoryIndex{}
		res, err := NewDataSeeder(&pagedDirectory{total: 25}, idx).
			SeedData(ctx, SeedOptions{PageSize: 10, Workers: 2})
		require.NoError(t, err)
		assert.True(t, idx.ensured)
		assert.Equal(t, 25, res.Indexed)
		assert.Equal(t, 0, res.Failed)
		assert.Len(t, idx.docs, 25)
		assert.Equal(t, int64(25), res.Mirrored)
	})

	t.Run("caps records", func(t *testing.T) {
		idx := &memoryIndex{}
		res, err := NewDataSeeder(&pagedDirectory{total: 25}, idx).
			SeedData(ctx, SeedOptions{PageSize: 10, Workers: 2, MaxRecords: 15})
		require.NoError(t, err)
		assert.Equal(t, 15, res.Total)
		assert.Equal(t, 15, res.Indexed)
		assert.Len(t, idx.docs, 15)
	})

	t.Run("failed pages are skipped", func(t *testing.T) {
		idx := &memoryIndex{}
		dir := &pagedDirectory{total: 30, fail: map[int]bool{10: true}}
		res, err := NewDataSeeder(dir, idx).
			SeedData(ctx, SeedOptions{PageSize: 10, Workers: 1})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Failed)
		assert.Equal(t, 20, res.Indexed)
		// first page, three attempts at skip 10, one at skip 20
		assert.Equal(t, 5, dir.calls)
	})

	t.Run("rechunks to bulk size", func(t *testing.T) {
		idx := &memoryIndex{}
		res, err := NewDataSeeder(&pagedDirectory{total: 25}, idx).
			SeedData(ctx, SeedOptions{PageSize: 10, Workers: 3, BulkSize: 4})
		require.NoError(t, err)
		assert.Equal(t, 25, res.Indexed)
		assert.Len(t, idx.docs, 25)
		for _, n := range idx.batches {
			assert.LessOrEqual(t, n, 4)
		}
		assert.Len(t, idx.batches, 7)
	})

	t.Run("records without id are skipped", func(t *testing.T) {
		idx := &memoryIndex{}
		res, err := NewDataSeeder(&pagedDirectory{total: 20, noID: map[int]bool{3: true, 14: true}}, idx).
			SeedData(ctx, SeedOptions{PageSize: 10, Workers: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Skipped)
		assert.Equal(t, 18, res.Indexed)
		assert.NotContains(t, idx.docs, 0)
	})

	t.Run("unreadable count is reported", func(t *testing.T) {
		idx := &memoryIndex{countErr: errors.New("cluster red")}
		res, err := NewDataSeeder(&pagedDirectory{total: 5}, idx).
			SeedData(ctx, SeedOptions{PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 5, res.Indexed)
		assert.Equal(t, int64(-1), res.Mirrored)
	})

	t.Run("first page failure is fatal", func(t *testing.T) {
		_, err := NewDataSeeder(&pagedDirectory{total: 30, fail: map[int]bool{0: true}}, &memoryIndex{}).
			SeedData(ctx, SeedOptions{PageSize: 10})
		assert.True(t, domain.IsTransport(err))
	})
}

func TestDataSeeder_ClearData(t *testing.T) {
	idx := &memoryIndex{}
	require.NoError(t, NewDataSeeder(&pagedDirectory{}, idx).ClearData(context.Background()))
	assert.True(t, idx.deleted)
}

func TestGetPresetConfig(t *testing.T) {
	max, size := GetPresetConfig(PresetSmall)
	assert.Equal(t, 30, max)
	assert.Equal(t, 10, size)

	max, _ = GetPresetConfig("unknown")
	assert.Equal(t, 0, max)
}
