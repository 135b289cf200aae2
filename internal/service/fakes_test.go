package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/locvowork/performpulse/internal/domain"
)

// fakeDirectory serves a fixed employee list with dummyjson paging semantics.
type fakeDirectory struct {
	mu        sync.Mutex
	employees []domain.Employee
	names     []string
	namesErr  error
	listErr   error
	calls     []domain.EmployeeQuery

	// gate, when set, is consulted before each FetchEmployees answers.
	gate func(q domain.EmployeeQuery)
	// shift moves the window of every page, to simulate unstable paging.
	shift int
}

func newFakeDirectory(n int) *fakeDirectory {
	depts := []string{"Engineering", "Sales", "Legal"}
	emps := make([]domain.Employee, n)
	for i := range emps {
		emps[i] = domain.Employee{
			ID:                i + 1,
			FirstName:         fmt.Sprintf("Name%d", i+1),
			LastName:          "Doe",
			Email:             fmt.Sprintf("name%d@example.com", i+1),
			Company:           domain.Company{Department: depts[i%len(depts)], Title: "Engineer"},
			PerformanceRating: 3,
			Feedback:          "Solid work.",
		}
	}
	return &fakeDirectory{employees: emps}
}

func (d *fakeDirectory) FetchEmployees(ctx context.Context, q domain.EmployeeQuery) (*domain.EmployeePage, error) {
	d.mu.Lock()
	d.calls = append(d.calls, q)
	gate, listErr, shift := d.gate, d.listErr, d.shift
	d.mu.Unlock()

	if gate != nil {
		gate(q)
	}
	if listErr != nil {
		return nil, listErr
	}

	var matched []domain.Employee
	for _, e := range d.employees {
		if q.Search == "" || strings.Contains(strings.ToLower(e.FirstName), strings.ToLower(q.Search)) {
			matched = append(matched, e)
		}
	}

	start := q.Skip - shift
	if start < 0 {
		start = 0
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	var window []domain.Employee
	if start < len(matched) {
		window = matched[start:end]
	}

	var out []domain.Employee
	for _, e := range window {
		if q.Department == "" || strings.EqualFold(e.Company.Department, q.Department) {
			out = append(out, e)
		}
	}
	return &domain.EmployeePage{
		Employees: out,
		Total:     len(matched),
		Skip:      q.Skip,
		Limit:     q.Limit,
		HasMore:   q.Skip+len(out) < len(matched),
	}, nil
}

func (d *fakeDirectory) FetchEmployeeByID(ctx context.Context, id int) (*domain.Employee, error) {
	for _, e := range d.employees {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (d *fakeDirectory) FetchDepartmentNames(ctx context.Context) ([]string, error) {
	if d.namesErr != nil {
		return nil, d.namesErr
	}
	return d.names, nil
}

func (d *fakeDirectory) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

func (d *fakeDirectory) setListErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listErr = err
}

// memBlobStore is an in-memory domain.BlobStore that records writes.
type memBlobStore struct {
	mu     sync.Mutex
	blobs  map[string][]byte
	writes int
	getErr error
	setErr error
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: map[string][]byte{}}
}

func (m *memBlobStore) Get(ctx context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	b, ok := m.blobs[name]
	if !ok {
		return nil, domain.ErrBlobNotFound
	}
	return b, nil
}

func (m *memBlobStore) Set(ctx context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.setErr != nil {
		return m.setErr
	}
	m.blobs[name] = append([]byte(nil), data...)
	return nil
}

func (m *memBlobStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

var errUnavailable = errors.New("service unavailable")
