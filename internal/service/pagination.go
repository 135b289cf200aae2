package service

import (
	"context"
	"sync"
	"time"

	"github.com/locvowork/performpulse/internal/domain"
	"github.com/locvowork/performpulse/internal/logger"
)

// BrowseState is the fetch state of a PaginationController.
type BrowseState string

const (
	BrowseIdle     BrowseState = "idle"
	BrowseFetching BrowseState = "fetching"
	BrowseSettled  BrowseState = "settled"
)

// BrowseQuery is the search term and department filter of a browse session.
type BrowseQuery struct {
	Search     string `json:"search"`
	Department string `json:"department"`
}

// fetchKey identifies the page a fetch was issued for. seq tells apart two
// fetches for the same page when a query is left and re-entered.
type fetchKey struct {
	query BrowseQuery
	page  int
	seq   uint64
}

// BrowseSnapshot is a copy of the controller state.
type BrowseSnapshot struct {
	Search        string            `json:"search"`
	PendingSearch *string           `json:"pendingSearch,omitempty"`
	Department    string            `json:"department"`
	Page          int               `json:"page"`
	State         BrowseState       `json:"state"`
	Employees     []domain.Employee `json:"employees"`
	Total         int               `json:"total"`
	HasMore       bool              `json:"hasMore"`
	Error         string            `json:"error,omitempty"`
}

// PaginationController accumulates directory pages for one query. A query change
// replaces the accumulated list; LoadMore appends the next page. Responses for a
// key that is no longer current are dropped.
type PaginationController struct {
	directory domain.Directory
	pageSize  int
	debouncer *Debouncer

	mu      sync.Mutex
	active  bool
	query   BrowseQuery
	page    int
	seq     uint64
	state   BrowseState
	results []domain.Employee
	seen    map[int]struct{}
	total   int
	hasMore bool
	lastErr error
	pending *string
}

func NewPaginationController(directory domain.Directory, pageSize int, debounce time.Duration) *PaginationController {
	if pageSize < 1 {
		pageSize = 12
	}
	return &PaginationController{
		directory: directory,
		pageSize:  pageSize,
		debouncer: NewDebouncer(debounce),
		state:     BrowseIdle,
		seen:      make(map[int]struct{}),
	}
}

func (pc *PaginationController) currentKey() fetchKey {
	return fetchKey{query: pc.query, page: pc.page, seq: pc.seq}
}

// SetQuery starts a new query at page 0. Setting the active query again is a
// no-op unless its first page failed.
func (pc *PaginationController) SetQuery(ctx context.Context, q BrowseQuery) error {
	pc.mu.Lock()
	if pc.active && pc.query == q && !(pc.page == 0 && pc.lastErr != nil) {
		pc.mu.Unlock()
		return nil
	}
	pc.active = true
	pc.query = q
	pc.page = 0
	pc.seq++
	pc.results = nil
	pc.seen = make(map[int]struct{})
	pc.total = 0
	pc.hasMore = false
	pc.lastErr = nil
	pc.state = BrowseFetching
	key := pc.currentKey()
	pc.mu.Unlock()

	page, err := pc.fetch(ctx, key)

	pc.mu.Lock()
	defer pc.mu.Unlock()
	if key != pc.currentKey() {
		logger.DebugLog(ctx, "Dropping stale page %d for %q", key.page, key.query.Search)
		return nil
	}
	pc.state = BrowseSettled
	if err != nil {
		pc.lastErr = err
		return err
	}
	pc.merge(page)
	return nil
}

// SetSearch changes the search term and keeps the department filter.
func (pc *PaginationController) SetSearch(ctx context.Context, term string) error {
	pc.mu.Lock()
	q := pc.query
	pc.mu.Unlock()
	q.Search = term
	return pc.SetQuery(ctx, q)
}

// SetDepartment changes the department filter and keeps the search term.
func (pc *PaginationController) SetDepartment(ctx context.Context, department string) error {
	pc.mu.Lock()
	q := pc.query
	pc.mu.Unlock()
	q.Department = department
	return pc.SetQuery(ctx, q)
}

// SearchDebounced applies term once no other term arrived for the quiet period.
// A fetch already in flight is not cancelled; its response is dropped as stale.
func (pc *PaginationController) SearchDebounced(ctx context.Context, term string) {
	bg := context.WithoutCancel(ctx)
	pc.mu.Lock()
	pc.pending = &term
	pc.mu.Unlock()

	pc.debouncer.Trigger(func() {
		pc.mu.Lock()
		pc.pending = nil
		pc.mu.Unlock()
		if err := pc.SetSearch(bg, term); err != nil {
			logger.WarnLog(bg, "Debounced search for %q failed: %v", term, err)
		}
	})
}

// LoadMore fetches and appends the next page. It returns false without fetching
// when there is no active query, nothing more to load, or a fetch in flight. A
// failed fetch rolls the page index back so the call can be retried.
func (pc *PaginationController) LoadMore(ctx context.Context) (bool, error) {
	pc.mu.Lock()
	if !pc.active || pc.state == BrowseFetching || !pc.hasMore {
		pc.mu.Unlock()
		return false, nil
	}
	pc.page++
	pc.seq++
	pc.state = BrowseFetching
	pc.lastErr = nil
	key := pc.currentKey()
	pc.mu.Unlock()

	page, err := pc.fetch(ctx, key)

	pc.mu.Lock()
	defer pc.mu.Unlock()
	if key != pc.currentKey() {
		logger.DebugLog(ctx, "Dropping stale page %d for %q", key.page, key.query.Search)
		return false, nil
	}
	pc.state = BrowseSettled
	if err != nil {
		pc.page--
		pc.lastErr = err
		return false, err
	}
	pc.merge(page)
	return true, nil
}

func (pc *PaginationController) fetch(ctx context.Context, key fetchKey) (*domain.EmployeePage, error) {
	return pc.directory.FetchEmployees(ctx, domain.EmployeeQuery{
		Limit:      pc.pageSize,
		Skip:       key.page * pc.pageSize,
		Search:     key.query.Search,
		Department: key.query.Department,
	})
}

// merge appends the records not yet accumulated. Callers hold mu.
func (pc *PaginationController) merge(page *domain.EmployeePage) {
	for _, e := range page.Employees {
		if _, dup := pc.seen[e.ID]; dup {
			continue
		}
		pc.seen[e.ID] = struct{}{}
		pc.results = append(pc.results, e)
	}
	pc.total = page.Total
	pc.hasMore = len(pc.results) < pc.total && page.HasMore
}

// Snapshot copies the current state.
func (pc *PaginationController) Snapshot() BrowseSnapshot {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	snap := BrowseSnapshot{
		Search:     pc.query.Search,
		Department: pc.query.Department,
		Page:       pc.page,
		State:      pc.state,
		Employees:  append([]domain.Employee{}, pc.results...),
		Total:      pc.total,
		HasMore:    pc.hasMore,
	}
	if pc.pending != nil {
		term := *pc.pending
		snap.PendingSearch = &term
	}
	if pc.lastErr != nil {
		snap.Error = pc.lastErr.Error()
	}
	return snap
}

// Close drops a pending debounced search.
func (pc *PaginationController) Close() {
	pc.debouncer.Stop()

	pc.mu.Lock()
	pc.pending = nil
	pc.mu.Unlock()
}
