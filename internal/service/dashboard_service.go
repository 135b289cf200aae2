package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/locvowork/performpulse/internal/domain"
)

// DashboardSampleSize is how many employees the dashboard aggregates over.
const DashboardSampleSize = 100

// DashboardService computes the read-only aggregates shown on the dashboard.
type DashboardService struct {
	directory   domain.Directory
	departments *DepartmentIndex
	bookmarks   *BookmarkStore
	now         func() time.Time
}

func NewDashboardService(directory domain.Directory, departments *DepartmentIndex, bookmarks *BookmarkStore) *DashboardService {
	return &DashboardService{
		directory:   directory,
		departments: departments,
		bookmarks:   bookmarks,
		now:         time.Now,
	}
}

// Summary fetches the employee sample and the department list concurrently and
// aggregates them. TotalEmployees counts the sampled records, not the directory
// total. Only a directory failure is returned.
func (ds *DashboardService) Summary(ctx context.Context) (*domain.DashboardSummary, error) {
	var (
		page  *domain.EmployeePage
		names []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = ds.directory.FetchEmployees(gctx, domain.EmployeeQuery{Limit: DashboardSampleSize})
		return err
	})
	g.Go(func() error {
		names = ds.departments.ListDepartments(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	groups := groupByDepartment(page.Employees, names)

	summary := &domain.DashboardSummary{
		TotalEmployees:        len(page.Employees),
		AverageCompanyRating:  averageRating(page.Employees),
		TotalBookmarks:        ds.bookmarks.Len(),
		DepartmentPerformance: []domain.DepartmentPerformance{},
		BookmarkTrends:        []domain.DepartmentBookmarkSummary{},
		GeneratedAt:           ds.now().UTC(),
	}

	for _, g := range groups {
		summary.DepartmentPerformance = append(summary.DepartmentPerformance, domain.DepartmentPerformance{
			Department:    g.name,
			AverageRating: averageRating(g.employees),
		})

		count := 0
		for _, e := range g.employees {
			if ds.bookmarks.IsBookmarked(e.ID) {
				count++
			}
		}
		if count > 0 {
			summary.BookmarkTrends = append(summary.BookmarkTrends, domain.DepartmentBookmarkSummary{
				Department:    g.name,
				BookmarkCount: count,
			})
		}
	}

	return summary, nil
}

type departmentGroup struct {
	name      string
	employees []domain.Employee
}

// groupByDepartment buckets employees under the department index spelling of
// their department, ascending by name. Empty departments are left out.
func groupByDepartment(employees []domain.Employee, names []string) []departmentGroup {
	canonical := make(map[string]string, len(names))
	for _, n := range names {
		canonical[strings.ToLower(n)] = n
	}

	byName := map[string]*departmentGroup{}
	for _, e := range employees {
		dept := strings.TrimSpace(e.Company.Department)
		if dept == "" {
			continue
		}
		if c, ok := canonical[strings.ToLower(dept)]; ok {
			dept = c
		}
		g, ok := byName[dept]
		if !ok {
			g = &departmentGroup{name: dept}
			byName[dept] = g
		}
		g.employees = append(g.employees, e)
	}

	groups := make([]departmentGroup, 0, len(byName))
	for _, g := range byName {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].name < groups[j].name })
	return groups
}

// averageRating is the mean rating rounded to one decimal, or 0 for no employees.
func averageRating(employees []domain.Employee) float64 {
	if len(employees) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, e := range employees {
		sum = sum.Add(decimal.NewFromFloat(e.PerformanceRating))
	}
	return sum.Div(decimal.NewFromInt(int64(len(employees)))).Round(1).InexactFloat64()
}
