package service

import (
	"context"
	"sort"
	"strings"

	"github.com/locvowork/performpulse/internal/domain"
	"github.com/locvowork/performpulse/internal/logger"
)

// FallbackDepartments is served when the directory cannot produce any department.
var FallbackDepartments = []string{
	"Sales",
	"Marketing",
	"Engineering",
	"Human Resources",
	"Support",
	"Services",
	"Product Management",
	"Business Development",
	"Legal",
	"Accounting",
}

// DepartmentIndex lists the distinct departments of the directory.
type DepartmentIndex struct {
	directory domain.Directory
}

func NewDepartmentIndex(directory domain.Directory) *DepartmentIndex {
	return &DepartmentIndex{directory: directory}
}

// ListDepartments returns distinct department names in ascending order. It never
// fails: an upstream error or an empty answer yields the fallback list.
func (di *DepartmentIndex) ListDepartments(ctx context.Context) []string {
	names, err := di.directory.FetchDepartmentNames(ctx)
	if err != nil {
		logger.WarnLog(ctx, "Department lookup failed, serving fallback list: %v", err)
		return fallbackDepartments()
	}

	seen := make(map[string]struct{}, len(names))
	distinct := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		distinct = append(distinct, n)
	}

	if len(distinct) == 0 {
		logger.WarnLog(ctx, "Directory reported no departments, serving fallback list")
		return fallbackDepartments()
	}

	sort.Strings(distinct)
	return distinct
}

func fallbackDepartments() []string {
	out := append([]string(nil), FallbackDepartments...)
	sort.Strings(out)
	return out
}
