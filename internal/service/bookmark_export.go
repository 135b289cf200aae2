package service

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/locvowork/performpulse/pkg/simpleexcel"
)

//go:embed bookmark_export.yaml
var bookmarkExportLayout []byte

type departmentCount struct {
	Department string
	Count      int
}

// ExportBookmarks renders the bookmarked snapshots and a per-department count
// as an xlsx workbook.
func ExportBookmarks(store *BookmarkStore) ([]byte, error) {
	exporter, err := simpleexcel.NewDataExporterFromYAML(bookmarkExportLayout)
	if err != nil {
		return nil, fmt.Errorf("load export layout: %w", err)
	}

	records := store.List()
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	counts := map[string]int{}
	for _, e := range records {
		counts[e.Company.Department]++
	}
	byDept := make([]departmentCount, 0, len(counts))
	for d, n := range counts {
		byDept = append(byDept, departmentCount{Department: d, Count: n})
	}
	sort.Slice(byDept, func(i, j int) bool { return byDept[i].Department < byDept[j].Department })

	exporter.
		BindSectionData("bookmarks", records).
		BindSectionData("departments", byDept)

	data, err := exporter.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("render bookmark export: %w", err)
	}
	return data, nil
}
