package domain

import "context"

// Directory is the source of employee records.
type Directory interface {
	// FetchEmployees returns one page, searched and department-filtered.
	FetchEmployees(ctx context.Context, q EmployeeQuery) (*EmployeePage, error)
	// FetchEmployeeByID returns ErrNotFound when the directory has no such id.
	FetchEmployeeByID(ctx context.Context, id int) (*Employee, error)
	// FetchDepartmentNames returns the department of every record, duplicates included.
	FetchDepartmentNames(ctx context.Context) ([]string, error)
}

// BlobStore persists named blobs. Get returns ErrBlobNotFound for an unknown name.
type BlobStore interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Set(ctx context.Context, name string, data []byte) error
}

// TextGenerator produces the raw JSON text answering a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
	Name() string
}
