package domain

import (
	"encoding/json"
	"time"
)

// ==================== DIRECTORY ====================

// Address is the postal address of an employee's company office.
type Address struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	State      string `json:"state"`
}

// Company describes where an employee works and in which role.
type Company struct {
	Name       string  `json:"name"`
	Title      string  `json:"title"`
	Department string  `json:"department"`
	Address    Address `json:"address"`
}

// Employee is a directory record enriched with a performance rating and feedback.
// Upstream fields the core does not model are kept in Extra so that bookmark
// snapshots round-trip them untouched.
type Employee struct {
	ID                int     `json:"id"`
	FirstName         string  `json:"firstName"`
	LastName          string  `json:"lastName"`
	MaidenName        string  `json:"maidenName,omitempty"`
	Age               int     `json:"age,omitempty"`
	Gender            string  `json:"gender,omitempty"`
	Email             string  `json:"email"`
	Phone             string  `json:"phone"`
	Username          string  `json:"username"`
	Image             string  `json:"image"`
	Company           Company `json:"company"`
	PerformanceRating float64 `json:"performanceRating"`
	Feedback          string  `json:"feedback,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// FullName joins first and last name.
func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

type employeeFields Employee

var knownEmployeeFields = []string{
	"id", "firstName", "lastName", "maidenName", "age", "gender", "email",
	"phone", "username", "image", "company", "performanceRating", "feedback",
}

// UnmarshalJSON decodes the typed fields and collects everything else into Extra.
func (e *Employee) UnmarshalJSON(data []byte) error {
	var f employeeFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range knownEmployeeFields {
		delete(raw, k)
	}
	f.Extra = nil
	if len(raw) > 0 {
		f.Extra = raw
	}

	*e = Employee(f)
	return nil
}

// MarshalJSON encodes the typed fields and merges Extra back in. Typed fields win
// over an Extra entry with the same name.
func (e Employee) MarshalJSON() ([]byte, error) {
	typed, err := json.Marshal(employeeFields(e))
	if err != nil {
		return nil, err
	}
	if len(e.Extra) == 0 {
		return typed, nil
	}

	merged := make(map[string]json.RawMessage, len(e.Extra)+len(knownEmployeeFields))
	if err := json.Unmarshal(typed, &merged); err != nil {
		return nil, err
	}
	for k, v := range e.Extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// EmployeeQuery selects one page of the directory.
type EmployeeQuery struct {
	Limit      int
	Skip       int
	Search     string
	Department string
}

// EmployeePage is one page of normalized directory records.
type EmployeePage struct {
	Employees []Employee `json:"employees"`
	Total     int        `json:"total"`
	Skip      int        `json:"skip"`
	Limit     int        `json:"limit"`
	HasMore   bool       `json:"hasMore"`
}

// ==================== SUGGESTIONS ====================

// SuggestionInput is the request accepted by the suggestion generator.
type SuggestionInput struct {
	EmployeeFeedback string `json:"employeeFeedback" validate:"required"`
	EmployeeRole     string `json:"employeeRole" validate:"required"`
}

// SuggestionOutput is the validated answer of the suggestion generator.
type SuggestionOutput struct {
	SkillSummary      string   `json:"skillSummary"`
	SuggestedProjects []string `json:"suggestedProjects"`
}

// SchemaField describes one field of the structured output expected from a
// text-generation backend.
type SchemaField struct {
	Name        string
	Type        SchemaType
	Description string
}

type SchemaType string

const (
	SchemaTypeString      SchemaType = "string"
	SchemaTypeStringArray SchemaType = "string_array"
)

// GenerationRequest is a single prompt sent to a text-generation backend.
type GenerationRequest struct {
	Prompt      string
	Model       string
	Temperature float32
	Output      []SchemaField
}

// ==================== DASHBOARD ====================

// DepartmentPerformance is the average rating of a department.
type DepartmentPerformance struct {
	Department    string  `json:"department"`
	AverageRating float64 `json:"averageRating"`
}

// DepartmentBookmarkSummary counts bookmarked employees per department.
type DepartmentBookmarkSummary struct {
	Department    string `json:"department"`
	BookmarkCount int    `json:"bookmarkCount"`
}

// DashboardSummary aggregates the dashboard figures.
type DashboardSummary struct {
	TotalEmployees        int                         `json:"totalEmployees"`
	AverageCompanyRating  float64                     `json:"averageCompanyRating"`
	TotalBookmarks        int                         `json:"totalBookmarks"`
	DepartmentPerformance []DepartmentPerformance     `json:"departmentPerformance"`
	BookmarkTrends        []DepartmentBookmarkSummary `json:"bookmarkTrends"`
	GeneratedAt           time.Time                   `json:"generatedAt"`
}
