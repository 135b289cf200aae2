package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/locvowork/performpulse/internal/domain"
	"github.com/locvowork/performpulse/internal/metrics"
)

const httpBackend = "http"

// usersResponse is the envelope of the directory list, search and projection endpoints.
type usersResponse struct {
	Users []domain.Employee `json:"users"`
	Total int               `json:"total"`
	Skip  int               `json:"skip"`
	Limit int               `json:"limit"`
}

// HTTPDirectory reads employees from a dummyjson-style REST directory.
type HTTPDirectory struct {
	baseURL    string
	client     *http.Client
	normalizer *Normalizer
}

// NewHTTPDirectory creates a directory client rooted at baseURL.
func NewHTTPDirectory(baseURL string, timeout time.Duration, normalizer *Normalizer) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL:    strings.TrimRight(baseURL, "/"),
		client:     &http.Client{Timeout: timeout},
		normalizer: normalizer,
	}
}

// FetchEmployees lists or searches one page. The upstream search endpoint cannot
// filter by department, so the department filter is applied to the received page.
func (d *HTTPDirectory) FetchEmployees(ctx context.Context, q domain.EmployeeQuery) (*domain.EmployeePage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("skip", strconv.Itoa(q.Skip))

	path, endpoint := "/users", "list"
	if q.Search != "" {
		path, endpoint = "/users/search", "search"
		params.Set("q", q.Search)
	}

	var resp usersResponse
	if err := d.getJSON(ctx, endpoint, path, params, &resp); err != nil {
		return nil, err
	}

	return buildPage(resp.Users, resp.Total, q, d.normalizer), nil
}

// FetchEmployeeByID returns domain.ErrNotFound when the directory answers 404.
func (d *HTTPDirectory) FetchEmployeeByID(ctx context.Context, id int) (*domain.Employee, error) {
	var e domain.Employee
	err := d.getJSON(ctx, "get", "/users/"+strconv.Itoa(id), nil, &e)
	if err != nil {
		var te *domain.TransportError
		if errors.As(err, &te) && te.StatusCode == http.StatusNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	normalized := d.normalizer.Normalize(e)
	return &normalized, nil
}

// FetchDepartmentNames requests the company projection of every record. limit=0
// asks for as many records as the service allows in one page.
func (d *HTTPDirectory) FetchDepartmentNames(ctx context.Context) ([]string, error) {
	params := url.Values{}
	params.Set("limit", "0")
	params.Set("select", "company")

	var resp usersResponse
	if err := d.getJSON(ctx, "departments", "/users", params, &resp); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(resp.Users))
	for _, u := range resp.Users {
		if u.Company.Department != "" {
			names = append(names, u.Company.Department)
		}
	}
	return names, nil
}

func (d *HTTPDirectory) getJSON(ctx context.Context, endpoint, path string, params url.Values, out interface{}) error {
	start := time.Now()
	op := "directory " + endpoint

	target := d.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		metrics.ObserveDirectoryRequest(httpBackend, endpoint, metrics.OutcomeError, time.Since(start))
		return &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		outcome := metrics.OutcomeError
		if resp.StatusCode == http.StatusNotFound {
			outcome = metrics.OutcomeNotFound
		}
		metrics.ObserveDirectoryRequest(httpBackend, endpoint, outcome, time.Since(start))
		return &domain.TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.ObserveDirectoryRequest(httpBackend, endpoint, metrics.OutcomeError, time.Since(start))
		return &domain.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	metrics.ObserveDirectoryRequest(httpBackend, endpoint, metrics.OutcomeOK, time.Since(start))
	return nil
}

// buildPage filters by department, normalizes, and derives HasMore from the
// upstream total.
func buildPage(users []domain.Employee, total int, q domain.EmployeeQuery, n *Normalizer) *domain.EmployeePage {
	employees := make([]domain.Employee, 0, len(users))
	for _, u := range users {
		if q.Department != "" && !strings.EqualFold(u.Company.Department, q.Department) {
			continue
		}
		employees = append(employees, n.Normalize(u))
	}

	return &domain.EmployeePage{
		Employees: employees,
		Total:     total,
		Skip:      q.Skip,
		Limit:     q.Limit,
		HasMore:   q.Skip+len(employees) < total,
	}
}
