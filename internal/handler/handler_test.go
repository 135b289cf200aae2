package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/performpulse/internal/domain"
	"github.com/locvowork/performpulse/internal/llm"
	"github.com/locvowork/performpulse/internal/service"
	"github.com/locvowork/performpulse/pkg/simpleexcel"
)

type stubDirectory struct {
	employees []domain.Employee
	failAll   bool
}

func (d *stubDirectory) FetchEmployees(ctx context.Context, q domain.EmployeeQuery) (*domain.EmployeePage, error) {
	if d.failAll {
		return nil, &domain.TransportError{Op: "directory list", StatusCode: 500, Err: errors.New("boom")}
	}
	end := q.Skip + q.Limit
	if end > len(d.employees) {
		end = len(d.employees)
	}
	var out []domain.Employee
	if q.Skip < len(d.employees) {
		for _, e := range d.employees[q.Skip:end] {
			if q.Department == "" || strings.EqualFold(e.Company.Department, q.Department) {
				out = append(out, e)
			}
		}
	}
	return &domain.EmployeePage{Employees: out, Total: len(d.employees), Skip: q.Skip, Limit: q.Limit,
		HasMore: q.Skip+len(out) < len(d.employees)}, nil
}

func (d *stubDirectory) FetchEmployeeByID(ctx context.Context, id int) (*domain.Employee, error) {
	if d.failAll {
		return nil, &domain.TransportError{Op: "directory get", Err: errors.New("boom")}
	}
	for _, e := range d.employees {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (d *stubDirectory) FetchDepartmentNames(ctx context.Context) ([]string, error) {
	if d.failAll {
		return nil, errors.New("boom")
	}
	return []string{"Engineering", "Sales"}, nil
}

type memBlobs struct{ data map[string][]byte }

func (m *memBlobs) Get(ctx context.Context, name string) ([]byte, error) {
	if b, ok := m.data[name]; ok {
		return b, nil
	}
	return nil, domain.ErrBlobNotFound
}

func (m *memBlobs) Set(ctx context.Context, name string, data []byte) error {
	m.data[name] = data
	return nil
}

type stubGenerator struct{ calls int }

func (g *stubGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	g.calls++
	return `{"skillSummary":"Good","suggestedProjects":["Apollo"]}`, nil
}

func (g *stubGenerator) Name() string { return "stub" }

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	e         *echo.Echo
	directory *stubDirectory
	bookmarks *service.BookmarkStore
	generator *stubGenerator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := &stubDirectory{}
	for i := 1; i <= 25; i++ {
		dir.employees = append(dir.employees, domain.Employee{
			ID: i, FirstName: "Emp", LastName: "Loyee", Feedback: "Reliable.",
			Company:           domain.Company{Department: "Engineering", Title: "Engineer"},
			PerformanceRating: 4,
		})
	}

	bookmarks := service.NewBookmarkStore(&memBlobs{data: map[string][]byte{}}, "")
	bookmarks.Load(context.Background())

	prompt, err := llm.ParsePrompt([]byte("name: t\ntemplate: \"{{.EmployeeRole}} {{.EmployeeFeedback}}\"\n"))
	require.NoError(t, err)
	gen := &stubGenerator{}

	departments := service.NewDepartmentIndex(dir)
	emp := NewEmployeeHandler(dir, departments, 12)
	bm := NewBookmarkHandler(bookmarks, dir)
	br := NewBrowseHandler(service.NewBrowseSessions(dir, 12, time.Millisecond, time.Minute))
	sg := NewSuggestionHandler(service.NewSuggestionService(gen, prompt, dir))
	db := NewDashboardHandler(service.NewDashboardService(dir, departments, bookmarks))

	e := echo.New()
	e.GET("/employees", emp.ListHandler)
	e.GET("/employees/:id", emp.GetHandler)
	e.GET("/departments", emp.DepartmentsHandler)
	e.GET("/bookmarks", bm.ListHandler)
	e.GET("/bookmarks/export", bm.ExportHandler)
	e.GET("/employees/:id/bookmark", bm.StatusHandler)
	e.PUT("/employees/:id/bookmark", bm.AddHandler)
	e.DELETE("/employees/:id/bookmark", bm.RemoveHandler)
	e.POST("/browse", br.CreateHandler)
	e.GET("/browse/:id", br.GetHandler)
	e.PUT("/browse/:id/query", br.QueryHandler)
	e.PUT("/browse/:id/search", br.SearchHandler)
	e.POST("/browse/:id/more", br.MoreHandler)
	e.DELETE("/browse/:id", br.DeleteHandler)
	e.POST("/suggestions", sg.SuggestHandler)
	e.POST("/employees/:id/suggestions", sg.SuggestForEmployeeHandler)
	e.GET("/dashboard", db.SummaryHandler)

	return &testServer{e: e, directory: dir, bookmarks: bookmarks, generator: gen}
}

func (s *testServer) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestEmployeeHandler(t *testing.T) {
	s := newTestServer(t)

	t.Run("list", func(t *testing.T) {
		rec, env := s.do(t, http.MethodGet, "/employees?limit=10&skip=20", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var page domain.EmployeePage
		require.NoError(t, json.Unmarshal(env.Data, &page))
		assert.Len(t, page.Employees, 5)
		assert.False(t, page.HasMore)
	})

	t.Run("bad params", func(t *testing.T) {
		rec, env := s.do(t, http.MethodGet, "/employees?limit=abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, env.Success)

		rec, _ = s.do(t, http.MethodGet, "/employees?skip=-1", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec, _ = s.do(t, http.MethodGet, "/employees/abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		rec, env := s.do(t, http.MethodGet, "/employees/999", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, domain.ErrNotFound.Error(), env.Error)
	})

	t.Run("found", func(t *testing.T) {
		rec, env := s.do(t, http.MethodGet, "/employees/3", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var e domain.Employee
		require.NoError(t, json.Unmarshal(env.Data, &e))
		assert.Equal(t, 3, e.ID)
	})

	t.Run("departments", func(t *testing.T) {
		_, env := s.do(t, http.MethodGet, "/departments", "")
		var names []string
		require.NoError(t, json.Unmarshal(env.Data, &names))
		assert.Equal(t, []string{"Engineering", "Sales"}, names)
	})
}

func TestEmployeeHandler_UpstreamFailure(t *testing.T) {
	s := newTestServer(t)
	s.directory.failAll = true

	rec, _ := s.do(t, http.MethodGet, "/employees", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/employees/1", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec, env := s.do(t, http.MethodGet, "/departments", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var names []string
	require.NoError(t, json.Unmarshal(env.Data, &names))
	assert.Len(t, names, 10)
}

func TestBookmarkHandler(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPut, "/employees/4/bookmark", "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec, _ = s.do(t, http.MethodPut, "/employees/4/bookmark", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodPut, "/employees/404/bookmark", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, env := s.do(t, http.MethodGet, "/employees/4/bookmark", "")
	var status BookmarkStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.True(t, status.Bookmarked)

	_, env = s.do(t, http.MethodGet, "/bookmarks?q=emp", "")
	var list []domain.Employee
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	rec, _ = s.do(t, http.MethodGet, "/bookmarks/export", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, simpleexcel.ContentType, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), ".xlsx")
	assert.NotZero(t, rec.Body.Len())

	rec, _ = s.do(t, http.MethodDelete, "/employees/4/bookmark", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, s.bookmarks.IsBookmarked(4))
}

func TestBrowseHandler(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/browse", `{"search":"","department":""}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created BrowseResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)
	assert.Len(t, created.Employees, 12)
	assert.True(t, created.HasMore)

	for _, want := range []int{24, 25} {
		rec, env = s.do(t, http.MethodPost, "/browse/"+created.ID+"/more", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var more LoadMoreResponse
		require.NoError(t, json.Unmarshal(env.Data, &more))
		assert.True(t, more.Loaded)
		assert.Len(t, more.Employees, want)
	}

	_, env = s.do(t, http.MethodPost, "/browse/"+created.ID+"/more", "")
	var more LoadMoreResponse
	require.NoError(t, json.Unmarshal(env.Data, &more))
	assert.False(t, more.Loaded)
	assert.False(t, more.HasMore)

	rec, env = s.do(t, http.MethodPut, "/browse/"+created.ID+"/query", `{"search":"","department":"Sales"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var queried BrowseResponse
	require.NoError(t, json.Unmarshal(env.Data, &queried))
	assert.Equal(t, 0, queried.Page)
	assert.Empty(t, queried.Employees)

	rec, _ = s.do(t, http.MethodPut, "/browse/"+created.ID+"/search", `{"search":"Emp"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, "/browse/"+created.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodGet, "/browse/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBrowseHandler_FirstPageFailureKeepsSession(t *testing.T) {
	s := newTestServer(t)
	s.directory.failAll = true

	rec, env := s.do(t, http.MethodPost, "/browse", `{"search":"","department":""}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)

	var failed BrowseResponse
	require.NoError(t, json.Unmarshal(env.Data, &failed))
	require.NotEmpty(t, failed.ID)
	assert.NotEmpty(t, failed.Error)
	assert.Empty(t, failed.Employees)

	s.directory.failAll = false
	rec, env = s.do(t, http.MethodPut, "/browse/"+failed.ID+"/query", `{"search":"","department":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var retried BrowseResponse
	require.NoError(t, json.Unmarshal(env.Data, &retried))
	assert.Equal(t, failed.ID, retried.ID)
	assert.Len(t, retried.Employees, 12)
	assert.Empty(t, retried.Error)
}

func TestSuggestionHandler(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/suggestions", `{"employeeFeedback":"","employeeRole":"Engineer"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, env.Error, "employeeFeedback")
	assert.Equal(t, 0, s.generator.calls)

	rec, env = s.do(t, http.MethodPost, "/suggestions", `{"employeeFeedback":"Great","employeeRole":"Engineer"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out domain.SuggestionOutput
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, []string{"Apollo"}, out.SuggestedProjects)

	rec, _ = s.do(t, http.MethodPost, "/employees/2/suggestions", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodPost, "/employees/200/suggestions", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardHandler(t *testing.T) {
	s := newTestServer(t)
	s.bookmarks.Add(context.Background(), s.directory.employees[0])

	rec, env := s.do(t, http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary domain.DashboardSummary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 25, summary.TotalEmployees)
	assert.Equal(t, 1, summary.TotalBookmarks)
	assert.Equal(t, 4.0, summary.AverageCompanyRating)
}

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, errorStatus(domain.ErrNotFound))
	assert.Equal(t, http.StatusUnprocessableEntity, errorStatus(&domain.ValidationError{Stage: "output"}))
	assert.Equal(t, http.StatusBadGateway, errorStatus(&domain.TransportError{Op: "x"}))
	assert.Equal(t, http.StatusInternalServerError, errorStatus(errors.New("other")))
}
