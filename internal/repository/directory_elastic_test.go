package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/olivere/elastic/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/performpulse/internal/domain"
)

func newFakeElastic(t *testing.T) *elastic.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/_search"):
			_, _ = w.Write([]byte(`{"hits":{"total":{"value":30,"relation":"eq"},"hits":[
				{"_id":"1","_source":{"id":1,"firstName":"Emily","company":{"department":"Engineering"}}},
				{"_id":"2","_source":{"id":2,"firstName":"Michael","company":{"department":"Sales"}}}
			]}}`))
		case strings.HasSuffix(r.URL.Path, "/_doc/1"):
			_, _ = w.Write([]byte(`{"_index":"employees","_id":"1","found":true,"_source":{"id":1,"firstName":"Emily","performanceRating":4.2}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"_index":"employees","found":false}`))
		}
	}))
	t.Cleanup(srv.Close)

	client, err := elastic.NewClient(elastic.SetURL(srv.URL), elastic.SetSniff(false), elastic.SetHealthcheck(false))
	require.NoError(t, err)
	return client
}

func TestElasticDirectory(t *testing.T) {
	dir := NewElasticDirectory(newFakeElastic(t), "employees", NewNormalizer(RatingStable))
	ctx := context.Background()

	t.Run("page", func(t *testing.T) {
		page, err := dir.FetchEmployees(ctx, domain.EmployeeQuery{Limit: 2, Skip: 0})
		require.NoError(t, err)
		assert.Equal(t, 30, page.Total)
		assert.Len(t, page.Employees, 2)
		assert.True(t, page.HasMore)
	})

	t.Run("department filter", func(t *testing.T) {
		page, err := dir.FetchEmployees(ctx, domain.EmployeeQuery{Limit: 2, Search: "e", Department: "Sales"})
		require.NoError(t, err)
		require.Len(t, page.Employees, 1)
		assert.Equal(t, 2, page.Employees[0].ID)
	})

	t.Run("by id", func(t *testing.T) {
		e, err := dir.FetchEmployeeByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Emily", e.FirstName)
		assert.Equal(t, 4.2, e.PerformanceRating)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := dir.FetchEmployeeByID(ctx, 404)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestDecodeHits(t *testing.T) {
	users, err := decodeHits(&elastic.SearchHits{Hits: []*elastic.SearchHit{
		{Id: "5", Source: json.RawMessage(`{"id":5,"firstName":"Ava"}`)},
	}})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ava", users[0].FirstName)

	_, err = decodeHits(&elastic.SearchHits{Hits: []*elastic.SearchHit{
		{Id: "6", Source: json.RawMessage(`{"id":"six"}`)},
	}})
	assert.Error(t, err)

	users, err = decodeHits(nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}
