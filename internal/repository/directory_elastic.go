package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/olivere/elastic/v7"

	"github.com/locvowork/performpulse/internal/domain"
	"github.com/locvowork/performpulse/internal/metrics"
)

const (
	elasticBackend = "elastic"
	// maxDepartmentBuckets bounds the department aggregation like the HTTP
	// projection is bounded by the upstream page size.
	maxDepartmentBuckets = 1000
)

var employeeSearchFields = []string{"firstName", "lastName", "maidenName", "email", "username", "company.title"}

// ElasticDirectory serves the directory contract from an Elasticsearch mirror.
type ElasticDirectory struct {
	client     *elastic.Client
	index      string
	normalizer *Normalizer
}

func NewElasticDirectory(client *elastic.Client, index string, normalizer *Normalizer) *ElasticDirectory {
	return &ElasticDirectory{client: client, index: index, normalizer: normalizer}
}

// FetchEmployees pages with from/size. The department filter is applied to the
// received page so that both directory backends share one contract.
func (d *ElasticDirectory) FetchEmployees(ctx context.Context, q domain.EmployeeQuery) (*domain.EmployeePage, error) {
	start := time.Now()
	endpoint := "list"

	var query elastic.Query = elastic.NewMatchAllQuery()
	if q.Search != "" {
		endpoint = "search"
		query = elastic.NewMultiMatchQuery(q.Search, employeeSearchFields...).Type("phrase_prefix")
	}

	svc := d.client.Search().
		Index(d.index).
		Query(query).
		From(q.Skip).
		Size(q.Limit).
		TrackTotalHits(true)
	if q.Search == "" {
		svc = svc.Sort("id", true)
	}

	res, err := svc.Do(ctx)
	if err != nil {
		metrics.ObserveDirectoryRequest(elasticBackend, endpoint, metrics.OutcomeError, time.Since(start))
		return nil, &domain.TransportError{Op: "directory " + endpoint, Err: err}
	}
	metrics.ObserveDirectoryRequest(elasticBackend, endpoint, metrics.OutcomeOK, time.Since(start))

	users, err := decodeHits(res.Hits)
	if err != nil {
		return nil, &domain.TransportError{Op: "directory " + endpoint, Err: err}
	}

	return buildPage(users, int(res.TotalHits()), q, d.normalizer), nil
}

// FetchEmployeeByID maps a missing document to domain.ErrNotFound.
func (d *ElasticDirectory) FetchEmployeeByID(ctx context.Context, id int) (*domain.Employee, error) {
	start := time.Now()

	res, err := d.client.Get().
		Index(d.index).
		Id(strconv.Itoa(id)).
		Do(ctx)
	if elastic.IsNotFound(err) || (err == nil && !res.Found) {
		metrics.ObserveDirectoryRequest(elasticBackend, "get", metrics.OutcomeNotFound, time.Since(start))
		return nil, domain.ErrNotFound
	}
	if err != nil {
		metrics.ObserveDirectoryRequest(elasticBackend, "get", metrics.OutcomeError, time.Since(start))
		return nil, &domain.TransportError{Op: "directory get", Err: err}
	}
	metrics.ObserveDirectoryRequest(elasticBackend, "get", metrics.OutcomeOK, time.Since(start))

	var e domain.Employee
	if err := json.Unmarshal(res.Source, &e); err != nil {
		return nil, &domain.TransportError{Op: "directory get", Err: fmt.Errorf("decode employee %d: %w", id, err)}
	}

	normalized := d.normalizer.Normalize(e)
	return &normalized, nil
}

// FetchDepartmentNames reads the distinct departments from a terms aggregation.
func (d *ElasticDirectory) FetchDepartmentNames(ctx context.Context) ([]string, error) {
	start := time.Now()

	agg := elastic.NewTermsAggregation().Field("company.department.keyword").Size(maxDepartmentBuckets)
	res, err := d.client.Search().
		Index(d.index).
		Size(0).
		Aggregation("departments", agg).
		Do(ctx)
	if err != nil {
		metrics.ObserveDirectoryRequest(elasticBackend, "departments", metrics.OutcomeError, time.Since(start))
		return nil, &domain.TransportError{Op: "directory departments", Err: err}
	}
	metrics.ObserveDirectoryRequest(elasticBackend, "departments", metrics.OutcomeOK, time.Since(start))

	terms, ok := res.Aggregations.Terms("departments")
	if !ok {
		return nil, nil
	}

	names := make([]string, 0, len(terms.Buckets))
	for _, b := range terms.Buckets {
		if name, ok := b.Key.(string); ok && name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func decodeHits(hits *elastic.SearchHits) ([]domain.Employee, error) {
	if hits == nil {
		return nil, nil
	}

	users := make([]domain.Employee, 0, len(hits.Hits))
	for _, hit := range hits.Hits {
		var e domain.Employee
		if err := json.Unmarshal(hit.Source, &e); err != nil {
			return nil, fmt.Errorf("decode hit %s: %w", hit.Id, err)
		}
		users = append(users, e)
	}
	return users, nil
}
