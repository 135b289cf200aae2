package database

import (
	"context"
	"fmt"
	"strconv"

	"github.com/olivere/elastic/v7"

	"github.com/locvowork/performpulse/internal/domain"
)

const employeeIndexMapping = `{
	"mappings": {
		"properties": {
			"id": {"type": "long"},
			"performanceRating": {"type": "float"},
			"company": {
				"properties": {
					"department": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
					"title": {"type": "text", "fields": {"keyword": {"type": "keyword"}}}
				}
			}
		}
	}
}`

// ElasticSearchClient wraps the olivere/elastic client and the employee mirror index.
type ElasticSearchClient struct {
	client *elastic.Client
	index  string
}

// NewElasticSearchClient creates a new client for Elasticsearch 7.x.
func NewElasticSearchClient(url, index string) (*ElasticSearchClient, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false), // Essential when using Docker or cloud
		elastic.SetHealthcheck(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	return &ElasticSearchClient{client: client, index: index}, nil
}

// Client exposes the underlying client for read-side repositories.
func (es *ElasticSearchClient) Client() *elastic.Client {
	return es.client
}

// Index is the name of the employee mirror index.
func (es *ElasticSearchClient) Index() string {
	return es.index
}

// EnsureIndex creates the employee index with its mapping when it does not exist.
func (es *ElasticSearchClient) EnsureIndex(ctx context.Context) error {
	exists, err := es.client.IndexExists(es.index).Do(ctx)
	if err != nil {
		return fmt.Errorf("check index %s: %w", es.index, err)
	}
	if exists {
		return nil
	}

	if _, err := es.client.CreateIndex(es.index).BodyString(employeeIndexMapping).Do(ctx); err != nil {
		return fmt.Errorf("create index %s: %w", es.index, err)
	}
	return nil
}

// DeleteIndex drops the employee index. A missing index is not an error.
func (es *ElasticSearchClient) DeleteIndex(ctx context.Context) error {
	_, err := es.client.DeleteIndex(es.index).Do(ctx)
	if err != nil && !elastic.IsNotFound(err) {
		return fmt.Errorf("delete index %s: %w", es.index, err)
	}
	return nil
}

// BulkIndexEmployees indexes employees using their id as document id.
func (es *ElasticSearchClient) BulkIndexEmployees(ctx context.Context, employees []domain.Employee) error {
	bulkRequest := es.client.Bulk()

	for _, emp := range employees {
		req := elastic.NewBulkIndexRequest().
			Index(es.index).
			Id(strconv.Itoa(emp.ID)).
			Doc(emp)
		bulkRequest = bulkRequest.Add(req)
	}

	if bulkRequest.NumberOfActions() == 0 {
		return nil
	}

	bulkResponse, err := bulkRequest.Refresh("true").Do(ctx)
	if err != nil {
		return fmt.Errorf("bulk index failed: %w", err)
	}

	if bulkResponse.Errors {
		for _, item := range bulkResponse.Items {
			for _, op := range item {
				if op.Error != nil {
					return fmt.Errorf("bulk item %s failed: %s", op.Id, op.Error.Reason)
				}
			}
		}
	}

	return nil
}

// Count returns the number of mirrored employees.
func (es *ElasticSearchClient) Count(ctx context.Context) (int64, error) {
	n, err := es.client.Count(es.index).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", es.index, err)
	}
	return n, nil
}
