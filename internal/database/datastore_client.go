package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"

	"github.com/locvowork/performpulse/internal/domain"
)

const blobKind = "PerformPulseBlob"

// blobEntity is one named blob in Datastore. Data is excluded from indexes
// because Datastore limits indexed values to 1500 bytes.
type blobEntity struct {
	Data      []byte    `datastore:"Data,noindex"`
	UpdatedAt time.Time `datastore:"UpdatedAt"`
}

// DatastoreClient wraps the cloud datastore client as a domain.BlobStore.
type DatastoreClient struct {
	client *datastore.Client
}

// NewDatastoreClient connects to the project's Datastore.
func NewDatastoreClient(ctx context.Context, projectID string) (*DatastoreClient, error) {
	client, err := datastore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore client: %w", err)
	}
	return &DatastoreClient{client: client}, nil
}

// Get reads a blob by name.
func (dc *DatastoreClient) Get(ctx context.Context, name string) ([]byte, error) {
	if dc == nil || dc.client == nil {
		return nil, fmt.Errorf("datastore client is nil")
	}

	var ent blobEntity
	if err := dc.client.Get(ctx, datastore.NameKey(blobKind, name, nil), &ent); err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return nil, domain.ErrBlobNotFound
		}
		return nil, fmt.Errorf("get blob %s: %w", name, err)
	}
	return ent.Data, nil
}

// Set writes a blob by name, replacing any previous value.
func (dc *DatastoreClient) Set(ctx context.Context, name string, data []byte) error {
	if dc == nil || dc.client == nil {
		return fmt.Errorf("datastore client is nil")
	}

	ent := &blobEntity{Data: data, UpdatedAt: time.Now().UTC()}
	if _, err := dc.client.Put(ctx, datastore.NameKey(blobKind, name, nil), ent); err != nil {
		return fmt.Errorf("put blob %s: %w", name, err)
	}
	return nil
}

// Close releases the underlying client.
func (dc *DatastoreClient) Close() error {
	if dc == nil || dc.client == nil {
		return nil
	}
	return dc.client.Close()
}
