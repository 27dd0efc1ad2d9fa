package report

import (
	"context"
	"fmt"
	"time"

	"github.com/chronoduo/reportjob/internal/render"
	"github.com/chronoduo/reportjob/internal/storage"
	"github.com/chronoduo/reportjob/internal/store"
)

// Publisher uploads an employee's documents under their deterministic path.
type Publisher struct {
	bucket storage.Bucket
	dryRun bool
}

// NewPublisher returns a publisher for bucket. In a dry run paths are
// computed but nothing is uploaded.
func NewPublisher(bucket storage.Bucket, dryRun bool) *Publisher {
	return &Publisher{bucket: bucket, dryRun: dryRun}
}

// Publish uploads docs in order and returns their object paths. It stops at
// the first failed upload; paths uploaded before it are returned with the error.
func (p *Publisher) Publish(ctx context.Context, client store.Client, emp store.Employee, issued time.Time, docs []render.Document) ([]string, error) {
	paths := make([]string, 0, len(docs))
	for _, doc := range docs {
		objectPath := storage.ObjectPath(client.ID, client.Name, emp.Name, issued, doc.Ext)
		if !p.dryRun {
			if err := p.bucket.Upload(ctx, objectPath, doc.ContentType, doc.Body); err != nil {
				return paths, fmt.Errorf("upload %s: %w", objectPath, err)
			}
		}
		paths = append(paths, objectPath)
	}
	return paths, nil
}
