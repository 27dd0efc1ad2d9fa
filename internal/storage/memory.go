package storage

import (
	"context"
	"sort"
	"sync"
)

// Object is a stored document.
type Object struct {
	ContentType string
	Body        []byte
}

// MemoryBucket keeps uploads in memory. Dry runs and tests use it.
type MemoryBucket struct {
	mu      sync.Mutex
	objects map[string]Object
}

func NewMemoryBucket() *MemoryBucket {
	return &MemoryBucket{objects: make(map[string]Object)}
}

func (b *MemoryBucket) Upload(_ context.Context, objectPath, contentType string, body []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[objectPath] = Object{ContentType: contentType, Body: append([]byte(nil), body...)}
	return nil
}

// Get returns the object stored at objectPath.
func (b *MemoryBucket) Get(objectPath string) (Object, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.objects[objectPath]
	return o, ok
}

// Paths returns all stored object paths in sorted order.
func (b *MemoryBucket) Paths() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	paths := make([]string, 0, len(b.objects))
	for p := range b.objects {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
