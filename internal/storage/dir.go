package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirBucket stores objects as files under <root>/<bucket>.
type DirBucket struct {
	root string
}

// NewDirBucket returns a bucket rooted at filepath.Join(root, bucket).
func NewDirBucket(root, bucket string) *DirBucket {
	return &DirBucket{root: filepath.Join(root, bucket)}
}

// Root returns the directory holding the bucket's objects.
func (b *DirBucket) Root() string {
	return b.root
}

func (b *DirBucket) Upload(_ context.Context, objectPath, _ string, body []byte) error {
	clean := filepath.Clean(filepath.FromSlash(objectPath))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("object path %q escapes bucket", objectPath)
	}

	target := filepath.Join(b.root, clean)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	return os.WriteFile(target, body, 0644)
}
