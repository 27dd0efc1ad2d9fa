package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SupabaseBucket uploads objects through the Supabase Storage REST API.
type SupabaseBucket struct {
	baseURL    string
	bucket     string
	serviceKey string
	client     *http.Client
}

// NewSupabaseBucket returns a bucket for the project at baseURL. A zero
// timeout leaves the HTTP client without one.
func NewSupabaseBucket(baseURL, bucket, serviceKey string, timeout time.Duration) *SupabaseBucket {
	return &SupabaseBucket{
		baseURL:    strings.TrimRight(baseURL, "/"),
		bucket:     bucket,
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: timeout},
	}
}

// objectURL returns the upload endpoint with every path segment escaped.
func (b *SupabaseBucket) objectURL(objectPath string) string {
	segments := strings.Split(strings.Trim(objectPath, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", b.baseURL, url.PathEscape(b.bucket), strings.Join(segments, "/"))
}

func (b *SupabaseBucket) Upload(ctx context.Context, objectPath, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.objectURL(objectPath), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+b.serviceKey)
	req.Header.Set("apikey", b.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", objectPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("uploading %s: %s: %s", objectPath, resp.Status, strings.TrimSpace(string(msg)))
	}
	return nil
}
