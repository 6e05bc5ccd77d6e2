// Package storage is the durable blob capability backing the backup
// engine: an opaque key to byte-blob put/get surface.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// Blob stores and retrieves opaque byte blobs by key
type Blob interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// S3Blob is the production Blob backed by an S3 bucket
type S3Blob struct {
	client *s3.S3
	bucket string
}

// NewS3 creates an S3-backed blob store using AWS_REGION and the given
// bucket (BACKUP_BUCKET when empty).
func NewS3(bucket string) (*S3Blob, error) {
	if bucket == "" {
		bucket = os.Getenv("BACKUP_BUCKET")
	}
	if bucket == "" {
		return nil, fmt.Errorf("backup bucket not configured")
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(os.Getenv("AWS_REGION")),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &S3Blob{client: s3.New(sess), bucket: bucket}, nil
}

func (b *S3Blob) Put(ctx context.Context, key string, data []byte) error {
	_, err := b.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", key, err)
	}
	return nil
}

func (b *S3Blob) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := b.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download blob %s: %w", key, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return data, nil
}

// MemoryBlob is an in-process Blob used in tests
type MemoryBlob struct {
	mu    sync.Mutex
	blobs map[string][]byte

	// FailPuts makes every Put fail, for exercising backup failure paths
	FailPuts bool
}

// NewMemoryBlob creates an empty in-memory blob store
func NewMemoryBlob() *MemoryBlob {
	return &MemoryBlob{blobs: make(map[string][]byte)}
}

func (b *MemoryBlob) Put(_ context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailPuts {
		return fmt.Errorf("blob storage unavailable")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	b.blobs[key] = cp
	return nil
}

func (b *MemoryBlob) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.blobs[key]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", key)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Set seeds a blob directly, for test fixtures
func (b *MemoryBlob) Set(key string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = data
}
