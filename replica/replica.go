// Package replica mirrors persisted item bytes into an S3 compatible bucket.
package replica

import (
	"bytes"
	"context"
	"path"
	"strconv"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/mwantia/mediarepo/data"
	"github.com/mwantia/mediarepo/data/errors"
)

// Replica receives a copy of every item written to a repo.
type Replica interface {
	Name() string
	Open(ctx context.Context) error
	Close(ctx context.Context) error

	Put(ctx context.Context, repo string, item *data.Item, content []byte) error
	Remove(ctx context.Context, repo string, item *data.Item) error
	Exists(ctx context.Context, repo string, item *data.Item) (bool, error)
}

type Options struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// CreateBucket creates a missing bucket on Open instead of failing.
	CreateBucket bool
}

type S3Replica struct {
	mu sync.RWMutex

	client *minio.Client
	opts   Options
}

var _ Replica = (*S3Replica)(nil)

func NewS3Replica(opts Options) (*S3Replica, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, err
	}

	return &S3Replica{
		client: client,
		opts:   opts,
	}, nil
}

// Name returns the identifier name defined for this replica.
func (*S3Replica) Name() string {
	return "s3"
}

// Open verifies the bucket exists, creating it if configured to.
func (sr *S3Replica) Open(ctx context.Context) error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	exists, err := sr.client.BucketExists(ctx, sr.opts.Bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if !sr.opts.CreateBucket {
		return errors.Invalid("bucket '%s' does not exist", sr.opts.Bucket)
	}
	return sr.client.MakeBucket(ctx, sr.opts.Bucket, minio.MakeBucketOptions{})
}

func (sr *S3Replica) Close(ctx context.Context) error {
	return nil
}

func (sr *S3Replica) Put(ctx context.Context, repo string, item *data.Item, content []byte) error {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	opts := minio.PutObjectOptions{
		UserMetadata: map[string]string{
			"item-id": strconv.FormatInt(item.ID, 10),
			"name":    item.Name,
		},
	}
	if item.ContentType != nil && !item.ContentType.IsUnknown() {
		opts.ContentType = item.ContentType.MIME
	}

	_, err := sr.client.PutObject(ctx, sr.opts.Bucket, ObjectKey(repo, item),
		bytes.NewReader(content), int64(len(content)), opts)
	return err
}

func (sr *S3Replica) Remove(ctx context.Context, repo string, item *data.Item) error {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	return sr.client.RemoveObject(ctx, sr.opts.Bucket, ObjectKey(repo, item), minio.RemoveObjectOptions{})
}

func (sr *S3Replica) Exists(ctx context.Context, repo string, item *data.Item) (bool, error) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	_, err := sr.client.StatObject(ctx, sr.opts.Bucket, ObjectKey(repo, item), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ObjectKey maps an item onto its bucket key. Items without a stored path fall
// back to their id.
func ObjectKey(repo string, item *data.Item) string {
	if item.Path != "" {
		return path.Join(repo, item.Path)
	}
	return path.Join(repo, strconv.FormatInt(item.ID, 10))
}
