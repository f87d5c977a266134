// Package publish uploads a rendered dashboard to an S3-compatible bucket.
// Objects land under <prefix>/<run id>/<artifact name>.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"hdidash/internal/config"
	"hdidash/internal/dashboard"
	"hdidash/internal/metrics"
)

// ObjectStore is the part of an S3 client the publisher needs.
type ObjectStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error
}

// S3Client implements ObjectStore with minio-go.
type S3Client struct {
	client *minio.Client
	region string
}

// NewS3Client builds a client from cfg. Endpoints may be given as host:port
// or as a URL; an https scheme turns TLS on.
func NewS3Client(cfg config.S3Config) (*S3Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	endpoint, useSSL := cfg.Endpoint, cfg.UseSSL
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			useSSL = true
		}
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	return &S3Client{client: client, region: cfg.Region}, nil
}

// EnsureBucket creates bucket when it does not exist.
func (s *S3Client) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("s3: bucket exists %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("s3: make bucket %s: %w", bucket, err)
	}
	slog.Info("bucket created", "bucket", bucket)
	return nil
}

// PutObject uploads one object.
func (s *S3Client) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("s3: put %s: %w", key, err)
	}
	return nil
}

// Publisher uploads dashboards to one bucket.
type Publisher struct {
	Store  ObjectStore
	Bucket string
	Prefix string
	Job    string
}

// Result lists the uploaded object keys.
type Result struct {
	Keys []string
}

// Key returns the object key of an artifact for a run.
func (p *Publisher) Key(runID, name string) string {
	return path.Join(p.Prefix, runID, name)
}

// Publish uploads every artifact in m plus manifest.json from dir. Uploads
// continue past individual failures; all failures are returned together.
func (p *Publisher) Publish(ctx context.Context, dir string, m dashboard.Manifest) (Result, error) {
	var res Result
	if p.Bucket == "" {
		return res, errors.New("publish: bucket is required")
	}
	if m.RunID == "" {
		return res, errors.New("publish: manifest has no run id")
	}

	start := time.Now()
	if err := p.Store.EnsureBucket(ctx, p.Bucket); err != nil {
		metrics.RecordStep(p.Job, "publish", err, time.Since(start))
		return res, err
	}

	names := make([]string, 0, len(m.Artifacts)+1)
	for _, a := range m.Artifacts {
		names = append(names, a.Name)
	}
	names = append(names, dashboard.FileManifest)

	var (
		errs   *multierror.Error
		failed int
	)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			errs = multierror.Append(errs, err)
			break
		}
		key := p.Key(m.RunID, name)
		if err := p.upload(ctx, filepath.Join(dir, name), key); err != nil {
			errs = multierror.Append(errs, err)
			failed++
			continue
		}
		res.Keys = append(res.Keys, key)
	}

	err := errs.ErrorOrNil()
	metrics.RecordStep(p.Job, "publish", err, time.Since(start))
	slog.Info("dashboard published", "bucket", p.Bucket, "prefix", p.Key(m.RunID, ""), "objects", len(res.Keys), "failed", failed)
	return res, err
}

func (p *Publisher) upload(ctx context.Context, file, key string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return err
	}
	return p.Store.PutObject(ctx, p.Bucket, key, f, st.Size(), contentType(file))
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
