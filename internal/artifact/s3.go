package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/huangsam/bundlesize/schema"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// S3Store keeps artifacts in any S3-compatible object storage (MinIO, AWS S3, etc.).
type S3Store struct {
	client *minio.Client
	bucket string
}

var _ contract.ArtifactStore = &S3Store{} // Compile-time check

// NewS3Store creates an S3Store. The bucket must already exist.
func NewS3Store(cfg contract.ArtifactConfig) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("artifact bucket cannot be empty")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// Upload writes routes as JSON under key.
func (s *S3Store) Upload(ctx context.Context, key string, routes *schema.RouteSizes) error {
	data, err := routes.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode routes: %w", err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	log.Debug().Str("bucket", s.bucket).Str("key", key).Int("bytes", len(data)).Msg("artifact uploaded")
	return nil
}

// Download reads routes from key. A missing object yields contract.ErrNoBaseline.
func (s *S3Store) Download(ctx context.Context, key string) (*schema.RouteSizes, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.downloadError(key, err)
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.downloadError(key, err)
	}
	routes, err := schema.ParseRouteSizes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artifact %s: %w", key, err)
	}
	return routes, nil
}

func (s *S3Store) downloadError(key string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("artifact %s not found: %w", key, contract.ErrNoBaseline)
	}
	return fmt.Errorf("failed to get %s: %w", key, err)
}
