// Package publish uploads exported GLB files to object storage.
package publish

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/config"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/logging"
	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/metrics"
)

const glbContentType = "model/gltf-binary"

// objectPutter is the part of *minio.Client the publisher needs.
type objectPutter interface {
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinioPublisher uploads GLBs into one bucket under an optional key prefix.
type MinioPublisher struct {
	client objectPutter
	bucket string
	prefix string
	logger *logging.Logger
}

// NewMinioPublisher connects to MinIO and makes sure the bucket exists.
func NewMinioPublisher(ctx context.Context, cfg config.MinioConfig, logger *logging.Logger) (*MinioPublisher, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.SSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not create minio client")
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, "could not check bucket")
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrapf(err, "could not create bucket %s", cfg.Bucket)
		}
		logger.Info("Created bucket", cfg.Bucket)
	}
	return newPublisher(client, cfg.Bucket, cfg.Prefix, logger), nil
}

func newPublisher(client objectPutter, bucket, prefix string, logger *logging.Logger) *MinioPublisher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &MinioPublisher{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

// ObjectKey is the key a GLB at localPath is stored under.
func (p *MinioPublisher) ObjectKey(localPath string) string {
	return path.Join(p.prefix, filepath.Base(localPath))
}

// Publish uploads every existing file in paths and returns the keys written.
// Missing files are skipped; the first upload error stops the batch.
func (p *MinioPublisher) Publish(ctx context.Context, paths []string) ([]string, error) {
	var keys []string
	for _, local := range paths {
		if _, err := os.Stat(local); err != nil {
			metrics.UploadsTotal.WithLabelValues("missing").Inc()
			p.logger.Error("Export missing, not uploading", local)
			continue
		}

		key := p.ObjectKey(local)
		if _, err := p.client.FPutObject(ctx, p.bucket, key, local, minio.PutObjectOptions{ContentType: glbContentType}); err != nil {
			metrics.UploadsTotal.WithLabelValues("failed").Inc()
			return keys, errors.Wrapf(err, "failed to upload %s to MinIO", local)
		}
		metrics.UploadsTotal.WithLabelValues("uploaded").Inc()
		p.logger.Info("Uploaded GLB", map[string]string{"bucket": p.bucket, "key": key})
		keys = append(keys, key)
	}
	return keys, nil
}
