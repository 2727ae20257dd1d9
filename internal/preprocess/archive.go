package preprocess

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"consumo_wpp_backend/platform/logger"
)

// MinioArchiver keeps a copy of every inbound media file for audit.
// Archiving is best effort: a storage outage never blocks a
// registration.
type MinioArchiver struct {
	client *minio.Client
	bucket string
	log    *logger.Logger
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func NewMinioArchiver(cfg MinioConfig, log *logger.Logger) (*MinioArchiver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinioArchiver{client: client, bucket: cfg.Bucket, log: log}, nil
}

// EnsureBucket creates the archive bucket when it does not exist yet.
func (a *MinioArchiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", a.bucket, err)
	}
	return nil
}

func (a *MinioArchiver) Archive(ctx context.Context, phone string, media []byte, mimeType string) {
	key := fmt.Sprintf("%s/%s/%s%s",
		phone,
		time.Now().UTC().Format("2006-01-02"),
		uuid.New().String(),
		extensionFor(mimeType),
	)

	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(media), int64(len(media)), minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		a.log.Warn("media archive failed", "error", err, "sender", phone, "bytes", len(media))
		return
	}
	a.log.Debug("media archived", "key", key, "bytes", len(media))
}

func extensionFor(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "ogg"), strings.Contains(mimeType, "opus"):
		return ".ogg"
	case strings.Contains(mimeType, "mpeg"), strings.Contains(mimeType, "mp3"):
		return ".mp3"
	case strings.Contains(mimeType, "mp4"):
		return ".mp4"
	case strings.Contains(mimeType, "png"):
		return ".png"
	case strings.Contains(mimeType, "webp"):
		return ".webp"
	case strings.Contains(mimeType, "jpeg"), strings.Contains(mimeType, "jpg"):
		return ".jpg"
	default:
		return ".bin"
	}
}
