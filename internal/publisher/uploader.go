package publisher

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	objectPrefix = "meme_instances/"
	jpegQuality  = 85
)

// objectStore is the slice of the MinIO client the uploader uses.
// *minio.Client satisfies it.
type objectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Logger defines the logging operations the publisher package needs.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Uploader publishes rendered memes to the object store and resolves their
// public CDN URLs.
type Uploader struct {
	store  objectStore
	cfg    *Config
	logger Logger

	// sleep is swappable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewUploader constructs an Uploader from Config.
func NewUploader(cfg *Config, logger Logger) (*Uploader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("publisher: invalid config: %w", err)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("publisher: failed to create minio client: %w", err)
	}

	return &Uploader{
		store:  client,
		cfg:    cfg,
		logger: logger,
		sleep:  sleepContext,
	}, nil
}

// Upload JPEG-encodes img and stores it under meme_instances/<key>.jpg,
// retrying with exponential backoff. Upload failure is absorbed: after the
// final attempt it returns ("", nil) and the caller persists the slot
// without a URL. Only context cancellation surfaces as an error.
func (u *Uploader) Upload(ctx context.Context, img image.Image, key string) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		u.logger.Error("failed to encode meme as JPEG", err, map[string]interface{}{"key": key})
		return "", nil
	}

	objectKey := objectPrefix + key + ".jpg"
	data := buf.Bytes()

	for attempt := 0; attempt < u.cfg.UploadAttempts; attempt++ {
		_, err := u.store.PutObject(ctx, u.cfg.BucketName, objectKey,
			bytes.NewReader(data), int64(len(data)),
			minio.PutObjectOptions{ContentType: "image/jpeg"},
		)
		if err == nil {
			url := u.publicURL(objectKey)
			u.logger.Info("uploaded meme", nil, map[string]interface{}{
				"object_key": objectKey,
				"bytes":      len(data),
			})
			return url, nil
		}

		u.logger.Warn("meme upload attempt failed", err, map[string]interface{}{
			"object_key": objectKey,
			"attempt":    attempt + 1,
		})

		if attempt < u.cfg.UploadAttempts-1 {
			delay := u.cfg.RetryBaseDelay * time.Duration(1<<attempt)
			if serr := u.sleep(ctx, delay); serr != nil {
				return "", serr
			}
		}
	}

	u.logger.Error("meme upload failed after all attempts", nil, map[string]interface{}{
		"object_key": objectKey,
		"attempts":   u.cfg.UploadAttempts,
	})
	return "", nil
}

func (u *Uploader) publicURL(objectKey string) string {
	return strings.TrimRight(u.cfg.CDNBaseURL, "/") + "/" + objectKey
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
