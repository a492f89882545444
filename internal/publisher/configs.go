package publisher

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Connection details for the S3-compatible object store.
	Endpoint        string // e.g. "localhost:9000" or a Spaces/S3 endpoint
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string

	// CDNBaseURL is the public base under which uploaded objects are served,
	// e.g. "https://cdn.example.com". Template refs without a scheme are
	// resolved against it too.
	CDNBaseURL string

	// Upload retry policy.
	UploadAttempts int
	RetryBaseDelay time.Duration

	HTTPTimeoutS int // Timeout for template image fetches (default 30)
}

// NewConfig reads from environment variables.
func NewConfig() *Config {
	attempts := 3
	if v := os.Getenv("PUBLISHER_UPLOAD_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			attempts = n
		}
	}

	timeout := 30
	if v := os.Getenv("PUBLISHER_HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeout = n
		}
	}

	return &Config{
		Endpoint:        os.Getenv("MINIO_ENDPOINT"),
		AccessKeyID:     os.Getenv("MINIO_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("MINIO_SECRET_ACCESS_KEY"),
		UseSSL:          os.Getenv("MINIO_USE_SSL") == "true",
		BucketName:      os.Getenv("MINIO_BUCKET_NAME"),
		CDNBaseURL:      os.Getenv("PUBLISHER_CDN_BASE_URL"),
		UploadAttempts:  attempts,
		RetryBaseDelay:  time.Second,
		HTTPTimeoutS:    timeout,
	}
}

// Validate ensures required fields are present.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("publisher: missing MINIO_ENDPOINT")
	}
	if c.BucketName == "" {
		return fmt.Errorf("publisher: missing MINIO_BUCKET_NAME")
	}
	if c.CDNBaseURL == "" {
		return fmt.Errorf("publisher: missing PUBLISHER_CDN_BASE_URL")
	}
	return nil
}
