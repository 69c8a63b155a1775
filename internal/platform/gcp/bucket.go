package gcp

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
)

type BucketCategory string

const (
	BucketCategoryCertificate BucketCategory = "certificate"
	BucketCategoryCourseAsset BucketCategory = "course_asset"
)

type BucketConfig struct {
	CertificateBucket string
	CourseAssetBucket string
	// EmulatorHost points the client at fake-gcs-server, e.g. http://localhost:4443.
	EmulatorHost  string
	PublicBaseURL string
	Credentials   string // file path or inline JSON
}

type BucketService interface {
	Enabled(category BucketCategory) bool
	UploadFile(ctx context.Context, category BucketCategory, key string, file io.Reader) error
	PublicURL(category BucketCategory, key string) string
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	buckets       map[BucketCategory]string
	publicBaseURL string
}

func NewBucketService(ctx context.Context, cfg BucketConfig, log *logger.Logger) (BucketService, error) {
	serviceLog := log.With("service", "BucketService")
	client, err := newStorageClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if base != "" {
		if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid public base url %q", cfg.PublicBaseURL)
		}
	} else if cfg.EmulatorHost != "" {
		base = strings.TrimRight(cfg.EmulatorHost, "/")
	}
	serviceLog.Info("bucket service ready",
		"certificate_bucket", cfg.CertificateBucket,
		"course_asset_bucket", cfg.CourseAssetBucket,
		"emulator", cfg.EmulatorHost != "",
	)
	return &bucketService{
		log:           serviceLog,
		storageClient: client,
		buckets: map[BucketCategory]string{
			BucketCategoryCertificate: strings.TrimSpace(cfg.CertificateBucket),
			BucketCategoryCourseAsset: strings.TrimSpace(cfg.CourseAssetBucket),
		},
		publicBaseURL: base,
	}, nil
}

func newStorageClient(ctx context.Context, cfg BucketConfig) (*storage.Client, error) {
	if host := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"); host != "" {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", host)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	opts := ClientOptions(cfg.Credentials)
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	return storage.NewClient(ctx, opts...)
}

func (bs *bucketService) Enabled(category BucketCategory) bool {
	return bs.buckets[category] != ""
}

func (bs *bucketService) UploadFile(ctx context.Context, category BucketCategory, key string, file io.Reader) error {
	name := bs.buckets[category]
	if name == "" {
		return fmt.Errorf("no bucket configured for %s", category)
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := bs.storageClient.Bucket(name).Object(key).NewWriter(ctx)
	if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	bs.log.Debug("object uploaded", "bucket", name, "key", key)
	return nil
}

func (bs *bucketService) PublicURL(category BucketCategory, key string) string {
	name := bs.buckets[category]
	if name == "" || key == "" {
		return ""
	}
	return publicObjectURL(bs.publicBaseURL, name, key)
}

func publicObjectURL(base, bucket, key string) string {
	escaped := (&url.URL{Path: strings.TrimLeft(key, "/")}).EscapedPath()
	if base == "" {
		return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, escaped)
	}
	return fmt.Sprintf("%s/%s/%s", base, bucket, escaped)
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	default:
		return ""
	}
}
