package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config carries the S3/MinIO connection settings.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3ConfigFromEnv reads ARCHMAP_S3_* variables; the second result is false
// when no endpoint is configured.
func S3ConfigFromEnv() (S3Config, bool) {
	cfg := S3Config{
		Endpoint:  strings.TrimSpace(os.Getenv("ARCHMAP_S3_ENDPOINT")),
		Region:    strings.TrimSpace(os.Getenv("ARCHMAP_S3_REGION")),
		AccessKey: strings.TrimSpace(os.Getenv("ARCHMAP_S3_ACCESS_KEY")),
		SecretKey: strings.TrimSpace(os.Getenv("ARCHMAP_S3_SECRET_KEY")),
		Bucket:    strings.TrimSpace(os.Getenv("ARCHMAP_S3_BUCKET")),
		UseSSL:    !strings.EqualFold(strings.TrimSpace(os.Getenv("ARCHMAP_S3_USE_SSL")), "false"),
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "archmap-artifacts"
	}
	return cfg, cfg.Endpoint != ""
}

// S3Store uploads artifacts to an S3-compatible bucket.
type S3Store struct {
	client   *minio.Client
	bucket   string
	region   string
	initOnce sync.Once
	initErr  error
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("artifact: s3 endpoint is required")
	}
	if strings.TrimSpace(cfg.AccessKey) == "" || strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, fmt.Errorf("artifact: s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("artifact: s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("artifact: init s3 client: %w", err)
	}
	return &S3Store{client: client, bucket: bucket, region: region}, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if !exists {
			s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
		}
	})
	return s.initErr
}

func (s *S3Store) Put(ctx context.Context, name string, data []byte, contentType string) error {
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("artifact: ensure bucket: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, s.bucket, name,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("artifact: put %s: %w", name, err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, name string) ([]byte, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("artifact: ensure bucket: %w", err)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("artifact: get %s: %w", name, err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("artifact: read %s: %w", name, err)
	}
	return data, nil
}

func (s *S3Store) List(ctx context.Context) ([]string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("artifact: ensure bucket: %w", err)
	}
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		names = append(names, obj.Key)
	}
	sort.Strings(names)
	return names, nil
}
