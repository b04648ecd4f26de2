package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"tourguide/internal/config"
)

const (
	gcsHost = "storage.googleapis.com"

	// LanguageMetadata is the object metadata key carrying the narration
	// language for photos written straight into the bucket.
	LanguageMetadata = "language"

	// SourceMetadata marks objects written by Put. Its value is SourceAPI.
	SourceMetadata = "source"
	SourceAPI      = "api"
)

// Blob is a stored object and the URL it is publicly served from.
type Blob struct {
	Name string
	URL  string
}

// Object describes an existing object, as loaded for bucket events.
type Object struct {
	Bucket      string
	Key         string
	ContentType string
	Language    string
	Source      string
	URL         string
}

// S3Service is a client for S3-compatible storage. Google Cloud Storage is
// reached through its S3 interoperability endpoint.
type S3Service struct {
	client     *minio.Client
	bucket     string
	publicBase string
	publicRead bool
	gcs        bool
}

// NewS3Service initializes and returns a new S3 storage service.
func NewS3Service(cfg config.Storage) (*S3Service, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: endpoint, access key, secret key and bucket are required")
	}

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	publicBase := strings.TrimRight(cfg.PublicBaseURL, "/")
	if publicBase == "" {
		publicBase = minioClient.EndpointURL().String() + "/" + cfg.Bucket
	}

	log.Println("Successfully connected to storage endpoint:", cfg.Endpoint)
	return &S3Service{
		client:     minioClient,
		bucket:     cfg.Bucket,
		publicBase: publicBase,
		publicRead: cfg.PublicRead,
		gcs:        strings.EqualFold(minioClient.EndpointURL().Hostname(), gcsHost),
	}, nil
}

// EnsureBucket creates the configured bucket if it does not exist yet.
func (s *S3Service) EnsureBucket(ctx context.Context, location string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: location}); err != nil {
		return fmt.Errorf("failed to create bucket %q: %w", s.bucket, err)
	}
	log.Printf("Created bucket '%s'", s.bucket)
	return nil
}

// Put stores data under key, overwriting any previous object, and makes it
// publicly readable when configured to. The object is tagged with
// SourceMetadata so bucket events for it can be told apart from photos
// written straight into the bucket.
func (s *S3Service) Put(ctx context.Context, key string, data []byte, contentType string) (Blob, error) {
	opts := minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{SourceMetadata: SourceAPI},
	}
	if s.publicRead {
		opts.UserMetadata["x-amz-acl"] = "public-read"
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return Blob{}, fmt.Errorf("failed to store object '%s' in bucket '%s': %w", key, s.bucket, err)
	}

	log.Printf("Stored '%s' (%d bytes, %s) in bucket '%s'", info.Key, info.Size, contentType, s.bucket)
	return Blob{Name: key, URL: s.PublicURL(key)}, nil
}

// PublicURL returns the URL an object is served from.
func (s *S3Service) PublicURL(key string) string {
	return s.publicBase + "/" + escapePath(key)
}

// SourceURI returns the URI the vision service should read key from: a
// gs:// URI for Cloud Storage buckets, the public URL otherwise.
func (s *S3Service) SourceURI(key string) string {
	if s.gcs {
		return fmt.Sprintf("gs://%s/%s", s.bucket, key)
	}
	return s.PublicURL(key)
}

// Stat loads the metadata of an existing object.
func (s *S3Service) Stat(ctx context.Context, bucket, key string) (*Object, error) {
	info, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("object '%s' not found in bucket '%s'", key, bucket)
		}
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}
	return &Object{
		Bucket:      bucket,
		Key:         key,
		ContentType: info.ContentType,
		Language:    metadataValue(info.UserMetadata, LanguageMetadata),
		Source:      metadataValue(info.UserMetadata, SourceMetadata),
		URL:         s.PublicURL(key),
	}, nil
}

func escapePath(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// metadataValue looks up user metadata case-insensitively; S3 servers
// canonicalize header names differently.
func metadataValue(meta map[string]string, key string) string {
	for k, v := range meta {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
