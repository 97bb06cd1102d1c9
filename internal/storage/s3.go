package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vidtube/backend/internal/config"
)

// ErrForeignLocation indicates an asset location that does not belong to the
// configured bucket.
var ErrForeignLocation = errors.New("asset location outside bucket")

// objectDeleter is the subset of the S3 client used by S3Storage.
type objectDeleter interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage removes media assets from an S3-compatible bucket.
type S3Storage struct {
	client  objectDeleter
	bucket  string
	baseURL string
}

// NewS3Storage configures a client targeting the provided object store.
func NewS3Storage(ctx context.Context, cfg config.ObjectStoreConfig) (*S3Storage, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return newS3Storage(client, cfg.Bucket, cfg.PublicBaseURL), nil
}

func newS3Storage(client objectDeleter, bucket, publicBaseURL string) *S3Storage {
	return &S3Storage{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// KeyFor derives the object key from a stored asset location. Locations are
// either bare keys or URLs under the public base URL.
func (s *S3Storage) KeyFor(location string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", fmt.Errorf("s3 storage: empty location")
	}

	if s.baseURL != "" && strings.HasPrefix(location, s.baseURL+"/") {
		return unescapeKey(strings.TrimPrefix(location, s.baseURL+"/"))
	}

	if u, err := url.Parse(location); err == nil && u.Scheme != "" {
		return "", fmt.Errorf("%w: %s", ErrForeignLocation, location)
	}

	key := strings.TrimLeft(location, "/")
	if key == "" {
		return "", fmt.Errorf("s3 storage: empty key")
	}
	return key, nil
}

func unescapeKey(raw string) (string, error) {
	key, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("s3 storage: decode key %q: %w", raw, err)
	}
	if key == "" {
		return "", fmt.Errorf("s3 storage: empty key")
	}
	return key, nil
}

// Delete removes the object behind location. Deleting a missing object
// succeeds, as S3 does.
func (s *S3Storage) Delete(ctx context.Context, location string) error {
	key, err := s.KeyFor(location)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 storage delete %s: %w", key, err)
	}
	return nil
}
