// AngelaMos | 2026
// storage.go

package document

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/angelamos/casefile/internal/config"
)

// ObjectStorage abstracts the S3 operations the document service needs,
// so tests can substitute a fake without a live bucket.
type ObjectStorage interface {
	PresignPut(ctx context.Context, key, contentType string) (string, error)
	PresignGet(ctx context.Context, key, fileName string) (string, error)
	Delete(ctx context.Context, key string) error
}

type s3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	expire  time.Duration
}

// NewS3Storage builds an S3-backed ObjectStorage. A custom endpoint and
// path-style addressing support MinIO in development.
func NewS3Storage(
	ctx context.Context,
	cfg config.StorageConfig,
) (ObjectStorage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	expire := cfg.PresignExpire
	if expire <= 0 {
		expire = 15 * time.Minute
	}

	return &s3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		expire:  expire,
	}, nil
}

func (s *s3Storage) PresignPut(
	ctx context.Context,
	key, contentType string,
) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.expire))
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}

	return req.URL, nil
}

func (s *s3Storage) PresignGet(
	ctx context.Context,
	key, fileName string,
) (string, error) {
	disposition := fmt.Sprintf("attachment; filename=%q", fileName)

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(disposition),
	}, s3.WithPresignExpires(s.expire))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}

	return req.URL, nil
}

func (s *s3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	return nil
}

// newStorageKey namespaces objects by owner and date so bucket listings
// stay navigable.
func newStorageKey(userID string) string {
	now := time.Now().UTC()
	return fmt.Sprintf("documents/%s/%d/%02d/%s",
		userID, now.Year(), now.Month(), uuid.NewString())
}
