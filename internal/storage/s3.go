// Package storage keeps covers, avatars, epubs and receipts in S3-compatible buckets.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "digiread/internal/config"
)

// Bucket selects between the publicly readable and the private bucket.
type Bucket int

const (
	Public Bucket = iota
	Private
)

// PresignTTL bounds every signed URL handed to clients.
const PresignTTL = 15 * time.Minute

// ObjectStore is what services need from object storage.
type ObjectStore interface {
	Put(ctx context.Context, bucket Bucket, key, contentType string, data []byte) error
	Delete(ctx context.Context, bucket Bucket, key string) error
	// SignedUploadURL returns a presigned PUT for the private bucket.
	SignedUploadURL(ctx context.Context, key, contentType string) (string, error)
	// SignedDownloadURL returns a presigned GET for the private bucket.
	SignedDownloadURL(ctx context.Context, key string) (string, error)
	PublicURL(key string) string
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	cfg     appconfig.StorageConfig
}

// New loads AWS settings, preferring the static keys from cfg when present.
func New(ctx context.Context, cfg appconfig.StorageConfig) (*S3Store, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewFromConfig(awsCfg, cfg), nil
}

func NewFromConfig(awsCfg aws.Config, cfg appconfig.StorageConfig) *S3Store {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// MinIO and friends want path-style addressing
			o.UsePathStyle = true
		}
	})
	return &S3Store{client: client, presign: s3.NewPresignClient(client), cfg: cfg}
}

func (s *S3Store) bucketName(b Bucket) string {
	if b == Private {
		return s.cfg.PrivateBucket
	}
	return s.cfg.PublicBucket
}

func (s *S3Store) Put(ctx context.Context, bucket Bucket, key, contentType string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName(bucket)),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, bucket Bucket, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName(bucket)),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) SignedUploadURL(ctx context.Context, key, contentType string) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.PrivateBucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(PresignTTL))
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", key, err)
	}
	return req.URL, nil
}

func (s *S3Store) SignedDownloadURL(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.PrivateBucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(PresignTTL))
	if err != nil {
		return "", fmt.Errorf("presign get %s: %w", key, err)
	}
	return req.URL, nil
}

func (s *S3Store) PublicURL(key string) string {
	if s.cfg.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.PublicBucket, s.cfg.Region, key)
}
