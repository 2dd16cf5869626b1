package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNotConfigured возвращается, когда у хранилища нет региона или бакета.
var ErrNotConfigured = errors.New("object storage is not configured")

// S3Storage — реализация ObjectStorage поверх AWS S3.
type S3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	region  string
}

// NewS3Storage создаёт клиент S3 через стандартную цепочку кредов SDK.
// При пустых регионе/бакете возвращает ненастроенное хранилище
// (IsConfigured() == false), а не ошибку.
func NewS3Storage(ctx context.Context, region, bucket string) (*S3Storage, error) {
	st := &S3Storage{bucket: bucket, region: region}
	if region == "" || bucket == "" {
		return st, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	st.client = s3.NewFromConfig(cfg)
	st.presign = s3.NewPresignClient(st.client)
	return st, nil
}

func (s *S3Storage) IsConfigured() bool {
	return s.client != nil && s.bucket != ""
}

func (s *S3Storage) Put(ctx context.Context, data []byte, key, contentType string) (string, error) {
	if !s.IsConfigured() {
		return "", ErrNotConfigured
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.publicURL(key), nil
}

func (s *S3Storage) Delete(ctx context.Context, url string) error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}
	key := s.keyFromURL(url)
	if key == "" {
		return fmt.Errorf("cannot extract object key from url %q", url)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if !s.IsConfigured() {
		return "", ErrNotConfigured
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign object %s: %w", key, err)
	}
	return req.URL, nil
}

func (s *S3Storage) publicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// keyFromURL извлекает ключ объекта из публичного URL бакета.
func (s *S3Storage) keyFromURL(url string) string {
	prefix := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region)
	if strings.HasPrefix(url, prefix) {
		return strings.TrimPrefix(url, prefix)
	}
	// допускаем URL вида https://s3.<region>.amazonaws.com/<bucket>/<key>
	alt := fmt.Sprintf("https://s3.%s.amazonaws.com/%s/", s.region, s.bucket)
	if strings.HasPrefix(url, alt) {
		return strings.TrimPrefix(url, alt)
	}
	return ""
}
