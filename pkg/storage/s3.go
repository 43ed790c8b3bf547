package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/smith3v/sentence-trainer/pkg/apperr"
)

const s3Timeout = 30 * time.Second

// S3API is the subset of the S3 client used for audio blobs.
type S3API interface {
	PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(context.Context, *s3.DeleteObjectInput, ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3 struct {
	client  S3API
	bucket  string
	region  string
	baseURL string
}

func NewS3(client S3API, bucket, region, baseURL string) (*S3, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, apperr.Processing("S3 bucket is not configured", nil)
	}
	return &S3{
		client:  client,
		bucket:  bucket,
		region:  region,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func NewS3FromConfig(cfg aws.Config, bucket, baseURL string) (*S3, error) {
	return NewS3(s3.NewFromConfig(cfg), bucket, cfg.Region, baseURL)
}

func (s *S3) Name() string { return "s3" }

func (s *S3) Bucket() string { return s.bucket }

func (s *S3) Region() string { return s.region }

// URL returns the public address of key.
func (s *S3) URL(key string) string {
	key = cleanKey(key)
	switch {
	case s.baseURL != "":
		return s.baseURL + "/" + key
	case s.region != "":
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	default:
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
	}
}

func (s *S3) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	if contentType == "" {
		contentType = AudioContentType
	}
	ctx, cancel := context.WithTimeout(ctx, s3Timeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(cleanKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", apperr.Processing("failed to store audio file in S3", err)
	}
	return s.URL(key), nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s3Timeout)
	defer cancel()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(cleanKey(key)),
	})
	if err != nil {
		return apperr.Processing("failed to delete audio file from S3", err)
	}
	return nil
}
