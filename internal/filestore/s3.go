package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"confpaper/pkg/platform/sentinel"
)

// S3API is the subset of the S3 client the store uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// NewS3Client builds a client for AWS or an S3-compatible endpoint. A custom
// endpoint switches to path-style addressing.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Storage stores files as objects in one bucket, keyed by handle.
type S3Storage struct {
	client S3API
	bucket string
	now    func() time.Time
}

func NewS3(client S3API, bucket string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket, now: time.Now}
}

// Save uploads content under a fresh key. The put is conditional on the key
// not existing yet.
func (s *S3Storage) Save(ctx context.Context, content io.Reader, originalName string) (string, error) {
	body, ok := content.(io.ReadSeeker)
	if !ok {
		buf, err := io.ReadAll(content)
		if err != nil {
			return "", fmt.Errorf("buffer upload: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	handle := newHandle(s.now(), originalName)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(handle),
		Body:        body,
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return "", fmt.Errorf("object %s already exists: %w", handle, sentinel.ErrConflict)
		}
		return "", fmt.Errorf("put object: %w", err)
	}
	return handle, nil
}

// Delete removes the object. S3 treats a missing key as success.
func (s *S3Storage) Delete(ctx context.Context, handle string) error {
	key, err := cleanHandle(handle)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// OpenRead downloads the object into memory so the result can seek, which
// range requests need.
func (s *S3Storage) OpenRead(ctx context.Context, handle string) (io.ReadSeekCloser, error) {
	key, err := cleanHandle(handle)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("object %s: %w", handle, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return nopSeekCloser{bytes.NewReader(data)}, nil
}

// Walk lists every object in the bucket.
func (s *S3Storage) Walk(ctx context.Context, fn func(Object) error) error {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			o := Object{Handle: aws.ToString(obj.Key)}
			if obj.LastModified != nil {
				o.ModTime = *obj.LastModified
			}
			if err := fn(o); err != nil {
				return err
			}
		}
	}
	return nil
}

type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }
