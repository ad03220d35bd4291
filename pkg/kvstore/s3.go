package kvstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Aleksandergreg/storefront/config"
)

// S3 keeps one JSON object per key on S3-compatible storage. Works with AWS
// S3, MinIO, DigitalOcean Spaces, Cloudflare R2. Useful when several
// storefront instances must share the same user collections without a
// database.
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3 builds the client from S3_* config values.
func NewS3() (*S3, error) {
	bucket := config.KVS3Bucket()
	if bucket == "" {
		return nil, fmt.Errorf("kvstore/s3: S3_BUCKET is not configured")
	}

	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(config.KVS3Region()),
	}

	// Static credentials (required for MinIO / R2 / Spaces)
	if key, secret := config.KVS3Key(), config.KVS3Secret(); key != "" && secret != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, secret, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("kvstore/s3: load config: %w", err)
	}

	clientOpts := []func(*s3.Options){}
	if endpoint := config.KVS3Endpoint(); endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true // required for MinIO
		})
	}

	return &S3{
		client: s3.NewFromConfig(cfg, clientOpts...),
		bucket: bucket,
		prefix: strings.Trim(config.KVS3Prefix(), "/"),
	}, nil
}

func (s *S3) objectKey(key string) string {
	escaped := url.PathEscape(key) + ".json"
	if s.prefix == "" {
		return escaped
	}
	return s.prefix + "/" + escaped
}

func (s *S3) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return false, nil
		}
		return false, fmt.Errorf("kvstore/s3: get %s: %w", key, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return false, fmt.Errorf("kvstore/s3: read %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("kvstore/s3: unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (s *S3) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kvstore/s3: marshal %s: %w", key, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("kvstore/s3: put %s: %w", key, err)
	}
	return nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("kvstore/s3: delete %s: %w", key, err)
	}
	return nil
}

func (s *S3) Close() error { return nil }
