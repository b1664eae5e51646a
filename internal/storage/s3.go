package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"downtime-panel-bot/internal/models"
)

// DefaultS3Key is the object key used when none is configured.
const DefaultS3Key = "downtimebot/state.json"

// S3Store keeps the state document in one S3 object.
type S3Store struct {
	client *s3.Client
	bucket string
	key    string
	codec  Codec
}

func NewS3Store(ctx context.Context, region, bucket, key string, codec Codec) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if key == "" {
		key = DefaultS3Key
	}
	return &S3Store{client: s3.NewFromConfig(awsCfg), bucket: bucket, key: key, codec: codec}, nil
}

func (s *S3Store) Load(ctx context.Context) (*models.Snapshot, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return models.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("%w: get s3://%s/%s: %v", ErrPersistence, s.bucket, s.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read s3://%s/%s: %v", ErrPersistence, s.bucket, s.key, err)
	}
	return s.codec.Decode(data)
}

func (s *S3Store) Save(ctx context.Context, snap *models.Snapshot) error {
	data, err := s.codec.Encode(snap)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("%w: put s3://%s/%s: %v", ErrPersistence, s.bucket, s.key, err)
	}
	return nil
}

func (s *S3Store) Close() error { return nil }
