package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Publisher struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewS3Publisher loads the default AWS credential chain. A non-empty endpoint
// switches to path-style addressing for S3-compatible servers.
func NewS3Publisher(ctx context.Context, bucket, region, endpoint string) (*S3Publisher, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3PublisherFromConfig(cfg, bucket, endpoint)
}

func NewS3PublisherFromConfig(cfg aws.Config, bucket, endpoint string) (*S3Publisher, error) {
	if bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Publisher{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
	}, nil
}

func (p *S3Publisher) Upload(ctx context.Context, key, localPath, contentType string) error {
	if err := checkKey("upload", key); err != nil {
		return err
	}
	f, err := os.Open(localPath)
	if err != nil {
		return &PublishError{Op: "upload", Key: key, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return &PublishError{Op: "upload", Key: key, Err: err}
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		return &PublishError{Op: "upload", Key: key, Err: err}
	}
	log.Infof("uploaded %s to s3://%s/%s", localPath, p.bucket, key)
	return nil
}

func (p *S3Publisher) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := checkPresign(key, ttl); err != nil {
		return "", err
	}
	req, err := p.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", &PublishError{Op: "presign", Key: key, Err: err}
	}
	return req.URL, nil
}
