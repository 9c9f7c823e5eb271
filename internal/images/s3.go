package images

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectStore is the slice of object storage the uploader needs: put a blob
// under a key, tell me the region for URL building.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key, contentType string, body io.Reader) error
	Region() string
}

// S3Store is the AWS-backed ObjectStore. Uploads are public-read: the URLs
// go straight into eBay listings.
type S3Store struct {
	client *s3.Client
	region string
}

// NewS3Store builds a store from the ambient AWS credential chain. An
// explicit region overrides the resolved one.
func NewS3Store(ctx context.Context, region string) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	resolved := cfg.Region
	if resolved == "" {
		resolved = "us-east-1"
	}
	return &S3Store{client: s3.NewFromConfig(cfg), region: resolved}, nil
}

func (s *S3Store) Put(ctx context.Context, bucket, key, contentType string, body io.Reader) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
		ACL:    s3types.ObjectCannedACLPublicRead,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	_, err := s.client.PutObject(ctx, input)
	return err
}

func (s *S3Store) Region() string {
	return s.region
}

// PublicURL builds the bucket-hosted URL for a key. us-east-1 buckets
// resolve without the region segment.
func PublicURL(bucket, region, key string) string {
	if region == "" || region == "us-east-1" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}
