package s3

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
	"github.com/tanq16/godotfetch/internal/downloader"
)

// ObjectAPI is the subset of *s3.Client a Source needs.
type ObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Source reads a single object from an S3 bucket. Objects always support
// byte ranges, so every transfer is chunked.
type Source struct {
	bucket string
	key    string
	client ObjectAPI
}

// NewSource builds a Source for an s3://bucket/key URL using the shared AWS
// configuration for profile (empty means the default chain).
func NewSource(ctx context.Context, rawURL, profile string) (*Source, error) {
	return newSource(ctx, rawURL, profile)
}

func newSource(ctx context.Context, rawURL, profile string, optFns ...func(*s3.Options)) (*Source, error) {
	bucket, key, err := parseS3URL(rawURL)
	if err != nil {
		return nil, err
	}
	client, err := getS3Client(ctx, profile, optFns...)
	if err != nil {
		return nil, fmt.Errorf("error creating S3 client: %w", err)
	}
	log.Debug().Str("op", "s3/initial").Msgf("source built for s3://%s/%s", bucket, key)
	return &Source{bucket: bucket, key: key, client: client}, nil
}

func NewSourceWithClient(rawURL string, client ObjectAPI) (*Source, error) {
	bucket, key, err := parseS3URL(rawURL)
	if err != nil {
		return nil, err
	}
	return &Source{bucket: bucket, key: key, client: client}, nil
}

func (s *Source) URL() string { return "s3://" + s.bucket + "/" + s.key }

func (s *Source) Stat(ctx context.Context) (downloader.Metadata, error) {
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return downloader.Metadata{}, fmt.Errorf("error getting S3 object info: %w", err)
	}
	size := aws.ToInt64(head.ContentLength)
	log.Info().Str("op", "s3/initial").Int64("size", size).Msgf("described %s", s.URL())
	return downloader.Metadata{Size: size, Rangeable: size > 0}, nil
}

// IsS3URL reports whether rawURL uses the s3:// scheme.
func IsS3URL(rawURL string) bool {
	return strings.HasPrefix(rawURL, "s3://")
}

func parseS3URL(url string) (string, string, error) {
	if !IsS3URL(url) {
		return "", "", fmt.Errorf("invalid S3 URL format: %s", url)
	}
	url = strings.TrimPrefix(url, "s3://")
	parts := strings.SplitN(url, "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid S3 URL format: missing bucket")
	}
	if len(parts) < 2 || parts[1] == "" || strings.HasSuffix(parts[1], "/") {
		return "", "", fmt.Errorf("invalid S3 URL format: missing object key")
	}
	return parts[0], parts[1], nil
}
