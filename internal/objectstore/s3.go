package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// S3API is the subset of the S3 client the store uses.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Options configure how the S3 client authenticates.
type S3Options struct {
	Region string

	// RoleARN, when set, is assumed through STS before reading.
	RoleARN     string
	SessionName string

	// Anonymous sends unsigned requests, for public buckets.
	Anonymous bool
}

// S3Store reads objects from Amazon S3.
type S3Store struct {
	api S3API
}

var _ Store = (*S3Store)(nil)

// NewS3Store wraps an S3 API client.
func NewS3Store(api S3API) *S3Store {
	if api == nil {
		panic("s3 api cannot be nil")
	}
	return &S3Store{api: api}
}

// NewS3StoreFromConfig builds a client from the default AWS credential chain,
// optionally exchanging it for the delegated role.
func NewS3StoreFromConfig(ctx context.Context, opts S3Options) (*S3Store, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.Anonymous {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(aws.AnonymousCredentials{}))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if opts.RoleARN != "" && !opts.Anonymous {
		provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(cfg), opts.RoleARN, func(o *stscreds.AssumeRoleOptions) {
			if opts.SessionName != "" {
				o.RoleSessionName = opts.SessionName
			}
		})
		cfg.Credentials = aws.NewCredentialsCache(provider)
	}

	return NewS3Store(s3.NewFromConfig(cfg)), nil
}

// ParseS3URI splits s3://bucket/key into bucket and key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("invalid S3 URI %q: %w", uri, err)
	}
	if !strings.EqualFold(u.Scheme, "s3") || u.Host == "" {
		return "", "", fmt.Errorf("invalid S3 URI %q: expected s3://bucket/key", uri)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// List pages through every key beginning with the prefix. Folder
// placeholder keys (ending in "/") are skipped.
func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	bucket, keyPrefix, err := ParseS3URI(prefix)
	if err != nil {
		return nil, err
	}

	var uris []string
	paginator := s3.NewListObjectsV2Paginator(s.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(keyPrefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", bucket, keyPrefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			uris = append(uris, "s3://"+bucket+"/"+key)
		}
	}
	return uris, nil
}

func (s *S3Store) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", uri, err)
	}
	return out.Body, nil
}
