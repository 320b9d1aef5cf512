package config

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/isorouter/internal/errors"
)

// maxRemoteConfigSize caps how much of an S3 object is read.
const maxRemoteConfigSize = 4 << 20

// ObjectGetter is the subset of *s3.Client used to fetch configuration.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ParseS3URL splits "s3://bucket/key" into bucket and key.
func ParseS3URL(raw string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(raw, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// LoadS3 reads and validates a configuration document stored in S3. The
// key's extension picks the format.
func LoadS3(ctx context.Context, client ObjectGetter, bucket, key string) (*Config, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.New("R005").
			WithDetail("GetObject s3://" + bucket + "/" + key + " failed").
			WithSuggestion("Check the bucket name, key and AWS credentials").
			Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxRemoteConfigSize))
	if err != nil {
		return nil, errors.New("R005").Wrap(err)
	}

	cfg, err := Parse(data, FormatFromPath(key))
	if err != nil {
		return nil, err
	}
	cfg.configPath = "s3://" + bucket + "/" + key
	return cfg, nil
}

// NewS3Client builds an S3 client for region. Credentials come from
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN; without
// them requests are anonymous. AWS_ENDPOINT_URL_S3 points the client at an
// S3-compatible store and switches to path-style addressing.
func NewS3Client(region string) *s3.Client {
	opts := s3.Options{
		Region:      region,
		Credentials: aws.AnonymousCredentials{},
	}

	if id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"); id != "" && secret != "" {
		token := os.Getenv("AWS_SESSION_TOKEN")
		opts.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     id,
					SecretAccessKey: secret,
					SessionToken:    token,
					Source:          "Environment",
				}, nil
			}))
	}

	if endpoint := os.Getenv("AWS_ENDPOINT_URL_S3"); endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}

	return s3.New(opts)
}
