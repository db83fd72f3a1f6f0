package builder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/joeydtaylor/tremor/pkg/internal/store"
)

// S3API is the subset of *s3.Client the storage layer needs.
type S3API = store.S3API

// LocalstackS3AssumeRoleConfig sets up defaults for LocalStack assume-role clients.
type LocalstackS3AssumeRoleConfig struct {
	RoleARN      string
	SessionName  string
	Region       string
	Duration     time.Duration
	ExternalID   string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	SessionToken string
}

// NewS3ClientStatic builds an S3 client from static credentials.
func NewS3ClientStatic(ctx context.Context, region, accessKey, secretKey, sessionToken, endpoint string, forcePathStyle bool) (*s3.Client, error) {
	return store.NewS3ClientStatic(ctx, region, accessKey, secretKey, sessionToken, endpoint, forcePathStyle)
}

// NewS3ClientAssumeRole builds an S3 client whose credentials come from an STS assumed role.
func NewS3ClientAssumeRole(ctx context.Context, region, roleARN, sessionName string, duration time.Duration, externalID string, sourceCreds aws.CredentialsProvider, endpoint string, forcePathStyle bool) (*s3.Client, error) {
	return store.NewS3ClientAssumeRole(ctx, region, roleARN, sessionName, duration, externalID, sourceCreds, endpoint, forcePathStyle)
}

func (c LocalstackS3AssumeRoleConfig) withDefaults() LocalstackS3AssumeRoleConfig {
	def := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	def(&c.SessionName, "tremor")
	def(&c.Region, "us-east-1")
	def(&c.Endpoint, "http://localhost:4566")
	def(&c.AccessKey, "test")
	def(&c.SecretKey, "test")
	if c.Duration == 0 {
		c.Duration = 15 * time.Minute
	}
	return c
}

// NewS3ClientAssumeRoleLocalstack builds a path-style assume-role S3 client against LocalStack,
// filling unset fields with LocalStack's defaults.
func NewS3ClientAssumeRoleLocalstack(ctx context.Context, cfg LocalstackS3AssumeRoleConfig) (*s3.Client, error) {
	if cfg.RoleARN == "" {
		return nil, fmt.Errorf("role ARN is required")
	}
	cfg = cfg.withDefaults()
	creds := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken))
	return store.NewS3ClientAssumeRole(ctx, cfg.Region, cfg.RoleARN, cfg.SessionName, cfg.Duration, cfg.ExternalID, creds, cfg.Endpoint, true)
}

// S3ListKeys returns object keys for a bucket/prefix, optionally filtered by suffix, e.g. the
// waveform files of a raw corpus staged in a bucket.
func S3ListKeys(ctx context.Context, cli S3API, bucket, prefix string, suffixes ...string) ([]string, error) {
	if cli == nil {
		return nil, fmt.Errorf("s3 client is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	var keys []string
	var cont *string
	for {
		out, err := cli.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: cont,
			MaxKeys:           aws.Int32(1000),
		})
		if err != nil {
			return nil, err
		}
		for _, o := range out.Contents {
			k := aws.ToString(o.Key)
			if len(suffixes) == 0 || hasSuffixFold(k, suffixes) {
				keys = append(keys, k)
			}
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		cont = out.NextContinuationToken
	}
	return keys, nil
}

func hasSuffixFold(key string, suffixes []string) bool {
	lower := strings.ToLower(key)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}
