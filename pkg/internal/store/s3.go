package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/joeydtaylor/tremor/pkg/internal/utils"
)

const (
	defaultMaxAttempts = 5
	defaultBaseBackoff = 100 * time.Millisecond
	defaultMaxBackoff  = 3 * time.Second
)

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store keeps objects in a bucket under an optional key prefix.
type S3Store struct {
	componentMetadata types.ComponentMetadata
	cli               S3API
	bucket            string
	prefix            string
	sseMode           string
	kmsKey            string
	maxAttempts       int
	sleep             func(context.Context, time.Duration) error
	loggers           []types.Logger
}

// NewS3Store returns a store over bucket. Keys are joined to prefix.
func NewS3Store(cli S3API, bucket, prefix string, options ...types.Option[*S3Store]) (*S3Store, error) {
	if cli == nil {
		return nil, fmt.Errorf("store: s3 client is required")
	}
	if bucket == "" {
		return nil, &types.ConfigurationError{Field: "storage.bucket", Reason: "required for the s3 backend"}
	}
	s := &S3Store{
		componentMetadata: types.ComponentMetadata{ID: utils.GenerateUniqueHash(), Type: "S3_STORE"},
		cli:               cli,
		bucket:            bucket,
		prefix:            strings.Trim(prefix, "/"),
		maxAttempts:       defaultMaxAttempts,
		sleep:             sleepCtx,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// WithS3Logger attaches loggers for retry diagnostics.
func WithS3Logger(loggers ...types.Logger) types.Option[*S3Store] {
	return func(s *S3Store) {
		for _, l := range loggers {
			if l != nil {
				s.loggers = append(s.loggers, l)
			}
		}
	}
}

// WithSSE enables server-side encryption ("AES256" or "aws:kms" with a key id).
func WithSSE(mode, kmsKey string) types.Option[*S3Store] {
	return func(s *S3Store) {
		s.sseMode = mode
		s.kmsKey = kmsKey
	}
}

// WithMaxAttempts bounds PutObject retries.
func WithMaxAttempts(n int) types.Option[*S3Store] {
	return func(s *S3Store) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func (s *S3Store) key(k string) string {
	k = strings.TrimPrefix(k, "/")
	if s.prefix == "" {
		return k
	}
	return path.Join(s.prefix, k)
}

// Put uploads data, retrying throttling and transient server errors with jittered backoff.
func (s *S3Store) Put(ctx context.Context, key string, data []byte) error {
	full := s.key(key)
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(full),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(full)),
	}
	switch s.sseMode {
	case "AES256":
		in.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	case "aws:kms":
		in.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		if s.kmsKey != "" {
			in.SSEKMSKeyId = aws.String(s.kmsKey)
		}
	}
	return s.putWithRetry(ctx, in, full, len(data))
}

func (s *S3Store) putWithRetry(ctx context.Context, in *s3.PutObjectInput, key string, size int) error {
	rs := in.Body.(io.ReadSeeker)
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return err
		}
		start := time.Now()
		_, err := s.cli.PutObject(ctx, in)
		if err == nil {
			s.notify(types.DebugLevel, "PutObject", "event", "PutObject", "result", "SUCCESS",
				"key", key, "bytes", size, "duration", time.Since(start).String())
			return nil
		}
		lastErr = err
		if !isRetryable(err) || attempt == s.maxAttempts || ctx.Err() != nil {
			break
		}
		s.notify(types.WarnLevel, "PutObject retry", "event", "PutObject", "attempt", attempt,
			"max_attempts", s.maxAttempts, "key", key, "error", err)
		if err := s.sleep(ctx, backoffDuration(attempt)); err != nil {
			return err
		}
	}
	return fmt.Errorf("store: put s3://%s/%s: %w", s.bucket, key, lastErr)
}

// Get downloads key.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	full := s.key(key)
	out, err := s.cli.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(full)})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("store: get s3://%s/%s: %w", s.bucket, full, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

// List returns the sorted keys, relative to the store prefix, beginning with prefix.
func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var cont *string
	for {
		out, err := s.cli.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.key(prefix)),
			ContinuationToken: cont,
			MaxKeys:           aws.Int32(1000),
		})
		if err != nil {
			return nil, err
		}
		for _, o := range out.Contents {
			k := aws.ToString(o.Key)
			if s.prefix != "" {
				k = strings.TrimPrefix(strings.TrimPrefix(k, s.prefix), "/")
			}
			keys = append(keys, k)
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		cont = out.NextContinuationToken
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *S3Store) notify(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	kv := append([]interface{}{"component", s.componentMetadata, "bucket", s.bucket}, keysAndValues...)
	for _, l := range s.loggers {
		if l.GetLevel() > level {
			continue
		}
		switch level {
		case types.DebugLevel:
			l.Debug(msg, kv...)
		case types.WarnLevel:
			l.Warn(msg, kv...)
		default:
			l.Info(msg, kv...)
		}
	}
}

func contentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".parquet":
		return "application/parquet"
	case ".csv":
		return "text/csv"
	case ".json", ".ndjson":
		return "application/x-ndjson"
	default:
		return "application/octet-stream"
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := defaultBaseBackoff << (attempt - 1)
	if d > defaultMaxBackoff {
		d = defaultMaxBackoff
	}
	return time.Duration(rand.Int64N(int64(d) + 1))
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, frag := range []string{"throttl", "slowdown", "timeout", "tempor", "connection reset", "eof", "internalerror", "service unavailable", "503", "500"} {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sharedResolver maps both S3 and STS to the same endpoint override (LocalStack, MinIO).
func sharedResolver(endpoint string) aws.EndpointResolverWithOptionsFunc {
	return aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
		switch service {
		case s3.ServiceID, sts.ServiceID:
			return aws.Endpoint{URL: endpoint, HostnameImmutable: true}, nil
		default:
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		}
	})
}

// NewS3ClientStatic creates an S3 client with static credentials. A non-empty endpoint targets
// an emulator; forcePathStyle is usually required there.
func NewS3ClientStatic(ctx context.Context, region, accessKey, secretKey, sessionToken, endpoint string, forcePathStyle bool) (*s3.Client, error) {
	var loaders []func(*config.LoadOptions) error
	if region != "" {
		loaders = append(loaders, config.WithRegion(region))
	}
	if accessKey != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, sessionToken),
		))
	}
	if endpoint != "" {
		loaders = append(loaders, config.WithEndpointResolverWithOptions(sharedResolver(endpoint)))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) { o.UsePathStyle = forcePathStyle }), nil
}

// NewS3ClientAssumeRole creates an S3 client that assumes roleARN through STS. A nil
// sourceCreds uses the default provider chain.
func NewS3ClientAssumeRole(ctx context.Context, region, roleARN, sessionName string, duration time.Duration, externalID string, sourceCreds aws.CredentialsProvider, endpoint string, forcePathStyle bool) (*s3.Client, error) {
	if roleARN == "" {
		return nil, &types.ConfigurationError{Field: "storage.role_arn", Reason: "required for assume-role clients"}
	}
	var loaders []func(*config.LoadOptions) error
	if region != "" {
		loaders = append(loaders, config.WithRegion(region))
	}
	if sourceCreds != nil {
		loaders = append(loaders, config.WithCredentialsProvider(sourceCreds))
	}
	if endpoint != "" {
		loaders = append(loaders, config.WithEndpointResolverWithOptions(sharedResolver(endpoint)))
	}
	base, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, err
	}
	provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(base), roleARN, func(o *stscreds.AssumeRoleOptions) {
		if sessionName != "" {
			o.RoleSessionName = sessionName
		}
		if duration > 0 {
			o.Duration = duration
		}
		if externalID != "" {
			o.ExternalID = aws.String(externalID)
		}
	})
	assumed := base
	assumed.Credentials = aws.NewCredentialsCache(provider)
	return s3.NewFromConfig(assumed, func(o *s3.Options) { o.UsePathStyle = forcePathStyle }), nil
}
