package builder

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type pagedS3 struct {
	pages [][]string
	calls int
	err   error
}

func (p *pagedS3) PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return nil, errors.New("not implemented")
}

func (p *pagedS3) GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return nil, errors.New("not implemented")
}

func (p *pagedS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if p.err != nil {
		return nil, p.err
	}
	i := p.calls
	p.calls++
	if i > 0 && aws.ToString(in.ContinuationToken) != "next" {
		return nil, errors.New("missing continuation token")
	}
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(i < len(p.pages)-1)}
	if i < len(p.pages)-1 {
		out.NextContinuationToken = aws.String("next")
	}
	for _, k := range p.pages[i] {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestHasSuffixFold(t *testing.T) {
	if !hasSuffixFold("raw/0701120000.MSEED", []string{".mseed"}) {
		t.Fatalf("expected suffix match")
	}
	if hasSuffixFold("raw/notes.txt", []string{".mseed"}) {
		t.Fatalf("unexpected suffix match")
	}
}

func TestS3ListKeysFollowsPagesAndFilters(t *testing.T) {
	cli := &pagedS3{pages: [][]string{
		{"raw/a.mseed", "raw/readme.txt"},
		{"raw/b.MSEED"},
	}}
	keys, err := S3ListKeys(context.Background(), cli, "bucket", "raw/", ".mseed")
	if err != nil {
		t.Fatalf("S3ListKeys: %v", err)
	}
	if want := []string{"raw/a.mseed", "raw/b.MSEED"}; !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	if cli.calls != 2 {
		t.Fatalf("expected 2 list calls, got %d", cli.calls)
	}
}

func TestS3ListKeysValidatesInput(t *testing.T) {
	if _, err := S3ListKeys(context.Background(), nil, "bucket", ""); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if _, err := S3ListKeys(context.Background(), &pagedS3{}, "", ""); err == nil {
		t.Fatalf("expected error for empty bucket")
	}
	boom := errors.New("boom")
	if _, err := S3ListKeys(context.Background(), &pagedS3{err: boom}, "bucket", ""); !errors.Is(err, boom) {
		t.Fatalf("expected list error, got %v", err)
	}
}

func TestLocalstackDefaults(t *testing.T) {
	cfg := LocalstackS3AssumeRoleConfig{RoleARN: "arn:aws:iam::000000000000:role/tremor", Region: "eu-west-1"}.withDefaults()
	if cfg.SessionName != "tremor" || cfg.Region != "eu-west-1" || cfg.Endpoint != "http://localhost:4566" || cfg.Duration == 0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, err := NewS3ClientAssumeRoleLocalstack(context.Background(), LocalstackS3AssumeRoleConfig{}); err == nil {
		t.Fatalf("expected error without a role ARN")
	}
}
