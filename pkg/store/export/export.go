package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/de-tools/spend-atlas/pkg/adapters"
	"github.com/de-tools/spend-atlas/pkg/models/domain"
)

const s3Scheme = "s3://"

// Sink persists a finished report.
type Sink interface {
	Write(ctx context.Context, report *domain.Report) error
}

// ObjectPutter is the subset of the S3 client used by S3Sink.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewSink picks an S3 sink for s3://bucket/key targets and a file sink otherwise.
func NewSink(ctx context.Context, target string) (Sink, error) {
	if target == "" {
		return nil, fmt.Errorf("export target is empty")
	}

	bucket, key, ok, err := ParseS3URI(target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return NewFileSink(target), nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return NewS3Sink(s3.NewFromConfig(cfg), bucket, key), nil
}

// ParseS3URI reports ok=false for anything that is not an s3:// URI.
func ParseS3URI(target string) (bucket, key string, ok bool, err error) {
	if !strings.HasPrefix(target, s3Scheme) {
		return "", "", false, nil
	}

	bucket, key, _ = strings.Cut(strings.TrimPrefix(target, s3Scheme), "/")
	if bucket == "" || key == "" {
		return "", "", true, fmt.Errorf("invalid S3 target %q, expected s3://bucket/key", target)
	}
	return bucket, key, true, nil
}

func encode(report *domain.Report) ([]byte, error) {
	payload, err := json.MarshalIndent(adapters.MapReportDomainToApi(report), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return append(payload, '\n'), nil
}

type FileSink struct {
	path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (f *FileSink) Write(ctx context.Context, report *domain.Report) error {
	payload, err := encode(report)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	if err := os.WriteFile(f.path, payload, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("path", f.path).Msg("report exported")
	return nil
}

type S3Sink struct {
	client ObjectPutter
	bucket string
	key    string
}

func NewS3Sink(client ObjectPutter, bucket, key string) *S3Sink {
	return &S3Sink{
		client: client,
		bucket: bucket,
		key:    key,
	}
}

func (s *S3Sink) Write(ctx context.Context, report *domain.Report) error {
	payload, err := encode(report)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload report to s3://%s/%s: %w", s.bucket, s.key, err)
	}

	zerolog.Ctx(ctx).Info().Str("bucket", s.bucket).Str("key", s.key).Msg("report exported")
	return nil
}
