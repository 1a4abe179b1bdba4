// Package archive keeps generated batch reports in S3-compatible object
// storage (AWS S3, Cloudflare R2, MinIO).
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/config"
)

// ObjectPutter is the subset of the S3 client the archive uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archive uploads report documents under a date-partitioned key layout.
type Archive struct {
	client ObjectPutter
	bucket string
	logger *zap.Logger
}

// New builds an archive from configuration. Static credentials and a custom
// endpoint are used when provided; otherwise the default AWS chain applies.
func New(ctx context.Context, cfg config.ArchiveConfig, logger *zap.Logger) (*Archive, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithClient(client, cfg.Bucket, logger), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client ObjectPutter, bucket string, logger *zap.Logger) *Archive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archive{client: client, bucket: bucket, logger: logger}
}

// ReportKey is the object key of a batch report generated at t.
func ReportKey(batchCode string, t time.Time) string {
	return fmt.Sprintf("reports/%s/%s/%s-%s.pdf", t.Format("2006"), t.Format("01"), batchCode, t.Format("20060102-150405"))
}

// StoreReport uploads a PDF report and returns its object key.
func (a *Archive) StoreReport(ctx context.Context, batchCode string, pdf []byte, generatedAt time.Time) (string, error) {
	key := ReportKey(batchCode, generatedAt.UTC())

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(pdf),
		ContentType: aws.String("application/pdf"),
		Metadata: map[string]string{
			"batch-code": batchCode,
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload report %s: %w", key, err)
	}

	a.logger.Info("report archived", zap.String("bucket", a.bucket), zap.String("key", key), zap.Int("bytes", len(pdf)))
	return key, nil
}
