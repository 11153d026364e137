package sink

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var _ Writer = (*S3Writer)(nil)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Writer struct {
	client s3API
	bucket string
}

func NewS3Writer(client s3API, bucket string) *S3Writer {
	return &S3Writer{client: client, bucket: bucket}
}

func (w *S3Writer) Put(ctx context.Context, obj Object) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(w.bucket),
		Key:           aws.String(obj.Key),
		Body:          bytes.NewReader(obj.Body),
		ContentLength: aws.Int64(int64(len(obj.Body))),
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}
	if obj.CacheControl != "" {
		input.CacheControl = aws.String(obj.CacheControl)
	}
	if obj.ACL != "" {
		input.ACL = types.ObjectCannedACL(obj.ACL)
	}

	if _, err := w.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", w.bucket, obj.Key, err)
	}

	slog.Info("Feed uploaded", "bucket", w.bucket, "key", obj.Key, "bytes", len(obj.Body))
	return nil
}
