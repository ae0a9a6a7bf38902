package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log-risk-analyzer/internal/config"
	"log-risk-analyzer/internal/pool"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfgLib "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog/log"
)

// getObjectAPI 는 S3Reader 가 사용하는 s3.Client 의 부분 집합. 테스트에서 stub 으로 교체한다.
type getObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Reader
// ------------------------------------------------------------
// GetObject 1회로 로그 파일을 읽는다.
//   - 호출마다 S3_TIMEOUT 적용
//   - NoSuchKey / NotFound 는 ErrNotFound 로 변환
//   - .gz / .zst (또는 magic bytes) 는 풀어서 반환
type S3Reader struct {
	client  getObjectAPI
	timeout time.Duration
}

// NewS3Reader 는 AWS 기본 credential chain 으로 S3 client 를 만든다.
// region 이 비어 있으면 SDK 기본 해석(AWS_REGION, profile 등)을 따른다.
func NewS3Reader(ctx context.Context, cfg config.Config) (*S3Reader, error) {
	var opts []func(*awsCfgLib.LoadOptions) error
	if cfg.AWSRegion != "" {
		opts = append(opts, awsCfgLib.WithRegion(cfg.AWSRegion))
	}

	awsCfg, err := awsCfgLib.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// 0 이면 SDK standard retryer 기본값 사용
		o.RetryMaxAttempts = 0
	})

	return newS3Reader(client, cfg.S3Timeout), nil
}

func newS3Reader(api getObjectAPI, timeout time.Duration) *S3Reader {
	return &S3Reader{client: api, timeout: timeout}
}

func (r *S3Reader) Read(ctx context.Context, bucket, key string) ([]byte, error) {
	ctx2, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.client.GetObject(ctx2, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			err = notFound(err)
		}
		return nil, &Error{Op: "get", Bucket: bucket, Key: key, Err: err}
	}
	defer out.Body.Close()

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if _, err := buf.ReadFrom(out.Body); err != nil {
		return nil, &Error{Op: "read", Bucket: bucket, Key: key, Err: err}
	}

	// buf 는 풀로 돌아가므로 복사본을 넘긴다
	raw := make([]byte, buf.Len())
	copy(raw, buf.Bytes())

	data, err := decompress(key, raw)
	if err != nil {
		return nil, &Error{Op: "decode", Bucket: bucket, Key: key, Err: err}
	}

	log.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Int("raw_bytes", len(raw)).
		Int("bytes", len(data)).
		Msg("object fetched")

	return data, nil
}

// isNotFound:
//   - GetObject 는 보통 *types.NoSuchKey 를 반환
//   - 권한/버킷 설정에 따라 generic API error (NotFound, NoSuchBucket) 로 오기도 한다
func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}
