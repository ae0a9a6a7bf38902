package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGetObject struct {
	body        []byte
	err         error
	gotBucket   string
	gotKey      string
	hadDeadline bool
}

func (s *stubGetObject) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	s.gotBucket = aws.ToString(in.Bucket)
	s.gotKey = aws.ToString(in.Key)
	_, s.hadDeadline = ctx.Deadline()
	if s.err != nil {
		return nil, s.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(s.body))}, nil
}

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestS3Reader_Read(t *testing.T) {
	stub := &stubGetObject{body: []byte("ERROR db down\n")}
	r := newS3Reader(stub, time.Second)

	data, err := r.Read(context.Background(), "bucket-a", "system.log")
	require.NoError(t, err)

	assert.Equal(t, "ERROR db down\n", string(data))
	assert.Equal(t, "bucket-a", stub.gotBucket)
	assert.Equal(t, "system.log", stub.gotKey)
	assert.True(t, stub.hadDeadline)
}

func TestS3Reader_ReadGzip(t *testing.T) {
	stub := &stubGetObject{body: gzipBytes(t, "WARN cpu 95%\n")}
	r := newS3Reader(stub, time.Second)

	data, err := r.Read(context.Background(), "b", "logs/app.log.gz")
	require.NoError(t, err)
	assert.Equal(t, "WARN cpu 95%\n", string(data))
}

func TestS3Reader_NotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"typed NoSuchKey", &types.NoSuchKey{Message: aws.String("gone")}},
		{"generic NotFound", &smithy.GenericAPIError{Code: "NotFound", Message: "head miss"}},
		{"missing bucket", &smithy.GenericAPIError{Code: "NoSuchBucket"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newS3Reader(&stubGetObject{err: tt.err}, time.Second)

			_, err := r.Read(context.Background(), "b", "missing.log")

			var se *Error
			require.True(t, errors.As(err, &se))
			assert.Equal(t, "get", se.Op)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.Contains(t, err.Error(), "s3://b/missing.log")
		})
	}
}

func TestS3Reader_OtherError(t *testing.T) {
	cause := &smithy.GenericAPIError{Code: "AccessDenied", Message: "no"}
	r := newS3Reader(&stubGetObject{err: cause}, time.Second)

	_, err := r.Read(context.Background(), "b", "k")

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.NotErrorIs(t, err, ErrNotFound)

	var apiErr smithy.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "AccessDenied", apiErr.ErrorCode())
}

func TestS3Reader_CorruptGzip(t *testing.T) {
	r := newS3Reader(&stubGetObject{body: []byte("not gzip at all")}, time.Second)

	_, err := r.Read(context.Background(), "b", "broken.log.gz")

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "decode", se.Op)
}
