package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound 는 bucket/key 에 해당하는 object 가 없을 때 errors.Is 로 확인할 수 있는 sentinel.
var ErrNotFound = errors.New("object not found")

// Error 는 object 를 읽거나 디코딩하는 중 발생한 실패.
// Op 는 실패한 단계 (get, read, decode).
type Error struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *Error) Error() string {
	if e.Bucket == "" {
		return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage: %s s3://%s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// notFound 는 원인 에러를 유지하면서 ErrNotFound 로 매칭되도록 감싼다.
func notFound(cause error) error {
	return fmt.Errorf("%w: %v", ErrNotFound, cause)
}
