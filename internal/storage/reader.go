package storage

import "context"

// ObjectReader 는 분석할 로그 artifact 하나를 통째로 읽는다.
// 압축된 object 는 풀어서 원문 바이트로 반환한다.
// 실패 시 *Error 를 반환하며, object 가 없으면 errors.Is(err, ErrNotFound) 가 true.
type ObjectReader interface {
	Read(ctx context.Context, bucket, key string) ([]byte, error)
}
