package pool

import (
	"bytes"
	"sync"
)

// ---------------------------------------------------------------
// Pool 구성 목적
//
// invocation 마다 S3 object body, completion 응답 body, 요청 body 를
// 한 번씩 통째로 메모리에 읽는다. scheduler 나 HTTP trigger 로 반복 실행될 때
// 매번 새 버퍼를 할당하지 않도록 재사용한다.
// ---------------------------------------------------------------

var (
	// BufferPool:
	//   - 읽기용 임시 버퍼
	//   - 초기 용량 64KB (일반적인 로그 파일 / completion 응답 크기)
	//   - MaxBufferCap 초과 버퍼는 풀에 넣지 않음
	BufferPool = sync.Pool{
		New: func() any {
			return bytes.NewBuffer(make([]byte, 0, 64*1024))
		},
	}
)

// Pool에 되돌려줄 최대 버퍼 용량.
// 큰 로그 파일을 한 번 읽었다고 해서 그 메모리를 계속 보유하지 않는다.
const MaxBufferCap = 4 * 1024 * 1024 // 4MB

// GetBuffer 는 비어 있는 버퍼를 꺼낸다.
func GetBuffer() *bytes.Buffer {
	buf := BufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer:
//   - MaxBufferCap 이하이면 풀에 재사용
//   - 초과하면 반환하지 않고 GC 에 맡긴다
//
// 반환한 뒤에는 buf.Bytes() 로 얻은 slice 를 더 이상 사용하면 안 된다.
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() <= MaxBufferCap {
		buf.Reset()
		BufferPool.Put(buf)
	}
}
