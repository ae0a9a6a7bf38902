package analyzer

import "fmt"

// ConfigurationError 는 필수 설정(API key 등)이 없을 때 반환된다.
// 재시도해도 결과가 같으므로 호출자는 재시도하지 않는다.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s is missing", e.Field)
}

// TransportError 는 네트워크 실패, timeout, non-2xx 응답을 나타낸다.
// StatusCode 는 응답을 받지 못한 경우 0 이다.
type TransportError struct {
	StatusCode int
	Body       string // 응답 body 앞 512 바이트
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport: completion endpoint returned HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError 는 응답 envelope 이 기대한 형태가 아닐 때 반환된다.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol: %s: %v", e.Reason, e.Err)
	}
	return "protocol: " + e.Reason
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// ContentError 는 모델 출력에서 JSON object 를 복구하지 못했을 때 반환된다.
// Content 에는 fence 제거 후의 원문이 그대로 들어있다.
type ContentError struct {
	Content string
	Err     error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("content: model did not return a JSON object. Raw content: %s", e.Content)
}

func (e *ContentError) Unwrap() error { return e.Err }
