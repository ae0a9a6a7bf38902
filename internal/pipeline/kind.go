package pipeline

import (
	"errors"

	"log-risk-analyzer/internal/analyzer"
	"log-risk-analyzer/internal/storage"
)

// 실패 분류. metrics, HTTP status, 로그 필드에서 공통으로 사용한다.
const (
	KindConfiguration = "configuration"
	KindTransport     = "transport"
	KindProtocol      = "protocol"
	KindContent       = "content"
	KindStorage       = "storage"
	KindInternal      = "internal"
)

// Kind 는 invocation 실패 원인을 분류한다. 알 수 없는 에러는 internal.
func Kind(err error) string {
	var (
		cfgErr       *analyzer.ConfigurationError
		transportErr *analyzer.TransportError
		protocolErr  *analyzer.ProtocolError
		contentErr   *analyzer.ContentError
		storageErr   *storage.Error
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfgErr):
		return KindConfiguration
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &protocolErr):
		return KindProtocol
	case errors.As(err, &contentErr):
		return KindContent
	case errors.As(err, &storageErr):
		return KindStorage
	}
	return KindInternal
}
