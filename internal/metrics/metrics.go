package metrics

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics 는 analyzer 프로세스 상태를 나타내는 카운터 모음이다.
// 모든 필드는 sync/atomic 으로만 접근한다.
type Metrics struct {
	// ======================
	// Trigger 레벨 지표
	// ======================

	// HTTPRequestsTotal
	// - /analyze 로 들어온 모든 요청 수 (메서드/결과 무관).
	HTTPRequestsTotal int64

	// HTTPRequestsRateLimitedTotal
	// - rate limit 에 걸려 429 로 거절된 요청 수.
	// - 이 값이 계속 증가하면 호출 측 스케줄이 TRIGGER_RATE 보다 빠르다는 뜻.
	HTTPRequestsRateLimitedTotal int64

	// ScheduledRunsTotal
	// - scheduler 가 ticker 로 시작한 invocation 수.
	ScheduledRunsTotal int64

	// ======================
	// Invocation 레벨 지표
	// ======================

	// InvocationsTotal / InvocationsSucceededTotal
	// - 시작된 invocation 수와 Report 까지 만들어진 invocation 수.
	InvocationsTotal          int64
	InvocationsSucceededTotal int64

	// 실패 종류별 카운터. pipeline.Kind 분류와 1:1 대응.
	ConfigurationErrorsTotal int64
	StorageErrorsTotal       int64
	TransportErrorsTotal     int64
	ProtocolErrorsTotal      int64
	ContentErrorsTotal       int64

	// ======================
	// 추출 / 결정 지표
	// ======================

	// ExtractionFallbackTotal
	// - 직접 파싱에 실패하고 brace scan 으로 복구한 횟수.
	// - 모델이 JSON-only 지시를 얼마나 자주 어기는지 보여준다.
	ExtractionFallbackTotal int64

	// 결정 tier 별 카운터
	DecisionsRemediationTotal int64
	DecisionsAlertTotal       int64
	DecisionsNoActionTotal    int64

	// LogBytesTotal
	// - S3 에서 읽어서 디코딩한 로그 텍스트 누적 바이트.
	LogBytesTotal int64
}

func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) String() string {
	var sb strings.Builder
	sb.Grow(512)

	fmt.Fprintf(&sb, "http_requests_total=%d\n", atomic.LoadInt64(&m.HTTPRequestsTotal))
	fmt.Fprintf(&sb, "http_requests_rate_limited_total=%d\n", atomic.LoadInt64(&m.HTTPRequestsRateLimitedTotal))
	fmt.Fprintf(&sb, "scheduled_runs_total=%d\n", atomic.LoadInt64(&m.ScheduledRunsTotal))

	fmt.Fprintf(&sb, "invocations_total=%d\n", atomic.LoadInt64(&m.InvocationsTotal))
	fmt.Fprintf(&sb, "invocations_succeeded_total=%d\n", atomic.LoadInt64(&m.InvocationsSucceededTotal))
	fmt.Fprintf(&sb, "configuration_errors_total=%d\n", atomic.LoadInt64(&m.ConfigurationErrorsTotal))
	fmt.Fprintf(&sb, "storage_errors_total=%d\n", atomic.LoadInt64(&m.StorageErrorsTotal))
	fmt.Fprintf(&sb, "transport_errors_total=%d\n", atomic.LoadInt64(&m.TransportErrorsTotal))
	fmt.Fprintf(&sb, "protocol_errors_total=%d\n", atomic.LoadInt64(&m.ProtocolErrorsTotal))
	fmt.Fprintf(&sb, "content_errors_total=%d\n", atomic.LoadInt64(&m.ContentErrorsTotal))

	fmt.Fprintf(&sb, "extraction_fallback_total=%d\n", atomic.LoadInt64(&m.ExtractionFallbackTotal))
	fmt.Fprintf(&sb, "decisions_remediation_total=%d\n", atomic.LoadInt64(&m.DecisionsRemediationTotal))
	fmt.Fprintf(&sb, "decisions_alert_total=%d\n", atomic.LoadInt64(&m.DecisionsAlertTotal))
	fmt.Fprintf(&sb, "decisions_no_action_total=%d\n", atomic.LoadInt64(&m.DecisionsNoActionTotal))
	fmt.Fprintf(&sb, "log_bytes_total=%d\n", atomic.LoadInt64(&m.LogBytesTotal))

	return sb.String()
}
