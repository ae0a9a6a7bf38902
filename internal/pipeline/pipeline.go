package pipeline

import (
	"context"
	"errors"
	"sync/atomic"

	"log-risk-analyzer/internal/analyzer"
	"log-risk-analyzer/internal/decision"
	"log-risk-analyzer/internal/metrics"
	"log-risk-analyzer/internal/model"
	"log-risk-analyzer/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Analyzer 는 로그 원문을 분석 결과로 바꾸는 구성 요소 (analyzer.Requester).
type Analyzer interface {
	Analyze(ctx context.Context, logs string) (model.AnalysisResult, error)
}

// Pipeline
// ------------------------------------------------------------
// invocation 1회의 흐름:
//  1. ObjectReader 로 로그 artifact 읽기
//  2. best-effort UTF-8 디코딩
//  3. Analyzer 호출 → AnalysisResult
//  4. decision.Decide → DecisionResult
//
// 어느 단계든 실패하면 그 에러를 그대로 반환하고 Report 는 만들지 않는다.
// Pipeline 은 invocation 간 상태를 갖지 않으므로 HTTP trigger 와 scheduler 가 공유한다.
type Pipeline struct {
	reader   storage.ObjectReader
	analyzer Analyzer
	metrics  *metrics.Metrics
}

func New(reader storage.ObjectReader, a Analyzer, m *metrics.Metrics) *Pipeline {
	if m == nil {
		m = metrics.New()
	}
	return &Pipeline{
		reader:   reader,
		analyzer: a,
		metrics:  m,
	}
}

// Run 은 bucket/key 의 로그를 분석하고 시뮬레이션 결정을 담은 Report 를 반환한다.
func (p *Pipeline) Run(ctx context.Context, bucket, key string) (model.Report, error) {
	atomic.AddInt64(&p.metrics.InvocationsTotal, 1)

	logger := log.With().
		Str("invocation_id", uuid.NewString()).
		Str("bucket", bucket).
		Str("key", key).
		Logger()

	raw, err := p.reader.Read(ctx, bucket, key)
	if err != nil {
		return model.Report{}, p.fail(logger, err)
	}

	logs := storage.DecodeText(raw)
	atomic.AddInt64(&p.metrics.LogBytesTotal, int64(len(logs)))
	logger.Debug().Int("bytes", len(logs)).Str("logs", logs).Msg("logs fetched")

	analysis, err := p.analyzer.Analyze(ctx, logs)
	if err != nil {
		return model.Report{}, p.fail(logger, err)
	}

	dec := decision.Decide(analysis)
	p.countDecision(dec.ActionTaken)

	logger.Info().
		Str("risk_level", string(analysis.RiskLevel)).
		Str("root_cause", analysis.RootCause).
		Strs("recommended_actions", analysis.RecommendedActions).
		Str("action_taken", string(dec.ActionTaken)).
		Str("priority", string(dec.Priority)).
		Msg("invocation completed")

	atomic.AddInt64(&p.metrics.InvocationsSucceededTotal, 1)

	return model.Report{
		OK:       true,
		Bucket:   bucket,
		Key:      key,
		Analysis: analysis,
		Decision: dec,
	}, nil
}

// fail 은 실패 종류별 카운터를 올리고 에러 로그를 남긴 뒤 err 를 그대로 돌려준다.
func (p *Pipeline) fail(logger zerolog.Logger, err error) error {
	kind := Kind(err)

	switch kind {
	case KindConfiguration:
		atomic.AddInt64(&p.metrics.ConfigurationErrorsTotal, 1)
	case KindStorage:
		atomic.AddInt64(&p.metrics.StorageErrorsTotal, 1)
	case KindTransport:
		atomic.AddInt64(&p.metrics.TransportErrorsTotal, 1)
	case KindProtocol:
		atomic.AddInt64(&p.metrics.ProtocolErrorsTotal, 1)
	case KindContent:
		atomic.AddInt64(&p.metrics.ContentErrorsTotal, 1)
	}

	ev := logger.Error().Err(err).Str("kind", kind)

	var contentErr *analyzer.ContentError
	if errors.As(err, &contentErr) {
		ev = ev.Str("raw_content", contentErr.Content)
	}
	ev.Msg("invocation failed")

	return err
}

func (p *Pipeline) countDecision(a model.Action) {
	switch a {
	case model.ActionSimulatedRemediation:
		atomic.AddInt64(&p.metrics.DecisionsRemediationTotal, 1)
	case model.ActionSimulatedAlert:
		atomic.AddInt64(&p.metrics.DecisionsAlertTotal, 1)
	default:
		atomic.AddInt64(&p.metrics.DecisionsNoActionTotal, 1)
	}
}
