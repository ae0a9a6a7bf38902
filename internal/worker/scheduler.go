// internal/worker/scheduler.go
package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"log-risk-analyzer/internal/config"
	"log-risk-analyzer/internal/metrics"
	"log-risk-analyzer/internal/model"
	"log-risk-analyzer/internal/pipeline"

	"github.com/rs/zerolog/log"
)

// Runner 는 invocation 1회를 실행한다 (pipeline.Pipeline).
type Runner interface {
	Run(ctx context.Context, bucket, key string) (model.Report, error)
}

// Scheduler 는 기본 artifact(LOG_BUCKET/LOG_KEY)를 일정 주기로 분석한다.
//
// 주요 구성:
//   - loop: ticker 마다 Runner.Run 을 동기 호출
//   - 한 번에 하나의 invocation 만 실행 (실행 중에 온 tick 은 버려진다)
//   - 실패한 invocation 은 로그만 남기고, 다음 tick 이 곧 재시도
//
// Scheduler 는 graceful shutdown 을 지원하며,
// 진행 중인 invocation 은 context 취소로 중단된다.
type Scheduler struct {
	runner   Runner
	metrics  *metrics.Metrics
	bucket   string
	key      string
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewScheduler(cfg config.Config, m *metrics.Metrics, r Runner) *Scheduler {
	return &Scheduler{
		runner:   r,
		metrics:  m,
		bucket:   cfg.LogBucket,
		key:      cfg.LogKey,
		interval: cfg.ScheduleInterval,
	}
}

// Start 는 ticker loop goroutine 을 실행한다. interval 이 0 이하이면 아무것도 하지 않는다.
func (s *Scheduler) Start() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	if s.interval <= 0 {
		return
	}

	s.wg.Add(1)
	go s.loop()

	log.Info().
		Dur("interval", s.interval).
		Str("bucket", s.bucket).
		Str("key", s.key).
		Msg("scheduler started")
}

// Shutdown 은 loop 를 멈추고 진행 중인 invocation 이 끝날 때까지 대기한다.
// 여러 번 호출해도 안전하다.
func (s *Scheduler) Shutdown() {
	s.stopOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
	s.wg.Wait()
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			log.Info().Msg("scheduler exiting")
			return

		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *Scheduler) runOnce() {
	atomic.AddInt64(&s.metrics.ScheduledRunsTotal, 1)

	rep, err := s.runner.Run(s.ctx, s.bucket, s.key)
	if err != nil {
		// pipeline 이 이미 상세 에러 로그를 남긴다
		log.Warn().
			Str("kind", pipeline.Kind(err)).
			Msg("scheduled run failed, retrying on next tick")
		return
	}

	log.Debug().
		Str("risk_level", string(rep.Analysis.RiskLevel)).
		Str("action_taken", string(rep.Decision.ActionTaken)).
		Msg("scheduled run done")
}
