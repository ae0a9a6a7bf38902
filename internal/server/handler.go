package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"

	"log-risk-analyzer/internal/config"
	"log-risk-analyzer/internal/metrics"
	"log-risk-analyzer/internal/model"
	"log-risk-analyzer/internal/pipeline"
	"log-risk-analyzer/internal/storage"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Runner 는 invocation 1회를 실행한다 (pipeline.Pipeline).
type Runner interface {
	Run(ctx context.Context, bucket, key string) (model.Report, error)
}

type Handler struct {
	cfg     config.Config
	metrics *metrics.Metrics
	runner  Runner
	limiter *rate.Limiter
}

func NewHandler(cfg config.Config, m *metrics.Metrics, r Runner) *Handler {
	return &Handler{
		cfg:     cfg,
		metrics: m,
		runner:  r,
		limiter: rate.NewLimiter(rate.Limit(cfg.TriggerRate), cfg.TriggerBurst),
	}
}

// failureResponse 는 실패한 invocation 의 응답 body.
type failureResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// HandleAnalyze
//
// 분석 invocation 을 1회 실행하는 trigger 엔드포인트.
//   - GET / POST 모두 허용 (스케줄러, cron, 수동 호출)
//   - ?bucket= / ?key= 로 기본 artifact 를 덮어쓸 수 있음
//
// 공통 동작:
//  1. rate limit 검사 (초과 시 429)
//  2. pipeline 실행 (요청 context 사용, 클라이언트가 끊으면 중단)
//  3. 성공 시 Report, 실패 시 {ok:false, error, kind}
//
// completion 호출이 느리고 비용이 드므로 rate limit 은 반드시 먼저 확인한다.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	atomic.AddInt64(&h.metrics.HTTPRequestsTotal, 1)

	ip := clientIP(r)

	if !h.limiter.Allow() {
		atomic.AddInt64(&h.metrics.HTTPRequestsRateLimitedTotal, 1)
		log.Warn().Str("ip", ip).Msg("analyze request rate limited")
		writeJSON(w, http.StatusTooManyRequests, failureResponse{
			Error: "too many analyze requests",
			Kind:  "rate_limited",
		})
		return
	}

	bucket := h.cfg.LogBucket
	if v := r.URL.Query().Get("bucket"); v != "" {
		bucket = v
	}
	key := h.cfg.LogKey
	if v := r.URL.Query().Get("key"); v != "" {
		key = v
	}

	log.Info().
		Str("ip", ip).
		Str("user_agent", r.UserAgent()).
		Str("bucket", bucket).
		Str("key", key).
		Msg("analyze requested")

	rep, err := h.runner.Run(r.Context(), bucket, key)
	if err != nil {
		writeJSON(w, statusFor(err), failureResponse{
			Error: err.Error(),
			Kind:  pipeline.Kind(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// HandleMetrics
//
// 카운터 값들을 text 로 출력한다.
func (h *Handler) HandleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, h.metrics.String())
}

// statusFor:
//   - configuration → 500 (운영자가 고쳐야 하는 문제)
//   - object 없음 → 404
//   - storage / completion 쪽 실패 → 502 (upstream 문제)
//   - 그 외 → 500
func statusFor(err error) int {
	switch pipeline.Kind(err) {
	case pipeline.KindConfiguration:
		return http.StatusInternalServerError
	case pipeline.KindStorage:
		if errors.Is(err, storage.ErrNotFound) {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case pipeline.KindTransport, pipeline.KindProtocol, pipeline.KindContent:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("encode response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
