package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"log-risk-analyzer/internal/analyzer"
	"log-risk-analyzer/internal/config"
	"log-risk-analyzer/internal/logger"
	"log-risk-analyzer/internal/metrics"
	"log-risk-analyzer/internal/pipeline"
	"log-risk-analyzer/internal/server"
	"log-risk-analyzer/internal/storage"
	"log-risk-analyzer/internal/worker"

	"github.com/rs/zerolog/log"
)

func main() {

	// ====================================================================
	// CPU 설정
	// ====================================================================
	//
	// Fargate 0.25/0.5 vCPU 에서 GOMAXPROCS 기본값은 실제 할당보다 크다.
	// 이 서버는 대부분 completion 응답을 기다리는 I/O bound 이므로 1 이면 충분하다.
	// ====================================================================
	if v := os.Getenv("GOMAXPROCS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			runtime.GOMAXPROCS(n)
		}
	} else {
		runtime.GOMAXPROCS(1)
	}

	// ====================================================================
	// Config / Logger / Metrics
	// ====================================================================
	//
	// OPENAI_API_KEY 가 없어도 서버는 뜬다.
	// 해당 invocation 이 configuration 에러(500)로 실패할 뿐이다.
	// ====================================================================
	cfg := config.Load()
	logger.Init(cfg)
	m := metrics.New()

	if cfg.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set; analyze requests will fail")
	}

	// ====================================================================
	// Pipeline 구성 (S3Reader → Requester → Decide)
	// ====================================================================
	ctx := context.Background()

	reader, err := storage.NewS3Reader(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create S3 reader")
	}

	requester := analyzer.New(analyzer.ConfigFrom(cfg), analyzer.WithMetrics(m))
	p := pipeline.New(reader, requester, m)

	// ====================================================================
	// Scheduler (SCHEDULE_INTERVAL > 0 일 때만 동작)
	// ====================================================================
	sched := worker.NewScheduler(cfg, m, p)
	sched.Start()

	// ====================================================================
	// HTTP Handler
	// ====================================================================
	//
	// 엔드포인트:
	//  - /analyze : invocation 1회 실행 (rate limited)
	//  - /metrics : 운영 지표
	//  - /health  : ALB Target Group Health check
	// ====================================================================
	h := server.NewHandler(cfg, m, p)

	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", h.HandleAnalyze)
	mux.HandleFunc("/metrics", h.HandleMetrics)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})

	// WriteTimeout 은 S3 읽기 + completion timeout 보다 길어야 한다.
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  8 * time.Second,
		WriteTimeout: cfg.S3Timeout + cfg.CompletionTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ====================================================================
	// Graceful Shutdown
	// ====================================================================
	//
	// SIGTERM 수신 시:
	//   1) HTTP 서버 종료 (진행 중인 /analyze 는 완료까지 대기)
	//   2) scheduler 종료 (진행 중인 run 은 취소)
	// ====================================================================
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
		cancel()

		log.Info().Msg("stopping scheduler...")
		sched.Shutdown()
	}()

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("model", cfg.Model).
		Str("bucket", cfg.LogBucket).
		Str("key", cfg.LogKey).
		Msg("analyzer server listening")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server terminated")
	}

	sched.Shutdown()
	log.Info().Msg("shutdown complete")
}
