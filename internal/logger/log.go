// internal/logger/log.go
package logger

import (
	"io"
	"os"
	"strings"

	"log-risk-analyzer/internal/config"

	stdlog "log"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Init
//
// 애플리케이션 시작 시 한 번만 호출되는 로거 초기화 함수.
//
//  1. 로그 포맷 자동 전환
//     - LOG_PRETTY=true: 사람이 읽기 쉬운 콘솔 출력
//     - LOG_PRETTY=false: JSON (CloudWatch 검색/분석용)
//
//  2. 모든 로그에 "service", "instance" 필드 부착
//
//  3. Debug/Info 샘플링 (LOG_SAMPLE_N > 1). Warn/Error 는 항상 100% 기록.
//
// 사용 예:
//
//	logger.Init(cfg)
//	log.Info().Msg("analyzer started")
func Init(cfg config.Config) {
	InitWriter(cfg, os.Stdout)
}

// InitWriter 는 출력 대상을 지정할 수 있는 Init.
// CLI 는 결과 JSON 을 stdout 으로 내보내므로 로그는 stderr 로 보낸다.
func InitWriter(cfg config.Config, out io.Writer) {
	level := zerolog.InfoLevel
	if l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.LogLevel))); err == nil && l != zerolog.NoLevel {
		level = l
	}

	zerolog.SetGlobalLevel(level)

	var w io.Writer
	if cfg.LogPretty {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
		}
	} else {
		w = out
	}

	base := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("instance", cfg.InstanceID).
		Logger()

	logger := base

	if cfg.LogSampleN > 1 {
		logger = base.Sample(&zerolog.LevelSampler{
			DebugSampler: &zerolog.BasicSampler{N: cfg.LogSampleN},
			InfoSampler:  &zerolog.BasicSampler{N: cfg.LogSampleN},
		})
	}

	zlog.Logger = logger

	// 표준 log 패키지 출력도 zerolog 로 보낸다.
	stdlog.SetFlags(0)
	stdlog.SetOutput(zlog.Logger)
}
