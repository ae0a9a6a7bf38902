// internal/config/config.go
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config
//
// 서비스 실행 시 필요한 모든 환경 변수 값을 보관하는 구조체.
// 모든 값은 프로세스 시작 시점에 Load() 에 의해 초기화되며,
// 이후에는 변경되지 않는 불변(read-only) 설정들이다.
type Config struct {

	// ---------------------------
	// AWS / S3 기본 환경
	// ---------------------------

	AWSRegion string // AWS 리전 (비어 있으면 SDK 기본 체인 사용)

	LogBucket string        // 분석 대상 로그가 저장된 S3 버킷
	LogKey    string        // 분석 대상 로그 object key (예: system.log)
	S3Timeout time.Duration // GetObject 1회 호출 timeout

	// ---------------------------
	// Completion endpoint (LLM)
	// ---------------------------
	// API key 는 없어도 프로세스는 뜬다.
	// 비어 있으면 분석 시점에 ConfigurationError 로 보고된다.

	APIKey                string
	Model                 string
	CompletionURL         string
	CompletionTimeout     time.Duration // 요청 1회 전체 timeout (재시도 없음)
	CompletionTemperature float64
	CompletionMaxTokens   int

	// ---------------------------
	// 서버 식별자 / 네트워크
	// ---------------------------

	ServiceName string
	InstanceID  string // 호스트명 기반, 실패 시 랜덤 hex
	HTTPAddr    string

	TriggerRate  float64 // /analyze 초당 허용 횟수
	TriggerBurst int

	ScheduleInterval time.Duration // 0 이면 주기 실행 비활성화

	// ---------------------------
	// 로깅
	// ---------------------------

	LogLevel   string
	LogPretty  bool
	LogSampleN uint32
}

// 기본값. 원래 Lambda 에 하드코딩되어 있던 값들이다.
const (
	DefaultLogBucket     = "ai-log-analyzer-maith"
	DefaultLogKey        = "system.log"
	DefaultModel         = "gpt-4o-mini"
	DefaultCompletionURL = "https://api.openai.com/v1/chat/completions"
)

// Load
//
// 환경 변수 기반으로 Config 값을 초기화한다.
// 형식이 잘못된 값이 있으면 즉시 프로세스를 종료(fail-fast).
func Load() Config {
	cfg, err := Parse(os.Getenv)
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	return cfg
}

// Parse
//
// Load 의 실제 구현. getenv 를 주입받으므로 테스트에서 환경 변수를 건드릴 필요가 없다.
// 첫 번째로 발견된 형식 오류를 반환한다.
func Parse(getenv func(string) string) (Config, error) {
	e := env{getenv: getenv}

	apiKey, err := e.secret("OPENAI_API_KEY", "OPENAI_API_KEY_FILE")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AWSRegion: e.str("AWS_REGION", ""),

		LogBucket: e.str("LOG_BUCKET", DefaultLogBucket),
		LogKey:    e.str("LOG_KEY", DefaultLogKey),
		S3Timeout: e.dur("S3_TIMEOUT", 10*time.Second),

		APIKey:                apiKey,
		Model:                 e.str("OPENAI_MODEL", DefaultModel),
		CompletionURL:         e.str("COMPLETION_URL", DefaultCompletionURL),
		CompletionTimeout:     e.dur("COMPLETION_TIMEOUT", 20*time.Second),
		CompletionTemperature: e.float("COMPLETION_TEMPERATURE", 0.2),
		CompletionMaxTokens:   e.int("COMPLETION_MAX_TOKENS", 300),

		ServiceName: e.str("SERVICE_NAME", "log-risk-analyzer"),
		InstanceID:  e.str("INSTANCE_ID", ""),
		HTTPAddr:    e.str("HTTP_ADDR", ":8080"),

		TriggerRate:  e.float("TRIGGER_RATE", 1),
		TriggerBurst: e.int("TRIGGER_BURST", 1),

		ScheduleInterval: e.dur("SCHEDULE_INTERVAL", 0),

		LogLevel:   e.str("LOG_LEVEL", "info"),
		LogPretty:  e.bool("LOG_PRETTY", false),
		LogSampleN: uint32(e.int("LOG_SAMPLE_N", 1)),
	}
	if e.err != nil {
		return Config{}, e.err
	}

	if cfg.InstanceID == "" {
		cfg.InstanceID = fallbackInstanceID()
	}
	if cfg.CompletionTimeout <= 0 {
		return Config{}, fmt.Errorf("COMPLETION_TIMEOUT must be positive, got %s", cfg.CompletionTimeout)
	}
	if cfg.CompletionMaxTokens <= 0 {
		return Config{}, fmt.Errorf("COMPLETION_MAX_TOKENS must be positive, got %d", cfg.CompletionMaxTokens)
	}
	if cfg.ScheduleInterval < 0 {
		return Config{}, fmt.Errorf("SCHEDULE_INTERVAL must not be negative, got %s", cfg.ScheduleInterval)
	}

	return cfg, nil
}

// env
//
// str / int / float / bool / dur 공통 패턴.
// 값이 없으면 fallback, 형식이 잘못되면 첫 번째 에러만 기록한다.
type env struct {
	getenv func(string) string
	err    error
}

func (e *env) str(key, fallback string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (e *env) int(key string, fallback int) int {
	v := e.str(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(fmt.Errorf("invalid int env %s=%q: %w", key, v, err))
		return fallback
	}
	return n
}

func (e *env) float(key string, fallback float64) float64 {
	v := e.str(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(fmt.Errorf("invalid float env %s=%q: %w", key, v, err))
		return fallback
	}
	return f
}

func (e *env) bool(key string, fallback bool) bool {
	v := e.str(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(fmt.Errorf("invalid bool env %s=%q: %w", key, v, err))
		return fallback
	}
	return b
}

func (e *env) dur(key string, fallback time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(fmt.Errorf("invalid duration env %s=%q: %w", key, v, err))
		return fallback
	}
	return d
}

// secret 은 key 가 직접 설정되어 있으면 그 값을, 아니면 fileKey 가 가리키는 파일 내용을 사용한다.
// (Secrets Manager / k8s secret 을 파일로 마운트하는 배포 환경 대응)
func (e *env) secret(key, fileKey string) (string, error) {
	if v := e.str(key, ""); v != "" {
		return v, nil
	}
	path := e.str(fileKey, "")
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s=%q: %w", fileKey, path, err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (e *env) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// fallbackInstanceID
//
// 이 프로세스 인스턴스를 식별하는 고유 값.
//   - 기본: hostname (ECS/Fargate에서는 task-id 형태로 고유)
//   - fallback: 12자리 랜덤 hex
func fallbackInstanceID() string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	var b [6]byte
	if _, err := rand.Read(b[:]); err == nil {
		return hex.EncodeToString(b[:])
	}
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
