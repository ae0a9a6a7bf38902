package analyzer

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"log-risk-analyzer/internal/config"
	"log-risk-analyzer/internal/metrics"
	"log-risk-analyzer/internal/model"
	"log-risk-analyzer/internal/pool"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// maxErrorBody 는 non-2xx 응답에서 에러에 남길 body 길이.
const maxErrorBody = 512

// Config 는 Requester 생성 시 주입되는 completion endpoint 설정.
type Config struct {
	APIKey      string
	Model       string
	URL         string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// ConfigFrom 은 프로세스 설정에서 Requester 설정만 뽑아낸다.
func ConfigFrom(cfg config.Config) Config {
	return Config{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		URL:         cfg.CompletionURL,
		Timeout:     cfg.CompletionTimeout,
		Temperature: cfg.CompletionTemperature,
		MaxTokens:   cfg.CompletionMaxTokens,
	}
}

// Requester
// ------------------------------------------------------------
// 로그 원문으로 프롬프트를 만들어 completion endpoint 를 한 번 호출하고,
// 응답을 AnalysisResult 로 정규화한다.
//
// 재시도는 하지 않는다. 재시도 정책은 호출자(scheduler, trigger)의 몫이다.
// Requester 자체는 상태가 없으므로 여러 goroutine 에서 공유해도 된다.
type Requester struct {
	cfg     Config
	client  *http.Client
	metrics *metrics.Metrics
}

// Option configures Requester behavior.
type Option func(*Requester)

// WithHTTPClient 는 기본 http.Client 를 교체한다. Timeout 은 Config.Timeout 으로 덮어쓴다.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Requester) {
		r.client = c
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Requester) {
		r.metrics = m
	}
}

func New(cfg Config, opts ...Option) *Requester {
	r := &Requester{
		cfg:     cfg,
		client:  &http.Client{},
		metrics: metrics.New(),
	}
	for _, opt := range opts {
		opt(r)
	}

	client := *r.client
	client.Timeout = cfg.Timeout
	r.client = &client

	return r
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// chatResponse 는 envelope 에서 필요한 부분만 디코딩한다.
// 포인터 필드는 "없음"과 "빈 값"을 구분하기 위함.
type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze
// ------------------------------------------------------------
// 실패 시 반환되는 에러:
//   - *ConfigurationError: API key 없음 (네트워크 호출 없음)
//   - *TransportError: 연결 실패, timeout, non-2xx
//   - *ProtocolError: envelope 디코딩 실패, choice/content 누락
//   - *ContentError: 모델 출력에서 JSON object 복구 실패
func (r *Requester) Analyze(ctx context.Context, logs string) (model.AnalysisResult, error) {
	if strings.TrimSpace(r.cfg.APIKey) == "" {
		return model.AnalysisResult{}, &ConfigurationError{Field: "OPENAI_API_KEY"}
	}

	content, err := r.complete(ctx, BuildPrompt(logs))
	if err != nil {
		return model.AnalysisResult{}, err
	}

	ext, err := Extract(content)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	if ext.Fallback {
		atomic.AddInt64(&r.metrics.ExtractionFallbackTotal, 1)
		log.Debug().Str("content", ext.Cleaned).Msg("model output needed brace-scan fallback")
	}

	return Normalize(ext.Object), nil
}

// complete 는 completion endpoint 를 1회 호출하고 choices[0].message.content 를 반환한다.
func (r *Requester) complete(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model:       r.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: r.cfg.Temperature,
		MaxTokens:   r.cfg.MaxTokens,
	})
	if err != nil {
		return "", &ProtocolError{Reason: "encode completion request", Err: err}
	}

	// http.Client.Timeout 과 별개로 context deadline 도 건다.
	// 어느 쪽이 먼저 만료되어도 TransportError 로 보고된다.
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.URL, bytes.NewReader(reqBody))
	if err != nil {
		return "", &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return "", &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := buf.Bytes()
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return "", &TransportError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var env chatResponse
	if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
		return "", &ProtocolError{Reason: "decode completion envelope", Err: err}
	}
	if len(env.Choices) == 0 {
		return "", &ProtocolError{Reason: "completion has no choices"}
	}
	msg := env.Choices[0].Message
	if msg == nil || msg.Content == nil {
		return "", &ProtocolError{Reason: "choice has no message content"}
	}

	return *msg.Content, nil
}
