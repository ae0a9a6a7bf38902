// internal/model/analysis.go
package model

// RiskLevel
// ------------------------------------------------------------
// 모델이 판단한 로그의 위험도 등급.
// 정규화 이후에는 항상 아래 세 값 중 하나만 가진다.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid 는 세 등급 중 하나인지 확인한다 (대소문자 구분).
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// 정규화 시 누락 필드에 채워 넣는 기본값
const (
	DefaultRiskLevel = RiskMedium
	DefaultRootCause = "unknown"
)

// AnalysisResult
// ------------------------------------------------------------
// LLM 응답을 정규화한 분석 결과.
// Requester 가 생성하며 이후 변경되지 않는다.
// 모든 필드는 항상 채워져 있다 (RecommendedActions 는 nil 이 아닌 빈 slice).
type AnalysisResult struct {
	RiskLevel          RiskLevel `json:"risk_level"`
	RootCause          string    `json:"root_cause"`
	RecommendedActions []string  `json:"recommended_actions"`
}

// Action 은 시뮬레이션된 조치 종류.
type Action string

const (
	ActionSimulatedRemediation Action = "SIMULATED_REMEDIATION"
	ActionSimulatedAlert       Action = "SIMULATED_ALERT"
	ActionNone                 Action = "NO_ACTION"
)

// Priority 는 조치 우선순위 (P1 이 가장 높음).
type Priority string

const (
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
)

// DecisionResult
// ------------------------------------------------------------
// risk_level 하나로만 결정되는 고정된 조치 묶음.
// 모델의 원문 텍스트는 여기에 절대 들어오지 않는다.
type DecisionResult struct {
	ActionTaken   Action   `json:"action_taken"`
	Priority      Priority `json:"priority"`
	WhatItWouldDo []string `json:"what_it_would_do"`
}

// Report
// ------------------------------------------------------------
// 한 번의 invocation 결과. 호출자(HTTP trigger, CLI, scheduler)에게 그대로 반환된다.
type Report struct {
	OK       bool           `json:"ok"`
	Bucket   string         `json:"bucket"`
	Key      string         `json:"key"`
	Analysis AnalysisResult `json:"analysis"`
	Decision DecisionResult `json:"decision"`
}
