package decision

import (
	"strings"

	"log-risk-analyzer/internal/model"
)

// tier 는 risk_level 하나에 대응하는 고정 조치 묶음.
type tier struct {
	action   model.Action
	priority model.Priority
	steps    []string
}

var (
	remediationTier = tier{
		action:   model.ActionSimulatedRemediation,
		priority: model.PriorityP1,
		steps: []string{
			"Restart dependent services",
			"Raise incident / page on-call",
			"Capture diagnostics snapshot",
		},
	}

	alertTier = tier{
		action:   model.ActionSimulatedAlert,
		priority: model.PriorityP2,
		steps: []string{
			"Create investigation ticket",
			"Capture diagnostics snapshot",
			"Monitor resource trends",
		},
	}

	noActionTier = tier{
		action:   model.ActionNone,
		priority: model.PriorityP3,
		steps:    []string{"Continue monitoring"},
	}
)

// Decide
// ------------------------------------------------------------
// risk_level 만 보고 시뮬레이션 조치를 고른다.
//   - high   → SIMULATED_REMEDIATION / P1
//   - medium → SIMULATED_ALERT / P2
//   - 그 외  → NO_ACTION / P3
//
// root_cause, recommended_actions 는 결과에 영향을 주지 않는다.
// 반환되는 WhatItWouldDo 는 매 호출마다 새로 복사된 slice 다.
func Decide(a model.AnalysisResult) model.DecisionResult {
	t := tierFor(a.RiskLevel)

	steps := make([]string, len(t.steps))
	copy(steps, t.steps)

	return model.DecisionResult{
		ActionTaken:   t.action,
		Priority:      t.priority,
		WhatItWouldDo: steps,
	}
}

func tierFor(level model.RiskLevel) tier {
	switch model.RiskLevel(strings.ToLower(string(level))) {
	case model.RiskHigh:
		return remediationTier
	case model.RiskMedium:
		return alertTier
	default:
		return noActionTier
	}
}
