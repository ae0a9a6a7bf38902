package decision

import (
	"testing"

	"log-risk-analyzer/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestDecide_Tiers(t *testing.T) {
	tests := []struct {
		name     string
		level    model.RiskLevel
		action   model.Action
		priority model.Priority
		steps    []string
	}{
		{
			name:     "high",
			level:    model.RiskHigh,
			action:   model.ActionSimulatedRemediation,
			priority: model.PriorityP1,
			steps:    []string{"Restart dependent services", "Raise incident / page on-call", "Capture diagnostics snapshot"},
		},
		{
			name:     "medium",
			level:    model.RiskMedium,
			action:   model.ActionSimulatedAlert,
			priority: model.PriorityP2,
			steps:    []string{"Create investigation ticket", "Capture diagnostics snapshot", "Monitor resource trends"},
		},
		{
			name:     "low",
			level:    model.RiskLow,
			action:   model.ActionNone,
			priority: model.PriorityP3,
			steps:    []string{"Continue monitoring"},
		},
		{
			name:     "upper case high",
			level:    "HIGH",
			action:   model.ActionSimulatedRemediation,
			priority: model.PriorityP1,
			steps:    []string{"Restart dependent services", "Raise incident / page on-call", "Capture diagnostics snapshot"},
		},
		{
			name:     "unknown level falls to low tier",
			level:    "critical",
			action:   model.ActionNone,
			priority: model.PriorityP3,
			steps:    []string{"Continue monitoring"},
		},
		{
			name:     "empty level falls to low tier",
			level:    "",
			action:   model.ActionNone,
			priority: model.PriorityP3,
			steps:    []string{"Continue monitoring"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(model.AnalysisResult{RiskLevel: tt.level, RootCause: "x", RecommendedActions: []string{}})
			assert.Equal(t, tt.action, got.ActionTaken)
			assert.Equal(t, tt.priority, got.Priority)
			assert.Equal(t, tt.steps, got.WhatItWouldDo)
		})
	}
}

func TestDecide_IgnoresModelText(t *testing.T) {
	a := model.AnalysisResult{RiskLevel: model.RiskMedium, RootCause: "disk", RecommendedActions: []string{"rm -rf /"}}
	b := model.AnalysisResult{RiskLevel: model.RiskMedium, RootCause: "network", RecommendedActions: nil}

	assert.Equal(t, Decide(a), Decide(b))
	assert.NotContains(t, Decide(a).WhatItWouldDo, "rm -rf /")
}

func TestDecide_FreshSlice(t *testing.T) {
	in := model.AnalysisResult{RiskLevel: model.RiskHigh}

	first := Decide(in)
	first.WhatItWouldDo[0] = "tampered"
	first.WhatItWouldDo = append(first.WhatItWouldDo, "extra")

	second := Decide(in)
	assert.Equal(t, "Restart dependent services", second.WhatItWouldDo[0])
	assert.Len(t, second.WhatItWouldDo, 3)
}
