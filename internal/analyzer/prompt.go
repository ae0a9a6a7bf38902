package analyzer

import "strings"

const promptTemplate = `Return ONLY valid JSON (no markdown, no backticks, no extra text).

Analyze the system logs and output exactly one JSON object with keys:
- risk_level: one of ["low","medium","high"]
- root_cause: string
- recommended_actions: array of strings

Logs:
`

// BuildPrompt 는 로그 원문을 그대로 끼워 넣은 분석 프롬프트를 만든다.
// 같은 입력이면 항상 같은 문자열이 나온다.
func BuildPrompt(logs string) string {
	return strings.TrimSpace(promptTemplate + logs)
}
