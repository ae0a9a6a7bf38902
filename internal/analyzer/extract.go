package analyzer

import (
	"bytes"
	"errors"
	"regexp"
	"strings"

	"log-risk-analyzer/internal/model"

	json "github.com/goccy/go-json"
)

// fenceMarker 는 ``` 와 ```json 같은 언어 태그 fence 를 모두 잡는다.
var fenceMarker = regexp.MustCompile("```[A-Za-z0-9_+-]*")

var errNotObject = errors.New("value is not a JSON object")

// Extraction
// ------------------------------------------------------------
// 모델 출력 하나를 처리한 결과.
// Fallback 은 직접 파싱이 실패해서 brace scan 으로 복구했는지 여부.
type Extraction struct {
	Object   map[string]json.RawMessage
	Cleaned  string
	Fallback bool
}

// CleanContent 는 앞뒤 공백과 markdown code fence 마커를 제거한다.
// fence 는 위치와 상관없이 문자열 전체에서 제거된다.
func CleanContent(content string) string {
	s := strings.TrimSpace(content)
	s = fenceMarker.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Extract
// ------------------------------------------------------------
// 모델이 "JSON 만 반환"하라는 지시를 어겨도 최대한 JSON object 를 복구한다.
//
//  1. fence 제거 + trim
//  2. 전체 문자열을 JSON object 로 직접 파싱
//  3. 실패 시 첫 '{' 부터 마지막 '}' 까지 잘라서 다시 파싱
//  4. 모두 실패하면 ContentError (정리된 원문 포함)
func Extract(content string) (Extraction, error) {
	cleaned := CleanContent(content)

	obj, err := parseObject(cleaned)
	if err == nil {
		return Extraction{Object: obj, Cleaned: cleaned}, nil
	}

	start := strings.IndexByte(cleaned, '{')
	end := strings.LastIndexByte(cleaned, '}')
	if start >= 0 && end > start {
		obj, scanErr := parseObject(cleaned[start : end+1])
		if scanErr == nil {
			return Extraction{Object: obj, Cleaned: cleaned, Fallback: true}, nil
		}
		err = scanErr
	}

	return Extraction{Cleaned: cleaned}, &ContentError{Content: cleaned, Err: err}
}

func parseObject(s string) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, err
	}
	// "null" 은 에러 없이 nil map 으로 디코딩된다
	if obj == nil {
		return nil, errNotObject
	}
	return obj, nil
}

// Normalize
// ------------------------------------------------------------
// 파싱된 object 를 AnalysisResult 로 변환한다. 실패 경로는 없다.
//   - risk_level: trim + 소문자 변환 후 low/medium/high 가 아니면 medium
//   - root_cause: 없거나 null 이면 "unknown", 문자열이 아니면 JSON 텍스트 그대로
//   - recommended_actions: 없거나 null 이면 빈 slice, 단일 문자열은 원소 1개짜리 slice
//
// 그 외 key 는 버린다.
func Normalize(obj map[string]json.RawMessage) model.AnalysisResult {
	res := model.AnalysisResult{
		RiskLevel:          model.DefaultRiskLevel,
		RootCause:          model.DefaultRootCause,
		RecommendedActions: []string{},
	}

	if raw, ok := obj["risk_level"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			if lvl := model.RiskLevel(strings.ToLower(strings.TrimSpace(s))); lvl.Valid() {
				res.RiskLevel = lvl
			}
		}
	}

	if raw, ok := obj["root_cause"]; ok && !isNull(raw) {
		res.RootCause = textOf(raw)
	}

	if raw, ok := obj["recommended_actions"]; ok && !isNull(raw) {
		res.RecommendedActions = actionsOf(raw)
	}

	return res
}

func actionsOf(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return []string{s}
		}
		return []string{}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if isNull(item) {
			continue
		}
		out = append(out, textOf(item))
	}
	return out
}

func textOf(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
