package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"log-risk-analyzer/internal/analyzer"
	"log-risk-analyzer/internal/storage"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "system.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAnalyzeCmd_File(t *testing.T) {
	srv := completionServer(t, `{"risk_level":"medium","root_cause":"disk 91%","recommended_actions":["clean /tmp"]}`)
	path := writeLog(t, "WARN disk usage 91%\n")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr, fakeEnv(map[string]string{
		"OPENAI_API_KEY": "sk-test",
		"COMPLETION_URL": srv.URL,
	}))
	cmd.SetArgs([]string{"--file", path})

	require.NoError(t, cmd.Execute())

	out := stdout.String()
	assert.Contains(t, out, "===== LOGS =====\nWARN disk usage 91%")
	assert.Contains(t, out, "===== AI ANALYSIS (JSON) =====")
	assert.Contains(t, out, "===== DECISION / ACTION =====")
	assert.Contains(t, out, `"action_taken": "SIMULATED_ALERT"`)
	assert.Contains(t, out, `"priority": "P2"`)

	// 마지막 섹션은 전체 Report
	idx := strings.Index(out, "===== REPORT =====\n")
	require.GreaterOrEqual(t, idx, 0)
	var rep struct {
		OK  bool   `json:"ok"`
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal([]byte(out[idx+len("===== REPORT =====\n"):]), &rep))
	assert.True(t, rep.OK)
	assert.Equal(t, path, rep.Key)
}

func TestAnalyzeCmd_NoPrintLogs(t *testing.T) {
	srv := completionServer(t, `{"risk_level":"low"}`)
	path := writeLog(t, "INFO fine\n")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr, fakeEnv(map[string]string{
		"OPENAI_API_KEY": "sk-test",
		"COMPLETION_URL": srv.URL,
	}))
	cmd.SetArgs([]string{"--file", path, "--print-logs=false"})

	require.NoError(t, cmd.Execute())
	assert.NotContains(t, stdout.String(), "===== LOGS =====")
	assert.Contains(t, stdout.String(), `"action_taken": "NO_ACTION"`)
}

func TestAnalyzeCmd_MissingKey(t *testing.T) {
	path := writeLog(t, "ERROR x\n")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr, fakeEnv(nil))
	cmd.SetArgs([]string{"--file", path, "--print-logs=false"})

	err := cmd.Execute()

	var ce *analyzer.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Empty(t, stdout.String())
}

func TestAnalyzeCmd_MissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr, fakeEnv(map[string]string{"OPENAI_API_KEY": "sk-test"}))
	cmd.SetArgs([]string{"--file", filepath.Join(t.TempDir(), "absent.log")})

	err := cmd.Execute()
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAnalyzeCmd_BadConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr, fakeEnv(map[string]string{"COMPLETION_TIMEOUT": "soon"}))
	cmd.SetArgs([]string{"--file", "whatever.log"})

	assert.Error(t, cmd.Execute())
}
