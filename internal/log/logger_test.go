package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/On-Jun9/HeicPipe/pkg/types"
)

// TestLogger_WritesTextEntriesToFile는 테스트 코드 동작을 검증하거나 보조합니다.
func TestLogger_WritesTextEntriesToFile(t *testing.T) {
	// 텍스트 로깅 모드에서 Info/Error/LogOutcome이 파일에 기록되어야 한다.
	logPath := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, err := New(logPath, false, true)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.Info("hello")
	logger.Error("failed op", errors.New("boom"))
	logger.LogOutcome(types.Converted("a.HEIC", "a.jpg", []byte{1, 2, 3}), 10*time.Millisecond)
	logger.LogOutcome(types.Skipped("b.png", types.SkipUnsupportedType, "unsupported"), 0)

	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close logger: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	text := string(data)

	if !strings.Contains(text, "INFO\thello") {
		t.Fatalf("missing info log line: %s", text)
	}
	if !strings.Contains(text, "ERROR\tfailed op") || !strings.Contains(text, `"error": "boom"`) {
		t.Fatalf("missing error log line: %s", text)
	}
	if !strings.Contains(text, "converted: a.HEIC -> a.jpg") {
		t.Fatalf("missing outcome log line: %s", text)
	}
	if !strings.Contains(text, "WARN\tskipped-unsupported: b.png") {
		t.Fatalf("missing skipped log line: %s", text)
	}
}

// TestLogger_JSONModeWritesJSONLine는 테스트 코드 동작을 검증하거나 보조합니다.
func TestLogger_JSONModeWritesJSONLine(t *testing.T) {
	// JSON 로깅 모드에서는 한 줄 JSON 레코드가 출력되어야 한다.
	logPath := filepath.Join(t.TempDir(), "logs", "app.jsonl")
	logger, err := New(logPath, true, false)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.Info("json-message")
	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close logger: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read json log file: %v", err)
	}
	if !strings.Contains(string(data), `"message":"json-message"`) {
		t.Fatalf("unexpected json log content: %s", string(data))
	}
}

// TestLogger_EmptyPathDisablesFile는 테스트 코드 동작을 검증하거나 보조합니다.
func TestLogger_EmptyPathDisablesFile(t *testing.T) {
	logger, err := New("", true, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Info("dropped")
	logger.Error("nil error is fine", nil)
	if err := logger.Close(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

// TestLogger_SummaryAndProgress_WriteToConsole는 테스트 코드 동작을 검증하거나 보조합니다.
func TestLogger_SummaryAndProgress_WriteToConsole(t *testing.T) {
	// Summary/Progress 출력은 console writer로 전달되어야 한다.
	var buf bytes.Buffer
	logger := NewNop()
	logger.SetConsole(&buf)

	logger.Summary(types.BatchSummary{
		TotalFiles:    3,
		Converted:     1,
		PassedThrough: 1,
		SkippedFailed: 1,
		Duration:      2 * time.Second,
		BytesIn:       2048,
		BytesOut:      1024,
	})
	logger.Progress(1, 2, "a.heic")

	out := buf.String()
	if !strings.Contains(out, "HeicPipe Summary") {
		t.Fatalf("missing summary header: %s", out)
	}
	if !strings.Contains(out, "Passed through: 1") {
		t.Fatalf("missing pass-through count: %s", out)
	}
	if !strings.Contains(out, "[1/2] a.heic") {
		t.Fatalf("missing progress output: %s", out)
	}
}

// TestLogger_CloseWithNilFile는 테스트 코드 동작을 검증하거나 보조합니다.
func TestLogger_CloseWithNilFile(t *testing.T) {
	// 파일 핸들이 없는 로거는 Close 시 에러 없이 종료되어야 한다.
	logger := &Logger{}
	if err := logger.Close(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
