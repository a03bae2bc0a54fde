package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/On-Jun9/HeicPipe/pkg/types"
)

// Logger writes structured entries to a log file and progress/summary
// lines to the console.
type Logger struct {
	mu      sync.Mutex
	console io.Writer
	file    *os.File
	zl      *zap.Logger
}

// New opens logFilePath for appending. logJSON selects the JSON encoder,
// logText the console encoder; with neither set nothing is written to the file.
// An empty path disables file logging.
func New(logFilePath string, logJSON, logText bool) (*Logger, error) {
	if logFilePath == "" || (!logJSON && !logText) {
		return &Logger{console: os.Stdout, zl: zap.NewNop()}, nil
	}

	if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	return &Logger{
		console: os.Stdout,
		file:    file,
		zl:      zap.New(zapcore.NewCore(newEncoder(logJSON), zapcore.AddSync(file), zapcore.DebugLevel)),
	}, nil
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{console: io.Discard, zl: zap.NewNop()}
}

func newEncoder(logJSON bool) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.MessageKey = "message"
	cfg.LevelKey = "level"
	cfg.CallerKey = ""
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.EncodeDuration = zapcore.StringDurationEncoder

	if logJSON {
		return zapcore.NewJSONEncoder(cfg)
	}
	return zapcore.NewConsoleEncoder(cfg)
}

// SetConsole redirects progress and summary output.
func (l *Logger) SetConsole(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console = w
}

func (l *Logger) Close() error {
	if l.zl != nil {
		_ = l.zl.Sync()
	}
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *Logger) logger() *zap.Logger {
	if l.zl == nil {
		return zap.NewNop()
	}
	return l.zl
}

// LogOutcome records the terminal state of one file.
func (l *Logger) LogOutcome(outcome types.FileOutcome, duration time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fields := []zap.Field{
		zap.String("file", outcome.OriginalName),
		zap.String("state", string(outcome.State())),
		zap.Duration("duration", duration),
	}

	if outcome.Kind == types.OutcomeSkipped {
		fields = append(fields, zap.String("reason", string(outcome.SkipReason)))
		l.logger().Warn(fmt.Sprintf("%s: %s", outcome.State(), outcome.OriginalName), fields...)
		return
	}

	fields = append(fields, zap.String("output", outcome.OutputName), zap.Int("bytes", outcome.OutputSize))
	l.logger().Info(fmt.Sprintf("%s: %s -> %s", outcome.State(), outcome.OriginalName, outcome.OutputName), fields...)
}

func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger().Info(msg)
}

func (l *Logger) Warn(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger().Warn(msg)
}

func (l *Logger) Error(msg string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err == nil {
		l.logger().Error(msg)
		return
	}
	l.logger().Error(msg, zap.String("error", err.Error()))
}

func (l *Logger) Summary(summary types.BatchSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logger().Info("batch summary",
		zap.Int("total", summary.TotalFiles),
		zap.Int("converted", summary.Converted),
		zap.Int("passed_through", summary.PassedThrough),
		zap.Int("skipped_unsupported", summary.SkippedUnsupported),
		zap.Int("skipped_failed", summary.SkippedFailed),
		zap.Int64("bytes_in", summary.BytesIn),
		zap.Int64("bytes_out", summary.BytesOut),
		zap.Duration("duration", summary.Duration),
	)

	fmt.Fprintln(l.console, "\n=== HeicPipe Summary ===")
	fmt.Fprintf(l.console, "Total files:    %d\n", summary.TotalFiles)
	fmt.Fprintf(l.console, "Converted:      %d\n", summary.Converted)
	fmt.Fprintf(l.console, "Passed through: %d\n", summary.PassedThrough)
	fmt.Fprintf(l.console, "Unsupported:    %d\n", summary.SkippedUnsupported)
	fmt.Fprintf(l.console, "Failed:         %d\n", summary.SkippedFailed)
	fmt.Fprintf(l.console, "Duration:       %s\n", summary.Duration.Round(time.Millisecond))
	if summary.BytesOut > 0 {
		fmt.Fprintf(l.console, "Bytes in:       %.2f MB\n", float64(summary.BytesIn)/1024/1024)
		fmt.Fprintf(l.console, "Bytes out:      %.2f MB\n", float64(summary.BytesOut)/1024/1024)
	}
	fmt.Fprintln(l.console, "========================")
}

func (l *Logger) Progress(current, total int, filename string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "\r[%d/%d] %s", current, total, filename)
}
