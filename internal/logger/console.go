// Package logger provides logging for pipeline execution.
//
// The package offers structured console logging of task and stage progress.
// Implementations are thread-safe and satisfy the executor's Logger interface
// so orchestration code stays decoupled from output formatting.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/maestro/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs pipeline progress to a writer with timestamps and thread
// safety. All output is prefixed with [HH:MM:SS] timestamps. It supports log
// level filtering, and color output is automatically enabled for terminal
// output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided
// io.Writer. If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive);
// empty or invalid levels default to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		// The color library's detection honors NO_COLOR.
		return !color.NoColor
	}
	return false
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if validLevels[normalized] {
		return normalized
	}
	return "info"
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// logWithLevel logs a message at the specified level if filtering allows it.
// Format: "[HH:MM:SS] [LEVEL] <message>"
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	if cl.colorOutput {
		cl.writer.Write([]byte(fmt.Sprintf("[%s] [%s] %s\n", ts, colorLevel(level), message)))
		return
	}
	cl.writer.Write([]byte(fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)))
}

func colorLevel(level string) string {
	switch strings.ToUpper(level) {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	default:
		return level
	}
}

// LogTaskStart logs the start of a task's pipeline execution at INFO level.
func (cl *ConsoleLogger) LogTaskStart(task *models.Task) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	name := task.Name
	if cl.colorOutput {
		name = color.New(color.Bold).Sprint(name)
	}
	fmt.Fprintf(cl.writer, "[%s] Starting %s: %d stages (%s)\n",
		ts, name, len(task.Plan.Stages), task.Plan.Strategy)
}

// LogStageStart logs a stage attempt at DEBUG level.
func (cl *ConsoleLogger) LogStageStart(task *models.Task, kind models.StageKind, attempt int) {
	if cl.writer == nil || !cl.shouldLog("debug") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	if attempt > 1 {
		fmt.Fprintf(cl.writer, "[%s] [DEBUG] %s: stage %s attempt %d\n", timestamp(), task.ID, kind, attempt)
		return
	}
	fmt.Fprintf(cl.writer, "[%s] [DEBUG] %s: stage %s starting\n", timestamp(), task.ID, kind)
}

// LogStageComplete logs a finished stage at INFO level.
// Format: "[HH:MM:SS] <task>: <stage> <status> (<duration>)"
func (cl *ConsoleLogger) LogStageComplete(task *models.Task, result models.StageResult) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	status := result.Status
	if cl.colorOutput {
		switch result.Status {
		case models.StageStatusSuccess:
			status = color.New(color.FgGreen).Sprint(status)
		case models.StageStatusRetried:
			status = color.New(color.FgYellow).Sprint(status)
		case models.StageStatusFailed:
			status = color.New(color.FgRed).Sprint(status)
		}
	}
	fmt.Fprintf(cl.writer, "[%s] %s: %s %s (%s)\n",
		ts, task.ID, result.Kind, status, formatDuration(result.Duration))
}

// LogStageRetry logs a transient stage failure about to be retried at WARN
// level.
func (cl *ConsoleLogger) LogStageRetry(task *models.Task, kind models.StageKind, attempt int, err error) {
	cl.LogWarn(fmt.Sprintf("%s: stage %s attempt %d failed, retrying: %v", task.ID, kind, attempt, err))
}

// LogRefinement logs a quality review cycle at INFO level.
func (cl *ConsoleLogger) LogRefinement(task *models.Task, cycle int, score float64) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	fmt.Fprintf(cl.writer, "[%s] %s: review cycle %d scored %.1f/10\n", timestamp(), task.ID, cycle, score)
}

// LogTaskFinished logs the task's resting state at INFO level, colored by
// outcome.
func (cl *ConsoleLogger) LogTaskFinished(task *models.Task) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	status := string(task.Status)
	if cl.colorOutput {
		switch task.Status {
		case models.TaskCompleted, models.TaskAwaitingApproval:
			status = color.New(color.FgGreen).Sprint(status)
		case models.TaskFailed:
			status = color.New(color.FgRed).Sprint(status)
		case models.TaskCancelled:
			status = color.New(color.FgYellow).Sprint(status)
		}
	}

	if task.Status == models.TaskFailed && task.FailedStage != "" {
		fmt.Fprintf(cl.writer, "[%s] %s: %s at stage %s\n", ts, task.ID, status, task.FailedStage)
		return
	}
	fmt.Fprintf(cl.writer, "[%s] %s: %s\n", ts, task.ID, status)
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, remainder/time.Second)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, remainder/time.Second)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger discards all log messages. Useful for testing or when logging is
// disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// LogTaskStart is a no-op implementation.
func (n *NoOpLogger) LogTaskStart(task *models.Task) {
}

// LogStageStart is a no-op implementation.
func (n *NoOpLogger) LogStageStart(task *models.Task, kind models.StageKind, attempt int) {
}

// LogStageComplete is a no-op implementation.
func (n *NoOpLogger) LogStageComplete(task *models.Task, result models.StageResult) {
}

// LogStageRetry is a no-op implementation.
func (n *NoOpLogger) LogStageRetry(task *models.Task, kind models.StageKind, attempt int, err error) {
}

// LogRefinement is a no-op implementation.
func (n *NoOpLogger) LogRefinement(task *models.Task, cycle int, score float64) {
}

// LogTaskFinished is a no-op implementation.
func (n *NoOpLogger) LogTaskFinished(task *models.Task) {
}
