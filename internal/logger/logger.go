package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level はログレベルを表す
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel は文字列からログレベルを解析する
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO", "":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// Logger はスレッドセーフなロガー
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	minLevel Level
}

// Default はデフォルトのロガー
// 生成結果を標準出力へ流す場合があるため、ログは標準エラーへ出す
var Default = New(os.Stderr, LevelInfo)

// New は新しいロガーを作成する
func New(out io.Writer, minLevel Level) *Logger {
	return &Logger{
		out:      out,
		minLevel: minLevel,
	}
}

// SetLevel はログレベルを設定する
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

// SetOutput は出力先を差し替える
func (l *Logger) SetOutput(out io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = out
}

// Enabled は指定レベルが出力対象かどうかを返す
func (l *Logger) Enabled(level Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= l.minLevel
}

// log は指定されたレベルでログを出力する
func (l *Logger) log(level Level, component string, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.minLevel {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	msg := fmt.Sprintf(format, args...)

	if component != "" {
		_, _ = fmt.Fprintf(l.out, "[%s] [%s] [%s] %s\n", timestamp, level, component, msg)
	} else {
		_, _ = fmt.Fprintf(l.out, "[%s] [%s] %s\n", timestamp, level, msg)
	}
}

// Debug はデバッグログを出力する
func (l *Logger) Debug(component string, format string, args ...any) {
	l.log(LevelDebug, component, format, args...)
}

// Info は情報ログを出力する
func (l *Logger) Info(component string, format string, args ...any) {
	l.log(LevelInfo, component, format, args...)
}

// Warn は警告ログを出力する
func (l *Logger) Warn(component string, format string, args ...any) {
	l.log(LevelWarn, component, format, args...)
}

// Error はエラーログを出力する
func (l *Logger) Error(component string, format string, args ...any) {
	l.log(LevelError, component, format, args...)
}

// Scoped はコンポーネント名を固定したロガー
// 名前は "batch/read-heavy" のように階層で連結される
type Scoped struct {
	logger    *Logger
	component string
}

// For はコンポーネント名を固定したロガーを返す
func (l *Logger) For(component string) *Scoped {
	return &Scoped{logger: l, component: component}
}

// For は子コンポーネントのロガーを返す
func (s *Scoped) For(component string) *Scoped {
	switch {
	case component == "":
		return s
	case s.component == "":
		return &Scoped{logger: s.logger, component: component}
	default:
		return &Scoped{logger: s.logger, component: s.component + "/" + component}
	}
}

// Component は固定されたコンポーネント名を返す
func (s *Scoped) Component() string {
	return s.component
}

// Enabled は指定レベルが出力対象かどうかを返す
func (s *Scoped) Enabled(level Level) bool {
	return s.logger.Enabled(level)
}

// Debug はデバッグログを出力する
func (s *Scoped) Debug(format string, args ...any) {
	s.logger.log(LevelDebug, s.component, format, args...)
}

// Info は情報ログを出力する
func (s *Scoped) Info(format string, args ...any) {
	s.logger.log(LevelInfo, s.component, format, args...)
}

// Warn は警告ログを出力する
func (s *Scoped) Warn(format string, args ...any) {
	s.logger.log(LevelWarn, s.component, format, args...)
}

// Error はエラーログを出力する
func (s *Scoped) Error(format string, args ...any) {
	s.logger.log(LevelError, s.component, format, args...)
}

// グローバル関数（デフォルトロガーを使用）

// For はデフォルトロガーからコンポーネント名を固定したロガーを返す
func For(component string) *Scoped {
	return Default.For(component)
}

// Debug はデバッグログを出力する
func Debug(component string, format string, args ...any) {
	Default.Debug(component, format, args...)
}

// Info は情報ログを出力する
func Info(component string, format string, args ...any) {
	Default.Info(component, format, args...)
}

// Warn は警告ログを出力する
func Warn(component string, format string, args ...any) {
	Default.Warn(component, format, args...)
}

// Error はエラーログを出力する
func Error(component string, format string, args ...any) {
	Default.Error(component, format, args...)
}
