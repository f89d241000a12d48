package diag

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 级别定义
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

func (l Level) zap() zapcore.Level {
	switch l {
	case Debug:
		return zapcore.DebugLevel
	case Warn:
		return zapcore.WarnLevel
	case Error:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func parseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "warn":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

// FileOptions: 日志文件与轮转参数（交给 lumberjack）。
type FileOptions struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int
}

// DefaultFileOptions: logs/gstlcs.log，10MB 轮转，保留 5 份。
func DefaultFileOptions() FileOptions {
	return FileOptions{Dir: "logs", MaxSizeMB: 10, MaxBackups: 5}
}

// Logger 为结构化日志器：单行 JSON，字段 level/ts/corr_id/comp/stage/...
type Logger struct {
	corrID string
	level  Level
	z      *zap.Logger
	closer io.Closer
}

// NewLogger 以给定 level 初始化，写入默认日志文件（按大小轮转）。
func NewLogger(corrID, level string) *Logger {
	return NewFileLogger(corrID, level, DefaultFileOptions())
}

// NewFileLogger 写入 opts.Dir/gstlcs.log，由 lumberjack 负责轮转。
func NewFileLogger(corrID, level string, opts FileOptions) *Logger {
	if strings.TrimSpace(opts.Dir) == "" {
		opts.Dir = DefaultFileOptions().Dir
	}
	lj := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, "gstlcs.log"),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}
	l := newLogger(corrID, level, zapcore.AddSync(lj))
	l.closer = lj
	return l
}

// NewWriterLogger 写入任意 io.Writer（stderr、测试缓冲等）。
func NewWriterLogger(corrID, level string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return newLogger(corrID, level, zapcore.AddSync(w))
}

func newLogger(corrID, level string, ws zapcore.WriteSyncer) *Logger {
	lvl := parseLevel(level)
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "ts",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(time.RFC3339),
		EncodeDuration: zapcore.MillisDurationEncoder,
	})
	core := zapcore.NewCore(enc, ws, lvl.zap())
	z := zap.New(core).With(zap.String("corr_id", corrID))
	return &Logger{corrID: corrID, level: lvl, z: z}
}

// Close 刷新并关闭底层文件。
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	_ = l.z.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// Event 为标准事件结构。
type Event struct {
	Comp  string
	Stage string // start|finish|error
	Code  string
	DurMS int64
	Count int64
	Msg   string
	KV    map[string]string
}

func (l *Logger) log(lv Level, ev Event) {
	if l == nil || lv < l.level {
		return
	}
	fields := make([]zap.Field, 0, 6)
	fields = append(fields, zap.String("comp", ev.Comp), zap.String("stage", ev.Stage))
	if ev.Code != "" {
		fields = append(fields, zap.String("code", ev.Code))
	}
	if ev.DurMS != 0 {
		fields = append(fields, zap.Int64("dur_ms", ev.DurMS))
	}
	if ev.Count != 0 {
		fields = append(fields, zap.Int64("count", ev.Count))
	}
	if len(ev.KV) > 0 {
		fields = append(fields, zap.Any("kv", ev.KV))
	}
	if ce := l.z.Check(lv.zap(), ev.Msg); ce != nil {
		ce.Write(fields...)
	}
}

// Start 记录 start 事件；返回计时器用于 Finish。
func (l *Logger) Start(comp, msg string) *Timer {
	l.log(Info, Event{Comp: comp, Stage: "start", Msg: msg})
	return &Timer{l: l, comp: comp, t0: time.Now()}
}

// StartWithKV 记录带键值的 start。
func (l *Logger) StartWithKV(comp, msg string, kv map[string]string) *Timer {
	l.log(Info, Event{Comp: comp, Stage: "start", Msg: msg, KV: kv})
	return &Timer{l: l, comp: comp, kv: kv, t0: time.Now()}
}

// Error 记录 error 事件。
func (l *Logger) Error(comp, code, msg string, durSince *time.Time) {
	l.ErrorWithKV(comp, code, msg, durSince, nil)
}

// ErrorWithKV 支持附带键值对（例如输入规模、查询名）。
func (l *Logger) ErrorWithKV(comp, code, msg string, durSince *time.Time, kv map[string]string) {
	var dur int64
	if durSince != nil {
		dur = time.Since(*durSince).Milliseconds()
	}
	l.log(Error, Event{Comp: comp, Stage: "error", Code: code, DurMS: dur, Msg: msg, KV: kv})
}

// InfoFinish 在已有起点的情况下记录 finish。
func (l *Logger) InfoFinish(comp, msg string, start time.Time, count int64) {
	l.log(Info, Event{Comp: comp, Stage: "finish", DurMS: time.Since(start).Milliseconds(), Count: count, Msg: msg})
}

// DebugStart 输出调试级别的 start 类事件（仅在 level=debug 时生效）。
func (l *Logger) DebugStart(comp, msg string, kv map[string]string) {
	l.log(Debug, Event{Comp: comp, Stage: "start", Msg: msg, KV: kv})
}

// Timer 用于 start→finish 计时。
type Timer struct {
	l    *Logger
	comp string
	kv   map[string]string
	t0   time.Time
}

// Finish 记录 finish；可选 count。
func (t *Timer) Finish(msg string, count int64) {
	if t == nil || t.l == nil {
		return
	}
	t.l.log(Info, Event{Comp: t.comp, Stage: "finish", DurMS: time.Since(t.t0).Milliseconds(), Count: count, Msg: msg, KV: t.kv})
}

// Elapsed 返回自 start 起的时长。
func (t *Timer) Elapsed() time.Duration {
	if t == nil {
		return 0
	}
	return time.Since(t.t0)
}
