package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults 返回带有安全默认值的 Config 雏形。
func Defaults() Config {
	return Config{
		Concurrency: 1,
		Solver:      "gst",
		Logging: Logging{
			Level:      "info",
			Dir:        "logs",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
		Terminators: Terminators{Base: 0xE000, Count: 0x1900},
		Bench: Bench{
			Rounds:    10,
			MinLen:    10000,
			MaxLen:    20000,
			MinCommon: 500,
			MaxCommon: 1000,
			Strings:   2,
			Solvers:   []string{"gst", "dp"},
		},
	}
}

// LoadFile 从文件路径或原始字节解析 Config（严格拒绝未知字段）。
// 空文档得到零值 Config。
func LoadFile(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("no config source provided")
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, err
	}
	return cfg, nil
}

// Merge 按优先级合并（后者覆盖前者）。
// 零值视为未设置；切片整体替换，不做深度合并。
func Merge(base, over Config) Config {
	out := base
	out.Bench.Solvers = cloneStrings(base.Bench.Solvers)
	if over.Concurrency != 0 {
		out.Concurrency = over.Concurrency
	}
	if s := strings.TrimSpace(over.Solver); s != "" {
		out.Solver = s
	}

	// Logging
	if s := strings.TrimSpace(over.Logging.Level); s != "" {
		out.Logging.Level = s
	}
	if s := strings.TrimSpace(over.Logging.Dir); s != "" {
		out.Logging.Dir = s
	}
	if over.Logging.MaxSizeMB != 0 {
		out.Logging.MaxSizeMB = over.Logging.MaxSizeMB
	}
	if over.Logging.MaxBackups != 0 {
		out.Logging.MaxBackups = over.Logging.MaxBackups
	}

	// Terminators
	if over.Terminators.Base != 0 {
		out.Terminators.Base = over.Terminators.Base
	}
	if over.Terminators.Count != 0 {
		out.Terminators.Count = over.Terminators.Count
	}

	// Bench
	b, ob := &out.Bench, over.Bench
	if ob.Rounds != 0 {
		b.Rounds = ob.Rounds
	}
	if ob.MinLen != 0 {
		b.MinLen = ob.MinLen
	}
	if ob.MaxLen != 0 {
		b.MaxLen = ob.MaxLen
	}
	if ob.MinCommon != 0 {
		b.MinCommon = ob.MinCommon
	}
	if ob.MaxCommon != 0 {
		b.MaxCommon = ob.MaxCommon
	}
	if ob.Strings != 0 {
		b.Strings = ob.Strings
	}
	if ob.Seed != 0 {
		b.Seed = ob.Seed
	}
	if len(ob.Solvers) > 0 {
		b.Solvers = cloneStrings(ob.Solvers)
	}
	if ob.Multi {
		b.Multi = true
	}
	return out
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 规则：前缀 GSTLCS_；集合之外的键与无法解析的值忽略。
// 支持：CONCURRENCY, SOLVER, LOG_{LEVEL,DIR,MAX_SIZE_MB,MAX_BACKUPS},
// TERMINATOR_{BASE,COUNT}, BENCH_{ROUNDS,MIN_LEN,MAX_LEN,MIN_COMMON,MAX_COMMON,STRINGS,SEED,SOLVERS,MULTI}
func EnvOverlay(environ []string) (Config, error) {
	var over Config
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len(envPrefix) {
			continue
		}
		key := strings.TrimPrefix(kv[:eq], envPrefix)
		val := kv[eq+1:]
		switch key {
		case "CONCURRENCY":
			setInt(&over.Concurrency, val)
		case "SOLVER":
			over.Solver = strings.TrimSpace(val)
		case "LOG_LEVEL":
			over.Logging.Level = strings.TrimSpace(val)
		case "LOG_DIR":
			over.Logging.Dir = strings.TrimSpace(val)
		case "LOG_MAX_SIZE_MB":
			setInt(&over.Logging.MaxSizeMB, val)
		case "LOG_MAX_BACKUPS":
			setInt(&over.Logging.MaxBackups, val)
		case "TERMINATOR_BASE":
			setInt(&over.Terminators.Base, val)
		case "TERMINATOR_COUNT":
			setInt(&over.Terminators.Count, val)
		case "BENCH_ROUNDS":
			setInt(&over.Bench.Rounds, val)
		case "BENCH_MIN_LEN":
			setInt(&over.Bench.MinLen, val)
		case "BENCH_MAX_LEN":
			setInt(&over.Bench.MaxLen, val)
		case "BENCH_MIN_COMMON":
			setInt(&over.Bench.MinCommon, val)
		case "BENCH_MAX_COMMON":
			setInt(&over.Bench.MaxCommon, val)
		case "BENCH_STRINGS":
			setInt(&over.Bench.Strings, val)
		case "BENCH_SEED":
			if v, err := strconv.ParseUint(strings.TrimSpace(val), 10, 64); err == nil {
				over.Bench.Seed = v
			}
		case "BENCH_SOLVERS":
			over.Bench.Solvers = splitComma(val)
		case "BENCH_MULTI":
			if v, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
				over.Bench.Multi = v
			}
		}
	}
	return over, nil
}

const envPrefix = "GSTLCS_"

func setInt(dst *int, s string) {
	if v, err := atoi(s); err == nil {
		*dst = v
	}
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// atoi 接受十进制与 0x 前缀的十六进制。
func atoi(s string) (int, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("atoi %q: %w", s, err)
	}
	return int(v), nil
}
