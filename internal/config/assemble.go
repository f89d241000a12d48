package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"gstlcs/internal/bench"
	"gstlcs/internal/diag"
	"gstlcs/internal/query"
	"gstlcs/pkg/contract"
	"gstlcs/pkg/registry"
	"gstlcs/pkg/symbol"
)

// Validate 对最小必要边界做静态校验。
func Validate(cfg Config) error {
	if cfg.Concurrency < 1 {
		return errors.New("config: concurrency must be >= 1")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown logging.level %q", cfg.Logging.Level)
	}
	if cfg.Logging.MaxSizeMB < 0 || cfg.Logging.MaxBackups < 0 {
		return errors.New("config: logging.max_size_mb/max_backups must be >= 0")
	}
	tm := cfg.Terminators
	if tm.Base <= 0 || tm.Count <= 0 {
		return errors.New("config: terminators.base/count must be > 0")
	}
	if tm.Base+tm.Count-1 > unicode.MaxRune {
		return fmt.Errorf("config: terminators [%#x,%#x) exceeds unicode range", tm.Base, tm.Base+tm.Count)
	}
	if registry.Pair[effName(cfg.Solver, Defaults().Solver)] == nil {
		return fmt.Errorf("config: solver %q not registered", cfg.Solver)
	}

	b := cfg.Bench
	if b.Rounds < 1 {
		return errors.New("config: bench.rounds must be >= 1")
	}
	if b.MinLen < 0 || b.MinLen > b.MaxLen {
		return fmt.Errorf("config: bench length range [%d,%d] invalid", b.MinLen, b.MaxLen)
	}
	if b.MinCommon < 0 || b.MinCommon > b.MaxCommon {
		return fmt.Errorf("config: bench common range [%d,%d] invalid", b.MinCommon, b.MaxCommon)
	}
	if b.Strings < 2 {
		return errors.New("config: bench.strings must be >= 2")
	}
	if b.Strings > tm.Count {
		return fmt.Errorf("config: bench.strings(%d) exceeds terminators.count(%d)", b.Strings, tm.Count)
	}
	if len(b.Solvers) == 0 && !b.Multi {
		return errors.New("config: bench.solvers empty")
	}
	for _, name := range b.Solvers {
		if registry.Pair[name] == nil {
			return fmt.Errorf("config: bench solver %q not registered", name)
		}
	}
	return nil
}

// Assembly: 由配置装配出的运行期组件。
type Assembly struct {
	Alphabet     symbol.Alphabet
	Pair         contract.PairSolver
	Multi        contract.MultiSolver
	Query        query.Settings
	Bench        bench.Settings
	BenchSolvers []bench.Solver
	Log          diag.FileOptions
}

// Assemble 校验并构造求解器与各阶段参数。
// 严格 Options 解析在 registry（工厂）层进行；此处只传 raw JSON。
func Assemble(cfg Config) (Assembly, error) {
	if err := Validate(cfg); err != nil {
		return Assembly{}, err
	}
	var a Assembly
	a.Alphabet = symbol.Alphabet{Base: rune(cfg.Terminators.Base), Count: cfg.Terminators.Count}
	a.Log = diag.FileOptions{Dir: cfg.Logging.Dir, MaxSizeMB: cfg.Logging.MaxSizeMB, MaxBackups: cfg.Logging.MaxBackups}
	a.Query = query.Settings{Concurrency: cfg.Concurrency}

	name := effName(cfg.Solver, Defaults().Solver)
	p, err := registry.Pair[name](optionsFor(name, cfg.Terminators))
	if err != nil {
		return Assembly{}, fmt.Errorf("config: solver %q: %w", name, err)
	}
	a.Pair = p
	m, err := registry.Multi["gst"](optionsFor("gst", cfg.Terminators))
	if err != nil {
		return Assembly{}, fmt.Errorf("config: multi solver: %w", err)
	}
	a.Multi = m

	for _, n := range cfg.Bench.Solvers {
		s, err := registry.Pair[n](optionsFor(n, cfg.Terminators))
		if err != nil {
			return Assembly{}, fmt.Errorf("config: bench solver %q: %w", n, err)
		}
		a.BenchSolvers = append(a.BenchSolvers, bench.Solver{Name: n, Pair: s})
	}
	b := cfg.Bench
	a.Bench = bench.Settings{
		Rounds:  b.Rounds,
		Length:  bench.Range{Min: b.MinLen, Max: b.MaxLen},
		Common:  bench.Range{Min: b.MinCommon, Max: b.MaxCommon},
		Strings: b.Strings,
		Seed:    b.Seed,
	}
	if b.Multi {
		a.Bench.Multi = m
	}
	return a, nil
}

// optionsFor 生成求解器的 raw Options：仅后缀树求解器使用终止符区间。
func optionsFor(name string, tm Terminators) json.RawMessage {
	if name != "gst" {
		return nil
	}
	raw, _ := json.Marshal(registry.GSTOptions{TerminatorBase: tm.Base, TerminatorCount: tm.Count})
	return raw
}

func effName(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
