package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"gstlcs/pkg/contract"
)

// UT-CFG-01: 解析完整配置文件
func TestLoadFile(t *testing.T) {
	cfg, err := LoadFile("../../testdata/config/basic.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, "dp", cfg.Solver)
	assert.Equal(t, 0xE000, cfg.Terminators.Base)
	assert.Equal(t, 64, cfg.Terminators.Count)
	assert.Equal(t, uint64(7), cfg.Bench.Seed)
	assert.Equal(t, []string{"gst", "dp"}, cfg.Bench.Solvers)
	assert.True(t, cfg.Bench.Multi)

	merged := Merge(Defaults(), cfg)
	require.NoError(t, Validate(merged))
	assert.Equal(t, 10, merged.Logging.MaxSizeMB)
}

// UT-CFG-02: ENV 覆盖部分字段
func TestEnvOverlay(t *testing.T) {
	env := []string{
		"GSTLCS_CONCURRENCY=3",
		"GSTLCS_SOLVER=dp",
		"GSTLCS_LOG_LEVEL=warn",
		"GSTLCS_TERMINATOR_BASE=0xF0000",
		"GSTLCS_BENCH_SOLVERS=gst, dp",
		"GSTLCS_BENCH_SEED=99",
		"GSTLCS_BENCH_MULTI=true",
		"GSTLCS_BENCH_ROUNDS=abc",
		"GSTLCS_UNKNOWN=1",
		"OTHER=1",
	}
	over, err := EnvOverlay(env)
	require.NoError(t, err)
	assert.Equal(t, 3, over.Concurrency)
	assert.Equal(t, "dp", over.Solver)
	assert.Equal(t, "warn", over.Logging.Level)
	assert.Equal(t, 0xF0000, over.Terminators.Base)
	assert.Equal(t, []string{"gst", "dp"}, over.Bench.Solvers)
	assert.Equal(t, uint64(99), over.Bench.Seed)
	assert.True(t, over.Bench.Multi)
	// 无法解析的值忽略
	assert.Zero(t, over.Bench.Rounds)
}

// UT-CFG-03: 含非法字段
func TestLoadFileUnknown(t *testing.T) {
	_, err := LoadFile("", []byte("unknown: 1\n"))
	assert.Error(t, err)
	_, err = LoadFile("", []byte("bench:\n  round: 1\n"))
	assert.Error(t, err)
	// JSON 文档同样可解析
	cfg, err := LoadFile("", []byte(`{"concurrency": 5, "logging": {"level": "error"}}`))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Concurrency)
	assert.Equal(t, "error", cfg.Logging.Level)

	_, err = LoadFile("", nil)
	assert.Error(t, err)
	_, err = LoadFile("/nonexistent/gstlcs.yaml", nil)
	assert.Error(t, err)
}

// UT-CFG-04: 合并优先级，零值不覆盖
func TestMerge(t *testing.T) {
	base := Defaults()
	over := Config{Solver: "dp", Bench: Bench{Rounds: 1, Solvers: []string{"dp"}}}
	out := Merge(base, over)
	assert.Equal(t, "dp", out.Solver)
	assert.Equal(t, 1, out.Bench.Rounds)
	assert.Equal(t, []string{"dp"}, out.Bench.Solvers)
	assert.Equal(t, base.Bench.MaxLen, out.Bench.MaxLen)
	assert.Equal(t, base.Terminators, out.Terminators)

	// 不共享切片底层数组
	out.Bench.Solvers[0] = "x"
	assert.Equal(t, "dp", over.Bench.Solvers[0])
	assert.Equal(t, "gst", Merge(base, Config{}).Bench.Solvers[0])
}

// UT-CFG-05: 校验
func TestValidate(t *testing.T) {
	require.NoError(t, Validate(Defaults()))
	require.NoError(t, Validate(DefaultTemplateConfig()))

	cases := map[string]func(*Config){
		"concurrency":    func(c *Config) { c.Concurrency = 0 },
		"level":          func(c *Config) { c.Logging.Level = "loud" },
		"terminators":    func(c *Config) { c.Terminators.Count = 0 },
		"unicode":        func(c *Config) { c.Terminators.Base = 0x10FFFF; c.Terminators.Count = 2 },
		"solver":         func(c *Config) { c.Solver = "nope" },
		"rounds":         func(c *Config) { c.Bench.Rounds = 0 },
		"len range":      func(c *Config) { c.Bench.MinLen = 10; c.Bench.MaxLen = 5 },
		"common range":   func(c *Config) { c.Bench.MinCommon = 10; c.Bench.MaxCommon = 5 },
		"strings":        func(c *Config) { c.Bench.Strings = 1 },
		"too many":       func(c *Config) { c.Terminators.Count = 2; c.Bench.Strings = 3 },
		"bench solver":   func(c *Config) { c.Bench.Solvers = []string{"gst", "nope"} },
		"no solvers":     func(c *Config) { c.Bench.Solvers = nil },
		"negative sizes": func(c *Config) { c.Logging.MaxBackups = -1 },
	}
	for name, mut := range cases {
		t.Run(name, func(t *testing.T) {
			c := Defaults()
			mut(&c)
			assert.Error(t, Validate(c))
		})
	}
}

// UT-CFG-06: 装配
func TestAssemble(t *testing.T) {
	cfg := Defaults()
	cfg.Terminators = Terminators{Base: '0', Count: 2}
	cfg.Bench.Multi = true
	a, err := Assemble(cfg)
	require.NoError(t, err)
	assert.Equal(t, '0', a.Alphabet.Base)
	assert.Equal(t, 1, a.Query.Concurrency)
	assert.Equal(t, "logs", a.Log.Dir)
	require.Len(t, a.BenchSolvers, 2)
	assert.Equal(t, "gst", a.BenchSolvers[0].Name)
	assert.NotNil(t, a.Bench.Multi)

	got, err := a.Pair.LCS2("abcd", "bcd")
	require.NoError(t, err)
	assert.Equal(t, "bcd", got)
	// 终止符区间只有 2 个，三串超限
	_, err = a.Multi.LCS([]string{"a", "b", "c"})
	assert.True(t, errors.Is(err, contract.ErrInvalidInput))

	cfg.Concurrency = 0
	_, err = Assemble(cfg)
	assert.Error(t, err)
}

// 模板可被 yaml 往返并严格解析
func TestTemplateYAML(t *testing.T) {
	b, err := yaml.Marshal(DefaultTemplateConfig())
	require.NoError(t, err)
	cfg, err := LoadFile("", b)
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplateConfig(), cfg)
}

// 补充覆盖: splitComma 与 atoi
func TestSplitCommaAtoi(t *testing.T) {
	parts := splitComma("a, b , ,c")
	require.Len(t, parts, 3)
	assert.Equal(t, "b", parts[1])
	v, err := atoi("10")
	require.NoError(t, err)
	assert.Equal(t, 10, v)
	v, err = atoi("0x10")
	require.NoError(t, err)
	assert.Equal(t, 16, v)
	_, err = atoi("x")
	assert.Error(t, err)
}
