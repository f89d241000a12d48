// Package bench 以随机串对拍各求解器：每轮生成植入公共块的随机串，
// 比较结果长度并计时。
package bench

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"gstlcs/internal/diag"
	"gstlcs/pkg/contract"
)

// Charset 随机串字符集（88 个可打印 ASCII）。
const Charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*()[]{}`~;':\",./<>?"

// Range 为闭区间 [Min, Max]。
type Range struct {
	Min int
	Max int
}

func (r Range) pick(rng *rand.Rand) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.IntN(r.Max-r.Min+1)
}

// Sample: 一组随机串及植入其中的公共块。
type Sample struct {
	Strings []string
	Common  string
}

// Generate 生成 k 个串：公共块插在每个串的随机位置，两侧补随机字符。
// 各串总长为 length+len(common)。
func Generate(rng *rand.Rand, length, common Range, k int) Sample {
	n := length.pick(rng)
	c := randomText(rng, common.pick(rng))
	out := make([]string, k)
	for i := range out {
		at := rng.IntN(n + 1)
		out[i] = randomText(rng, at) + c + randomText(rng, n-at)
	}
	return Sample{Strings: out, Common: c}
}

// RandomStrings 同 Generate，只返回串本身。
func RandomStrings(rng *rand.Rand, length, common Range, k int) []string {
	return Generate(rng, length, common, k).Strings
}

func randomText(rng *rand.Rand, n int) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(Charset[rng.IntN(len(Charset))])
	}
	return b.String()
}

// Solver: 参与对拍的两串求解器。
type Solver struct {
	Name string
	Pair contract.PairSolver
}

// Settings: 对拍参数。Seed 为 0 时按当前时间取种子。
type Settings struct {
	Rounds  int
	Length  Range
	Common  Range
	Strings int // 每轮生成的串数；两串求解器只取前两个
	Seed    uint64

	// Multi 非空时每轮额外以 k 路求解器处理全部串。
	Multi contract.MultiSolver
	Term  *diag.Terminal
}

// Round: 单轮结果，Lens/Durations 与 Report.Solvers 同序。
type Round struct {
	Index     int
	Planted   int
	Lens      []int
	Durations []time.Duration
	MultiLen  int
	Agree     bool
}

// Report: 全部轮次汇总。
type Report struct {
	Seed       uint64
	Solvers    []string
	Rounds     []Round
	Totals     []time.Duration
	Mismatches int
}

// Run 执行 set.Rounds 轮对拍。
// 任一轮长度不一致时仍跑完全部轮次，最后返回 ErrInvariantViolation；
// 求解器报错或 ctx 取消则立即返回。
func Run(ctx context.Context, set Settings, solvers []Solver, logger *diag.Logger) (Report, error) {
	if len(solvers) == 0 && set.Multi == nil {
		return Report{}, fmt.Errorf("%w: no solver", contract.ErrInvalidInput)
	}
	if set.Strings < 2 {
		set.Strings = 2
	}
	seed := set.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	rep := Report{Seed: seed, Totals: make([]time.Duration, len(solvers))}
	for _, s := range solvers {
		rep.Solvers = append(rep.Solvers, s.Name)
	}
	names := append([]string(nil), rep.Solvers...)
	if set.Multi != nil {
		names = append(names, "multi")
	}
	runStart := time.Now()
	timer := logger.StartWithKV("bench", "run", map[string]string{
		"rounds":  strconv.Itoa(set.Rounds),
		"solvers": strings.Join(names, ","),
		"seed":    strconv.FormatUint(seed, 10),
	})
	set.Term.RunStart(set.Rounds, names)

	for i := 0; i < set.Rounds; i++ {
		if err := ctx.Err(); err != nil {
			set.Term.RunFinish(false, timer.Elapsed())
			return rep, err
		}
		smp := Generate(rng, set.Length, set.Common, set.Strings)
		rd, err := runRound(i, smp, solvers, set.Multi)
		if err != nil {
			code := diag.Classify(err)
			logger.ErrorWithKV("bench", string(code), "solver failed", &runStart, map[string]string{"round": strconv.Itoa(i)})
			diag.IncOp("bench", "error", "error")
			if code != diag.CodeUnknown {
				diag.IncError("bench", string(code))
			}
			set.Term.RunFinish(false, timer.Elapsed())
			return rep, err
		}
		for j, d := range rd.Durations {
			rep.Totals[j] += d
			diag.ObserveDuration(solvers[j].Name, "lcs2", d.Milliseconds())
		}
		detail := describe(rd, rep.Solvers)
		if rd.Agree {
			diag.IncOp("bench", "round", "success")
		} else {
			rep.Mismatches++
			diag.IncOp("bench", "round", "mismatch")
			diag.IncError("bench", string(diag.CodeInvariant))
			logger.ErrorWithKV("bench", string(diag.CodeInvariant), "length mismatch", nil, map[string]string{
				"round":  strconv.Itoa(i),
				"detail": detail,
			})
		}
		rep.Rounds = append(rep.Rounds, rd)
		set.Term.RoundFinish(i, rd.Agree, detail)
	}
	set.Term.RunFinish(rep.Mismatches == 0, timer.Elapsed())
	timer.Finish("run", int64(len(rep.Rounds)))
	if rep.Mismatches > 0 {
		return rep, fmt.Errorf("%w: %d of %d rounds disagree", contract.ErrInvariantViolation, rep.Mismatches, len(rep.Rounds))
	}
	return rep, nil
}

// runRound 执行一轮。结果须为输入的公共子串、长度不小于植入块，且各求解器长度相同。
func runRound(i int, smp Sample, solvers []Solver, multi contract.MultiSolver) (Round, error) {
	a, b := smp.Strings[0], smp.Strings[1]
	planted := len([]rune(smp.Common))
	rd := Round{Index: i, Planted: planted, Agree: true, MultiLen: -1}
	for _, s := range solvers {
		t0 := time.Now()
		got, err := s.Pair.LCS2(a, b)
		d := time.Since(t0)
		if err != nil {
			return rd, fmt.Errorf("round %d solver %s: %w", i, s.Name, err)
		}
		n := len([]rune(got))
		rd.Lens = append(rd.Lens, n)
		rd.Durations = append(rd.Durations, d)
		if n < planted || !strings.Contains(a, got) || !strings.Contains(b, got) {
			rd.Agree = false
		}
		if rd.Lens[0] != n {
			rd.Agree = false
		}
	}
	if multi != nil {
		got, err := multi.LCS(smp.Strings)
		if err != nil {
			return rd, fmt.Errorf("round %d multi: %w", i, err)
		}
		rd.MultiLen = len([]rune(got))
		if rd.MultiLen < planted {
			rd.Agree = false
		}
		for _, s := range smp.Strings {
			if !strings.Contains(s, got) {
				rd.Agree = false
			}
		}
	}
	return rd, nil
}

func describe(rd Round, names []string) string {
	parts := []string{fmt.Sprintf("planted=%d", rd.Planted)}
	for j, n := range names {
		parts = append(parts, fmt.Sprintf("%s=%d/%dms", n, rd.Lens[j], rd.Durations[j].Milliseconds()))
	}
	if rd.MultiLen >= 0 {
		parts = append(parts, fmt.Sprintf("multi=%d", rd.MultiLen))
	}
	return strings.Join(parts, " ")
}
