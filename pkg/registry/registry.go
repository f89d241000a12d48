package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"unicode"

	"gstlcs/internal/baseline"
	"gstlcs/pkg/contract"
	"gstlcs/pkg/lcs"
	"gstlcs/pkg/symbol"
)

// strictUnmarshal: 使用 DisallowUnknownFields 严格解码，拒绝未知字段。
func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		// 保持零值（默认选项）
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// GSTOptions: 后缀树求解器选项。两项均为 0 时使用默认终止符区间。
type GSTOptions struct {
	TerminatorBase  int `json:"terminator_base"`
	TerminatorCount int `json:"terminator_count"`
}

func (o GSTOptions) solver() (lcs.Solver, error) {
	if o.TerminatorBase == 0 && o.TerminatorCount == 0 {
		return lcs.Solver{}, nil
	}
	if o.TerminatorBase <= 0 || o.TerminatorCount <= 0 {
		return lcs.Solver{}, fmt.Errorf("%w: terminator_base/terminator_count must be > 0", contract.ErrInvalidInput)
	}
	// rune 转换会截断高位，先按 int 检查
	if o.TerminatorBase > unicode.MaxRune {
		return lcs.Solver{}, fmt.Errorf("%w: terminator_base %#x exceeds unicode range", contract.ErrInvalidInput, o.TerminatorBase)
	}
	a := symbol.Alphabet{Base: rune(o.TerminatorBase), Count: o.TerminatorCount}
	return lcs.Solver{Alphabet: &a}, nil
}

// DPOptions: 动态规划基线无可调项，仅用于拒绝未知字段。
type DPOptions struct{}

// NewPairSolver 工厂签名：接收原样 JSON Options。
type NewPairSolver func(raw json.RawMessage) (contract.PairSolver, error)

// NewMultiSolver 工厂签名：接收原样 JSON Options。
type NewMultiSolver func(raw json.RawMessage) (contract.MultiSolver, error)

// Pair 两串求解器注册表（显式、零反射）。
var Pair = map[string]NewPairSolver{
	// gst: 生成式后缀树
	"gst": func(raw json.RawMessage) (contract.PairSolver, error) {
		var opts GSTOptions
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return opts.solver()
	},
	// dp: 平方复杂度基线
	"dp": func(raw json.RawMessage) (contract.PairSolver, error) {
		var opts DPOptions
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return baseline.Solver{}, nil
	},
}

// Multi k 路求解器注册表。
var Multi = map[string]NewMultiSolver{
	"gst": func(raw json.RawMessage) (contract.MultiSolver, error) {
		var opts GSTOptions
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return opts.solver()
	},
}

// PairNames 返回已注册的两串求解器名（升序）。
func PairNames() []string {
	names := make([]string, 0, len(Pair))
	for k := range Pair {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
