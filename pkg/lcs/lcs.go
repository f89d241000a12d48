// Package lcs 基于生成式后缀树求最长公共子串（两串与多串）。
//
// 结果为满足条件的最长子串；存在多个等长答案时取按 rune 值字典序最小者
// （遍历时兄弟按首符号升序，先到者胜）。无公共子串时返回空串。
package lcs

import (
	"fmt"
	"sort"

	"gstlcs/internal/classify"
	"gstlcs/internal/stree"
	"gstlcs/pkg/contract"
	"gstlcs/pkg/symbol"
)

// Query 在已分类的树上查找被 req 中全部串共有的最长子串。
// 候选为 root→v 的路径（叶子去掉末尾终止符）；根不贡献候选。
func Query(t *stree.Tree, ann *classify.Annotation, req classify.Set) string {
	st := t.Stream()
	bestLen, bestFrom := 0, 0
	t.Walk(func(n, _ int32, depth int) bool {
		// 子树集合只会更小，不覆盖即可剪枝
		if !ann.Set(n).Covers(req) {
			return false
		}
		cand := depth
		if t.IsLeaf(n) {
			if _, r := t.Edge(n); st.IsTerminator(st.Symbols[r]) {
				cand--
			}
		}
		if cand > bestLen {
			bestFrom, _ = t.PathRange(n, depth)
			bestLen = cand
		}
		return true
	})
	if bestLen == 0 {
		return ""
	}
	return st.Text(bestFrom, bestFrom+bestLen-1)
}

// Index: 一次构树、多次查询。构造后只读，可并发调用 Common/Pair/All。
type Index struct {
	tree *stree.Tree
	n    int
}

// New 为 inputs 构造生成式后缀树。
func New(inputs []string, opts ...symbol.Option) (*Index, error) {
	st, err := symbol.Build(inputs, opts...)
	if err != nil {
		return nil, fmt.Errorf("symbol stream: %w", err)
	}
	t, err := stree.Construct(st)
	if err != nil {
		return nil, fmt.Errorf("construct: %w", err)
	}
	return &Index{tree: t, n: len(inputs)}, nil
}

// Len 返回已索引的串数量。
func (x *Index) Len() int { return x.n }

// Tree 返回底层后缀树（只读）。
func (x *Index) Tree() *stree.Tree { return x.tree }

// Dump 返回诊断用的树结构文本。
func (x *Index) Dump() string { return x.tree.String() }

// Common 返回 ids 指定的串（空表示全部）的最长公共子串。
// 每次调用独立重算分类侧表，不修改共享树。
func (x *Index) Common(ids ...int) (string, error) {
	req, err := x.required(ids)
	if err != nil {
		return "", err
	}
	return Query(x.tree, classify.Classify(x.tree), req), nil
}

// Pair 返回第 i、j 两串的最长公共子串。
func (x *Index) Pair(i, j int) (string, error) { return x.Common(i, j) }

// All 返回全部已索引串的最长公共子串。
func (x *Index) All() string {
	s, _ := x.Common()
	return s
}

func (x *Index) required(ids []int) (classify.Set, error) {
	if len(ids) == 0 {
		all := make([]int, x.n)
		for i := range all {
			all[i] = i
		}
		return classify.SetOf(x.n, all...), nil
	}
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	for _, id := range sorted {
		if id < 0 || id >= x.n {
			return nil, fmt.Errorf("%w: string id %d out of range [0,%d)", contract.ErrInvalidInput, id, x.n)
		}
	}
	return classify.SetOf(x.n, sorted...), nil
}

// LCS2 返回 a 与 b 的最长公共子串。
func LCS2(a, b string) (string, error) {
	x, err := New([]string{a, b})
	if err != nil {
		return "", err
	}
	return x.Common(0, 1)
}

// LCS 返回 inputs 中全部串的最长公共子串。
func LCS(inputs []string) (string, error) {
	x, err := New(inputs)
	if err != nil {
		return "", err
	}
	return x.Common()
}

// Solver 以 contract.PairSolver / contract.MultiSolver 形式暴露后缀树求解。
type Solver struct {
	Alphabet *symbol.Alphabet
}

func (s Solver) opts() []symbol.Option {
	if s.Alphabet == nil {
		return nil
	}
	return []symbol.Option{symbol.WithAlphabet(*s.Alphabet)}
}

// LCS2 实现 contract.PairSolver。
func (s Solver) LCS2(a, b string) (string, error) {
	x, err := New([]string{a, b}, s.opts()...)
	if err != nil {
		return "", err
	}
	return x.Common(0, 1)
}

// LCS 实现 contract.MultiSolver。
func (s Solver) LCS(inputs []string) (string, error) {
	x, err := New(inputs, s.opts()...)
	if err != nil {
		return "", err
	}
	return x.Common()
}

var (
	_ contract.PairSolver  = Solver{}
	_ contract.MultiSolver = Solver{}
)
