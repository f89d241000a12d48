// Package classify 为后缀树的每个节点计算其子树叶子所属源串的集合。
// 结果保存在独立的侧表中，不写回共享的树，因此同一棵树可被并发查询。
package classify

import (
	"math/bits"

	"gstlcs/internal/stree"
)

// Set: 源串序号位图。
type Set []uint64

// NewSet 构造容量为 n 个源串的空集合。
func NewSet(n int) Set { return make(Set, (n+63)/64) }

// SetOf 构造包含给定序号的集合。
func SetOf(n int, ids ...int) Set {
	s := NewSet(n)
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add 加入序号 i。
func (s Set) Add(i int) { s[i>>6] |= 1 << (uint(i) & 63) }

// Has 报告是否包含 i。
func (s Set) Has(i int) bool {
	w := i >> 6
	return w < len(s) && s[w]&(1<<(uint(i)&63)) != 0
}

// Union 原地并入 o。
func (s Set) Union(o Set) {
	for i := range s {
		s[i] |= o[i]
	}
}

// Covers 报告 s 是否包含 req 的全部元素。
func (s Set) Covers(req Set) bool {
	for i, w := range req {
		if s[i]&w != w {
			return false
		}
	}
	return true
}

// Len 返回元素个数。
func (s Set) Len() int {
	n := 0
	for _, w := range s {
		n += bits.OnesCount64(w)
	}
	return n
}

// IDs 升序返回全部元素。
func (s Set) IDs() []int {
	out := make([]int, 0, s.Len())
	for wi, w := range s {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, wi*64+b)
			w &= w - 1
		}
	}
	return out
}

// Annotation: 节点下标 → 源串集合。所有集合共用一块底层数组。
type Annotation struct {
	width int
	words []uint64
	count int
}

// Set 返回节点 n 的集合（只读视图）。
func (a *Annotation) Set(n int32) Set {
	off := int(n) * a.width
	return Set(a.words[off : off+a.width : off+a.width])
}

// Strings 返回源串数量。
func (a *Annotation) Strings() int { return a.count }

// Classify 后序遍历（显式栈）：
// 叶子的归属串由其入边起点落在哪个终止符区间决定（对终止符位置二分）；
// 内部节点为子节点集合的并。
func Classify(t *stree.Tree) *Annotation {
	st := t.Stream()
	k := st.Count()
	width := (k + 63) / 64
	a := &Annotation{width: width, words: make([]uint64, t.NodeCount()*width), count: k}

	type item struct {
		n        int32
		expanded bool
	}
	stack := []item{{n: t.Root()}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t.IsLeaf(it.n) {
			left, _ := t.Edge(it.n)
			a.Set(it.n).Add(st.Owner(left))
			continue
		}
		kids := t.Children(it.n)
		if it.expanded {
			dst := a.Set(it.n)
			for _, c := range kids {
				dst.Union(a.Set(c))
			}
			continue
		}
		stack = append(stack, item{n: it.n, expanded: true})
		for j := len(kids) - 1; j >= 0; j-- {
			stack = append(stack, item{n: kids[j]})
		}
	}
	return a
}
