// Package stree 实现 Ukkonen 在线构造的生成式后缀树。
//
// 节点存放在追加式 arena 中，以 int32 下标互相引用；后缀链接与子节点表
// 都只是查找关系，不承担生命周期。0 号节点为辅助节点 ⊥，1 号为根。
package stree

import (
	"fmt"
	"math"
	"sort"

	"gstlcs/pkg/contract"
	"gstlcs/pkg/symbol"
)

// Open 表示尚未封口的边右端（仅出现在无终止符的 Raw 构树过程中）。
const Open = math.MaxInt

// None 表示不存在的节点引用（例如叶子的后缀链接）。
const None int32 = -1

const (
	aux  int32 = 0
	root int32 = 1
)

// node: 入边标签为流上的闭区间 [left, right]。
type node struct {
	left     int
	right    int
	link     int32
	children map[rune]int32
	// sorted: 构造完成后按首符号升序排列的子节点（确定性遍历顺序）。
	sorted []int32
}

// Tree: 构造完成后只读，可被多个查询并发读取。
type Tree struct {
	stream *symbol.Stream
	nodes  []node
	leaves int
}

// Construct 在整个符号流上执行 Ukkonen 构造。
// 空流或不含任何内容符号（全部输入为空串）时返回 ErrMalformedInput。
func Construct(st *symbol.Stream) (*Tree, error) {
	if st == nil || st.Len() == 0 {
		return nil, fmt.Errorf("%w: empty symbol stream", contract.ErrMalformedInput)
	}
	if st.Len() == len(st.Ends) {
		return nil, fmt.Errorf("%w: all %d input strings are empty", contract.ErrMalformedInput, len(st.Ends))
	}
	t := &Tree{stream: st, nodes: make([]node, 2, 2*st.Len()+2)}
	// ⊥ 没有真实标签；对任意符号都转移到根（见 child）。
	t.nodes[aux] = node{left: -2, right: -2, link: None}
	t.nodes[root] = node{left: -1, right: -1, link: aux, children: map[rune]int32{}}

	// 活动点：节点 s + 待处理区间 [k, i-1]
	s, k := root, 0
	for i := 0; i < st.Len(); i++ {
		s, k = t.update(s, k, i)
		s, k = t.canonize(s, k, i)
	}
	t.finalize()
	return t, nil
}

func (t *Tree) sym(i int) rune { return t.stream.Symbols[i] }

// bound 返回在位置 i 新建叶子的右端：
// 带终止符时直接封口到 i 所属串的终止符，否则保持开放。
func (t *Tree) bound(i int) int {
	if !t.stream.Terminated() {
		return Open
	}
	return t.stream.End(t.stream.Owner(i))
}

func (t *Tree) newNode(left, right int) int32 {
	t.nodes = append(t.nodes, node{left: left, right: right, link: None})
	return int32(len(t.nodes) - 1)
}

// child 返回 s 经首符号 c 的子节点；缺边意味着构造逻辑错误。
func (t *Tree) child(s int32, c rune) int32 {
	if s == aux {
		return root
	}
	n, ok := t.nodes[s].children[c]
	if !ok {
		panic(fmt.Errorf("%w: node %d has no edge for %U", contract.ErrInvariantViolation, s, c))
	}
	return n
}

func (t *Tree) addChild(parent int32, c rune, n int32) {
	p := &t.nodes[parent]
	if p.children == nil {
		p.children = make(map[rune]int32, 2)
	}
	p.children[c] = n
}

// update 处理位置 i 的符号：沿后缀链接依次延长所有尚未显式存在的后缀，
// 遇到已隐式存在的延长即停止。
func (t *Tree) update(s int32, k, i int) (int32, int) {
	c := t.sym(i)
	oldr := root
	end, r := t.testAndSplit(s, k, i-1, c)
	for !end {
		leaf := t.newNode(i, t.bound(i))
		t.addChild(r, c, leaf)
		t.leaves++
		if oldr != root {
			t.nodes[oldr].link = r
		}
		oldr = r
		s, k = t.canonize(t.nodes[s].link, k, i-1)
		end, r = t.testAndSplit(s, k, i-1, c)
	}
	if oldr != root {
		t.nodes[oldr].link = s
	}
	return s, k
}

// testAndSplit 判断 (s, [k,p]) 之后是否已能读到 c。
// 活动点落在边中间且读不到 c 时，在该处分裂出新的分支节点并返回它。
// 终止符在此处永不视为匹配。
func (t *Tree) testAndSplit(s int32, k, p int, c rune) (bool, int32) {
	if k <= p {
		first := t.sym(k)
		next := t.child(s, first)
		nl := t.nodes[next].left
		idx := nl + p - k + 1
		if !t.stream.IsTerminator(c) && c == t.sym(idx) {
			return true, s
		}
		split := t.newNode(nl, idx-1)
		t.nodes[s].children[first] = split
		t.nodes[next].left = idx
		t.addChild(split, t.sym(idx), next)
		return false, split
	}
	if s == aux {
		return true, s
	}
	_, ok := t.nodes[s].children[c]
	return ok, s
}

// canonize 把活动点沿显式边下推，直至剩余偏移短于当前边。
func (t *Tree) canonize(s int32, k, p int) (int32, int) {
	if k > p {
		return s, k
	}
	next := t.child(s, t.sym(k))
	for span := t.span(next); span <= p-k; span = t.span(next) {
		k += span + 1
		s = next
		if k <= p {
			next = t.child(s, t.sym(k))
		}
	}
	return s, k
}

// span 为 right-left（边长减一）。
func (t *Tree) span(n int32) int {
	nd := &t.nodes[n]
	return nd.right - nd.left
}

// finalize 封口所有开放边并固定子节点顺序。
func (t *Tree) finalize() {
	last := t.stream.Len() - 1
	for i := range t.nodes {
		nd := &t.nodes[i]
		if nd.right == Open {
			nd.right = last
		}
		if len(nd.children) == 0 {
			continue
		}
		keys := make([]rune, 0, len(nd.children))
		for r := range nd.children {
			keys = append(keys, r)
		}
		sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })
		nd.sorted = make([]int32, len(keys))
		for j, r := range keys {
			nd.sorted[j] = nd.children[r]
		}
	}
}
