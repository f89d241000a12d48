package stree

import (
	"strings"

	"gstlcs/pkg/symbol"
)

// Root 返回根节点。
func (t *Tree) Root() int32 { return root }

// Stream 返回构树所用的符号流。
func (t *Tree) Stream() *symbol.Stream { return t.stream }

// NodeCount 返回 arena 中的节点数（含 ⊥ 与根）。
func (t *Tree) NodeCount() int { return len(t.nodes) }

// LeafCount 返回叶子数；带终止符时等于符号流长度。
func (t *Tree) LeafCount() int { return t.leaves }

// Edge 返回节点入边的闭区间。
func (t *Tree) Edge(n int32) (left, right int) {
	nd := &t.nodes[n]
	return nd.left, nd.right
}

// EdgeLen 返回入边长度；根与 ⊥ 为 0。
func (t *Tree) EdgeLen(n int32) int {
	if n == root || n == aux {
		return 0
	}
	return t.span(n) + 1
}

// Children 按首符号升序返回子节点。返回的切片只读。
func (t *Tree) Children(n int32) []int32 { return t.nodes[n].sorted }

// IsLeaf 报告 n 是否为叶子。
func (t *Tree) IsLeaf(n int32) bool { return n > root && len(t.nodes[n].children) == 0 }

// SuffixLink 返回后缀链接目标；叶子返回 None，根返回 ⊥。
func (t *Tree) SuffixLink(n int32) int32 { return t.nodes[n].link }

// IsAux 报告 n 是否为辅助节点 ⊥。
func (t *Tree) IsAux(n int32) bool { return n == aux }

// Label 返回入边标签（终止符写作 $k）。
func (t *Tree) Label(n int32) string {
	if n == root || n == aux {
		return ""
	}
	nd := &t.nodes[n]
	return t.stream.Render(nd.left, nd.right)
}

// PathRange 返回 root→n 路径在流上的闭区间；depth 为该路径长度。
func (t *Tree) PathRange(n int32, depth int) (from, to int) {
	to = t.nodes[n].right
	return to - depth + 1, to
}

// Visit 为遍历回调；返回 false 时不再下探该节点的子树。
type Visit func(n, parent int32, depth int) bool

type frame struct {
	n      int32
	parent int32
	depth  int
}

// Walk 自根开始先序遍历（显式栈），兄弟按首符号升序访问；
// depth 为 root→n 的路径长度（字符串深度）。根本身不回调。
func (t *Tree) Walk(fn Visit) {
	stack := make([]frame, 0, 64)
	stack = pushChildren(stack, t.nodes[root].sorted, root, 0, t)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.n, f.parent, f.depth) {
			continue
		}
		stack = pushChildren(stack, t.nodes[f.n].sorted, f.n, f.depth, t)
	}
}

// pushChildren 逆序入栈，以便按升序出栈。
func pushChildren(stack []frame, kids []int32, parent int32, depth int, t *Tree) []frame {
	for j := len(kids) - 1; j >= 0; j-- {
		c := kids[j]
		stack = append(stack, frame{n: c, parent: parent, depth: depth + t.EdgeLen(c)})
	}
	return stack
}

// Suffixes 返回所有 root→leaf 路径（可读形式），按遍历顺序。
func (t *Tree) Suffixes() []string {
	out := make([]string, 0, t.leaves)
	t.Walk(func(n, _ int32, depth int) bool {
		if t.IsLeaf(n) {
			from, to := t.PathRange(n, depth)
			out = append(out, t.stream.Render(from, to))
		}
		return true
	})
	return out
}

// String 输出人类可读的树结构：每行一个节点，制表符缩进表示层级，
// "---->" 后为后缀链接目标的入边标签（⊥ 表示辅助节点）。仅供调试，格式不稳定。
func (t *Tree) String() string {
	var b strings.Builder
	b.WriteString(t.stream.Render(0, t.stream.Len()-1))
	b.WriteString(" ----> ⊥\n")
	type item struct {
		n     int32
		level int
	}
	kids := t.nodes[root].sorted
	stack := make([]item, 0, len(kids))
	for j := len(kids) - 1; j >= 0; j-- {
		stack = append(stack, item{n: kids[j], level: 1})
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		b.WriteString(strings.Repeat("\t", it.level))
		b.WriteString(t.Label(it.n))
		switch l := t.nodes[it.n].link; {
		case l == aux:
			b.WriteString(" ----> ⊥")
		case l == root:
			b.WriteString(" ----> (root)")
		case l != None:
			b.WriteString(" ----> ")
			b.WriteString(t.Label(l))
		}
		b.WriteByte('\n')
		sub := t.nodes[it.n].sorted
		for j := len(sub) - 1; j >= 0; j-- {
			stack = append(stack, item{n: sub[j], level: it.level + 1})
		}
	}
	return b.String()
}
