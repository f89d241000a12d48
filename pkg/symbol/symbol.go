// Package symbol 构造生成式后缀树的输入符号流：
// 每个输入串后追加一个专属终止符，并记录终止符位置表。
package symbol

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"gstlcs/pkg/contract"
)

// 默认终止符字母表：BMP 私用区 U+E000..U+F8FF。
const (
	DefaultBase  rune = 0xE000
	DefaultCount      = 0x1900
)

// Alphabet: 保留的终止符字母表 [Base, Base+Count)。
type Alphabet struct {
	Base  rune
	Count int
}

// DefaultAlphabet 返回默认私用区字母表。
func DefaultAlphabet() Alphabet { return Alphabet{Base: DefaultBase, Count: DefaultCount} }

// Contains 判断 r 是否落在保留区间内。
func (a Alphabet) Contains(r rune) bool {
	return r >= a.Base && int64(r) < int64(a.Base)+int64(a.Count)
}

// Terminator 返回第 k 个输入串的终止符。
func (a Alphabet) Terminator(k int) rune { return a.Base + rune(k) }

// Option 调整 Build 行为。
type Option func(*Alphabet)

// WithAlphabet 替换默认终止符字母表。
func WithAlphabet(a Alphabet) Option {
	return func(dst *Alphabet) { *dst = a }
}

// Stream: 拼接后的符号流与终止符位置表。纯数据，构造后只读。
//
// Symbols = s0 $0 s1 $1 ... s(k-1) $(k-1)
// Ends[k] 为 $k 在 Symbols 中的下标（严格升序），其归属串即 k。
// Raw 流没有终止符（Ends 为空），整体视为 0 号串。
type Stream struct {
	Symbols  []rune
	Ends     []int
	alphabet Alphabet
}

// Build 拼接输入并追加专属终止符。
// 字母表越出 Unicode 范围、输入为空集合、输入不是合法 UTF-8、输入含保留符号、
// 或输入数量超过字母表容量时返回 ErrInvalidInput。
func Build(inputs []string, opts ...Option) (*Stream, error) {
	alpha := DefaultAlphabet()
	for _, o := range opts {
		o(&alpha)
	}
	if alpha.Count <= 0 || alpha.Base < 0 {
		return nil, fmt.Errorf("%w: empty terminator alphabet", contract.ErrInvalidInput)
	}
	if int64(alpha.Base)+int64(alpha.Count)-1 > unicode.MaxRune {
		return nil, fmt.Errorf("%w: terminators [%#x,%#x) exceed unicode range", contract.ErrInvalidInput, alpha.Base, int64(alpha.Base)+int64(alpha.Count))
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no input strings", contract.ErrInvalidInput)
	}
	if len(inputs) > alpha.Count {
		return nil, fmt.Errorf("%w: %d strings exceed %d reserved terminators", contract.ErrInvalidInput, len(inputs), alpha.Count)
	}
	total := len(inputs)
	for _, s := range inputs {
		total += len(s)
	}
	st := &Stream{
		Symbols:  make([]rune, 0, total),
		Ends:     make([]int, 0, len(inputs)),
		alphabet: alpha,
	}
	for k, s := range inputs {
		// 非法字节会被解码为 U+FFFD，不同字节将变成同一符号
		if !utf8.ValidString(s) {
			return nil, fmt.Errorf("%w: string %d is not valid UTF-8", contract.ErrInvalidInput, k)
		}
		for off, r := range s {
			if alpha.Contains(r) {
				return nil, fmt.Errorf("%w: string %d contains reserved symbol %U at byte %d", contract.ErrInvalidInput, k, r, off)
			}
			st.Symbols = append(st.Symbols, r)
		}
		st.Ends = append(st.Ends, len(st.Symbols))
		st.Symbols = append(st.Symbols, alpha.Terminator(k))
	}
	return st, nil
}

// Raw 构造无终止符的单串流（开放边构树，仅用于诊断）。
func Raw(text string) *Stream {
	return &Stream{Symbols: []rune(text), alphabet: DefaultAlphabet()}
}

// Len 返回符号流长度 N。
func (s *Stream) Len() int { return len(s.Symbols) }

// Count 返回源串数量；Raw 流为 1。
func (s *Stream) Count() int {
	if len(s.Ends) == 0 {
		return 1
	}
	return len(s.Ends)
}

// Terminated 报告流是否带终止符。
func (s *Stream) Terminated() bool { return len(s.Ends) > 0 }

// Alphabet 返回构造时使用的终止符字母表。
func (s *Stream) Alphabet() Alphabet { return s.alphabet }

// IsTerminator 判断符号是否为本流的终止符。
func (s *Stream) IsTerminator(r rune) bool {
	if !s.Terminated() {
		return false
	}
	return r >= s.alphabet.Base && int(r-s.alphabet.Base) < len(s.Ends)
}

// Owner 返回位置 pos 所属的源串序号：第一个 >= pos 的终止符位置对应的串。
func (s *Stream) Owner(pos int) int {
	if !s.Terminated() {
		return 0
	}
	k := sort.SearchInts(s.Ends, pos)
	if k == len(s.Ends) {
		// 越界位置归入最后一个串
		return len(s.Ends) - 1
	}
	return k
}

// Start 返回第 k 个串在流中的起始下标。
func (s *Stream) Start(k int) int {
	if k == 0 {
		return 0
	}
	return s.Ends[k-1] + 1
}

// End 返回第 k 个串终止符的下标；Raw 流返回 Len()。
func (s *Stream) End(k int) int {
	if !s.Terminated() {
		return s.Len()
	}
	return s.Ends[k]
}

// Source 还原第 k 个输入串。
func (s *Stream) Source(k int) string {
	return string(s.Symbols[s.Start(k):s.End(k)])
}

// Text 返回闭区间 [from, to] 的内容，终止符被剔除。
func (s *Stream) Text(from, to int) string {
	if from > to || from < 0 {
		return ""
	}
	var b strings.Builder
	for _, r := range s.Symbols[from : to+1] {
		if s.IsTerminator(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Render 返回闭区间 [from, to] 的可读形式，终止符写作 $k（诊断用）。
func (s *Stream) Render(from, to int) string {
	if from > to || from < 0 {
		return ""
	}
	var b strings.Builder
	for _, r := range s.Symbols[from : to+1] {
		if s.IsTerminator(r) {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(int(r - s.alphabet.Base)))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
