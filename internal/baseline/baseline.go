// Package baseline 提供平方复杂度的动态规划最长公共子串，
// 仅用于对拍与计时对比，与后缀树实现不共享任何状态。
package baseline

import (
	"fmt"
	"unicode/utf8"

	"gstlcs/pkg/contract"
)

// LCS 返回 a 与 b 的最长公共子串（按 rune 比较）。
// 多个等长答案时取在 a 中结束位置最靠前者。
func LCS(a, b string) string {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return ""
	}
	// 滚动两行：cur[j+1] 为以 ra[i]、rb[j] 结尾的公共后缀长度
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	best, bestEnd := 0, 0
	for i := range ra {
		for j := range rb {
			if ra[i] == rb[j] {
				cur[j+1] = prev[j] + 1
				if cur[j+1] > best {
					best, bestEnd = cur[j+1], i+1
				}
			} else {
				cur[j+1] = 0
			}
		}
		prev, cur = cur, prev
	}
	return string(ra[bestEnd-best : bestEnd])
}

// Solver 以 contract.PairSolver 形式暴露基线实现。
type Solver struct{}

// LCS2 实现 contract.PairSolver。非法 UTF-8 输入返回 ErrInvalidInput，与后缀树求解器一致。
func (Solver) LCS2(a, b string) (string, error) {
	for k, s := range []string{a, b} {
		if !utf8.ValidString(s) {
			return "", fmt.Errorf("%w: string %d is not valid UTF-8", contract.ErrInvalidInput, k)
		}
	}
	return LCS(a, b), nil
}
