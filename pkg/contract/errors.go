package contract

import "errors"

// 最小错误分类（哨兵），调用方以 errors.Is 判定。
var (
	// ErrInvalidInput: 输入串含保留终止符，或终止符字母表不足以覆盖输入串数量。
	ErrInvalidInput = errors.New("invalid input")
	// ErrMalformedInput: 拼接后的符号流为空（例如全部输入为空串），无法构树。
	ErrMalformedInput = errors.New("malformed input")
	// ErrInvariantViolation: 领域不变量违例（构树缺边、基线与后缀树结果不一致等）。
	ErrInvariantViolation = errors.New("invariant violation")
)
