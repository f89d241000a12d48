package contract

// PairSolver: 两串最长公共子串求解器。
// 约束：
// 1) 同步、无内部并发；
// 2) 结果必须是两个输入的公共连续子串（可为空）；
// 3) 同一输入多次调用结果一致。
type PairSolver interface {
	LCS2(a, b string) (string, error)
}

// MultiSolver: 多串（k 路）最长公共子串求解器。
type MultiSolver interface {
	LCS(strings []string) (string, error)
}
