package contract

// StringID: 输入串在生成式后缀树中的序号（0..k-1，按输入顺序）。
type StringID int

// Query: 一次公共子串查询。
// IDs 为空表示覆盖全部已索引的串；否则结果须同时出现在 IDs 中每个串里。
type Query struct {
	Name string
	IDs  []StringID
}

// Result: 查询结果。Text 为空表示不存在长度 >=1 的公共子串。
type Result struct {
	Name string
	IDs  []StringID
	Text string
}

// Len 返回结果的符号数（按 rune 计）。
func (r Result) Len() int { return len([]rune(r.Text)) }
