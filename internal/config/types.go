package config

// Config: 运行期只读配置（一次解析，运行期不变）。
// 文件为 YAML（JSON 亦可），键名 snake_case；未知字段在解析期失败。
type Config struct {
	Concurrency int `yaml:"concurrency" json:"concurrency"`
	// Solver: lcs2 默认使用的两串求解器名（registry.Pair）。
	Solver      string      `yaml:"solver" json:"solver"`
	Logging     Logging     `yaml:"logging" json:"logging"`
	Terminators Terminators `yaml:"terminators" json:"terminators"`
	Bench       Bench       `yaml:"bench" json:"bench"`
}

// Logging: 日志等级与文件轮转。
type Logging struct {
	Level      string `yaml:"level" json:"level"`
	Dir        string `yaml:"dir" json:"dir"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
}

// Terminators: 终止符保留区间 [base, base+count)。
type Terminators struct {
	Base  int `yaml:"base" json:"base"`
	Count int `yaml:"count" json:"count"`
}

// Bench: 随机对拍参数。长度区间为闭区间。
type Bench struct {
	Rounds    int      `yaml:"rounds" json:"rounds"`
	MinLen    int      `yaml:"min_len" json:"min_len"`
	MaxLen    int      `yaml:"max_len" json:"max_len"`
	MinCommon int      `yaml:"min_common" json:"min_common"`
	MaxCommon int      `yaml:"max_common" json:"max_common"`
	Strings   int      `yaml:"strings" json:"strings"`
	Seed      uint64   `yaml:"seed" json:"seed"`
	Solvers   []string `yaml:"solvers" json:"solvers"`
	// Multi: 每轮额外以 k 路后缀树求解全部串。
	Multi bool `yaml:"multi" json:"multi"`
}
