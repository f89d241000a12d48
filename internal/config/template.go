package config

// DefaultTemplateConfig 返回一个可直接运行的默认配置模板：
// 取 Defaults 的全部取值，并显式列出每个键，便于手工修改。
func DefaultTemplateConfig() Config {
	d := Defaults()
	cfg := d
	cfg.Concurrency = 4
	cfg.Bench.Solvers = cloneStrings(d.Bench.Solvers)
	cfg.Bench.Seed = 1
	return cfg
}
