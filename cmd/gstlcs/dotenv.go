package main

import (
	"bufio"
	"os"
	"strings"
)

// loadDotEnv 读取简单的 .env 文件格式并注入进程环境。
// 规则：
// - 忽略不存在的文件；无法读取时返回错误（但调用处可忽略）。
// - 跳过空行与以 # 开头的行；支持可选的前缀 "export ".
// - 仅按首个 '=' 分割；key 为左侧去空白；value 去首尾空白；
// - 若 value 被成对的单/双引号包裹，则去除外层引号；双引号内常见转义 \n/\t/\\/\" 作最小处理。
// - 不覆盖已存在的环境变量（保持系统/调用者优先）。
func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		eq := strings.IndexByte(line, '=')
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := unquote(strings.TrimSpace(line[eq+1:]))
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, val)
	}
	return s.Err()
}

func unquote(val string) string {
	if len(val) < 2 {
		return val
	}
	q := val[0]
	if (q != '\'' && q != '"') || val[len(val)-1] != q {
		return val
	}
	val = val[1 : len(val)-1]
	if q == '"' {
		// 最小转义处理
		val = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\r`, "\r", `\"`, `"`, `\\`, `\`).Replace(val)
	}
	return val
}

// envKeys 为 .env 模板列出的覆盖项（与 config.EnvOverlay 一致）。
var envKeys = []struct {
	group string
	keys  []string
}{
	{"配置来源", []string{"CONFIG_FILE"}},
	{"运行参数覆盖", []string{"CONCURRENCY", "SOLVER"}},
	{"日志", []string{"LOG_LEVEL", "LOG_DIR", "LOG_MAX_SIZE_MB", "LOG_MAX_BACKUPS"}},
	{"终止符区间", []string{"TERMINATOR_BASE", "TERMINATOR_COUNT"}},
	{"对拍", []string{"BENCH_ROUNDS", "BENCH_MIN_LEN", "BENCH_MAX_LEN", "BENCH_MIN_COMMON", "BENCH_MAX_COMMON", "BENCH_STRINGS", "BENCH_SEED", "BENCH_SOLVERS", "BENCH_MULTI"}},
}

// writeDotEnv 生成 .env 模板（若文件已存在则跳过）。
// 仅创建文件；不覆盖，不合并。
func writeDotEnv(path string) error {
	var b strings.Builder
	b.WriteString("# gstlcs .env 模板（由 init-config 生成）\n")
	b.WriteString("# 优先级：CLI > ENV(.env) > 配置文件 > 默认值\n")
	b.WriteString("# 空值表示未设置。\n")
	for _, g := range envKeys {
		b.WriteString("\n# " + g.group + "\n")
		for _, k := range g.keys {
			b.WriteString("GSTLCS_" + k + "=\n")
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	_, err = f.WriteString(b.String())
	return err
}
