package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	cfgpkg "gstlcs/internal/config"
	"gstlcs/internal/diag"
)

// 退出码：0 成功；1 运行期失败；2 输入错误；3 配置错误。
const (
	exitOK      = 0
	exitRuntime = 1
	exitInput   = 2
	exitConfig  = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// app 持有一次 CLI 调用的全部状态。
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	corrID string
	start  time.Time

	// 全局旗标
	configPath  string
	logLevel    string
	concurrency int
	status      bool
	metricsOut  string

	cfg    cfgpkg.Config
	asm    cfgpkg.Assembly
	logger *diag.Logger
}

// exitError 携带显式退出码。
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	// 在任何 ENV 读取前，尝试加载工作目录下的 .env（不覆盖已有 ENV）。
	_ = loadDotEnv(".env")
	a := &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		corrID: uuid.NewString(),
		start:  time.Now(),
	}
	root := a.rootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	code := exitCode(err)
	if err != nil {
		fmt.Fprintf(stderr, "错误: %v\n", err)
		a.logger.Error("cli", string(diag.Classify(err)), "first error", &a.start)
	}
	if err := a.writeMetrics(); err != nil && code == exitOK {
		fmt.Fprintf(stderr, "指标输出失败: %v\n", err)
		code = exitRuntime
	}
	_ = a.logger.Close()
	return code
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	switch diag.Classify(err) {
	case diag.CodeInvalid, diag.CodeMalformed:
		return exitInput
	}
	return exitRuntime
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gstlcs",
		Short:         "基于生成式后缀树的最长公共子串工具",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &exitError{code: exitInput, err: err}
	})
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "配置文件路径（YAML/JSON）；缺省读取 GSTLCS_CONFIG_FILE 或 ./gstlcs.yaml（若存在）")
	pf.StringVar(&a.logLevel, "log-level", "", "日志级别 debug|info|warn|error（覆盖配置）")
	pf.IntVar(&a.concurrency, "concurrency", 0, "查询并发度（覆盖配置）")
	pf.BoolVar(&a.status, "status", true, "终端状态提示（stderr）。TTY 动态刷新；非 TTY 打点输出")
	pf.StringVar(&a.metricsOut, "metrics", "", "结束时写出 Prometheus 文本格式指标的路径；- 表示 stdout")

	root.AddCommand(a.lcsCmd(), a.lcs2Cmd(), a.dumpCmd(), a.benchCmd(), a.initConfigCmd())
	return root
}

// setup 解析配置（Defaults → 文件 → ENV → CLI）、装配组件并打开日志。
func (a *app) setup(over cfgpkg.Config) error {
	path := a.configPath
	if path == "" {
		path = os.Getenv("GSTLCS_CONFIG_FILE")
	}
	if path == "" {
		if _, err := os.Stat("gstlcs.yaml"); err == nil {
			path = "gstlcs.yaml"
		}
	}
	cfg := cfgpkg.Defaults()
	if path != "" {
		base, err := cfgpkg.LoadFile(path, nil)
		if err != nil {
			return &exitError{code: exitConfig, err: fmt.Errorf("配置解析失败: %w", err)}
		}
		cfg = cfgpkg.Merge(cfg, base)
	}
	env, err := cfgpkg.EnvOverlay(os.Environ())
	if err != nil {
		return &exitError{code: exitConfig, err: err}
	}
	cfg = cfgpkg.Merge(cfg, env)
	over.Logging.Level = a.logLevel
	over.Concurrency = a.concurrency
	cfg = cfgpkg.Merge(cfg, over)

	asm, err := cfgpkg.Assemble(cfg)
	if err != nil {
		return &exitError{code: exitConfig, err: err}
	}
	a.cfg, a.asm = cfg, asm
	a.logger = diag.NewFileLogger(a.corrID, cfg.Logging.Level, asm.Log)
	return nil
}

func (a *app) writeMetrics() error {
	switch strings.TrimSpace(a.metricsOut) {
	case "":
		return nil
	case "-":
		return diag.WriteMetrics(a.stdout)
	}
	f, err := os.Create(a.metricsOut)
	if err != nil {
		return err
	}
	defer f.Close()
	return diag.WriteMetrics(f)
}

// exactArgs 将参数个数错误归为输入错误。
func exactArgs(n int) cobra.PositionalArgs {
	return wrapArgs(cobra.ExactArgs(n))
}

func wrapArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return &exitError{code: exitInput, err: err}
		}
		return nil
	}
}
