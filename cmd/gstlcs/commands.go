package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"gstlcs/internal/bench"
	cfgpkg "gstlcs/internal/config"
	"gstlcs/internal/diag"
	"gstlcs/internal/query"
	"gstlcs/internal/stree"
	"gstlcs/pkg/contract"
	"gstlcs/pkg/symbol"
)

func (a *app) lcsCmd() *cobra.Command {
	var (
		file    string
		subsets []string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "lcs [strings...]",
		Short: "求全部输入（或 --subset 指定子集）的最长公共子串",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cfgpkg.Config{}); err != nil {
				return err
			}
			inputs := append([]string(nil), args...)
			if file != "" {
				more, err := a.readLines(file)
				if err != nil {
					return err
				}
				inputs = append(inputs, more...)
			}
			queries := []contract.Query{{Name: "all"}}
			if len(subsets) > 0 {
				queries = queries[:0]
				for _, s := range subsets {
					ids, err := parseIDs(s)
					if err != nil {
						return err
					}
					queries = append(queries, contract.Query{Name: s, IDs: ids})
				}
			}
			timer := a.logger.StartWithKV("cli", "lcs", map[string]string{"strings": strconv.Itoa(len(inputs))})
			alpha := a.asm.Alphabet
			x, err := query.Build(cmd.Context(), inputs, &alpha, a.logger)
			if err != nil {
				return err
			}
			res, err := query.Run(cmd.Context(), x, queries, a.asm.Query, a.logger)
			if err != nil {
				return err
			}
			timer.Finish("lcs", int64(len(res)))
			return a.printResults(res, asJSON, len(subsets) > 0)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "从文件读取输入，每行一个串；- 表示 STDIN（空行忽略）")
	cmd.Flags().StringArrayVar(&subsets, "subset", nil, "子集查询，如 0,2；可重复")
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出结果")
	return cmd
}

type resultJSON struct {
	Name string `json:"name"`
	IDs  []int  `json:"ids,omitempty"`
	Text string `json:"text"`
	Len  int    `json:"len"`
}

func (a *app) printResults(res []contract.Result, asJSON, named bool) error {
	if asJSON {
		out := make([]resultJSON, len(res))
		for i, r := range res {
			out[i] = resultJSON{Name: r.Name, Text: r.Text, Len: r.Len()}
			for _, id := range r.IDs {
				out[i].IDs = append(out[i].IDs, int(id))
			}
		}
		enc := json.NewEncoder(a.stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for _, r := range res {
		var err error
		if named {
			_, err = fmt.Fprintf(a.stdout, "%s\t%s\n", r.Name, r.Text)
		} else {
			_, err = fmt.Fprintln(a.stdout, r.Text)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *app) lcs2Cmd() *cobra.Command {
	var solver string
	cmd := &cobra.Command{
		Use:   "lcs2 <a> <b>",
		Short: "求两个串的最长公共子串",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cfgpkg.Config{Solver: solver}); err != nil {
				return err
			}
			timer := a.logger.StartWithKV("cli", "lcs2", map[string]string{"solver": a.cfg.Solver})
			got, err := a.asm.Pair.LCS2(args[0], args[1])
			if err != nil {
				return err
			}
			timer.Finish("lcs2", int64(len([]rune(got))))
			diag.IncOp("cli", "lcs2", "success")
			_, err = fmt.Fprintln(a.stdout, got)
			return err
		},
	}
	cmd.Flags().StringVar(&solver, "solver", "", "求解器 gst|dp（覆盖配置）")
	return cmd
}

func (a *app) dumpCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "dump <strings...>",
		Short: "输出后缀树结构（诊断用）",
		Args:  wrapArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cfgpkg.Config{}); err != nil {
				return err
			}
			if raw {
				if len(args) != 1 {
					return &exitError{code: exitInput, err: fmt.Errorf("%w: --raw takes exactly one string", contract.ErrInvalidInput)}
				}
				t, err := stree.Construct(symbol.Raw(args[0]))
				if err != nil {
					return err
				}
				_, err = io.WriteString(a.stdout, t.String())
				return err
			}
			alpha := a.asm.Alphabet
			x, err := query.Build(cmd.Context(), args, &alpha, a.logger)
			if err != nil {
				return err
			}
			_, err = io.WriteString(a.stdout, x.Dump())
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "不追加终止符（单串，叶边在构造后绑定到串尾）")
	return cmd
}

func (a *app) benchCmd() *cobra.Command {
	var (
		rounds int
		seed   uint64
		multi  bool
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "随机串对拍：比较各求解器结果长度并计时",
		Args:  wrapArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			over := cfgpkg.Config{Bench: cfgpkg.Bench{Rounds: rounds, Seed: seed, Multi: multi}}
			if err := a.setup(over); err != nil {
				return err
			}
			set := a.asm.Bench
			set.Term = diag.NewTerminal(a.stderr, a.status)
			rep, err := bench.Run(cmd.Context(), set, a.asm.BenchSolvers, a.logger)
			if perr := a.printReport(rep); perr != nil && err == nil {
				err = perr
			}
			return err
		},
	}
	cmd.Flags().IntVar(&rounds, "rounds", 0, "轮数（覆盖配置）")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "随机种子（覆盖配置；0 表示按时间）")
	cmd.Flags().BoolVar(&multi, "multi", false, "每轮额外运行 k 路后缀树求解")
	return cmd
}

func (a *app) printReport(rep bench.Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "seed=%d rounds=%d mismatches=%d\n", rep.Seed, len(rep.Rounds), rep.Mismatches)
	for i, name := range rep.Solvers {
		avg := time.Duration(0)
		if n := len(rep.Rounds); n > 0 {
			avg = rep.Totals[i] / time.Duration(n)
		}
		fmt.Fprintf(&b, "%s\ttotal=%s\tavg=%s\n", name, rep.Totals[i].Round(time.Microsecond), avg.Round(time.Microsecond))
	}
	_, err := io.WriteString(a.stdout, b.String())
	return err
}

func (a *app) initConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [dir]",
		Short: "在目录生成默认 gstlcs.yaml 与 .env 模板（已存在则不覆盖）；- 表示输出到 stdout",
		Args:  wrapArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				dir = strings.TrimSpace(args[0])
			}
			cfg := cfgpkg.DefaultTemplateConfig()
			if dir == "-" {
				return writeConfig(a.stdout, "-", cfg)
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return &exitError{code: exitConfig, err: err}
			}
			if err := writeConfig(a.stdout, filepath.Join(dir, "gstlcs.yaml"), cfg); err != nil {
				return &exitError{code: exitConfig, err: err}
			}
			// .env 生成失败不影响结果
			if err := writeDotEnv(filepath.Join(dir, ".env")); err != nil {
				fmt.Fprintf(a.stderr, "提示：.env 生成失败（已跳过）：%v\n", err)
			}
			return nil
		},
	}
}

// readLines 读取每行一个串；去掉行尾 \r，空行忽略。
func (a *app) readLines(path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = a.stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, &exitError{code: exitInput, err: err}
		}
		defer f.Close()
		r = f
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)
	var out []string
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, &exitError{code: exitInput, err: err}
	}
	return out, nil
}

// parseIDs 解析形如 "0,2,3" 的子集描述。
func parseIDs(s string) ([]contract.StringID, error) {
	var ids []contract.StringID
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: subset %q: %v", contract.ErrInvalidInput, s, err)
		}
		ids = append(ids, contract.StringID(v))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: empty subset %q", contract.ErrInvalidInput, s)
	}
	return ids, nil
}

// writeConfig 以 YAML 写出配置；path 为 - 时写到 w。已存在的文件不覆盖。
func writeConfig(w io.Writer, path string, c cfgpkg.Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = w.Write(b)
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(b)
	return err
}
