package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstlcs/pkg/contract"
)

// runCLI 在临时工作目录中执行一次 CLI。
func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errb bytes.Buffer
	code := run(args, strings.NewReader(stdin), &out, &errb)
	return code, out.String(), errb.String()
}

func TestRunLCS(t *testing.T) {
	t.Chdir(t.TempDir())
	code, out, errOut := runCLI(t, "", "lcs", "abcdfds", "bfdbcdfew", "bcdrgde")
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, "bcd\n", out)

	// 日志落盘
	b, err := os.ReadFile(filepath.Join("logs", "gstlcs.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"comp":"stree"`)
}

func TestRunLCSSubsetJSON(t *testing.T) {
	t.Chdir(t.TempDir())
	code, out, errOut := runCLI(t, "", "lcs", "--json", "--subset", "0,1", "--subset", "1,2", "--concurrency", "2",
		"abcdfds", "bfdbcdfew", "bcdrgde")
	require.Equal(t, exitOK, code, errOut)
	var res []resultJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res, 2)
	assert.Equal(t, resultJSON{Name: "0,1", IDs: []int{0, 1}, Text: "bcdf", Len: 4}, res[0])
	assert.Equal(t, resultJSON{Name: "1,2", IDs: []int{1, 2}, Text: "bcd", Len: 3}, res[1])

	code, out, _ = runCLI(t, "", "lcs", "--subset", "0,1", "abcdfds", "bfdbcdfew")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "0,1\tbcdf\n", out)
}

func TestRunLCSFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("in.txt", []byte("数据结构与算法\r\n\n算法与数据结构\n"), 0o644))
	code, out, errOut := runCLI(t, "", "lcs", "--file", "in.txt")
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, "数据结构\n", out)

	code, out, _ = runCLI(t, "xabcy\nzabcz\n", "lcs", "--file", "-")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "abc\n", out)

	code, _, _ = runCLI(t, "", "lcs", "--file", "missing.txt")
	assert.Equal(t, exitInput, code)
}

func TestRunLCS2(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, solver := range []string{"gst", "dp"} {
		code, out, errOut := runCLI(t, "", "lcs2", "--solver", solver, "abcdfds", "bfdbcdfew")
		require.Equal(t, exitOK, code, errOut)
		assert.Equal(t, "bcdf\n", out, solver)
	}
	code, _, _ := runCLI(t, "", "lcs2", "only-one")
	assert.Equal(t, exitInput, code)
	code, _, _ = runCLI(t, "", "lcs2", "--solver", "nope", "a", "b")
	assert.Equal(t, exitConfig, code)
	code, _, _ = runCLI(t, "", "lcs2", "--bogus", "a", "b")
	assert.Equal(t, exitInput, code)
}

func TestRunInputErrors(t *testing.T) {
	t.Chdir(t.TempDir())
	code, _, errOut := runCLI(t, "", "lcs")
	assert.Equal(t, exitInput, code)
	assert.Contains(t, errOut, "错误")

	code, _, _ = runCLI(t, "", "lcs", "", "")
	assert.Equal(t, exitInput, code)

	// 输入含保留的终止符
	code, _, _ = runCLI(t, "", "lcs", "a\ue000", "a")
	assert.Equal(t, exitInput, code)

	// 非法 UTF-8 字节
	code, out, errOut := runCLI(t, "", "lcs2", "x\xffy", "z\xfew")
	assert.Equal(t, exitInput, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "UTF-8")
	code, _, _ = runCLI(t, "", "lcs2", "--solver", "dp", "x\xffy", "z\xfew")
	assert.Equal(t, exitInput, code)

	code, _, _ = runCLI(t, "", "lcs", "--subset", "0,x", "a", "b")
	assert.Equal(t, exitInput, code)

	code, _, _ = runCLI(t, "", "lcs", "--subset", "0,5", "a", "b")
	assert.Equal(t, exitInput, code)
}

func TestRunDump(t *testing.T) {
	t.Chdir(t.TempDir())
	code, out, errOut := runCLI(t, "", "dump", "ab", "b")
	require.Equal(t, exitOK, code, errOut)
	first := strings.SplitN(out, "\n", 2)[0]
	assert.True(t, strings.HasSuffix(first, " ----> ⊥"), first)
	assert.Contains(t, out, "(root)")

	code, out, _ = runCLI(t, "", "dump", "--raw", "abcab")
	require.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(out, "abcab ----> ⊥"), out)

	code, _, _ = runCLI(t, "", "dump", "--raw", "a", "b")
	assert.Equal(t, exitInput, code)
	code, _, _ = runCLI(t, "", "dump")
	assert.Equal(t, exitInput, code)
}

func TestRunBench(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GSTLCS_BENCH_MIN_LEN", "20")
	t.Setenv("GSTLCS_BENCH_MAX_LEN", "40")
	t.Setenv("GSTLCS_BENCH_MIN_COMMON", "3")
	t.Setenv("GSTLCS_BENCH_MAX_COMMON", "6")
	code, out, errOut := runCLI(t, "", "bench", "--rounds", "3", "--seed", "11", "--multi", "--metrics", "-")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "seed=11 rounds=3 mismatches=0")
	assert.Contains(t, out, "gst\ttotal=")
	assert.Contains(t, out, "dp\ttotal=")
	assert.Contains(t, out, "gstlcs_op_total")
	assert.Contains(t, errOut, "[ok] 全部完成")

	code, _, errOut = runCLI(t, "", "bench", "--rounds", "1", "--status=false")
	require.Equal(t, exitOK, code, errOut)
	assert.NotContains(t, errOut, "全部完成")
}

func TestRunConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("gstlcs.yaml", []byte("solver: dp\n"), 0o644))
	code, out, _ := runCLI(t, "", "lcs2", "ABAB", "BABA")
	require.Equal(t, exitOK, code)
	// dp 取在 a 中最早结束者
	assert.Equal(t, "ABA\n", out)

	require.NoError(t, os.WriteFile("bad.yaml", []byte("nope: 1\n"), 0o644))
	code, _, errOut := runCLI(t, "", "--config", "bad.yaml", "lcs", "a")
	assert.Equal(t, exitConfig, code)
	assert.Contains(t, errOut, "配置解析失败")

	t.Setenv("GSTLCS_CONFIG_FILE", "missing.yaml")
	code, _, _ = runCLI(t, "", "lcs", "a")
	assert.Equal(t, exitConfig, code)
}

func TestRunInitConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	code, _, errOut := runCLI(t, "", "init-config", "out")
	require.Equal(t, exitOK, code, errOut)
	b, err := os.ReadFile(filepath.Join("out", "gstlcs.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "terminators:")
	env, err := os.ReadFile(filepath.Join("out", ".env"))
	require.NoError(t, err)
	assert.Contains(t, string(env), "GSTLCS_BENCH_SEED=")

	// 不覆盖
	code, _, _ = runCLI(t, "", "init-config", "out")
	assert.Equal(t, exitConfig, code)

	code, out, _ := runCLI(t, "", "init-config", "-")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "bench:")

	// 生成的配置可被直接使用
	code, out, errOut = runCLI(t, "", "--config", filepath.Join("out", "gstlcs.yaml"), "lcs", "xabc", "abcx")
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, "abc\n", out)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".env")
	content := "# c\nexport GSTLCS_T_A=1\nGSTLCS_T_B=\"x\\ty\"\nGSTLCS_T_C='raw\\n'\nGSTLCS_T_D=keep\nnoeq\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	t.Setenv("GSTLCS_T_D", "orig")
	for _, k := range []string{"GSTLCS_T_A", "GSTLCS_T_B", "GSTLCS_T_C"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	require.NoError(t, loadDotEnv(p))
	assert.Equal(t, "1", os.Getenv("GSTLCS_T_A"))
	assert.Equal(t, "x\ty", os.Getenv("GSTLCS_T_B"))
	assert.Equal(t, `raw\n`, os.Getenv("GSTLCS_T_C"))
	assert.Equal(t, "orig", os.Getenv("GSTLCS_T_D"))
	assert.NoError(t, loadDotEnv(filepath.Join(dir, "missing")))
}

func TestParseIDsExitCode(t *testing.T) {
	ids, err := parseIDs(" 0, 2 ,")
	require.NoError(t, err)
	assert.Equal(t, []contract.StringID{0, 2}, ids)
	_, err = parseIDs(",")
	assert.True(t, errors.Is(err, contract.ErrInvalidInput))

	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitInput, exitCode(contract.ErrMalformedInput))
	assert.Equal(t, exitRuntime, exitCode(contract.ErrInvariantViolation))
	assert.Equal(t, exitConfig, exitCode(&exitError{code: exitConfig, err: errors.New("x")}))
}
