package query

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstlcs/internal/diag"
	"gstlcs/pkg/contract"
	"gstlcs/pkg/symbol"
)

var corpus = []string{"xabcdefy", "zzabcdq", "qqcdefzz", "abcdef"}

// 结果按输入顺序返回，与并发度无关
func TestRunOrdered(t *testing.T) {
	x, err := Build(context.Background(), corpus, nil, nil)
	require.NoError(t, err)
	queries := []contract.Query{
		{Name: "all"},
		{Name: "01", IDs: []contract.StringID{0, 1}},
		{Name: "02", IDs: []contract.StringID{0, 2}},
		{Name: "03", IDs: []contract.StringID{0, 3}},
		{Name: "2", IDs: []contract.StringID{2}},
	}
	want := []string{"cd", "abcd", "cdef", "abcdef", "qqcdefzz"}
	for _, c := range []int{0, 1, 3, 16} {
		res, err := Run(context.Background(), x, queries, Settings{Concurrency: c}, nil)
		require.NoError(t, err)
		require.Len(t, res, len(queries))
		for i, r := range res {
			assert.Equal(t, queries[i].Name, r.Name)
			assert.Equal(t, want[i], r.Text, "query %s", r.Name)
		}
	}
}

// 整批完成后写出一条 finish 事件，count 为查询数
func TestRunBatchEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := diag.NewWriterLogger("t", "info", &buf)
	x, err := Build(context.Background(), corpus, nil, logger)
	require.NoError(t, err)
	buf.Reset()
	queries := []contract.Query{{Name: "all"}, {Name: "01", IDs: []contract.StringID{0, 1}}}
	_, err = Run(context.Background(), x, queries, Settings{Concurrency: 2}, logger)
	require.NoError(t, err)
	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "\n"), out)
	assert.Contains(t, out, `"msg":"batch"`)
	assert.Contains(t, out, `"comp":"query"`)
	assert.Contains(t, out, `"stage":"finish"`)
	assert.Contains(t, out, `"count":2`)
}

// 越界查询返回 ErrInvalidInput，并写出 error 事件
func TestRunError(t *testing.T) {
	var buf bytes.Buffer
	logger := diag.NewWriterLogger("t", "info", &buf)
	x, err := Build(context.Background(), corpus, nil, logger)
	require.NoError(t, err)
	queries := []contract.Query{
		{Name: "ok", IDs: []contract.StringID{0, 1}},
		{Name: "bad", IDs: []contract.StringID{0, 9}},
	}
	_, err = Run(context.Background(), x, queries, Settings{Concurrency: 2}, logger)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrInvalidInput))
	assert.Contains(t, err.Error(), `"bad"`)
	assert.Contains(t, buf.String(), `"code":"invalid_input"`)
	assert.Contains(t, buf.String(), `"comp":"stree"`)

	_, err = Run(context.Background(), nil, queries, Settings{}, nil)
	assert.True(t, errors.Is(err, contract.ErrInvalidInput))
}

// 已取消的上下文不执行查询
func TestRunCanceled(t *testing.T) {
	x, err := Build(context.Background(), corpus, nil, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, x, []contract.Query{{Name: "all"}}, Settings{Concurrency: 1}, nil)
	assert.True(t, errors.Is(err, context.Canceled))

	_, err = Build(ctx, corpus, nil, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

// 构造失败：字母表容量不足
func TestBuildError(t *testing.T) {
	var buf bytes.Buffer
	logger := diag.NewWriterLogger("t", "info", &buf)
	alpha := symbol.Alphabet{Base: '0', Count: 2}
	_, err := Build(context.Background(), corpus, &alpha, logger)
	assert.True(t, errors.Is(err, contract.ErrInvalidInput))
	assert.True(t, strings.Contains(buf.String(), "construct failed"))
}

func TestFormatIDs(t *testing.T) {
	assert.Equal(t, "all", formatIDs(nil))
	assert.Equal(t, "0,2", formatIDs([]contract.StringID{0, 2}))
}

// 重复子集共享一次计算，结果与单独查询一致
func TestRunDuplicateSubsets(t *testing.T) {
	x, err := Build(context.Background(), corpus, nil, nil)
	require.NoError(t, err)
	var queries []contract.Query
	for i := 0; i < 20; i++ {
		queries = append(queries, contract.Query{Name: "a", IDs: []contract.StringID{0, 1}})
		queries = append(queries, contract.Query{Name: "b", IDs: []contract.StringID{1, 0, 1}})
	}
	res, err := Run(context.Background(), x, queries, Settings{Concurrency: 8}, nil)
	require.NoError(t, err)
	for _, r := range res {
		assert.Equal(t, "abcd", r.Text, r.Name)
	}
	assert.Equal(t, []int{0, 1}, normalize([]contract.StringID{1, 0, 1}))
}
