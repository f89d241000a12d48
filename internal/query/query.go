// Package query 在一棵共享的生成式后缀树上并发执行多组公共子串查询。
package query

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"gstlcs/internal/diag"
	"gstlcs/pkg/contract"
	"gstlcs/pkg/lcs"
	"gstlcs/pkg/symbol"
)

// Settings: 执行参数。
type Settings struct {
	Concurrency int // 同时进行的查询数；<1 视为 1
}

// Build 构造索引并记录 stree 组件的起止事件与指标。
func Build(ctx context.Context, inputs []string, alpha *symbol.Alphabet, logger *diag.Logger) (*lcs.Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var opts []symbol.Option
	if alpha != nil {
		opts = append(opts, symbol.WithAlphabet(*alpha))
	}
	start := time.Now()
	timer := logger.StartWithKV("stree", "construct", map[string]string{"strings": strconv.Itoa(len(inputs))})
	diag.IncOp("stree", "start", "success")
	x, err := lcs.New(inputs, opts...)
	if err != nil {
		fail(logger, "stree", "construct failed", start, nil, err)
		return nil, err
	}
	timer.Finish("construct", int64(x.Tree().NodeCount()))
	diag.IncOp("stree", "finish", "success")
	diag.ObserveDuration("stree", "construct", time.Since(start).Milliseconds())
	return x, nil
}

// Run 并发执行 queries，结果按输入顺序返回。
// 同一批次中子集相同的查询只计算一次。
// 任一查询失败即取消其余查询，返回首个错误。
func Run(ctx context.Context, x *lcs.Index, queries []contract.Query, set Settings, logger *diag.Logger) ([]contract.Result, error) {
	if x == nil {
		return nil, fmt.Errorf("%w: nil index", contract.ErrInvalidInput)
	}
	n := set.Concurrency
	if n < 1 {
		n = 1
	}
	batchStart := time.Now()
	out := make([]contract.Result, len(queries))
	var sf singleflight.Group
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n)
	for i, q := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			kv := map[string]string{"query": q.Name, "ids": formatIDs(q.IDs)}
			logger.DebugStart("query", "common", kv)
			start := time.Now()
			ids := normalize(q.IDs)
			v, err, shared := sf.Do(fmt.Sprint(ids), func() (any, error) {
				return x.Common(ids...)
			})
			if shared {
				diag.IncOp("query", "common", "shared")
			}
			if err != nil {
				fail(logger, "query", "common failed", start, kv, err)
				return fmt.Errorf("query %q: %w", q.Name, err)
			}
			diag.IncOp("query", "finish", "success")
			diag.ObserveDuration("query", "common", time.Since(start).Milliseconds())
			out[i] = contract.Result{Name: q.Name, IDs: q.IDs, Text: v.(string)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.InfoFinish("query", "batch", batchStart, int64(len(queries)))
	return out, nil
}

func fail(logger *diag.Logger, comp, msg string, start time.Time, kv map[string]string, err error) {
	code := diag.Classify(err)
	logger.ErrorWithKV(comp, string(code), msg, &start, kv)
	diag.IncOp(comp, "error", "error")
	if code != diag.CodeUnknown {
		diag.IncError(comp, string(code))
	}
}

// normalize 升序去重。
func normalize(ids []contract.StringID) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		out = append(out, int(id))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func formatIDs(ids []contract.StringID) string {
	if len(ids) == 0 {
		return "all"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, ",")
}
