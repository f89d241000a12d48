package diag

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Terminal: 基准运行的终端提示（非日志）。
// - 输出到提供的 io.Writer（默认建议 stderr）。
// - TTY: 单行 \r 覆盖进度；非 TTY: 关键节点分行打印。
// - 并发安全；写失败后进入禁用态为 no-op。
type Terminal struct {
	w       io.Writer
	enabled bool
	isTTY   bool

	rounds     int
	solvers    string
	roundsDone int
	mismatches int
	runStart   time.Time

	lastLen   int
	lastFlush time.Time

	mu sync.Mutex
}

// NewTerminal 构造终端提示器。enabled=false 时总是 no-op。
func NewTerminal(w io.Writer, enabled bool) *Terminal {
	if w == nil {
		w = os.Stderr
	}
	t := &Terminal{w: w, enabled: enabled}
	// CI 环境视为非 TTY
	if os.Getenv("CI") != "" {
		t.isTTY = false
	} else if f, ok := w.(*os.File); ok {
		t.isTTY = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return t
}

// RunStart 记录运行上下文（轮数、参与对比的求解器）。
func (t *Terminal) RunStart(rounds int, solvers []string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.rounds = rounds
	t.solvers = safe(strings.Join(solvers, ","))
	t.roundsDone = 0
	t.mismatches = 0
	t.runStart = time.Now()
	t.println(fmt.Sprintf("[run] rounds=%d | solvers=%s", rounds, t.solvers))
}

// RoundFinish 完成一轮：TTY 下节流刷新单行进度，非 TTY 打点一行。
func (t *Terminal) RoundFinish(round int, agree bool, detail string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.roundsDone++
	if !agree {
		t.mismatches++
	}
	if !t.isTTY {
		tag := "round"
		if !agree {
			tag = "mismatch"
		}
		t.println(fmt.Sprintf("[%s] %d/%d | %s", tag, round+1, t.rounds, safe(detail)))
		return
	}
	now := time.Now()
	if agree && now.Sub(t.lastFlush) < 100*time.Millisecond && t.roundsDone < t.rounds {
		return
	}
	t.lastFlush = now
	t.printInline(fmt.Sprintf("[round] %d/%d | 不一致 %d | 用时 %s | %s",
		t.roundsDone, t.rounds, t.mismatches, formatDur(time.Since(t.runStart)), safe(detail)))
}

// RunFinish 结束总览。
func (t *Terminal) RunFinish(ok bool, dur time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	if t.isTTY && t.lastLen > 0 {
		t.printInline("")
	}
	tag := "ok"
	if !ok {
		tag = "fail"
	}
	t.println(fmt.Sprintf("[%s] 全部完成 | 轮次 %d | 不一致 %d | 总用时 %s", tag, t.roundsDone, t.mismatches, formatDur(dur)))
}

func (t *Terminal) println(s string) {
	if t == nil || !t.enabled {
		return
	}
	// TTY 下先回到行首，覆盖已清空的进度行
	if t.isTTY {
		s = "\r" + s
	}
	if _, err := io.WriteString(t.w, s+"\n"); err != nil {
		// 写失败即禁用
		t.enabled = false
	}
	t.lastLen = 0
}

func (t *Terminal) printInline(s string) {
	if t == nil || !t.enabled {
		return
	}
	// 清尾：若新行比旧短，填充空格覆盖
	pad := 0
	if l := visLen(s); t.lastLen > l {
		pad = t.lastLen - l
	}
	var b strings.Builder
	b.WriteByte('\r')
	b.WriteString(s)
	if pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	if _, err := io.WriteString(t.w, b.String()); err != nil {
		t.enabled = false
		return
	}
	t.lastLen = visLen(s)
}

func visLen(s string) int { return len([]rune(s)) }

func safe(s string) string {
	// 避免换行等控制字符污染终端
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

func formatDur(d time.Duration) string {
	if d < time.Second {
		ms := d.Milliseconds()
		if ms <= 0 {
			ms = 0
		}
		return fmt.Sprintf("%dms", ms)
	}
	// 秒，保留 1 位小数
	s := float64(d.Milliseconds()) / 1000.0
	return fmt.Sprintf("%.1fs", s)
}
