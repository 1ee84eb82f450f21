package main

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// ============================================================================
// 调试日志系统
// ============================================================================

// maxDebugLogs 调试面板最多保留的日志条数
const maxDebugLogs = 500

// debugLog 调试模式下收集的日志，供界面底部的调试面板显示
type debugLog struct {
	mu        sync.Mutex
	lines     []string
	scrollPos int // 0 表示停在最新
}

// globalDebugLog 调试模式关闭时为 nil
var globalDebugLog *debugLog

func newDebugLog() *debugLog {
	return &debugLog{}
}

// add 添加调试日志
func (d *debugLog) add(level LogLevel, msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	timestamp := time.Now().Format("15:04:05")
	d.lines = append(d.lines, fmt.Sprintf("[%s][%s] %s", timestamp, levelName(level), msg))
	if len(d.lines) > maxDebugLogs {
		d.lines = d.lines[len(d.lines)-maxDebugLogs:]
	}

	// 用户在查看历史日志时，保持当前查看的内容不错位
	if d.scrollPos > 0 && d.scrollPos < len(d.lines)-1 {
		d.scrollPos++
	}
}

func levelName(level LogLevel) string {
	switch level {
	case LogDebug:
		return "DEBUG"
	case LogWarn:
		return "WARN"
	case LogError:
		return "ERROR"
	}
	return "INFO"
}

// scrollUp 向上滚动调试日志
func (d *debugLog) scrollUp() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.scrollPos < len(d.lines)-1 {
		d.scrollPos++
	}
}

// scrollDown 向下滚动调试日志
func (d *debugLog) scrollDown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.scrollPos > 0 {
		d.scrollPos--
	}
}

// ============================================================================
// 调试面板渲染
// ============================================================================

// render 渲染最近 maxLines 条（按滚动位置）
func (d *debugLog) render(maxLines int) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.lines) == 0 {
		return "🔧 Debug Mode: ON"
	}

	end := len(d.lines) - d.scrollPos
	start := end - maxLines
	if start < 0 {
		start = 0
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("-", 60) + "\n")
	fmt.Fprintf(&b, "🔧 Debug (%d/%d) [PgUp/PgDn]\n", end, len(d.lines))
	for i := start; i < end; i++ {
		b.WriteString(d.lines[i] + "\n")
	}
	b.WriteString(strings.Repeat("-", 60))
	return b.String()
}
