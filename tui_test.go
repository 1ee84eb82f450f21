package main

import (
	"context"
	"reflect"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

func quote(market Market, code string) Quote {
	return Quote{Market: market, Code: code, Price: decimal.NewFromInt(10), PrevClose: decimal.NewFromInt(10)}
}

func TestReorderQuotes(t *testing.T) {
	quotes := []Quote{quote(MarketSH, "600519"), quote(MarketSZ, "000001"), quote(MarketHK, "00700")}

	tests := []struct {
		list     Watchlist
		expected []string
		desc     string
	}{
		{
			Watchlist{entry(MarketHK, "00700"), entry(MarketSH, "600519"), entry(MarketSZ, "000001")},
			[]string{"00700", "600519", "000001"},
			"置顶后重新排序",
		},
		{
			Watchlist{entry(MarketSH, "600519"), entry(MarketHK, "00700")},
			[]string{"600519", "00700"},
			"删除的条目不再显示",
		},
		{
			Watchlist{entry(MarketSH, "000001"), entry(MarketSH, "600519")},
			[]string{"600519"},
			"市场不同的同名代码不匹配",
		},
	}

	for _, tt := range tests {
		var codes []string
		for _, q := range reorderQuotes(quotes, tt.list) {
			codes = append(codes, q.Code)
		}
		if !reflect.DeepEqual(codes, tt.expected) {
			t.Errorf("%s: reorderQuotes = %v, expected %v", tt.desc, codes, tt.expected)
		}
	}
}

func TestNextFontSize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"xs", "sm"},
		{"sm", "base"},
		{"base", "xl"},
		{"xl", "xs"},
		{"unknown", "xs"},
	}
	for _, tt := range tests {
		if got := nextFontSize(tt.input); got != tt.expected {
			t.Errorf("nextFontSize(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

// newTestModel 不启动 Poller，只验证界面状态流转
func newTestModel(t *testing.T, list Watchlist, source QuoteSource) *Model {
	t.Helper()
	config := getDefaultConfig()
	app := &App{
		Config:     config,
		ConfigPath: t.TempDir() + "/config.yml",
		Store:      &memoryStore{list: list},
	}
	app.Reconciler = NewReconciler(app.Store, source, Events{})
	return newModel(context.Background(), app)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelQuotesFollowWatchlist(t *testing.T) {
	list := Watchlist{entry(MarketSH, "600519"), entry(MarketHK, "00700")}
	m := newTestModel(t, list, newFakeSource(list...))

	// 刷新结果里包含已删除的条目时以当前列表为准
	m.Update(quotesMsg{
		quotes: []Quote{quote(MarketHK, "00700"), quote(MarketSZ, "000001"), quote(MarketSH, "600519")},
		at:     time.Now(),
	})
	if len(m.quotes) != 2 || m.quotes[0].Code != "600519" {
		t.Errorf("quotes = %v", m.quotes)
	}

	m.cursor = 1
	m.Update(mutatedMsg{list: Watchlist{entry(MarketSH, "600519")}})
	if len(m.quotes) != 1 || m.cursor != 0 {
		t.Errorf("删除后 quotes = %v, cursor = %d", m.quotes, m.cursor)
	}
}

func TestModelAddFlow(t *testing.T) {
	source := newFakeSource(entry(MarketSH, "000001"), entry(MarketSZ, "000001"))
	m := newTestModel(t, nil, source)

	m.Update(key("a"))
	if m.state != EnteringCode {
		t.Fatalf("按 a 后状态 = %v", m.state)
	}
	for _, r := range "00x0001" {
		m.Update(key(string(r)))
	}
	if m.input != "000001" {
		t.Errorf("输入 = %q, expected 只保留数字", m.input)
	}

	_, cmd := m.Update(key("enter"))
	if cmd == nil || m.state != Browsing {
		t.Fatalf("回车后应返回命令并回到浏览状态")
	}
	msg := cmd().(resolvedMsg)
	if msg.res.Action != ActionPending {
		t.Fatalf("resolve = %s, expected pending", msg.res.Action)
	}

	// 事件回调把候选交给界面
	m.Update(pendingMsg{pending: *msg.res.Pending})
	m.Update(msg)
	if m.state != ChoosingMarket {
		t.Fatalf("状态 = %v, expected ChoosingMarket", m.state)
	}

	_, cmd = m.Update(key("2"))
	mutated := cmd().(mutatedMsg)
	if !reflect.DeepEqual(mutated.list, Watchlist{entry(MarketSZ, "000001")}) {
		t.Errorf("选择深市后列表 = %v", mutated.list)
	}
}

func TestModelDisplayToggles(t *testing.T) {
	m := newTestModel(t, nil, newFakeSource())

	m.Update(key("n"))
	m.Update(key("f"))
	if m.display.ShowName || m.display.FontSize != "xl" {
		t.Errorf("display = %+v", m.display)
	}
	// 开关写回配置文件
	if saved := loadConfig(m.app.ConfigPath); saved.Display != m.display {
		t.Errorf("保存的配置 = %+v, expected %+v", saved.Display, m.display)
	}
}
