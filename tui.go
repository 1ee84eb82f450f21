package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// resolveTimeout 一次添加操作（含查询候选市场）的最长时间
const resolveTimeout = 10 * time.Second

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	helpStyle    = lipgloss.NewStyle().Faint(true)
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Model 行情界面状态
type Model struct {
	ctx        context.Context
	state      AppState
	app        *App
	reconciler *Reconciler
	poller     *Poller
	history    *priceHistory
	display    DisplayConfig
	language   Language

	quotes     []Quote
	lastUpdate time.Time
	cursor     int

	input       string
	inputCursor int
	message     string
	pending     *PendingResolution

	showChart bool
	debugMode bool
	width     int
	height    int
}

// 后台操作完成后发回的消息
type (
	quotesMsg struct {
		quotes []Quote
		at     time.Time
	}
	pendingMsg struct {
		pending PendingResolution
	}
	resolvedMsg struct {
		code string
		res  Resolution
	}
	mutatedMsg struct {
		list    Watchlist
		message string
	}
)

func newModel(ctx context.Context, app *App) *Model {
	return &Model{
		ctx:        ctx,
		state:      Browsing,
		app:        app,
		reconciler: app.Reconciler,
		poller:     app.newRefreshPoller(),
		history:    newPriceHistory(),
		display:    app.Config.Display,
		language:   currentLanguage,
		debugMode:  app.Config.System.DebugMode,
	}
}

// runTUI 启动全屏界面，退出时停止刷新
func runTUI(app *App) error {
	// 调试面板可随时打开，日志从启动开始收集
	if globalDebugLog == nil {
		globalDebugLog = newDebugLog()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := newModel(ctx, app)
	p := tea.NewProgram(m, tea.WithAltScreen())

	app.Reconciler.SetEvents(Events{
		OnRefreshed: func(quotes []Quote) {
			p.Send(quotesMsg{quotes: quotes, at: time.Now()})
		},
		OnPendingResolution: func(pending PendingResolution) {
			p.Send(pendingMsg{pending: pending})
		},
	})

	m.poller.Start(ctx)
	_, err := p.Run()
	cancel()
	m.poller.Stop()
	return err
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch m.state {
		case EnteringCode:
			return m.handleEnteringCode(msg)
		case ChoosingMarket:
			return m.handleChoosingMarket(msg)
		default:
			return m.handleBrowsing(msg)
		}
	case quotesMsg:
		// 刷新期间列表可能已经变化，以当前列表为准
		m.quotes = reorderQuotes(msg.quotes, m.reconciler.Watchlist())
		m.lastUpdate = msg.at
		m.history.record(msg.at, msg.quotes)
		m.clampCursor()
	case pendingMsg:
		pending := msg.pending
		m.pending = &pending
		m.state = ChoosingMarket
	case resolvedMsg:
		return m.handleResolved(msg)
	case mutatedMsg:
		m.message = msg.message
		m.quotes = reorderQuotes(m.quotes, msg.list)
		m.clampCursor()
		m.poller.Trigger()
	}
	return m, nil
}

// ============================================================================
// 按键处理
// ============================================================================

func (m *Model) handleBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "a":
		m.state = EnteringCode
		m.input, m.inputCursor = "", 0
		m.message = ""
	case "up", "k":
		m.moveCursorUp()
	case "down", "j":
		m.moveCursorDown()
	case "p":
		if q, ok := m.selectedQuote(); ok {
			m.cursor = 0
			return m, m.pinCmd(q.Market, q.Code)
		}
	case "d":
		if q, ok := m.selectedQuote(); ok {
			m.history.forget(q.Market, q.Code)
			return m, m.removeCmd(q.Market, q.Code)
		}
	case "r":
		m.poller.Trigger()
	case "f":
		m.display.FontSize = nextFontSize(m.display.FontSize)
		m.app.saveSettings(m.display)
	case "n":
		m.display.ShowName = !m.display.ShowName
		m.app.saveSettings(m.display)
	case "s":
		m.display.ShowSettings = !m.display.ShowSettings
		m.app.saveSettings(m.display)
	case "c":
		m.showChart = !m.showChart
	case "D":
		m.debugMode = !m.debugMode
	case "pgup":
		if m.debugMode {
			globalDebugLog.scrollUp()
		}
	case "pgdown":
		if m.debugMode {
			globalDebugLog.scrollDown()
		}
	case "1", "2":
		// 选择面板被 esc 关掉后仍可直接作答
		if m.pending != nil {
			return m.handleChoosingMarket(msg)
		}
	}
	return m, nil
}

func (m *Model) handleEnteringCode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.state = Browsing
		return m, nil
	case "enter":
		code := m.input
		m.state = Browsing
		m.pending = nil
		m.message = getText(m.language, "ui.resolving")
		return m, m.resolveCmd(code)
	}
	handleCodeInput(msg, &m.input, &m.inputCursor)
	return m, nil
}

func (m *Model) handleChoosingMarket(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.state = Browsing
	case "1":
		m.state = Browsing
		m.pending = nil
		return m, m.confirmCmd(MarketSH)
	case "2":
		m.state = Browsing
		m.pending = nil
		return m, m.confirmCmd(MarketSZ)
	}
	return m, nil
}

func (m *Model) handleResolved(msg resolvedMsg) (tea.Model, tea.Cmd) {
	switch msg.res.Action {
	case ActionAdded:
		m.message = fmt.Sprintf(getText(m.language, "ui.added"), msg.res.Entry.String())
		m.poller.Trigger()
	case ActionPending:
		// pendingMsg 负责切换到选择状态
		m.message = fmt.Sprintf(getText(m.language, "ui.pending"), msg.code)
	case ActionRejected:
		m.message = fmt.Sprintf(getText(m.language, "ui.rejected"), msg.code, msg.res.Reason)
	}
	return m, nil
}

// ============================================================================
// 后台命令：所有修改都在 tea.Cmd 中执行，不阻塞界面
// ============================================================================

func (m *Model) resolveCmd(code string) tea.Cmd {
	ctx, r := m.ctx, m.reconciler
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
		defer cancel()
		return resolvedMsg{code: code, res: r.ResolveAndAdd(ctx, code)}
	}
}

func (m *Model) confirmCmd(choice Market) tea.Cmd {
	r, lang := m.reconciler, m.language
	return func() tea.Msg {
		entry, err := r.ConfirmPending(choice)
		if err != nil {
			return mutatedMsg{list: r.Watchlist(), message: err.Error()}
		}
		return mutatedMsg{list: r.Watchlist(), message: fmt.Sprintf(getText(lang, "ui.added"), entry.String())}
	}
}

func (m *Model) pinCmd(market Market, code string) tea.Cmd {
	r, lang := m.reconciler, m.language
	return func() tea.Msg {
		list := r.Pin(market, code)
		return mutatedMsg{list: list, message: fmt.Sprintf(getText(lang, "ui.pinned"), entryKey(market, code))}
	}
}

func (m *Model) removeCmd(market Market, code string) tea.Cmd {
	r, lang := m.reconciler, m.language
	return func() tea.Msg {
		list := r.Remove(market, code)
		return mutatedMsg{list: list, message: fmt.Sprintf(getText(lang, "ui.removed"), entryKey(market, code))}
	}
}

// reorderQuotes 把已有行情投影到新的列表顺序上，不在列表里的丢弃
func reorderQuotes(quotes []Quote, list Watchlist) []Quote {
	byKey := make(map[string]Quote, len(quotes))
	for _, q := range quotes {
		byKey[entryKey(q.Market, q.Code)] = q
	}
	ordered := make([]Quote, 0, len(list))
	for _, entry := range list {
		if q, ok := byKey[entry.Key()]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered
}

// nextFontSize 循环切换字号
func nextFontSize(current string) string {
	for i, size := range fontSizes {
		if size == current {
			return fontSizes[(i+1)%len(fontSizes)]
		}
	}
	return fontSizes[0]
}

// ============================================================================
// 渲染
// ============================================================================

func (m *Model) View() string {
	var b strings.Builder
	lang := m.language

	b.WriteString(titleStyle.Render(getText(lang, "ui.title")))
	if !m.lastUpdate.IsZero() {
		fmt.Fprintf(&b, "  %s %s", getText(lang, "ui.updated"), m.lastUpdate.Format("15:04:05"))
	}
	b.WriteString("\n\n")

	if len(m.quotes) == 0 {
		b.WriteString(getText(lang, "ui.empty") + "\n")
	} else {
		cols := columnsForFontSize(m.display.FontSize, m.display.ShowName)
		b.WriteString(renderQuoteTable(m.quotes, cols, m.cursor, lang) + "\n")
	}

	if m.showChart {
		b.WriteString(m.viewChart() + "\n")
	}

	switch m.state {
	case EnteringCode:
		fmt.Fprintf(&b, "\n%s %s\n", getText(lang, "ui.prompt"), formatTextWithCursor(m.input, m.inputCursor))
	case ChoosingMarket:
		b.WriteString("\n" + m.viewChoice() + "\n")
	}

	if m.message != "" {
		b.WriteString("\n" + messageStyle.Render(m.message) + "\n")
	}
	if m.display.ShowSettings {
		b.WriteString("\n" + m.viewSettings() + "\n")
	}

	b.WriteString("\n" + helpStyle.Render(m.helpText()) + "\n")

	if m.debugMode && globalDebugLog != nil {
		b.WriteString("\n" + globalDebugLog.render(10) + "\n")
	}
	return b.String()
}

func (m *Model) viewChart() string {
	q, ok := m.selectedQuote()
	if !ok {
		return ""
	}
	width := m.width - 4
	if width <= 0 {
		width = 60
	}
	points, prevClose := m.history.get(q.Market, q.Code)
	chart := renderPriceChart(points, prevClose, width, m.display.ChartHeight, m.language)
	if chart == "" {
		return helpStyle.Render(getText(m.language, "ui.chartWaiting"))
	}
	return fmt.Sprintf("%s %s\n%s", q.Code, q.Name, chart)
}

func (m *Model) viewChoice() string {
	if m.pending == nil {
		return ""
	}
	lines := []string{fmt.Sprintf(getText(m.language, "ui.choose"), m.pending.Code)}
	for i, candidate := range []*Quote{m.pending.CandidateSH, m.pending.CandidateSZ} {
		if candidate == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%d) %s  %s  %s",
			i+1, getText(m.language, "market."+string(candidate.Market)), candidate.Name, formatPrice(*candidate)))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) viewSettings() string {
	onOff := func(v bool) string {
		if v {
			return getText(m.language, "ui.on")
		}
		return getText(m.language, "ui.off")
	}
	lines := []string{
		fmt.Sprintf("%s: %s", getText(m.language, "ui.fontSize"), m.display.FontSize),
		fmt.Sprintf("%s: %s", getText(m.language, "ui.showName"), onOff(m.display.ShowName)),
		fmt.Sprintf("%s: %ds", getText(m.language, "ui.interval"), m.app.Config.Update.RefreshInterval),
		fmt.Sprintf("%s: %s", getText(m.language, "ui.storage"), m.app.Config.Storage.Driver),
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) helpText() string {
	switch m.state {
	case EnteringCode:
		return getText(m.language, "ui.help.input")
	case ChoosingMarket:
		return getText(m.language, "ui.help.choose")
	}
	return getText(m.language, "ui.help.browse")
}
