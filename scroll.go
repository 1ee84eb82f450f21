package main

// ============================================================================
// 行情列表光标控制
// ============================================================================

// moveCursorUp 光标上移
func (m *Model) moveCursorUp() {
	if m.cursor > 0 {
		m.cursor--
	}
}

// moveCursorDown 光标下移
func (m *Model) moveCursorDown() {
	if m.cursor < len(m.quotes)-1 {
		m.cursor++
	}
}

// clampCursor 列表变短后保证光标仍指向有效行
func (m *Model) clampCursor() {
	if m.cursor >= len(m.quotes) {
		m.cursor = len(m.quotes) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selectedQuote 当前光标所在的行情
func (m *Model) selectedQuote() (Quote, bool) {
	if m.cursor < 0 || m.cursor >= len(m.quotes) {
		return Quote{}, false
	}
	return m.quotes[m.cursor], true
}
