package main

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ============================================================================
// 文本编辑辅助函数
// ============================================================================

// maxCodeInput 代码输入框最多接受的字符数
const maxCodeInput = 6

// insertRuneAtCursor 在光标位置插入字符
func insertRuneAtCursor(text string, cursor int, r rune) (string, int) {
	runes := []rune(text)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}

	newRunes := make([]rune, len(runes)+1)
	copy(newRunes[:cursor], runes[:cursor])
	newRunes[cursor] = r
	copy(newRunes[cursor+1:], runes[cursor:])

	return string(newRunes), cursor + 1
}

// deleteRuneBeforeCursor 删除光标前的字符（退格键）
func deleteRuneBeforeCursor(text string, cursor int) (string, int) {
	runes := []rune(text)
	if cursor <= 0 || len(runes) == 0 {
		return text, cursor
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}

	newRunes := make([]rune, len(runes)-1)
	copy(newRunes[:cursor-1], runes[:cursor-1])
	copy(newRunes[cursor-1:], runes[cursor:])

	return string(newRunes), cursor - 1
}

// deleteRuneAtCursor 删除光标处的字符（Delete键）
func deleteRuneAtCursor(text string, cursor int) (string, int) {
	runes := []rune(text)
	if cursor < 0 || cursor >= len(runes) || len(runes) == 0 {
		return text, cursor
	}

	newRunes := make([]rune, len(runes)-1)
	copy(newRunes[:cursor], runes[:cursor])
	copy(newRunes[cursor:], runes[cursor+1:])

	return string(newRunes), cursor
}

// formatTextWithCursor 格式化带光标的文本用于显示
func formatTextWithCursor(text string, cursor int) string {
	runes := []rune(text)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}
	return string(runes[:cursor]) + "│" + string(runes[cursor:])
}

// handleCodeInput 代码输入框：光标移动、删除，只接受数字且不超过 6 位
func handleCodeInput(msg tea.KeyMsg, text *string, cursor *int) bool {
	switch msg.String() {
	case "left", "ctrl+b":
		if *cursor > 0 {
			*cursor--
		}
		return true
	case "right", "ctrl+f":
		if *cursor < len([]rune(*text)) {
			*cursor++
		}
		return true
	case "home", "ctrl+a":
		*cursor = 0
		return true
	case "end", "ctrl+e":
		*cursor = len([]rune(*text))
		return true
	case "backspace":
		*text, *cursor = deleteRuneBeforeCursor(*text, *cursor)
		return true
	case "delete", "ctrl+d":
		*text, *cursor = deleteRuneAtCursor(*text, *cursor)
		return true
	}

	str := msg.String()
	if len(str) != 1 || str[0] < '0' || str[0] > '9' {
		return false
	}
	if len([]rune(*text)) >= maxCodeInput {
		return true
	}
	*text, *cursor = insertRuneAtCursor(*text, *cursor, rune(str[0]))
	return true
}
