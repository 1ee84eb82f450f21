package main

import (
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
)

// ============================================================================
// 行情格式化函数 - 支持多语言颜色方案
// 中文：红涨绿跌 | 英文：绿涨红跌
// ============================================================================

// trendColor 根据涨跌方向和语言选择颜色；平盘返回 false
func trendColor(sign int, lang Language) (text.Color, bool) {
	if sign == 0 {
		return 0, false
	}
	up := sign > 0
	if lang == English {
		up = !up
	}
	if up {
		return text.FgRed, true
	}
	return text.FgGreen, true
}

// formatPrice 价格保留两位，ETF 等三位小数的品种保留原精度
func formatPrice(q Quote) string {
	places := int32(2)
	if exp := q.Price.Exponent(); exp < -2 {
		places = -exp
	}
	return q.Price.StringFixed(places)
}

// formatPriceWithColor 格式化价格（根据涨跌显示颜色）
func formatPriceWithColor(q Quote, lang Language) string {
	s := formatPrice(q)
	if color, ok := trendColor(q.Change.Sign(), lang); ok {
		return color.Sprint(s)
	}
	return s
}

// formatPercent ▲1.23% / ▼0.50%
func formatPercent(pct decimal.Decimal) string {
	arrow := "▲"
	if pct.Sign() < 0 {
		arrow = "▼"
	}
	return arrow + pct.Abs().StringFixed(2) + "%"
}

// formatPercentWithColor 格式化涨跌幅（零值不着色）
func formatPercentWithColor(q Quote, lang Language) string {
	s := formatPercent(q.ChangePercent)
	if color, ok := trendColor(q.ChangePercent.Sign(), lang); ok {
		return color.Sprint(s)
	}
	return s
}

// formatChange +1.20 / -0.35
func formatChange(change decimal.Decimal) string {
	if change.Sign() > 0 {
		return "+" + change.StringFixed(2)
	}
	return change.StringFixed(2)
}
