package main

import (
	"fmt"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/text"
)

// ============================================================================
// 价格走势图
// ============================================================================

// renderPriceChart 用 Braille 折线画出本次会话的价格走势；点数不足时返回空
func renderPriceChart(points []PricePoint, prevClose float64, width, height int, lang Language) string {
	if len(points) < 2 || width < 20 || height < 4 {
		return ""
	}

	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.Price
	}
	minPrice, maxPrice, margin := calculateAdaptiveMargin(prices)

	// 颜色与表格一致：中文红涨绿跌，英文绿涨红跌
	base := prevClose
	if base == 0 {
		base = prices[0]
	}
	last := prices[len(prices)-1]
	sign := 0
	if last > base {
		sign = 1
	} else if last < base {
		sign = -1
	}
	chartStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	if color, ok := trendColor(sign, lang); ok {
		if color == text.FgRed {
			chartStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")) // 红色
		} else {
			chartStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // 绿色
		}
	}

	xLabelFormatter := func(index int, value float64) string {
		i := int(value)
		if i < 0 || i >= len(points) {
			return ""
		}
		return points[i].Time.Format("15:04")
	}
	yLabelFormatter := func(index int, value float64) string {
		if value >= 100 {
			return fmt.Sprintf("%.1f", value)
		} else if value >= 1 {
			return fmt.Sprintf("%.2f", value)
		}
		return fmt.Sprintf("%.3f", value)
	}

	lc := linechart.New(width, height,
		0, float64(len(prices)-1),
		minPrice-margin, maxPrice+margin,
		linechart.WithXYSteps(4, 3),
		linechart.WithXLabelFormatter(xLabelFormatter),
		linechart.WithYLabelFormatter(yLabelFormatter),
		linechart.WithStyles(lipgloss.Style{}, lipgloss.Style{}, chartStyle),
	)
	for i := 0; i < len(prices)-1; i++ {
		p1 := canvas.Float64Point{X: float64(i), Y: prices[i]}
		p2 := canvas.Float64Point{X: float64(i + 1), Y: prices[i+1]}
		lc.DrawBrailleLineWithStyle(p1, p2, chartStyle)
	}
	lc.DrawXYAxisAndLabel()
	return lc.View()
}

// calculateAdaptiveMargin 根据波动率计算 Y 轴上下留白
func calculateAdaptiveMargin(prices []float64) (float64, float64, float64) {
	if len(prices) == 0 {
		return 0, 0, 0
	}

	minPrice := prices[0]
	maxPrice := prices[0]
	for _, p := range prices {
		if p < minPrice {
			minPrice = p
		}
		if p > maxPrice {
			maxPrice = p
		}
	}

	priceRange := maxPrice - minPrice

	// 价格基本无变化，使用固定的0.5%视觉空间
	if priceRange < 0.0001 {
		return minPrice, maxPrice, minPrice * 0.005
	}

	volatility := (priceRange / minPrice) * 100

	var marginRatio float64
	if volatility < 1.0 {
		marginRatio = 0.5
	} else if volatility < 3.0 {
		marginRatio = 0.2
	} else {
		marginRatio = 0.1
	}

	margin := priceRange * marginRatio

	// 确保最小margin（至少0.3%的价格）
	if minMargin := minPrice * 0.003; margin < minMargin {
		margin = minMargin
	}
	return minPrice, maxPrice, margin
}
