package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// ColumnID - 列的唯一标识符
type ColumnID string

const (
	ColMarket  ColumnID = "market"
	ColCode    ColumnID = "code"
	ColName    ColumnID = "name"
	ColPrice   ColumnID = "price"
	ColPercent ColumnID = "percent"
	ColChange  ColumnID = "change"
	ColPrev    ColumnID = "prev_close"
)

// ColumnMetadata - 列的元数据
type ColumnMetadata struct {
	ID      ColumnID // 列ID
	I18nKey string   // 表头翻译键
	Value   func(q Quote, lang Language) string
}

// columnRegistry 全部可用列
var columnRegistry = map[ColumnID]*ColumnMetadata{
	ColMarket: {ID: ColMarket, I18nKey: "column.market", Value: func(q Quote, lang Language) string {
		return getText(lang, "market."+string(q.Market))
	}},
	ColCode:    {ID: ColCode, I18nKey: "column.code", Value: func(q Quote, _ Language) string { return q.Code }},
	ColName:    {ID: ColName, I18nKey: "column.name", Value: func(q Quote, _ Language) string { return q.Name }},
	ColPrice:   {ID: ColPrice, I18nKey: "column.price", Value: formatPriceWithColor},
	ColPercent: {ID: ColPercent, I18nKey: "column.percent", Value: formatPercentWithColor},
	ColChange: {ID: ColChange, I18nKey: "column.change", Value: func(q Quote, _ Language) string {
		return formatChange(q.Change)
	}},
	ColPrev: {ID: ColPrev, I18nKey: "column.prevClose", Value: func(q Quote, _ Language) string {
		return q.PrevClose.StringFixed(2)
	}},
}

// columnsForFontSize 字号越大显示的列越多（终端里没有真正的字号）
func columnsForFontSize(fontSize string, showName bool) []ColumnID {
	var cols []ColumnID
	if showName {
		cols = append(cols, ColName)
	}
	switch fontSize {
	case "xs":
		cols = append(cols, ColPrice, ColPercent)
	case "sm":
		cols = append([]ColumnID{ColCode}, append(cols, ColPrice, ColPercent)...)
	case "xl":
		cols = append([]ColumnID{ColMarket, ColCode}, append(cols, ColPrice, ColChange, ColPercent, ColPrev)...)
	default:
		cols = append([]ColumnID{ColMarket, ColCode}, append(cols, ColPrice, ColPercent)...)
	}
	return cols
}

// renderQuoteTable 按自选顺序渲染行情表，cursor 行加标记
func renderQuoteTable(quotes []Quote, cols []ColumnID, cursor int, lang Language) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)

	header := table.Row{""}
	for _, id := range cols {
		header = append(header, getText(lang, columnRegistry[id].I18nKey))
	}
	t.AppendHeader(header)

	for i, q := range quotes {
		marker := ""
		if i == cursor {
			marker = "►"
		}
		row := table.Row{marker}
		for _, id := range cols {
			row = append(row, columnRegistry[id].Value(q, lang))
		}
		t.AppendRow(row)
	}
	return t.Render()
}
