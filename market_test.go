package main

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseMarket(t *testing.T) {
	tests := []struct {
		input    string
		expected Market
		wantErr  bool
		desc     string
	}{
		{"sh", MarketSH, false, "沪市"},
		{"SZ", MarketSZ, false, "大写深市"},
		{" hk ", MarketHK, false, "带空白的港股"},
		{"A", MarketSH, false, "旧版 A 表示沪市"},
		{"b", MarketSZ, false, "旧版 B 表示深市"},
		{"shenzhen", MarketSZ, false, "全称"},
		{"us", "", true, "不支持的市场"},
		{"", "", true, "空字符串"},
	}

	for _, tt := range tests {
		result, err := ParseMarket(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownMarket) {
				t.Errorf("%s: ParseMarket(%q) err = %v, expected ErrUnknownMarket", tt.desc, tt.input, err)
			}
			continue
		}
		if err != nil || result != tt.expected {
			t.Errorf("%s: ParseMarket(%q) = %q, %v, expected %q", tt.desc, tt.input, result, err, tt.expected)
		}
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
		desc     string
	}{
		{"600519", "600519", false, "6位A股"},
		{"00700", "00700", false, "5位港股"},
		{"  000001 ", "000001", false, "去掉首尾空白"},
		{"", "", true, "空代码"},
		{"   ", "", true, "只有空白"},
		{"1234", "", true, "位数不足"},
		{"6005190", "", true, "位数过多"},
		{"60051a", "", true, "含字母"},
		{"sh6005", "", true, "带市场前缀"},
	}

	for _, tt := range tests {
		result, err := normalizeCode(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidCode) {
				t.Errorf("%s: normalizeCode(%q) err = %v, expected ErrInvalidCode", tt.desc, tt.input, err)
			}
			continue
		}
		if err != nil || result != tt.expected {
			t.Errorf("%s: normalizeCode(%q) = %q, %v, expected %q", tt.desc, tt.input, result, err, tt.expected)
		}
	}
}

func TestMarketAttributes(t *testing.T) {
	tests := []struct {
		market  Market
		length  int
		prefix  string
		other   Market
		primary bool
	}{
		{MarketSH, 6, "1", MarketSZ, true},
		{MarketSZ, 6, "0", MarketSH, true},
		{MarketHK, 5, "116", "", false},
	}

	for _, tt := range tests {
		if got := tt.market.CodeLength(); got != tt.length {
			t.Errorf("%s.CodeLength() = %d, expected %d", tt.market, got, tt.length)
		}
		if got := tt.market.SecIDPrefix(); got != tt.prefix {
			t.Errorf("%s.SecIDPrefix() = %q, expected %q", tt.market, got, tt.prefix)
		}
		if got := tt.market.Other(); got != tt.other {
			t.Errorf("%s.Other() = %q, expected %q", tt.market, got, tt.other)
		}
		if got := tt.market.IsPrimary(); got != tt.primary {
			t.Errorf("%s.IsPrimary() = %v, expected %v", tt.market, got, tt.primary)
		}
	}
}

func TestWatchlistPinned(t *testing.T) {
	list := Watchlist{
		{Market: MarketSH, Code: "600519"},
		{Market: MarketSZ, Code: "000001"},
		{Market: MarketHK, Code: "00700"},
	}

	tests := []struct {
		market   Market
		code     string
		expected Watchlist
		desc     string
	}{
		{MarketHK, "00700", Watchlist{list[2], list[0], list[1]}, "末尾条目移到最前"},
		{MarketSZ, "000001", Watchlist{list[1], list[0], list[2]}, "中间条目移到最前"},
		{MarketSH, "600519", list, "已在最前不变"},
		{MarketSH, "000001", list, "市场不匹配不变"},
	}

	for _, tt := range tests {
		result := list.pinned(tt.market, tt.code)
		if !reflect.DeepEqual(result, tt.expected) {
			t.Errorf("%s: pinned(%s, %s) = %v, expected %v", tt.desc, tt.market, tt.code, result, tt.expected)
		}
	}
	if list[0].Code != "600519" || list[2].Code != "00700" {
		t.Errorf("pinned 不应修改原列表: %v", list)
	}
}

func TestWatchlistWithout(t *testing.T) {
	list := Watchlist{
		{Market: MarketSH, Code: "000001"},
		{Market: MarketSZ, Code: "000001"},
	}

	result := list.without(MarketSZ, "000001")
	expected := Watchlist{{Market: MarketSH, Code: "000001"}}
	if !reflect.DeepEqual(result, expected) {
		t.Errorf("without(sz, 000001) = %v, expected %v", result, expected)
	}

	// 不存在的条目原样返回
	if again := result.without(MarketSZ, "000001"); !reflect.DeepEqual(again, expected) {
		t.Errorf("重复删除 = %v, expected %v", again, expected)
	}
}

func TestWatchlistSanitize(t *testing.T) {
	list := Watchlist{
		{Market: MarketSH, Code: "600519"},
		{Market: MarketSH, Code: " 600519"},
		{Market: "us", Code: "AAPL"},
		{Market: MarketHK, Code: "00700"},
		{Market: MarketSZ, Code: ""},
	}

	result, dropped := list.sanitize()
	expected := Watchlist{
		{Market: MarketSH, Code: "600519"},
		{Market: MarketHK, Code: "00700"},
	}
	if !reflect.DeepEqual(result, expected) {
		t.Errorf("sanitize() = %v, expected %v", result, expected)
	}
	if dropped != 3 {
		t.Errorf("sanitize() dropped = %d, expected 3", dropped)
	}
}
