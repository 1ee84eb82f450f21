package main

import (
	"testing"
	"time"
	_ "time/tzdata"
)

func TestIsMarketOpenForConfig(t *testing.T) {
	markets := defaultMarketsConfig()
	shanghai, _ := time.LoadLocation("Asia/Shanghai")

	tests := []struct {
		at       time.Time
		config   MarketConfig
		expected bool
		desc     string
	}{
		{time.Date(2024, 1, 3, 10, 0, 0, 0, shanghai), markets.China, true, "周三上午盘"},
		{time.Date(2024, 1, 3, 12, 0, 0, 0, shanghai), markets.China, false, "午休"},
		{time.Date(2024, 1, 3, 15, 30, 0, 0, shanghai), markets.China, false, "A股已收盘"},
		{time.Date(2024, 1, 3, 15, 30, 0, 0, shanghai), markets.HongKong, true, "港股仍在交易"},
		{time.Date(2024, 1, 6, 10, 0, 0, 0, shanghai), markets.China, false, "周六"},
		{time.Date(2024, 1, 3, 2, 0, 0, 0, time.UTC), markets.China, true, "UTC 时间转换到上海"},
		{time.Date(2024, 1, 3, 10, 0, 0, 0, shanghai), MarketConfig{Timezone: "Mars/Base"}, false, "无效时区"},
	}

	for _, tt := range tests {
		if got := isMarketOpenForConfig(tt.at, tt.config); got != tt.expected {
			t.Errorf("%s: isMarketOpenForConfig(%s) = %v, expected %v", tt.desc, tt.at, got, tt.expected)
		}
	}
}

func TestAnyWatchedMarketOpen(t *testing.T) {
	markets := defaultMarketsConfig()
	shanghai, _ := time.LoadLocation("Asia/Shanghai")
	afterClose := time.Date(2024, 1, 3, 15, 30, 0, 0, shanghai)

	aOnly := Watchlist{entry(MarketSH, "600519"), entry(MarketSZ, "000001")}
	if anyWatchedMarketOpen(afterClose, aOnly, markets) {
		t.Errorf("只有A股时收盘后不应刷新")
	}
	withHK := append(aOnly.Clone(), entry(MarketHK, "00700"))
	if !anyWatchedMarketOpen(afterClose, withHK, markets) {
		t.Errorf("港股交易时段应刷新")
	}
	if anyWatchedMarketOpen(afterClose, nil, markets) {
		t.Errorf("空列表不应刷新")
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		ok       bool
	}{
		{"09:30", 570, true},
		{"16:00", 960, true},
		{"9", 0, false},
		{"ab:cd", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseClock(tt.input)
		if got != tt.expected || ok != tt.ok {
			t.Errorf("parseClock(%q) = %d, %v, expected %d, %v", tt.input, got, ok, tt.expected, tt.ok)
		}
	}
}
