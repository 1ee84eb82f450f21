package main

import (
	"errors"
	"fmt"
	"strings"
)

// Market 交易所（封闭集合）
type Market string

const (
	MarketSH Market = "sh" // 上交所
	MarketSZ Market = "sz" // 深交所
	MarketHK Market = "hk" // 港交所
)

// allMarkets 固定顺序：沪 -> 深 -> 港
var allMarkets = []Market{MarketSH, MarketSZ, MarketHK}

var (
	ErrUnknownMarket = errors.New("unknown market")
	ErrInvalidCode   = errors.New("invalid stock code")
	ErrNoPending     = errors.New("no pending resolution")
	ErrInvalidChoice = errors.New("pending choice must be sh or sz")
)

func (m Market) String() string { return string(m) }

// Valid 是否为已知市场
func (m Market) Valid() bool {
	switch m {
	case MarketSH, MarketSZ, MarketHK:
		return true
	}
	return false
}

// IsPrimary 是否为 A 股市场（沪/深）
func (m Market) IsPrimary() bool {
	return m == MarketSH || m == MarketSZ
}

// CodeLength 该市场代码的标准长度
func (m Market) CodeLength() int {
	if m == MarketHK {
		return 5
	}
	return 6
}

// SecIDPrefix 东方财富 secid 的市场前缀
func (m Market) SecIDPrefix() string {
	switch m {
	case MarketSH:
		return "1"
	case MarketSZ:
		return "0"
	case MarketHK:
		return "116"
	}
	return ""
}

// Other 沪深互为对方，港股没有对应市场
func (m Market) Other() Market {
	switch m {
	case MarketSH:
		return MarketSZ
	case MarketSZ:
		return MarketSH
	}
	return ""
}

// ParseMarket 解析市场标签，兼容旧版的 A/B/HK 写法
func ParseMarket(s string) (Market, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sh", "a", "shanghai":
		return MarketSH, nil
	case "sz", "b", "shenzhen":
		return MarketSZ, nil
	case "hk", "hongkong":
		return MarketHK, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMarket, s)
}

// UnmarshalText 让 JSON/YAML 读取时统一走 ParseMarket
func (m *Market) UnmarshalText(text []byte) error {
	parsed, err := ParseMarket(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// normalizeCode 去掉空白；校验为 5 或 6 位纯数字
func normalizeCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidCode)
	}
	if len(code) != MarketHK.CodeLength() && len(code) != MarketSH.CodeLength() {
		return "", fmt.Errorf("%w: %q has %d digits", ErrInvalidCode, code, len(code))
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidCode, code)
		}
	}
	return code, nil
}

// ============================================================================
// CodeEntry / Watchlist 辅助方法
// ============================================================================

// Key 形如 "sh.600519"，用于缓存和日志
func (e CodeEntry) Key() string {
	return entryKey(e.Market, e.Code)
}

func (e CodeEntry) String() string { return e.Key() }

func entryKey(market Market, code string) string {
	return string(market) + "." + code
}

// IndexOf 返回匹配条目的下标，没有则为 -1
func (w Watchlist) IndexOf(market Market, code string) int {
	for i, e := range w {
		if e.Market == market && e.Code == code {
			return i
		}
	}
	return -1
}

// Contains 是否已存在 (market, code)
func (w Watchlist) Contains(market Market, code string) bool {
	return w.IndexOf(market, code) >= 0
}

// Codes 某个市场下的全部代码，保持列表顺序
func (w Watchlist) Codes(market Market) []string {
	var codes []string
	for _, e := range w {
		if e.Market == market {
			codes = append(codes, e.Code)
		}
	}
	return codes
}

// Clone 返回副本，避免调用方修改内部状态
func (w Watchlist) Clone() Watchlist {
	if w == nil {
		return nil
	}
	out := make(Watchlist, len(w))
	copy(out, w)
	return out
}

// pinned 把条目移到最前；不存在时原样返回
func (w Watchlist) pinned(market Market, code string) Watchlist {
	index := w.IndexOf(market, code)
	if index == -1 {
		return w
	}
	out := make(Watchlist, 0, len(w))
	out = append(out, w[index])
	out = append(out, w[:index]...)
	out = append(out, w[index+1:]...)
	return out
}

// without 删除第一个匹配条目；不存在时原样返回
func (w Watchlist) without(market Market, code string) Watchlist {
	index := w.IndexOf(market, code)
	if index == -1 {
		return w
	}
	out := make(Watchlist, 0, len(w)-1)
	out = append(out, w[:index]...)
	return append(out, w[index+1:]...)
}

// sanitize 丢弃未知市场或格式错误的条目，并按首次出现去重
func (w Watchlist) sanitize() (Watchlist, int) {
	out := make(Watchlist, 0, len(w))
	seen := make(map[string]bool, len(w))
	dropped := 0
	for _, e := range w {
		code, err := normalizeCode(e.Code)
		if err != nil || !e.Market.Valid() || seen[entryKey(e.Market, code)] {
			dropped++
			continue
		}
		seen[entryKey(e.Market, code)] = true
		out = append(out, CodeEntry{Market: e.Market, Code: code})
	}
	return out, dropped
}
