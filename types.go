package main

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// CodeEntry 自选列表中的一个条目（市场 + 代码）
// JSON 字段沿用最早的存储格式 {"type": "sh", "code": "600519"}
type CodeEntry struct {
	Market Market `json:"type"`
	Code   string `json:"code"`
}

// Watchlist 有序的自选条目列表，顺序即显示顺序
type Watchlist []CodeEntry

// Quote 单个条目的实时行情快照（不持久化）
type Quote struct {
	Market        Market          `json:"type"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	PrevClose     decimal.Decimal `json:"prev_close"`
}

// PendingResolution 代码同时命中沪深两市时等待用户选择的候选
type PendingResolution struct {
	Code        string `json:"code"`
	CandidateSH *Quote `json:"candidate_sh"`
	CandidateSZ *Quote `json:"candidate_sz"`
}

// ResolveAction 添加代码的结果类型
type ResolveAction string

const (
	ActionAdded    ResolveAction = "added"
	ActionPending  ResolveAction = "pending"
	ActionRejected ResolveAction = "rejected"
)

// Resolution resolveAndAdd 的返回结果
type Resolution struct {
	Action  ResolveAction      `json:"action"`
	Entry   *CodeEntry         `json:"entry,omitempty"`
	Pending *PendingResolution `json:"pending,omitempty"`
	Rule    string             `json:"rule"`             // 命中的决策规则名
	Reason  string             `json:"reason,omitempty"` // 被拒绝时的原因
}

// QuoteSource 行情数据源。失败或无数据时返回空结果，不向调用方暴露错误
type QuoteSource interface {
	FetchQuotes(ctx context.Context, market Market, codes []string) []Quote
}

// WatchlistStore 自选列表持久化，整表替换语义
type WatchlistStore interface {
	Load() (Watchlist, error)
	Save(Watchlist) error
}

// Events 展示层订阅的事件
type Events struct {
	OnRefreshed         func([]Quote)
	OnPendingResolution func(PendingResolution)
}

// ============================================================================
// 配置结构
// ============================================================================

// Config 系统配置结构
type Config struct {
	System  SystemConfig  `yaml:"system"`  // 系统设置
	Display DisplayConfig `yaml:"display"` // 显示设置（字号、名称、设置面板）
	Update  UpdateConfig  `yaml:"update"`  // 刷新设置
	Quotes  QuotesConfig  `yaml:"quotes"`  // 行情源设置
	Storage StorageConfig `yaml:"storage"` // 存储设置
	Markets MarketsConfig `yaml:"markets"` // 市场交易时段
}

// SystemConfig 系统设置
type SystemConfig struct {
	Language  string `yaml:"language"`   // "zh" 或 "en"
	DebugMode bool   `yaml:"debug_mode"` // 调试模式开关
	LogDir    string `yaml:"log_dir"`    // 日志目录
	LogLevel  string `yaml:"log_level"`  // debug / info / warn / error
}

// DisplayConfig 展示层的持久化开关，和自选列表逻辑无关
type DisplayConfig struct {
	FontSize     string `yaml:"font_size"`     // xs / sm / base / xl
	ShowName     bool   `yaml:"show_name"`     // 是否显示股票名称
	ShowSettings bool   `yaml:"show_settings"` // 是否显示设置面板
	ChartHeight  int    `yaml:"chart_height"`  // 价格走势图高度
}

// UpdateConfig 刷新设置
type UpdateConfig struct {
	RefreshInterval  int  `yaml:"refresh_interval"`   // 刷新间隔（秒）
	OnlyTradingHours bool `yaml:"only_trading_hours"` // 休市时跳过定时刷新
}

// QuotesConfig 行情源设置
type QuotesConfig struct {
	EastMoneyURL string        `yaml:"eastmoney_url"`
	TencentURL   string        `yaml:"tencent_url"`
	Fallback     bool          `yaml:"fallback"`  // 东方财富缺失时是否回退到腾讯
	Timeout      time.Duration `yaml:"timeout"`   // 单次请求超时
	Retries      int           `yaml:"retries"`   // 最大尝试次数
	CacheTTL     time.Duration `yaml:"cache_ttl"` // 行情缓存有效期，0 表示不缓存
}

// StorageConfig 存储设置
type StorageConfig struct {
	Driver string `yaml:"driver"` // json / sqlite
	Path   string `yaml:"path"`
}

// MarketsConfig 各市场交易时段
type MarketsConfig struct {
	China    MarketConfig `yaml:"china"`
	HongKong MarketConfig `yaml:"hongkong"`
}

// MarketConfig 单个市场的时区与交易时段
type MarketConfig struct {
	Timezone        string           `yaml:"timezone"`
	TradingSessions []TradingSession `yaml:"trading_sessions"`
	Weekdays        []int            `yaml:"weekdays"` // 1=周一 ... 7=周日
}

// TradingSession 交易时段
type TradingSession struct {
	StartTime string `yaml:"start_time"` // "09:30"
	EndTime   string `yaml:"end_time"`   // "11:30"
}

// TextMap 文本映射结构（用于i18n）
type TextMap map[string]string

// ============================================================================
// 行情缓存
// ============================================================================

// QuoteCacheEntry 行情缓存条目
type QuoteCacheEntry struct {
	Quote      Quote
	UpdateTime time.Time
}

// quoteCache 按 market.code 缓存最近一次拿到的行情
type quoteCache struct {
	mu      sync.RWMutex
	entries map[string]*QuoteCacheEntry
	ttl     time.Duration
	now     func() time.Time
}
