package main

import "time"

// 文件路径常量
const (
	watchlistFile   = "data/watchlist.json"
	sqliteFile      = "data/stockbar.db"
	configFile      = "conf/config.yml"
	logDir          = "logs"
	refreshInterval = 3 * time.Second
)

// watchlistStoreKey 自选列表的持久化标识
const watchlistStoreKey = "codeList"

// 行情请求默认值
const (
	defaultEastMoneyURL = "https://push2.eastmoney.com"
	defaultTencentURL   = "https://qt.gtimg.cn"
	defaultQuoteTimeout = 4 * time.Second
	defaultQuoteRetries = 2
	defaultCacheTTL     = 2 * time.Second
)

// defaultCodeList 首次使用时的默认自选列表
var defaultCodeList = Watchlist{
	{Market: MarketSH, Code: "000001"},
	{Market: MarketSZ, Code: "399001"},
	{Market: MarketSZ, Code: "399006"},
	{Market: MarketSH, Code: "600519"},
	{Market: MarketSH, Code: "510300"},
	{Market: MarketHK, Code: "00700"},
}

// 语言常量
type Language string

const (
	Chinese Language = "zh"
	English Language = "en"
)

// 字号档位，对应表格列的紧凑程度
var fontSizes = []string{"xs", "sm", "base", "xl"}

// 界面状态常量
type AppState int

const (
	Browsing      AppState = iota // 浏览行情
	EnteringCode                  // 输入代码
	ChoosingMarket                // 等待选择沪/深
)
