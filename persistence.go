package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// Watchlist 自选列表持久化（JSON 文件）
// ============================================================================

// JSONFileStore 将自选列表整体写入一个 JSON 文件
type JSONFileStore struct {
	Path string
}

// watchlistFileData 文件结构：{"codeList": [{"type": "sh", "code": "600519"}]}
type watchlistFileData struct {
	CodeList Watchlist `json:"codeList"`
}

// legacyEntry 兼容旧版本字段名的条目
type legacyEntry struct {
	Type   string `json:"type"`
	Market string `json:"market"`
	Code   string `json:"code"`
}

// Load 加载自选列表；文件不存在时返回默认列表
func (s *JSONFileStore) Load() (Watchlist, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return defaultCodeList.Clone(), nil
	}
	if err != nil {
		return defaultCodeList.Clone(), fmt.Errorf("read watchlist %s: %w", s.Path, err)
	}

	list, err := decodeWatchlist(data)
	if err != nil {
		return defaultCodeList.Clone(), fmt.Errorf("parse watchlist %s: %w", s.Path, err)
	}
	return list, nil
}

// Save 整表覆盖写入（先写临时文件再重命名）
func (s *JSONFileStore) Save(list Watchlist) error {
	data, err := encodeWatchlist(list)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("create watchlist dir: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write watchlist: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("replace watchlist: %w", err)
	}
	return nil
}

func encodeWatchlist(list Watchlist) ([]byte, error) {
	if list == nil {
		list = Watchlist{}
	}
	data, err := json.MarshalIndent(watchlistFileData{CodeList: list}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode watchlist: %w", err)
	}
	return data, nil
}

// decodeWatchlist 解析自选列表，支持三种格式：
// {"codeList": [...]}、{"stocks": [...]}、以及直接的数组
func decodeWatchlist(data []byte) (Watchlist, error) {
	var raw []legacyEntry

	var wrapped struct {
		CodeList []legacyEntry `json:"codeList"`
		Stocks   []legacyEntry `json:"stocks"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		raw = wrapped.CodeList
		if raw == nil {
			raw = wrapped.Stocks
		}
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	list := make(Watchlist, 0, len(raw))
	for _, item := range raw {
		name := item.Type
		if name == "" {
			name = item.Market
		}
		market, err := ParseMarket(name)
		if err != nil {
			logWarn("log.store.dropEntry", item.Code, err)
			continue
		}
		list = append(list, CodeEntry{Market: market, Code: item.Code})
	}

	clean, dropped := list.sanitize()
	if dropped > 0 {
		logWarn("log.store.sanitized", dropped)
	}
	return clean, nil
}

// newWatchlistStore 根据配置选择存储后端
func newWatchlistStore(cfg StorageConfig) (WatchlistStore, error) {
	switch cfg.Driver {
	case "", "json":
		path := cfg.Path
		if path == "" {
			path = watchlistFile
		}
		return &JSONFileStore{Path: path}, nil
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = sqliteFile
		}
		return OpenSQLiteStore(path)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// ============================================================================
// Config 配置文件持久化
// ============================================================================

// defaultMarketsConfig 获取默认的市场配置
func defaultMarketsConfig() MarketsConfig {
	return MarketsConfig{
		China: MarketConfig{
			Timezone: "Asia/Shanghai",
			TradingSessions: []TradingSession{
				{StartTime: "09:30", EndTime: "11:30"},
				{StartTime: "13:00", EndTime: "15:00"},
			},
			Weekdays: []int{1, 2, 3, 4, 5},
		},
		HongKong: MarketConfig{
			Timezone: "Asia/Hong_Kong",
			TradingSessions: []TradingSession{
				{StartTime: "09:30", EndTime: "12:00"},
				{StartTime: "13:00", EndTime: "16:00"},
			},
			Weekdays: []int{1, 2, 3, 4, 5},
		},
	}
}

// getDefaultConfig 获取默认配置
func getDefaultConfig() Config {
	return Config{
		System: SystemConfig{
			Language: "zh",
			LogDir:   logDir,
			LogLevel: "info",
		},
		Display: DisplayConfig{
			FontSize:     "base",
			ShowName:     true,
			ShowSettings: true,
			ChartHeight:  10,
		},
		Update: UpdateConfig{
			RefreshInterval: int(refreshInterval / time.Second),
		},
		Quotes: QuotesConfig{
			EastMoneyURL: defaultEastMoneyURL,
			TencentURL:   defaultTencentURL,
			Fallback:     true,
			Timeout:      defaultQuoteTimeout,
			Retries:      defaultQuoteRetries,
			CacheTTL:     defaultCacheTTL,
		},
		// Path 为空时按驱动取默认文件
		Storage: StorageConfig{
			Driver: "json",
		},
		Markets: defaultMarketsConfig(),
	}
}

// loadConfig 加载配置文件；不存在时写出默认配置
func loadConfig(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		config := getDefaultConfig()
		if err := saveConfig(path, config); err != nil {
			logWarn("log.config.saveFail", path, err)
		}
		return config
	}

	config := getDefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		logWarn("log.config.parseFail", path, err)
		return getDefaultConfig()
	}
	return normalizeConfig(config)
}

// normalizeConfig 校验配置的合理性，非法值回退到默认
func normalizeConfig(config Config) Config {
	defaults := getDefaultConfig()

	if config.Update.RefreshInterval <= 0 || config.Update.RefreshInterval > 3600 {
		config.Update.RefreshInterval = defaults.Update.RefreshInterval
	}
	if !isValidFontSize(config.Display.FontSize) {
		config.Display.FontSize = defaults.Display.FontSize
	}
	if config.Display.ChartHeight < 4 || config.Display.ChartHeight > 40 {
		config.Display.ChartHeight = defaults.Display.ChartHeight
	}
	if config.System.Language != string(Chinese) && config.System.Language != string(English) {
		config.System.Language = defaults.System.Language
	}
	if config.System.LogDir == "" {
		config.System.LogDir = defaults.System.LogDir
	}
	if config.Quotes.EastMoneyURL == "" {
		config.Quotes.EastMoneyURL = defaults.Quotes.EastMoneyURL
	}
	if config.Quotes.TencentURL == "" {
		config.Quotes.TencentURL = defaults.Quotes.TencentURL
	}
	if config.Quotes.Timeout <= 0 {
		config.Quotes.Timeout = defaults.Quotes.Timeout
	}
	if config.Quotes.Retries <= 0 {
		config.Quotes.Retries = defaults.Quotes.Retries
	}
	if config.Quotes.CacheTTL < 0 {
		config.Quotes.CacheTTL = 0
	}
	// 如果 Markets 为空，填充默认值（向后兼容）
	if config.Markets.China.Timezone == "" || config.Markets.HongKong.Timezone == "" {
		config.Markets = defaults.Markets
	}
	return config
}

func isValidFontSize(size string) bool {
	for _, s := range fontSizes {
		if s == size {
			return true
		}
	}
	return false
}

// saveConfig 保存配置文件
func saveConfig(path string, config Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
