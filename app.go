package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// App 组装配置、日志、存储、行情源和 Reconciler
type App struct {
	Config     Config
	ConfigPath string
	Store      WatchlistStore
	Reconciler *Reconciler
}

// newApp 按配置文件初始化全部组件
func newApp(configPath string) (*App, error) {
	loadI18nFiles("i18n")

	config := loadConfig(configPath)
	currentLanguage = Language(config.System.Language)

	if err := InitLogger(config.System.LogDir, parseLogLevel(config.System.LogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if config.System.DebugMode {
		globalDebugLog = newDebugLog()
	}
	logInfoDirect("stockbar starting, config=%s storage=%s", configPath, config.Storage.Driver)

	store, err := newWatchlistStore(config.Storage)
	if err != nil {
		return nil, fmt.Errorf("open watchlist store: %w", err)
	}

	return &App{
		Config:     config,
		ConfigPath: configPath,
		Store:      store,
		Reconciler: NewReconciler(store, newQuoteSource(config.Quotes), Events{}),
	}, nil
}

// newRefreshPoller 定时刷新当前自选列表，结果通过 OnRefreshed 发布
func (a *App) newRefreshPoller() *Poller {
	r := a.Reconciler
	p := NewPoller(
		time.Duration(a.Config.Update.RefreshInterval)*time.Second,
		func(ctx context.Context) []Quote { return r.Refresh(ctx, r.Watchlist()) },
		func(seq uint64, quotes []Quote) { r.emitRefreshed(quotes) },
	)
	if a.Config.Update.OnlyTradingHours {
		markets := a.Config.Markets
		p.shouldTick = func(now time.Time) bool {
			return anyWatchedMarketOpen(now, r.Watchlist(), markets)
		}
	}
	return p
}

// saveSettings 展示层开关变化后写回配置文件
func (a *App) saveSettings(display DisplayConfig) {
	a.Config.Display = display
	if err := saveConfig(a.ConfigPath, a.Config); err != nil {
		logWarn("log.config.saveFail", a.ConfigPath, err)
	}
}

// Close 释放存储和日志
func (a *App) Close() {
	if c, ok := a.Store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logErrorDirect("close store: %v", err)
		}
	}
	if globalLogger != nil {
		globalLogger.Sync()
	}
}
