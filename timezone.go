package main

import (
	"strconv"
	"strings"
	"time"
)

// isMarketOpenForConfig 检查指定市场在指定时间是否开市
// checkTime: 要检查的时间
// marketConfig: 市场配置
// 返回：true 表示开市，false 表示休市
func isMarketOpenForConfig(checkTime time.Time, marketConfig MarketConfig) bool {
	// 转换检查时间到市场时区
	location, err := time.LoadLocation(marketConfig.Timezone)
	if err != nil {
		logWarn("log.timezone.invalidLocation", marketConfig.Timezone, err)
		return false
	}

	marketTime := checkTime.In(location)

	// 检查是否为工作日
	weekday := int(marketTime.Weekday())
	if weekday == 0 { // Sunday = 0 in Go, convert to 7
		weekday = 7
	}

	isWeekday := false
	for _, wd := range marketConfig.Weekdays {
		if wd == weekday {
			isWeekday = true
			break
		}
	}
	if !isWeekday {
		return false
	}

	// 检查是否在交易时段内
	currentMinutes := marketTime.Hour()*60 + marketTime.Minute()
	for _, session := range marketConfig.TradingSessions {
		startMinutes, ok1 := parseClock(session.StartTime)
		endMinutes, ok2 := parseClock(session.EndTime)
		if !ok1 || !ok2 {
			logWarn("log.timezone.invalidSession", session.StartTime, session.EndTime)
			continue
		}
		if currentMinutes >= startMinutes && currentMinutes <= endMinutes {
			return true
		}
	}
	return false
}

// parseClock "09:30" -> 570
func parseClock(s string) (int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, false
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, false
	}
	return hour*60 + minute, true
}

// marketConfigFor 沪深共用 A 股时段
func marketConfigFor(market Market, markets MarketsConfig) MarketConfig {
	if market == MarketHK {
		return markets.HongKong
	}
	return markets.China
}

// anyWatchedMarketOpen 自选列表里是否有任一市场处于交易时段
func anyWatchedMarketOpen(now time.Time, list Watchlist, markets MarketsConfig) bool {
	for _, market := range allMarkets {
		if len(list.Codes(market)) == 0 {
			continue
		}
		if isMarketOpenForConfig(now, marketConfigFor(market, markets)) {
			return true
		}
	}
	return false
}
