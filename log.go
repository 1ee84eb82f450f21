package main

import "fmt"

// ============================================================================
// 日志函数 - 四个级别
// ============================================================================

// logDebug DEBUG 级别日志 - 详细调试信息
// key: i18n 键名（如 "log.quote.request"）
// args: 格式化参数（替换 i18n 文本中的 %s, %d 等占位符）
func logDebug(key string, args ...any) {
	writeLog(LogDebug, key, args...)
}

// logInfo INFO 级别日志 - 正常运行信息
func logInfo(key string, args ...any) {
	writeLog(LogInfo, key, args...)
}

// logWarn WARN 级别日志 - 可能的问题
func logWarn(key string, args ...any) {
	writeLog(LogWarn, key, args...)
}

// logError ERROR 级别日志 - 需要关注的错误
func logError(key string, args ...any) {
	writeLog(LogError, key, args...)
}

func writeLog(level LogLevel, key string, args ...any) {
	if globalLogger == nil && globalDebugLog == nil {
		return
	}

	text := getLogText(key)
	if len(args) > 0 {
		text = fmt.Sprintf(text, args...)
	}

	if globalLogger != nil {
		globalLogger.Log(level, key, text)
	}
	// 调试面板只在调试模式下收集
	if globalDebugLog != nil {
		globalDebugLog.add(level, text)
	}
}

// ============================================================================
// 辅助函数
// ============================================================================

// getLogText 获取 i18n 日志文本
// key: i18n 键名
// 返回: 翻译后的文本，如果找不到则返回 key 本身
func getLogText(key string) string {
	return getText(currentLanguage, key)
}

// ============================================================================
// 简化日志函数 - 用于没有 i18n key 的直接消息
// 格式: [time][level][message]
// ============================================================================

// logInfoDirect 直接记录 INFO 级别消息（无 key）
func logInfoDirect(format string, args ...any) {
	if globalLogger == nil {
		return
	}
	globalLogger.Log(LogInfo, "", fmt.Sprintf(format, args...))
}

// logErrorDirect 直接记录 ERROR 级别消息（无 key）
func logErrorDirect(format string, args ...any) {
	if globalLogger == nil {
		return
	}
	globalLogger.Log(LogError, "", fmt.Sprintf(format, args...))
}
