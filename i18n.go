package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// texts i18n 配置 - 存储各语言的文本映射
var texts = map[Language]TextMap{}

// currentLanguage 当前界面与日志语言
var currentLanguage = Chinese

// loadI18nFiles 加载 i18n 文件；缺失的语言会回退到英文或键名本身
func loadI18nFiles(dir string) {
	texts = make(map[Language]TextMap)

	for _, lang := range []Language{Chinese, English} {
		path := filepath.Join(dir, string(lang)+".json")
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to read %s: %v\n", path, err)
			continue
		}
		var m TextMap
		if err := json.Unmarshal(data, &m); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to parse %s: %v\n", path, err)
			continue
		}
		texts[lang] = m
	}
}

// getText 获取本地化文本的辅助函数
func getText(lang Language, key string) string {
	if text, exists := texts[lang][key]; exists {
		return text
	}
	// 如果找不到文本，返回英文版本作为备用
	if text, exists := texts[English][key]; exists {
		return text
	}
	return key // 最后备用返回key本身
}
