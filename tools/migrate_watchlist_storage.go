package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

// 自选列表在 kv 表中的键，与主程序一致
const watchlistKey = "codeList"

var (
	srcPath string
	dstPath string
	dryRun  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate_watchlist_storage",
	Short: "把 JSON 自选列表迁移到 SQLite 存储",
	Long: `把 data/watchlist.json（含旧版 {"stocks": [...]} 和裸数组格式）
迁移到 SQLite 的 kv 表。迁移后在 conf/config.yml 中设置 storage.driver: sqlite。`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrate(srcPath, dstPath, dryRun)
	},
}

func main() {
	migrateCmd.Flags().StringVar(&srcPath, "from", filepath.Join("data", "watchlist.json"), "JSON 自选列表文件")
	migrateCmd.Flags().StringVar(&dstPath, "to", filepath.Join("data", "stockbar.db"), "SQLite 数据库文件")
	migrateCmd.Flags().BoolVar(&dryRun, "dry-run", true, "只预览不写入")
	if err := migrateCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type entry struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

func migrate(src, dst string, dryRun bool) error {
	fmt.Println("=== 自选列表存储迁移工具 ===")
	fmt.Printf("模式: %s\n\n", map[bool]string{true: "预览模式（不会写入）", false: "执行模式（将写入数据库）"}[dryRun])

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("读取 %s 失败: %w", src, err)
	}
	list, skipped, err := parseEntries(data)
	if err != nil {
		return fmt.Errorf("解析 %s 失败: %w", src, err)
	}

	for _, e := range list {
		fmt.Printf("📦 %s.%s\n", e.Type, e.Code)
	}
	for _, msg := range skipped {
		fmt.Printf("⚠️  %s\n", msg)
	}

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Printf("有效条目: %d, 跳过: %d\n", len(list), len(skipped))
	fmt.Println(strings.Repeat("=", 50))

	if dryRun {
		fmt.Println("💡 这是预览模式，未做任何修改，加 --dry-run=false 执行迁移")
		return nil
	}

	if err := writeSQLite(dst, list); err != nil {
		return err
	}
	fmt.Printf("✅ 已写入 %s\n", dst)
	return nil
}

// parseEntries 兼容 {"codeList": [...]}、{"stocks": [...]} 和裸数组；
// 市场名统一成 sh/sz/hk，重复、无法识别和代码格式错误的条目跳过。
// 过滤规则与主程序加载时一致，迁移后的列表不会在下次加载时再丢条目。
func parseEntries(data []byte) ([]entry, []string, error) {
	var raw []map[string]string
	var wrapped struct {
		CodeList []map[string]string `json:"codeList"`
		Stocks   []map[string]string `json:"stocks"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		raw = wrapped.CodeList
		if raw == nil {
			raw = wrapped.Stocks
		}
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}

	var list []entry
	var skipped []string
	seen := make(map[string]bool)
	for _, item := range raw {
		name := item["type"]
		if name == "" {
			name = item["market"]
		}
		market := normalizeMarket(name)
		code := strings.TrimSpace(item["code"])
		if market == "" || code == "" {
			skipped = append(skipped, fmt.Sprintf("无法识别的条目 %q/%q", name, item["code"]))
			continue
		}
		if !validCode(code) {
			skipped = append(skipped, fmt.Sprintf("代码格式错误 %s.%q", market, code))
			continue
		}
		key := market + "." + code
		if seen[key] {
			skipped = append(skipped, "重复条目 "+key)
			continue
		}
		seen[key] = true
		list = append(list, entry{Type: market, Code: code})
	}
	return list, skipped, nil
}

func normalizeMarket(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sh", "a", "shanghai":
		return "sh"
	case "sz", "b", "shenzhen":
		return "sz"
	case "hk", "hongkong":
		return "hk"
	}
	return ""
}

// validCode 5 位（港股）或 6 位（沪深）纯数字
func validCode(code string) bool {
	if len(code) != 5 && len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func writeSQLite(path string, list []entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("打开数据库失败: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`); err != nil {
		return fmt.Errorf("建表失败: %w", err)
	}

	if list == nil {
		list = []entry{}
	}
	value, err := json.MarshalIndent(map[string][]entry{watchlistKey: list}, "", "  ")
	if err != nil {
		return err
	}
	_, err = db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, watchlistKey, string(value))
	if err != nil {
		return fmt.Errorf("写入失败: %w", err)
	}
	return nil
}
