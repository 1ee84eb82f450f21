package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestJSONFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "watchlist.json")
	store := &JSONFileStore{Path: path}

	// 文件不存在时返回默认列表
	list, err := store.Load()
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}
	if !reflect.DeepEqual(list, defaultCodeList) {
		t.Errorf("Load() = %v, expected 默认列表", list)
	}

	want := Watchlist{
		{Market: MarketHK, Code: "00700"},
		{Market: MarketSH, Code: "000001"},
		{Market: MarketSZ, Code: "000001"},
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() err = %v", err)
	}
	got, err := store.Load()
	if err != nil || !reflect.DeepEqual(got, want) {
		t.Fatalf("Load() = %v, %v, expected %v", got, err, want)
	}

	// save(load()) 不改变文件内容
	before, _ := os.ReadFile(path)
	if err := store.Save(got); err != nil {
		t.Fatalf("Save() err = %v", err)
	}
	after, _ := os.ReadFile(path)
	if !bytes.Equal(before, after) {
		t.Errorf("save(load()) 改变了文件:\n%s\n---\n%s", before, after)
	}
}

func TestJSONFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	list, err := (&JSONFileStore{Path: path}).Load()
	if err == nil {
		t.Errorf("损坏的文件应返回错误")
	}
	if !reflect.DeepEqual(list, defaultCodeList) {
		t.Errorf("损坏的文件应回退到默认列表, got %v", list)
	}
}

func TestDecodeWatchlist(t *testing.T) {
	tests := []struct {
		input    string
		expected Watchlist
		desc     string
	}{
		{
			`{"codeList": [{"type": "sh", "code": "600519"}, {"type": "hk", "code": "00700"}]}`,
			Watchlist{{Market: MarketSH, Code: "600519"}, {Market: MarketHK, Code: "00700"}},
			"当前格式",
		},
		{
			`{"stocks": [{"market": "A", "code": "600519"}, {"market": "B", "code": "000001"}]}`,
			Watchlist{{Market: MarketSH, Code: "600519"}, {Market: MarketSZ, Code: "000001"}},
			"旧版 stocks 字段和 A/B 市场",
		},
		{
			`[{"type": "sz", "code": "300750"}]`,
			Watchlist{{Market: MarketSZ, Code: "300750"}},
			"裸数组",
		},
		{
			`{"codeList": [{"type": "us", "code": "AAPL"}, {"type": "sh", "code": "600519"}, {"type": "sh", "code": "600519"}, {"type": "sz", "code": "12"}]}`,
			Watchlist{{Market: MarketSH, Code: "600519"}},
			"丢弃未知市场、重复和格式错误的条目",
		},
		{
			`{"codeList": []}`,
			Watchlist{},
			"空列表",
		},
	}

	for _, tt := range tests {
		result, err := decodeWatchlist([]byte(tt.input))
		if err != nil {
			t.Errorf("%s: decodeWatchlist err = %v", tt.desc, err)
			continue
		}
		if !reflect.DeepEqual(result, tt.expected) {
			t.Errorf("%s: decodeWatchlist = %v, expected %v", tt.desc, result, tt.expected)
		}
	}
}

func TestEncodeWatchlistFormat(t *testing.T) {
	data, err := encodeWatchlist(Watchlist{{Market: MarketSH, Code: "600519"}})
	if err != nil {
		t.Fatal(err)
	}
	expected := "{\n  \"codeList\": [\n    {\n      \"type\": \"sh\",\n      \"code\": \"600519\"\n    }\n  ]\n}"
	if string(data) != expected {
		t.Errorf("encodeWatchlist =\n%s\nexpected\n%s", data, expected)
	}

	// nil 写成空数组而不是 null
	empty, _ := encodeWatchlist(nil)
	if !bytes.Contains(empty, []byte(`"codeList": []`)) {
		t.Errorf("encodeWatchlist(nil) = %s", empty)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stockbar.db")

	store, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore err = %v", err)
	}
	list, err := store.Load()
	if err != nil || !reflect.DeepEqual(list, defaultCodeList) {
		t.Fatalf("首次 Load() = %v, %v, expected 默认列表", list, err)
	}

	want := Watchlist{{Market: MarketSZ, Code: "000001"}, {Market: MarketSH, Code: "000001"}}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() err = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() err = %v", err)
	}

	reopened, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("重新打开 err = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load()
	if err != nil || !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %v, %v, expected %v", got, err, want)
	}

	if _, ok, err := reopened.Get("missing"); ok || err != nil {
		t.Errorf("Get(missing) = %v, %v", ok, err)
	}
	if err := reopened.Set("k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := reopened.Set("k", "v2"); err != nil {
		t.Fatal(err)
	}
	if v, ok, _ := reopened.Get("k"); !ok || v != "v2" {
		t.Errorf("Get(k) = %q, %v, expected v2", v, ok)
	}
}

func TestNewWatchlistStore(t *testing.T) {
	dir := t.TempDir()

	store, err := newWatchlistStore(StorageConfig{Driver: "json", Path: filepath.Join(dir, "w.json")})
	if _, ok := store.(*JSONFileStore); !ok || err != nil {
		t.Errorf("json 驱动 = %T, %v", store, err)
	}

	store, err = newWatchlistStore(StorageConfig{Driver: "sqlite", Path: filepath.Join(dir, "w.db")})
	if _, ok := store.(*SQLiteStore); !ok || err != nil {
		t.Errorf("sqlite 驱动 = %T, %v", store, err)
	} else {
		store.(*SQLiteStore).Close()
	}

	if _, err := newWatchlistStore(StorageConfig{Driver: "redis"}); err == nil {
		t.Errorf("未知驱动应返回错误")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	// 不存在时写出默认配置
	path := filepath.Join(dir, "conf", "config.yml")
	config := loadConfig(path)
	if !reflect.DeepEqual(config, getDefaultConfig()) {
		t.Errorf("loadConfig(missing) 应返回默认配置")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("默认配置应写入磁盘: %v", err)
	}
	if again := loadConfig(path); !reflect.DeepEqual(again, config) {
		t.Errorf("重新加载默认配置不一致:\n%+v\n%+v", again, config)
	}

	custom := filepath.Join(dir, "custom.yml")
	yml := `
system:
    language: fr
display:
    font_size: huge
    show_name: false
update:
    refresh_interval: 0
quotes:
    timeout: 1500ms
    cache_ttl: -1s
storage:
    driver: sqlite
`
	if err := os.WriteFile(custom, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}
	config = loadConfig(custom)

	tests := []struct {
		got      any
		expected any
		desc     string
	}{
		{config.System.Language, "zh", "非法语言回退"},
		{config.Display.FontSize, "base", "非法字号回退"},
		{config.Display.ShowName, false, "保留用户设置"},
		{config.Update.RefreshInterval, 3, "非法刷新间隔回退"},
		{config.Quotes.Timeout, 1500 * time.Millisecond, "解析时长"},
		{config.Quotes.CacheTTL, time.Duration(0), "负缓存时间视为关闭"},
		{config.Quotes.EastMoneyURL, defaultEastMoneyURL, "未设置的字段取默认值"},
		{config.Storage.Driver, "sqlite", "存储驱动"},
		{config.Markets.China.Timezone, "Asia/Shanghai", "市场配置"},
	}
	for _, tt := range tests {
		if !reflect.DeepEqual(tt.got, tt.expected) {
			t.Errorf("%s: got %v, expected %v", tt.desc, tt.got, tt.expected)
		}
	}
}
