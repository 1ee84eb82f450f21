package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ============================================================================
// SQLite 键值存储
// ============================================================================

// SQLiteStore 以 kv 表保存自选列表（JSON）和其它键值
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// OpenSQLiteStore 打开（必要时创建）数据库文件
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// 单写者
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load 读取自选列表；首次使用返回默认列表
func (s *SQLiteStore) Load() (Watchlist, error) {
	value, ok, err := s.Get(watchlistStoreKey)
	if err != nil {
		return defaultCodeList.Clone(), err
	}
	if !ok {
		return defaultCodeList.Clone(), nil
	}
	list, err := decodeWatchlist([]byte(value))
	if err != nil {
		return defaultCodeList.Clone(), fmt.Errorf("parse stored watchlist: %w", err)
	}
	return list, nil
}

// Save 整表替换
func (s *SQLiteStore) Save(list Watchlist) error {
	data, err := encodeWatchlist(list)
	if err != nil {
		return err
	}
	return s.Set(watchlistStoreKey, string(data))
}

// Get 读取任意键
func (s *SQLiteStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read key %s: %w", key, err)
	}
	return value, true, nil
}

// Set 在事务内 upsert 一个键
func (s *SQLiteStore) Set(key, value string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
		return fmt.Errorf("write key %s: %w", key, err)
	}
	return tx.Commit()
}

// Close 关闭数据库
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
