package main

import (
	"context"
	"time"
)

// ============================================================================
// 行情缓存管理
// ============================================================================

func newQuoteCache(ttl time.Duration) *quoteCache {
	return &quoteCache{
		entries: make(map[string]*QuoteCacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// get 从缓存获取行情（过期视为不存在）
func (c *quoteCache) get(market Market, code string) (Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, exists := c.entries[entryKey(market, code)]
	if !exists || c.now().Sub(entry.UpdateTime) >= c.ttl {
		return Quote{}, false
	}
	return entry.Quote, true
}

// put 写入一批行情；只缓存成功拿到的数据
func (c *quoteCache) put(quotes []Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for _, q := range quotes {
		c.entries[entryKey(q.Market, q.Code)] = &QuoteCacheEntry{Quote: q, UpdateTime: now}
	}
}

// ============================================================================
// 带缓存的行情源
// ============================================================================

// cachedSource 同一刷新周期内（解析代码 + 立即刷新）避免重复请求
type cachedSource struct {
	next  QuoteSource
	cache *quoteCache
}

func newCachedSource(next QuoteSource, ttl time.Duration) *cachedSource {
	return &cachedSource{next: next, cache: newQuoteCache(ttl)}
}

func (s *cachedSource) FetchQuotes(ctx context.Context, market Market, codes []string) []Quote {
	if len(codes) == 0 {
		return nil
	}

	var (
		quotes  []Quote
		missing []string
	)
	for _, code := range codes {
		if q, ok := s.cache.get(market, code); ok {
			quotes = append(quotes, q)
			continue
		}
		missing = append(missing, code)
	}
	if len(missing) == 0 {
		logDebug("log.cache.hit", market, len(codes))
		return quotes
	}

	fetched := s.next.FetchQuotes(ctx, market, missing)
	s.cache.put(fetched)
	return append(quotes, fetched...)
}
