package main

import (
	"sync"
	"time"
)

// ============================================================================
// 价格历史（内存），每次刷新追加一个点
// ============================================================================

// maxHistoryPoints 每个条目最多保留的点数
const maxHistoryPoints = 240

// PricePoint 单次刷新时的价格
type PricePoint struct {
	Time  time.Time
	Price float64
}

// priceHistory 按 market.code 记录本次会话内的价格走势
type priceHistory struct {
	mu        sync.RWMutex
	points    map[string][]PricePoint
	prevClose map[string]float64
}

func newPriceHistory() *priceHistory {
	return &priceHistory{
		points:    make(map[string][]PricePoint),
		prevClose: make(map[string]float64),
	}
}

// record 追加一批行情；价格未变时不重复记录
func (h *priceHistory) record(at time.Time, quotes []Quote) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, q := range quotes {
		if q.Price.IsZero() {
			continue
		}
		key := entryKey(q.Market, q.Code)
		price := q.Price.InexactFloat64()
		points := h.points[key]
		if n := len(points); n > 0 && points[n-1].Price == price {
			continue
		}
		points = append(points, PricePoint{Time: at, Price: price})
		if len(points) > maxHistoryPoints {
			points = points[len(points)-maxHistoryPoints:]
		}
		h.points[key] = points
		h.prevClose[key] = q.PrevClose.InexactFloat64()
	}
}

// get 返回某个条目的价格点副本和昨收
func (h *priceHistory) get(market Market, code string) ([]PricePoint, float64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	key := entryKey(market, code)
	points := make([]PricePoint, len(h.points[key]))
	copy(points, h.points[key])
	return points, h.prevClose[key]
}

// forget 条目被删除时丢弃其历史
func (h *priceHistory) forget(market Market, code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.points, entryKey(market, code))
	delete(h.prevClose, entryKey(market, code))
}
