package main

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ============================================================================
// Reconciler 自选列表与实时行情的协调者
// ============================================================================

// Reconciler 负责解析用户输入的代码、维护自选列表、把行情按列表顺序排列。
// 所有修改操作持有同一把锁，按提交顺序原子执行，每次修改都整表持久化。
type Reconciler struct {
	mu      sync.Mutex
	store   WatchlistStore
	source  QuoteSource
	list    Watchlist
	pending *PendingResolution
	events  Events
}

// NewReconciler 从存储加载自选列表；加载失败时使用存储返回的兜底列表
func NewReconciler(store WatchlistStore, source QuoteSource, events Events) *Reconciler {
	list, err := store.Load()
	if err != nil {
		logError("log.store.loadFail", err)
	}
	logInfo("log.store.loaded", len(list))
	return &Reconciler{
		store:  store,
		source: source,
		list:   list,
		events: events,
	}
}

// SetEvents 替换事件回调（展示层启动后再挂上）
func (r *Reconciler) SetEvents(events Events) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = events
}

// emitRefreshed 通知展示层一次未过期的刷新结果
func (r *Reconciler) emitRefreshed(quotes []Quote) {
	r.mu.Lock()
	fn := r.events.OnRefreshed
	r.mu.Unlock()
	if fn != nil {
		fn(quotes)
	}
}

// Watchlist 当前自选列表的副本
func (r *Reconciler) Watchlist() Watchlist {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list.Clone()
}

// Pending 当前待选择的候选（没有则为 nil）
func (r *Reconciler) Pending() *PendingResolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return nil
	}
	p := *r.pending
	return &p
}

// ============================================================================
// 刷新：按市场并发拉取，再按自选顺序投影
// ============================================================================

// Refresh 对给定列表做一次纯投影：不修改自选列表。
// 每个非空市场分组并发请求一次，单个分组失败只会让该分组为空。
func (r *Reconciler) Refresh(ctx context.Context, list Watchlist) []Quote {
	return refreshQuotes(ctx, r.source, list)
}

func refreshQuotes(ctx context.Context, source QuoteSource, list Watchlist) []Quote {
	results := make(map[Market][]Quote, len(allMarkets))
	var mu sync.Mutex

	var g errgroup.Group
	for _, market := range allMarkets {
		codes := list.Codes(market)
		if len(codes) == 0 {
			continue
		}
		g.Go(func() error {
			quotes := source.FetchQuotes(ctx, market, codes)
			mu.Lock()
			results[market] = quotes
			mu.Unlock()
			// 失败即空结果，不影响其它市场
			return nil
		})
	}
	g.Wait()

	ordered := make([]Quote, 0, len(list))
	for _, entry := range list {
		if q, ok := findQuote(results[entry.Market], entry.Code); ok {
			ordered = append(ordered, q)
		}
	}
	return ordered
}

func findQuote(quotes []Quote, code string) (Quote, bool) {
	for _, q := range quotes {
		if q.Code == code {
			return q, true
		}
	}
	return Quote{}, false
}

// ============================================================================
// 添加：按决策表解析市场
// ============================================================================

// ResolveAndAdd 解析代码所属市场并加入自选列表。
// 从不返回错误：每个分支都落在 added / pending / rejected 之一。
func (r *Reconciler) ResolveAndAdd(ctx context.Context, raw string) Resolution {
	res, notify := r.resolveAndAdd(ctx, raw)
	// 回调放在锁外，允许回调里再调用 Reconciler
	if res.Action == ActionPending && notify != nil {
		notify(*res.Pending)
	}
	return res
}

func (r *Reconciler) resolveAndAdd(ctx context.Context, raw string) (Resolution, func(PendingResolution)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// 新的提交会丢弃上一次未完成的选择
	r.pending = nil

	code, err := normalizeCode(raw)
	if err != nil {
		logInfo("log.resolve.invalid", raw, err)
		return Resolution{Action: ActionRejected, Rule: "invalid", Reason: err.Error()}, nil
	}

	in := newResolveInput(ctx, code, r.list, r.source)
	rule, outcome := evaluateResolveRules(in)
	logDebug("log.resolve.rule", code, rule, outcome.action)

	switch outcome.action {
	case ActionPending:
		r.pending = outcome.pending
		p := *outcome.pending
		return Resolution{Action: ActionPending, Pending: &p, Rule: rule}, r.events.OnPendingResolution
	case ActionRejected:
		return Resolution{Action: ActionRejected, Rule: rule, Reason: outcome.reason}, nil
	}

	if len(code) != outcome.market.CodeLength() {
		logWarn("log.resolve.lengthMismatch", code, outcome.market)
	}
	if r.list.Contains(outcome.market, code) {
		return Resolution{Action: ActionRejected, Rule: rule, Reason: "duplicate"}, nil
	}

	entry := CodeEntry{Market: outcome.market, Code: code}
	r.commit(append(r.list.Clone(), entry))
	logInfo("log.resolve.added", entry, rule)
	return Resolution{Action: ActionAdded, Entry: &entry, Rule: rule}, nil
}

// ConfirmPending 用户在沪/深两个候选中做出选择
func (r *Reconciler) ConfirmPending(choice Market) (CodeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending == nil {
		return CodeEntry{}, ErrNoPending
	}
	if !choice.IsPrimary() {
		return CodeEntry{}, ErrInvalidChoice
	}

	entry := CodeEntry{Market: choice, Code: r.pending.Code}
	r.pending = nil
	if !r.list.Contains(entry.Market, entry.Code) {
		r.commit(append(r.list.Clone(), entry))
	}
	logInfo("log.resolve.confirmed", entry)
	return entry, nil
}

// ============================================================================
// 置顶 / 删除
// ============================================================================

// Pin 把条目移到最前面；不存在时什么都不做
func (r *Reconciler) Pin(market Market, code string) Watchlist {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index := r.list.IndexOf(market, code); index > 0 {
		r.commit(r.list.pinned(market, code))
		logInfo("log.watchlist.pinned", entryKey(market, code), index)
	}
	return r.list.Clone()
}

// Remove 删除第一个匹配条目；重复删除无副作用
func (r *Reconciler) Remove(market Market, code string) Watchlist {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.list.Contains(market, code) {
		r.commit(r.list.without(market, code))
		logInfo("log.watchlist.removed", entryKey(market, code))
	}
	return r.list.Clone()
}

// commit 替换内存列表并整表持久化；写盘失败只记录日志
func (r *Reconciler) commit(next Watchlist) {
	r.list = next
	if err := r.store.Save(next.Clone()); err != nil {
		logError("log.store.saveFail", err)
	}
}
