package main

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ============================================================================
// 市场解析决策表
// 有序的规则列表，第一个命中的规则生效
// ============================================================================

// resolveInput 单次解析的上下文；实时查询按需进行并缓存结果
type resolveInput struct {
	ctx    context.Context
	code   string
	list   Watchlist
	source QuoteSource

	mu     sync.Mutex
	lookup map[Market]*Quote
	done   map[Market]bool
}

func newResolveInput(ctx context.Context, code string, list Watchlist, source QuoteSource) *resolveInput {
	return &resolveInput{
		ctx:    ctx,
		code:   code,
		list:   list,
		source: source,
		lookup: make(map[Market]*Quote),
		done:   make(map[Market]bool),
	}
}

// live 查询某个市场是否存在该代码
func (in *resolveInput) live(market Market) *Quote {
	in.mu.Lock()
	if in.done[market] {
		q := in.lookup[market]
		in.mu.Unlock()
		return q
	}
	in.mu.Unlock()

	var found *Quote
	if q, ok := findQuote(in.source.FetchQuotes(in.ctx, market, []string{in.code}), in.code); ok {
		found = &q
	}

	in.mu.Lock()
	in.lookup[market] = found
	in.done[market] = true
	in.mu.Unlock()
	return found
}

// livePrimaries 并发查询沪深两市
func (in *resolveInput) livePrimaries() (sh, sz *Quote) {
	var g errgroup.Group
	g.Go(func() error { sh = in.live(MarketSH); return nil })
	g.Go(func() error { sz = in.live(MarketSZ); return nil })
	g.Wait()
	return sh, sz
}

func (in *resolveInput) has(market Market) bool {
	return in.list.Contains(market, in.code)
}

// ruleOutcome 规则命中后的结论
type ruleOutcome struct {
	action  ResolveAction
	market  Market
	pending *PendingResolution
	reason  string
}

func resolvedTo(market Market) ruleOutcome {
	return ruleOutcome{action: ActionAdded, market: market}
}

func rejected(reason string) ruleOutcome {
	return ruleOutcome{action: ActionRejected, reason: reason}
}

// resolveRule 带守卫的规则
type resolveRule struct {
	name  string
	apply func(in *resolveInput) (ruleOutcome, bool)
}

var resolveRules = []resolveRule{
	{
		// 长度先判断，避免 6 位 A 股代码误命中港股
		name: "hk-live",
		apply: func(in *resolveInput) (ruleOutcome, bool) {
			if len(in.code) != MarketHK.CodeLength() || in.live(MarketHK) == nil {
				return ruleOutcome{}, false
			}
			return resolvedTo(MarketHK), true
		},
	},
	{
		// 沪市已占用同一数字代码，只能是深市
		name: "sh-taken",
		apply: func(in *resolveInput) (ruleOutcome, bool) {
			if in.has(MarketSH) && !in.has(MarketSZ) {
				return resolvedTo(MarketSZ), true
			}
			return ruleOutcome{}, false
		},
	},
	{
		name: "sz-taken",
		apply: func(in *resolveInput) (ruleOutcome, bool) {
			if in.has(MarketSZ) && !in.has(MarketSH) {
				return resolvedTo(MarketSH), true
			}
			return ruleOutcome{}, false
		},
	},
	{
		name: "both-taken",
		apply: func(in *resolveInput) (ruleOutcome, bool) {
			if in.has(MarketSH) && in.has(MarketSZ) {
				return rejected("already watched on sh and sz"), true
			}
			return ruleOutcome{}, false
		},
	},
	{
		name: "both-live",
		apply: func(in *resolveInput) (ruleOutcome, bool) {
			sh, sz := in.livePrimaries()
			if sh == nil || sz == nil {
				return ruleOutcome{}, false
			}
			return ruleOutcome{
				action:  ActionPending,
				pending: &PendingResolution{Code: in.code, CandidateSH: sh, CandidateSZ: sz},
			}, true
		},
	},
	{
		name: "one-live",
		apply: func(in *resolveInput) (ruleOutcome, bool) {
			sh, sz := in.livePrimaries()
			switch {
			case sh != nil:
				return resolvedTo(MarketSH), true
			case sz != nil:
				return resolvedTo(MarketSZ), true
			}
			return ruleOutcome{}, false
		},
	},
	{
		name: "no-match",
		apply: func(in *resolveInput) (ruleOutcome, bool) {
			return rejected("no market has this code"), true
		},
	},
}

// evaluateResolveRules 依次应用规则，返回命中的规则名和结论
func evaluateResolveRules(in *resolveInput) (string, ruleOutcome) {
	for _, rule := range resolveRules {
		if outcome, ok := rule.apply(in); ok {
			return rule.name, outcome
		}
	}
	return "no-match", rejected("no market has this code")
}
