package main

import (
	"context"
	"sync"
	"time"
)

// ============================================================================
// Poller 定时刷新
// ============================================================================

// Poller 启动时立即刷新一次，之后按固定间隔刷新；自选列表变化时可随时触发。
// 每次刷新带递增序号。定时周期遇到进行中的刷新时跳过本周期；
// 启动和手动触发会取消进行中的刷新，旧结果一律丢弃（后发者胜出）。
type Poller struct {
	interval time.Duration
	refresh  func(ctx context.Context) []Quote
	deliver  func(seq uint64, quotes []Quote)

	// shouldTick 为 nil 时每个周期都刷新；启动和手动触发不受其限制
	shouldTick func(now time.Time) bool

	trigger chan struct{}
	stop    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup

	mu       sync.Mutex
	seq      uint64
	cancelFn context.CancelFunc
	running  bool
}

// NewPoller 创建定时刷新器
func NewPoller(interval time.Duration, refresh func(ctx context.Context) []Quote, deliver func(seq uint64, quotes []Quote)) *Poller {
	if interval <= 0 {
		interval = refreshInterval
	}
	return &Poller{
		interval: interval,
		refresh:  refresh,
		deliver:  deliver,
		trigger:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
}

// Start 启动后台循环，ctx 结束或调用 Stop 时退出
func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.cancelInflight()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		logInfo("log.poller.start", p.interval)
		p.runOnce(ctx)

		for {
			select {
			case now := <-ticker.C:
				if p.shouldTick != nil && !p.shouldTick(now) {
					logDebug("log.poller.skipClosed")
					continue
				}
				if p.busy() {
					logDebug("log.poller.busy", p.Latest())
					continue
				}
				p.runOnce(ctx)
			case <-p.trigger:
				p.runOnce(ctx)
			case <-ctx.Done():
				return
			case <-p.stop:
				return
			}
		}
	}()
}

// Trigger 请求立即刷新；已有未处理的触发时合并
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Stop 停止循环并取消正在进行的刷新
func (p *Poller) Stop() {
	p.once.Do(func() { close(p.stop) })
	p.wg.Wait()
}

// Latest 最近一次开始的刷新序号
func (p *Poller) Latest() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seq
}

// runOnce 开始一次新刷新，取消仍在进行的旧刷新
func (p *Poller) runOnce(parent context.Context) {
	p.mu.Lock()
	if p.cancelFn != nil {
		p.cancelFn()
	}
	p.seq++
	seq := p.seq
	ctx, cancel := context.WithCancel(parent)
	p.cancelFn = cancel
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()

		quotes := p.refresh(ctx)

		p.mu.Lock()
		defer p.mu.Unlock()
		if seq == p.seq {
			p.running = false
		}
		if seq != p.seq || ctx.Err() != nil {
			logDebug("log.poller.stale", seq, p.seq)
			return
		}
		p.deliver(seq, quotes)
	}()
}

// busy 最近一次刷新是否还未结束
func (p *Poller) busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) cancelInflight() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancelFn != nil {
		p.cancelFn()
	}
}
