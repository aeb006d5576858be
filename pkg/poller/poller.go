// Package poller 轮询回退客户端：推送通道不可用时按固定间隔拉取快照
package poller

import (
	"context"
	"game_portal_backend/pkg/logger"
	"sync"
	"time"

	"go.uber.org/zap"
)

type State int

const (
	Disconnected State = iota
	Polling
)

func (s State) String() string {
	if s == Polling {
		return "polling"
	}
	return "disconnected"
}

// 允许的轮询间隔区间
var (
	MinInterval     = 3 * time.Second
	MaxInterval     = 5 * time.Second
	DefaultInterval = 5 * time.Second
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

type Poller[T any] struct {
	fetch    FetchFunc[T]
	interval time.Duration
	onUpdate func(T)
	onError  func(error)

	mu      sync.RWMutex
	state   State
	latest  T
	lastErr error
	cancel  context.CancelFunc
	done    chan struct{}
}

type Option[T any] func(*Poller[T])

func WithInterval[T any](d time.Duration) Option[T] {
	return func(p *Poller[T]) {
		p.interval = ClampInterval(d)
	}
}

// OnUpdate 每次拉取成功后回调
func OnUpdate[T any](fn func(T)) Option[T] {
	return func(p *Poller[T]) { p.onUpdate = fn }
}

func OnError[T any](fn func(error)) Option[T] {
	return func(p *Poller[T]) { p.onError = fn }
}

func ClampInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultInterval
	}
	if d < MinInterval {
		return MinInterval
	}
	if d > MaxInterval {
		return MaxInterval
	}
	return d
}

func New[T any](fetch FetchFunc[T], opts ...Option[T]) *Poller[T] {
	p := &Poller[T]{
		fetch:    fetch,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start 立即拉取一次，之后每个间隔拉取一次；重复调用无效果
func (p *Poller[T]) Start(ctx context.Context) {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go p.loop(ctx, done)
}

func (p *Poller[T]) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller[T]) tick(ctx context.Context) {
	data, err := p.fetch(ctx)
	if ctx.Err() != nil {
		// 已停止，丢弃结果
		return
	}

	p.mu.Lock()
	if err != nil {
		// 失败只切换状态，下一个周期照常重试，不做退避
		p.state = Disconnected
		p.lastErr = err
		p.mu.Unlock()
		logger.Log.Debug("Poll failed", zap.Error(err))
		if p.onError != nil {
			p.onError(err)
		}
		return
	}
	p.state = Polling
	p.latest = data
	p.lastErr = nil
	p.mu.Unlock()

	if p.onUpdate != nil {
		p.onUpdate(data)
	}
}

// Stop 取消进行中的请求并等待循环退出
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	p.mu.Lock()
	p.state = Disconnected
	p.mu.Unlock()
}

func (p *Poller[T]) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Poller[T]) Latest() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

func (p *Poller[T]) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

// Fresh 返回 next 中 ID 不在 prev 里的元素，保持 next 的顺序
func Fresh[T any](prev, next []T, id func(T) uint) []T {
	seen := make(map[uint]struct{}, len(prev))
	for _, item := range prev {
		seen[id(item)] = struct{}{}
	}
	var out []T
	for _, item := range next {
		if _, ok := seen[id(item)]; !ok {
			out = append(out, item)
		}
	}
	return out
}
