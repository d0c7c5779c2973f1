package listener

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/initmaster/USBPlugEvent/internal/metrics"
	"github.com/initmaster/USBPlugEvent/internal/model"
	"github.com/initmaster/USBPlugEvent/internal/sysutil"
	"github.com/initmaster/USBPlugEvent/internal/watcher"
	"go.uber.org/zap"
)

// State Idle -> Starting -> Running -> Stopping -> Stopped
type State int

const (
	Idle State = iota
	Starting
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Starting:
		return "Starting"
	case Running:
		return "Running"
	case Stopping:
		return "Stopping"
	case Stopped:
		return "Stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var ErrAlreadyStarted = errors.New("listener already started")

// EventHandler 对单次投递运行完整的处理流水线
type EventHandler interface {
	Handle(raw model.RawDevice, kind model.EventKind)
}

// Manager 拥有插入/拔出两个方向的订阅
type Manager struct {
	source  watcher.DeviceWatcher
	cfg     model.ListenerConfig
	handler EventHandler
	log     *zap.Logger
	stats   *metrics.Metrics

	mu    sync.Mutex
	state State
	subs  []watcher.Subscription

	// 释放开始后丢弃新到达的投递
	accepting atomic.Bool
}

func New(source watcher.DeviceWatcher, cfg model.ListenerConfig, handler EventHandler, log *zap.Logger, stats *metrics.Metrics) *Manager {
	return &Manager{
		source:  source,
		cfg:     cfg,
		handler: handler,
		log:     sysutil.Or(log),
		stats:   stats,
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start 注册所有启用方向的订阅，任一失败则整体失败，不存在部分监听
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Idle {
		return fmt.Errorf("%w (state %s)", ErrAlreadyStarted, m.state)
	}
	m.state = Starting
	m.accepting.Store(true)

	var kinds []model.EventKind
	if m.cfg.WatchInsert {
		kinds = append(kinds, model.Inserted)
	}
	if m.cfg.WatchRemove {
		kinds = append(kinds, model.Removed)
	}

	for _, kind := range kinds {
		kind := kind // per-iteration copy (go.mod targets go1.21, pre-1.22 loopvar semantics)
		sub, err := m.source.Subscribe(kind, func(raw model.RawDevice) {
			if !m.accepting.Load() {
				return
			}
			m.handler.Handle(raw, kind)
		})
		if err != nil {
			m.accepting.Store(false)
			m.disposeLocked()
			m.state = Stopped
			if !errors.Is(err, model.ErrSubscriptionFailed) {
				err = fmt.Errorf("%w: %s: %v", model.ErrSubscriptionFailed, kind, err)
			}
			return err
		}
		m.subs = append(m.subs, sub)
		m.stats.SubscriptionOpened()
		m.log.Info("👀 Subscribed", zap.Stringer("kind", kind))
	}

	m.state = Running
	return nil
}

// Stop 释放所有订阅，重复调用无副作用。已经在处理中的事件允许完成
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case Stopping, Stopped:
		return
	case Idle:
		m.state = Stopped
		return
	}
	m.state = Stopping
	m.accepting.Store(false)
	m.disposeLocked()
	m.state = Stopped
	m.log.Info("Listener stopped")
}

func (m *Manager) disposeLocked() {
	for _, sub := range m.subs {
		sub.Unsubscribe()
		m.stats.SubscriptionClosed()
	}
	m.subs = nil
}

// Run 启动后阻塞到 ctx 取消 (信号或托盘 Exit)，然后停止
func (m *Manager) Run(ctx context.Context) error {
	if err := m.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	m.Stop()
	return nil
}
