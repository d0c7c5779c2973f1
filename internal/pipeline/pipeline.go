package pipeline

import (
	"fmt"
	"io"
	"sync"

	"github.com/initmaster/USBPlugEvent/internal/metrics"
	"github.com/initmaster/USBPlugEvent/internal/model"
	"github.com/initmaster/USBPlugEvent/internal/sysutil"
	"go.uber.org/zap"
)

// Launcher 启动外部命令，不等待其结束
type Launcher interface {
	Launch(command string) error
}

// Mode 归一化之后对事件的处理：匹配并启动命令，或打印
type Mode interface {
	Apply(ev model.DeviceEvent, log *zap.Logger, stats *metrics.Metrics)
}

// Pipeline Normalize -> Mode，无共享可变状态，可并发调用
type Pipeline struct {
	mode  Mode
	log   *zap.Logger
	stats *metrics.Metrics
}

func New(mode Mode, log *zap.Logger, stats *metrics.Metrics) *Pipeline {
	return &Pipeline{mode: mode, log: sysutil.Or(log), stats: stats}
}

// Handle 处理一次投递。单个事件的任何失败都只记录日志
func (p *Pipeline) Handle(raw model.RawDevice, kind model.EventKind) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("event handler panic", zap.String("kobj", raw.KObj), zap.Any("panic", r))
		}
	}()

	p.stats.EventReceived(kind)
	ev, err := Normalize(raw, kind)
	if err != nil {
		p.stats.InvalidPayload()
		p.log.Warn("Dropping device event", zap.Stringer("kind", kind), zap.Error(err))
		return
	}
	p.log.Debug("device event",
		zap.String("event", ev.ID),
		zap.String("device", ev.DeviceID),
		zap.String("description", ev.Description),
		zap.Stringer("kind", ev.Kind))
	p.mode.Apply(ev, p.log, p.stats)
}

// LaunchMode 设备匹配且方向启用时启动命令
type LaunchMode struct {
	Config   model.ListenerConfig
	Launcher Launcher
}

func (m LaunchMode) Apply(ev model.DeviceEvent, log *zap.Logger, stats *metrics.Metrics) {
	if !Matches(ev, m.Config.TargetDeviceID) || !ShouldDispatch(ev.Kind, m.Config) {
		return
	}
	stats.Dispatched(ev.Kind)
	log.Info("🚀 Launching command",
		zap.String("event", ev.ID),
		zap.String("device", ev.DeviceID),
		zap.Stringer("kind", ev.Kind))
	if err := m.Launcher.Launch(m.Config.Command); err != nil {
		stats.LaunchFailed()
		log.Error("Command launch failed", zap.String("event", ev.ID), zap.Error(err))
	}
}

// PrintMode -d 诊断输出
type PrintMode struct {
	mu sync.Mutex
	w  io.Writer
}

func NewPrintMode(w io.Writer) *PrintMode {
	return &PrintMode{w: w}
}

const (
	FeedHeader = "DeviceID | Description | Event"
	ListHeader = "DeviceID | Description"
)

func (m *PrintMode) Apply(ev model.DeviceEvent, _ *zap.Logger, _ *metrics.Metrics) {
	// 只保证行不交错
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(m.w, "%s | %s | %s\n", ev.DeviceID, ev.Description, ev.Kind)
}
