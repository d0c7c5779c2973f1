package watcher

import (
	"github.com/initmaster/USBPlugEvent/internal/model"
	"go.uber.org/zap"
)

// Handler 每次投递在独立的 goroutine 中调用，实现必须可并发
type Handler func(raw model.RawDevice)

// Subscription 一个方向的通知注册
type Subscription interface {
	// Unsubscribe 停止投递并释放底层资源，可重复调用
	Unsubscribe()
}

// DeviceWatcher 定义接口
type DeviceWatcher interface {
	// Subscribe 注册 USB 设备插入或拔出通知
	Subscribe(kind model.EventKind, handler Handler) (Subscription, error)
	// List 一次性枚举当前已连接的 USB 设备，与订阅无关
	List() ([]model.RawDevice, error)
}

func New(log *zap.Logger) DeviceWatcher {
	return newWatcher(log)
}
