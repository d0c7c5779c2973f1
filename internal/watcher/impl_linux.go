package watcher

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/initmaster/USBPlugEvent/internal/model"
	"github.com/initmaster/USBPlugEvent/internal/sysutil"
	"github.com/pilebones/go-udev/crawler"
	"github.com/pilebones/go-udev/netlink"
	"go.uber.org/zap"
)

// ueventConn netlink.UEventConn 中用到的部分
type ueventConn interface {
	Monitor(queue chan netlink.UEvent, errs chan error, matcher netlink.Matcher) chan struct{}
	Close() error
}

type crawlFunc func(queue chan crawler.Device, errs chan error, matcher netlink.Matcher) chan struct{}

type linuxWatcher struct {
	sysRoot string
	log     *zap.Logger

	dial  func() (ueventConn, error)
	crawl crawlFunc
	// 重连失败后的等待间隔
	retry time.Duration
}

func newWatcher(log *zap.Logger) DeviceWatcher {
	return &linuxWatcher{
		sysRoot: sysutil.SysfsRoot,
		log:     sysutil.Or(log),
		dial:    dialUdev,
		crawl:   crawler.ExistingDevices,
		retry:   time.Second,
	}
}

// dialUdev 连接 NETLINK_KOBJECT_UEVENT 的 udev 组
func dialUdev() (ueventConn, error) {
	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		return nil, err
	}
	return conn, nil
}

// udevMonitor 一次连接及其 Monitor goroutine
type udevMonitor struct {
	conn  ueventConn
	queue chan netlink.UEvent
	errs  chan error
	quit  chan struct{}
}

func (w *linuxWatcher) monitor(matcher netlink.Matcher) (*udevMonitor, error) {
	conn, err := w.dial()
	if err != nil {
		return nil, err
	}
	m := &udevMonitor{
		conn:  conn,
		queue: make(chan netlink.UEvent),
		errs:  make(chan error, 1),
	}
	m.quit = conn.Monitor(m.queue, m.errs, matcher)
	return m, nil
}

func (m *udevMonitor) close() {
	// 发送退出信号给 Monitor，然后关闭连接
	close(m.quit)
	m.conn.Close()
}

type udevSubscription struct {
	stop chan struct{}
	once sync.Once
}

// usbDeviceMatcher 只保留 usb_device，忽略接口 (1-1:1.0) 和 hub 端口事件
func usbDeviceMatcher(kind model.EventKind) *netlink.RuleDefinitions {
	action := "^add$"
	if kind == model.Removed {
		action = "^remove$"
	}
	return &netlink.RuleDefinitions{
		Rules: []netlink.RuleDefinition{{
			Action: &action,
			Env: map[string]string{
				"SUBSYSTEM": "^usb$",
				"DEVTYPE":   "^usb_device$",
			},
		}},
	}
}

func (w *linuxWatcher) Subscribe(kind model.EventKind, handler Handler) (Subscription, error) {
	matcher := usbDeviceMatcher(kind)
	if err := matcher.Compile(); err != nil {
		return nil, fmt.Errorf("%w: %s: matcher: %v", model.ErrSubscriptionFailed, kind, err)
	}

	mon, err := w.monitor(matcher)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: netlink connect: %v", model.ErrSubscriptionFailed, kind, err)
	}

	s := &udevSubscription{stop: make(chan struct{})}
	go w.run(s, kind, matcher, mon, handler)
	return s, nil
}

// run Monitor 遇到读错误 (例如 ENOBUFS) 会直接退出，这里负责重连
func (w *linuxWatcher) run(s *udevSubscription, kind model.EventKind, matcher netlink.Matcher, mon *udevMonitor, handler Handler) {
	defer func() {
		if mon != nil {
			mon.close()
		}
	}()

	for {
		select {
		case <-s.stop:
			return

		case err := <-mon.errs:
			w.log.Warn("netlink monitor stopped, reconnecting", zap.Stringer("kind", kind), zap.Error(err))
			mon.close()
			if mon = w.reconnect(s, kind, matcher); mon == nil {
				return
			}

		case uevent := <-mon.queue:
			select {
			case <-s.stop:
				continue
			default:
			}
			raw := w.toRaw(uevent.KObj, uevent.Env, kind == model.Inserted)
			go handler(raw)
		}
	}
}

// reconnect 一直重试直到成功，订阅被取消时返回 nil
func (w *linuxWatcher) reconnect(s *udevSubscription, kind model.EventKind, matcher netlink.Matcher) *udevMonitor {
	for {
		mon, err := w.monitor(matcher)
		if err == nil {
			w.log.Info("netlink monitor reconnected", zap.Stringer("kind", kind))
			return mon
		}
		w.log.Error("netlink reconnect failed", zap.Stringer("kind", kind), zap.Error(err))
		select {
		case <-s.stop:
			return nil
		case <-time.After(w.retry):
		}
	}
}

func (s *udevSubscription) Unsubscribe() {
	s.once.Do(func() { close(s.stop) })
}

// toRaw 复制 env，插入时从 sysfs 补齐 udev 数据库里缺失的属性
// 拔出时 sysfs 节点已经不存在，只能依赖事件本身
func (w *linuxWatcher) toRaw(kobj string, env map[string]string, fromSysfs bool) model.RawDevice {
	devpath := strings.TrimPrefix(kobj, w.sysRoot)
	if devpath == "" {
		devpath = env["DEVPATH"]
	}

	props := make(map[string]string, len(env)+3)
	for k, v := range env {
		props[k] = v
	}
	if fromSysfs {
		fill := func(key, attr string) {
			if props[key] == "" {
				if v := sysutil.ReadSysAttr(w.sysRoot, devpath, attr); v != "" {
					props[key] = v
				}
			}
		}
		// 原始 serial，由 Normalize 按 usb_id 的规则清洗
		fill("ID_SERIAL_SHORT", "serial")
		fill("ID_VENDOR", "manufacturer")
		fill("ID_MODEL", "product")
	}
	return model.RawDevice{KObj: filepath.Clean("/" + devpath), Env: props}
}
