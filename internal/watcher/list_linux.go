package watcher

import (
	"fmt"

	"github.com/initmaster/USBPlugEvent/internal/model"
	"github.com/pilebones/go-udev/crawler"
	"github.com/pilebones/go-udev/netlink"
	"go.uber.org/zap"
)

// List 扫描 sysfs 中已存在的 usb_device
// 遍历中途出错时返回已扫描到的设备并记录警告
func (w *linuxWatcher) List() ([]model.RawDevice, error) {
	matcher := &netlink.RuleDefinitions{
		Rules: []netlink.RuleDefinition{{
			Env: map[string]string{"DEVTYPE": "^usb_device$"},
		}},
	}
	if err := matcher.Compile(); err != nil {
		return nil, fmt.Errorf("list matcher: %w", err)
	}

	queue := make(chan crawler.Device)
	errs := make(chan error, 1)
	quit := w.crawl(queue, errs, matcher)
	defer close(quit)

	// crawler 结束时关闭 queue，出错时先写 errs 再关闭
	var devices []model.RawDevice
	for dev := range queue {
		devices = append(devices, w.toRaw(dev.KObj, dev.Env, true))
	}

	select {
	case err := <-errs:
		w.log.Warn("Device scan incomplete", zap.Int("found", len(devices)), zap.Error(err))
	default:
	}
	return devices, nil
}
