package pipeline

import "github.com/initmaster/USBPlugEvent/internal/model"

// Matches 设备 ID 必须完全相等，不做前缀或大小写匹配
func Matches(ev model.DeviceEvent, targetID string) bool {
	return ev.DeviceID == targetID
}

// ShouldDispatch 方向是否启用
func ShouldDispatch(kind model.EventKind, cfg model.ListenerConfig) bool {
	switch kind {
	case model.Inserted:
		return cfg.WatchInsert
	case model.Removed:
		return cfg.WatchRemove
	}
	return false
}
