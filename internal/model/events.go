package model

import "time"

// EventKind 插拔方向
type EventKind int

const (
	Inserted EventKind = iota
	Removed
)

func (k EventKind) String() string {
	switch k {
	case Inserted:
		return "Inserted"
	case Removed:
		return "Removed"
	}
	return "Unknown"
}

// RawDevice 通知源投递的原始设备实例 (udev 属性)
type RawDevice struct {
	KObj string            // e.g., /devices/pci0000:00/0000:00:14.0/usb1/1-1
	Env  map[string]string // ID_VENDOR_ID, ID_MODEL_ID, ID_SERIAL_SHORT ...
}

// DeviceEvent 归一化后的插拔事件
type DeviceEvent struct {
	ID          string // 事件关联 ID，只用于日志
	DeviceID    string // e.g., USB\VID_056D&PID_C07E\4687336F3936
	Kind        EventKind
	Description string
	TimeStamp   time.Time
}

// ListenerConfig 启动时确定，运行期间只读
type ListenerConfig struct {
	TargetDeviceID string
	WatchInsert    bool
	WatchRemove    bool
	Command        string
}
