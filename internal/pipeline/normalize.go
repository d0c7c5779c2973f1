package pipeline

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/initmaster/USBPlugEvent/internal/model"
)

// FormatDeviceID USB\VID_056D&PID_C07E\4687336F3936
func FormatDeviceID(vid, pid, instance string) string {
	return fmt.Sprintf(`USB\VID_%s&PID_%s\%s`, vid, pid, instance)
}

// Normalize 将原始通知转换成 DeviceEvent，kind 由通知所在的订阅通道决定
func Normalize(raw model.RawDevice, kind model.EventKind) (model.DeviceEvent, error) {
	vid, pid, ok := vendorProduct(raw.Env)
	if !ok {
		return model.DeviceEvent{}, fmt.Errorf("%w: %s: no vendor/product id", model.ErrInvalidEventPayload, raw.KObj)
	}
	instance := SanitizeSerial(raw.Env["ID_SERIAL_SHORT"])
	if instance == "" {
		// 没有序列号时退化为端口路径，例如 1-1.2
		instance = portName(raw)
	}
	if instance == "" {
		return model.DeviceEvent{}, fmt.Errorf("%w: %s: no instance id", model.ErrInvalidEventPayload, raw.KObj)
	}

	return model.DeviceEvent{
		ID:          uuid.NewString(),
		DeviceID:    FormatDeviceID(vid, pid, instance),
		Kind:        kind,
		Description: description(raw.Env),
		TimeStamp:   time.Now(),
	}, nil
}

// vendorProduct 优先 udev 属性，其次内核 PRODUCT=56d/c07e/100
func vendorProduct(env map[string]string) (string, string, bool) {
	vid, pid := hexID(env["ID_VENDOR_ID"]), hexID(env["ID_MODEL_ID"])
	if vid != "" && pid != "" {
		return vid, pid, true
	}
	parts := strings.Split(env["PRODUCT"], "/")
	if len(parts) < 2 {
		return "", "", false
	}
	vid, pid = hexID(parts[0]), hexID(parts[1])
	return vid, pid, vid != "" && pid != ""
}

// hexID 补齐为 4 位大写十六进制，非法值返回空串
// 大写是 ID 格式的一部分，Matches 不做任何大小写折叠
func hexID(s string) string {
	if s == "" {
		return ""
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%04X", v)
}

// SanitizeSerial 与 udev usb_id 处理 ID_SERIAL_SHORT 的方式一致：
// 去掉首尾空白，连续空白合并为一个 '_'，不安全的 ASCII 字符替换为 '_'。
// udev 事件里的值已经清洗过，再执行一次结果不变
func SanitizeSerial(serial string) string {
	var b strings.Builder
	pendingSpace := false
	for _, r := range strings.TrimSpace(serial) {
		if unicode.IsSpace(r) {
			pendingSpace = true
			continue
		}
		if pendingSpace {
			b.WriteByte('_')
			pendingSpace = false
		}
		if r < utf8.RuneSelf && !isSafeSerialChar(byte(r)) {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isSafeSerialChar(c byte) bool {
	switch {
	case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	}
	return strings.IndexByte("#+-.:=@_", c) >= 0
}

func portName(raw model.RawDevice) string {
	p := raw.KObj
	if p == "" || p == "/" {
		p = raw.Env["DEVPATH"]
	}
	if p == "" {
		return ""
	}
	name := path.Base(p)
	if name == "/" || name == "." {
		return ""
	}
	return name
}

func description(env map[string]string) string {
	pick := func(keys ...string) string {
		for _, k := range keys {
			if v := env[k]; v != "" {
				return strings.ReplaceAll(v, "_", " ")
			}
		}
		return ""
	}
	vendor := pick("ID_VENDOR_FROM_DATABASE", "ID_VENDOR")
	product := pick("ID_MODEL_FROM_DATABASE", "ID_MODEL")
	return strings.TrimSpace(vendor + " " + product)
}
