//go:build linux

package sysutil

import (
	"os"
	"path/filepath"
	"strings"
)

const SysfsRoot = "/sys"

// ReadSysAttr 读取 /sys<devpath>/<attr>，不存在时返回空串
// devpath 形如 /devices/pci0000:00/0000:00:14.0/usb1/1-1
func ReadSysAttr(root, devpath, attr string) string {
	if devpath == "" {
		return ""
	}
	b, err := os.ReadFile(filepath.Join(root, devpath, attr))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
