package sysutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSysAttr(t *testing.T) {
	root := t.TempDir()
	dev := filepath.Join(root, "devices", "usb1", "1-1")
	require.NoError(t, os.MkdirAll(dev, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dev, "serial"), []byte("4687336F3936\n"), 0o644))

	assert.Equal(t, "4687336F3936", ReadSysAttr(root, "/devices/usb1/1-1", "serial"))
	assert.Equal(t, "", ReadSysAttr(root, "/devices/usb1/1-1", "product"))
	assert.Equal(t, "", ReadSysAttr(root, "", "serial"))
}
