package pipeline

import (
	"testing"

	"github.com/initmaster/USBPlugEvent/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUdevProperties(t *testing.T) {
	raw := model.RawDevice{
		KObj: "/devices/pci0000:00/0000:00:14.0/usb1/1-2",
		Env: map[string]string{
			"ID_VENDOR_ID":            "056d",
			"ID_MODEL_ID":             "c07e",
			"ID_SERIAL_SHORT":         "4687336F3936",
			"ID_VENDOR_FROM_DATABASE": "Logitech, Inc.",
			"ID_MODEL":                "G502_HERO",
		},
	}

	ev, err := Normalize(raw, model.Removed)
	require.NoError(t, err)
	assert.Equal(t, `USB\VID_056D&PID_C07E\4687336F3936`, ev.DeviceID)
	assert.Equal(t, model.Removed, ev.Kind)
	assert.Equal(t, "Logitech, Inc. G502 HERO", ev.Description)
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.TimeStamp.IsZero())
}

func TestNormalizeKernelProductFallback(t *testing.T) {
	raw := model.RawDevice{
		KObj: "/devices/pci0000:00/0000:00:14.0/usb1/1-1.2",
		Env: map[string]string{
			"PRODUCT": "46d/c52b/1211",
		},
	}

	ev, err := Normalize(raw, model.Inserted)
	require.NoError(t, err)
	assert.Equal(t, `USB\VID_046D&PID_C52B\1-1.2`, ev.DeviceID)
	assert.Equal(t, "", ev.Description)
}

func TestNormalizeDevpathWhenNoKObj(t *testing.T) {
	raw := model.RawDevice{
		Env: map[string]string{
			"ID_VENDOR_ID": "1d6b",
			"ID_MODEL_ID":  "0002",
			"DEVPATH":      "/devices/pci0000:00/0000:00:14.0/usb3/3-4",
		},
	}

	ev, err := Normalize(raw, model.Inserted)
	require.NoError(t, err)
	assert.Equal(t, `USB\VID_1D6B&PID_0002\3-4`, ev.DeviceID)
}

func TestNormalizeSerialCaseIsKept(t *testing.T) {
	raw := model.RawDevice{
		KObj: "/devices/usb1/1-1",
		Env:  map[string]string{"ID_VENDOR_ID": "abcd", "ID_MODEL_ID": "ef01", "ID_SERIAL_SHORT": "aBc123"},
	}
	ev, err := Normalize(raw, model.Inserted)
	require.NoError(t, err)
	assert.Equal(t, `USB\VID_ABCD&PID_EF01\aBc123`, ev.DeviceID)
}

func TestNormalizeInvalidPayload(t *testing.T) {
	tests := []struct {
		name string
		raw  model.RawDevice
	}{
		{"empty", model.RawDevice{}},
		{"nil env", model.RawDevice{KObj: "/devices/usb1/1-1"}},
		{"vendor only", model.RawDevice{KObj: "/devices/usb1/1-1", Env: map[string]string{"ID_VENDOR_ID": "056d"}}},
		{"bad hex", model.RawDevice{KObj: "/devices/usb1/1-1", Env: map[string]string{"ID_VENDOR_ID": "zz", "ID_MODEL_ID": "c07e"}}},
		{"short product", model.RawDevice{KObj: "/devices/usb1/1-1", Env: map[string]string{"PRODUCT": "56d"}}},
		{"no instance", model.RawDevice{Env: map[string]string{"ID_VENDOR_ID": "056d", "ID_MODEL_ID": "c07e"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw, model.Inserted)
			assert.ErrorIs(t, err, model.ErrInvalidEventPayload)
		})
	}
}

func TestSanitizeSerial(t *testing.T) {
	tests := map[string]string{
		"4687336F3936":      "4687336F3936",
		"AA 01":             "AA_01",
		"  AA \t 01  ":      "AA_01",
		"AA_01":             "AA_01",
		"S/N(1)*":           "S_N_1__",
		"a#b+c-d.e:f=g@h_i": "a#b+c-d.e:f=g@h_i",
		"Zürich":            "Zürich",
		"   ":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeSerial(in), "serial %q", in)
		assert.Equal(t, want, SanitizeSerial(want), "already sanitized %q", want)
	}
}

func TestListedAndLiveIDsAgree(t *testing.T) {
	// udev 事件：usb_id 已清洗的 serial
	live := model.RawDevice{
		KObj: "/devices/pci0000:00/0000:00:14.0/usb2/2-1",
		Env: map[string]string{
			"ID_VENDOR_ID":    "0781",
			"ID_MODEL_ID":     "5567",
			"ID_SERIAL_SHORT": "AA_01",
		},
	}
	// sysfs 扫描：uevent 文件 + 原始 serial 属性
	listed := model.RawDevice{
		KObj: "/devices/pci0000:00/0000:00:14.0/usb2/2-1",
		Env: map[string]string{
			"PRODUCT":         "781/5567/100",
			"ID_SERIAL_SHORT": "AA 01",
		},
	}

	liveEv, err := Normalize(live, model.Removed)
	require.NoError(t, err)
	listedEv, err := Normalize(listed, model.Inserted)
	require.NoError(t, err)

	assert.Equal(t, `USB\VID_0781&PID_5567\AA_01`, liveEv.DeviceID)
	assert.Equal(t, liveEv.DeviceID, listedEv.DeviceID)
	assert.True(t, Matches(liveEv, listedEv.DeviceID))
}
