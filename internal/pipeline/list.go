package pipeline

import (
	"fmt"
	"io"
	"sort"

	"github.com/initmaster/USBPlugEvent/internal/model"
	"github.com/initmaster/USBPlugEvent/internal/sysutil"
	"go.uber.org/zap"
)

// WriteList 打印一次性枚举结果，无法归一化的条目跳过
func WriteList(w io.Writer, devices []model.RawDevice, log *zap.Logger) error {
	log = sysutil.Or(log)
	events := make([]model.DeviceEvent, 0, len(devices))
	for _, raw := range devices {
		ev, err := Normalize(raw, model.Inserted)
		if err != nil {
			log.Debug("skip device", zap.Error(err))
			continue
		}
		events = append(events, ev)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].DeviceID < events[j].DeviceID })

	if _, err := fmt.Fprintf(w, "\n%s\n", ListHeader); err != nil {
		return err
	}
	for _, ev := range events {
		if _, err := fmt.Fprintf(w, "%s | %s\n", ev.DeviceID, ev.Description); err != nil {
			return err
		}
	}
	return nil
}
