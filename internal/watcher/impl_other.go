//go:build !linux

package watcher

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/initmaster/USBPlugEvent/internal/model"
	"go.uber.org/zap"
)

var errUnsupported = errors.New("device notifications are not supported on " + runtime.GOOS)

type stubWatcher struct{}

func newWatcher(*zap.Logger) DeviceWatcher { return &stubWatcher{} }

func (w *stubWatcher) Subscribe(kind model.EventKind, _ Handler) (Subscription, error) {
	return nil, fmt.Errorf("%w: %s: %v", model.ErrSubscriptionFailed, kind, errUnsupported)
}

func (w *stubWatcher) List() ([]model.RawDevice, error) { return nil, errUnsupported }
