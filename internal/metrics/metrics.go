package metrics

import (
	"github.com/initmaster/USBPlugEvent/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 所有方法对 nil 接收者安全，未启用指标时直接传 nil
type Metrics struct {
	EventsTotal          *prometheus.CounterVec
	InvalidPayloadsTotal prometheus.Counter
	DispatchesTotal      *prometheus.CounterVec
	LaunchFailuresTotal  prometheus.Counter
	SubscriptionsActive  prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usbplugevent_events_total",
			Help: "Device notifications received, by kind",
		}, []string{"kind"}),
		InvalidPayloadsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "usbplugevent_invalid_payloads_total",
			Help: "Device notifications dropped because they had no device id",
		}),
		DispatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usbplugevent_dispatches_total",
			Help: "Matching events that launched the configured command, by kind",
		}, []string{"kind"}),
		LaunchFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "usbplugevent_launch_failures_total",
			Help: "Commands that could not be spawned",
		}),
		SubscriptionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "usbplugevent_subscriptions_active",
			Help: "Live device notification subscriptions",
		}),
	}
}

func (m *Metrics) EventReceived(kind model.EventKind) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) InvalidPayload() {
	if m == nil {
		return
	}
	m.InvalidPayloadsTotal.Inc()
}

func (m *Metrics) Dispatched(kind model.EventKind) {
	if m == nil {
		return
	}
	m.DispatchesTotal.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) LaunchFailed() {
	if m == nil {
		return
	}
	m.LaunchFailuresTotal.Inc()
}

func (m *Metrics) SubscriptionOpened() {
	if m == nil {
		return
	}
	m.SubscriptionsActive.Inc()
}

func (m *Metrics) SubscriptionClosed() {
	if m == nil {
		return
	}
	m.SubscriptionsActive.Dec()
}
