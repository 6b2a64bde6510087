package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/formicidae-tracker/naiad/internal/naiad"
	"github.com/formicidae-tracker/olympus/pkg/tm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Metrics exposes counters about applied commands, interrupts and
// zone activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry   *prometheus.Registry
	commands   *prometheus.CounterVec
	interrupts *prometheus.CounterVec
	waterings  *prometheus.CounterVec
	water      *prometheus.CounterVec
	humidity   *prometheus.GaugeVec
	events     *prometheus.CounterVec
	logger     *logrus.Entry
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "naiad",
			Name:      "commands_total",
			Help:      "Number of applied commands.",
		}, []string{"command"}),
		interrupts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "naiad",
			Name:      "interrupts_total",
			Help:      "Number of received interrupts.",
		}, []string{"interrupt"}),
		waterings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "naiad",
			Name:      "waterings_total",
			Help:      "Number of started watering cycles.",
		}, []string{"zone"}),
		water: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "naiad",
			Name:      "water_liters_total",
			Help:      "Configured water volume of started watering cycles.",
		}, []string{"zone"}),
		humidity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "naiad",
			Name:      "humidity_percent",
			Help:      "Last humidity reading.",
		}, []string{"zone"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "naiad",
			Name:      "view_events_total",
			Help:      "Number of events sent to the view.",
		}, []string{"kind"}),
		logger: tm.NewLogger("metrics"),
	}
	m.registry.MustRegister(m.commands, m.interrupts, m.waterings, m.water, m.humidity, m.events)
	return m
}

func (m *Metrics) ObserveCommand(name string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(name).Inc()
}

func (m *Metrics) ObserveInterrupt(i naiad.Interrupt) {
	if m == nil {
		return
	}
	m.interrupts.WithLabelValues(i.Identifier()).Inc()
}

func (m *Metrics) ObserveWatering(zone, volume int) {
	if m == nil {
		return
	}
	label := strconv.Itoa(zone)
	m.waterings.WithLabelValues(label).Inc()
	m.water.WithLabelValues(label).Add(float64(volume))
}

func (m *Metrics) ObserveHumidity(zone, value int) {
	if m == nil {
		return
	}
	m.humidity.WithLabelValues(strconv.Itoa(zone)).Set(float64(value))
}

func (m *Metrics) observeEvent(k EventKind) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(k.String()).Inc()
}

// Metrics is also a View sink counting events.
func (m *Metrics) Print(message string) { m.observeEvent(PrintEvent) }
func (m *Metrics) ChangeZoneColor(zone int, color Color) { m.observeEvent(ColorEvent) }
func (m *Metrics) ChangeZoneBorder(zone int, width float64) { m.observeEvent(BorderEvent) }
func (m *Metrics) ShowLineMarker(zone int) { m.observeEvent(ShowLineEvent) }
func (m *Metrics) HideLineMarker(zone int) { m.observeEvent(HideLineEvent) }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes the metrics on address until ctx is done.
func (m *Metrics) Serve(ctx context.Context, address string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{Addr: address, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			m.logger.WithError(err).Warn("metrics server shutdown")
		}
	}()

	m.logger.WithField("address", address).Info("serving metrics")
	if err := server.ListenAndServe(); err != nil && errors.Is(err, http.ErrServerClosed) == false {
		return err
	}
	return nil
}
