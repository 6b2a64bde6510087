package main

//go:generate mockgen -source=view.go -destination=mock_view_test.go -package=main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/formicidae-tracker/olympus/pkg/tm"
	"github.com/sirupsen/logrus"
)

type Color int

const (
	Black Color = iota
	Green
)

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case Green:
		return "green"
	default:
		return fmt.Sprintf("<unknown color %d>", int(c))
	}
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

const (
	FertilizingBorder = 5.0
	NoBorder          = 0.0
)

// View receives the observable effects of the dispatcher. All methods
// must be safe to call from any goroutine.
type View interface {
	Print(message string)
	ChangeZoneColor(zone int, color Color)
	ChangeZoneBorder(zone int, width float64)
	ShowLineMarker(zone int)
	HideLineMarker(zone int)
}

type EventKind int

const (
	PrintEvent EventKind = iota
	ColorEvent
	BorderEvent
	ShowLineEvent
	HideLineEvent
)

var eventKindNames = []string{"print", "color", "border", "show-line", "hide-line"}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return fmt.Sprintf("<unknown event %d>", int(k))
	}
	return eventKindNames[k]
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ViewEvent is a single call on a View. Zone is 0 for system wide
// messages.
type ViewEvent struct {
	Kind    EventKind `json:"kind"`
	Time    time.Time `json:"time"`
	Zone    int       `json:"zone,omitempty"`
	Message string    `json:"message,omitempty"`
	Color   Color     `json:"color"`
	Width   float64   `json:"width,omitempty"`
}

func (e ViewEvent) apply(v View) {
	switch e.Kind {
	case PrintEvent:
		v.Print(e.Message)
	case ColorEvent:
		v.ChangeZoneColor(e.Zone, e.Color)
	case BorderEvent:
		v.ChangeZoneBorder(e.Zone, e.Width)
	case ShowLineEvent:
		v.ShowLineMarker(e.Zone)
	case HideLineEvent:
		v.HideLineMarker(e.Zone)
	}
}

// ViewHub is a View that queues every event and replays it, in order,
// on a single goroutine to a set of sinks.
type ViewHub struct {
	sinks  []View
	events chan ViewEvent
	logger *logrus.Entry

	mx     sync.RWMutex
	closed bool
	done   chan struct{}
}

const viewQueueSize = 256

func NewViewHub(sinks ...View) *ViewHub {
	h := &ViewHub{
		sinks:  sinks,
		events: make(chan ViewEvent, viewQueueSize),
		logger: tm.NewLogger("view"),
		done:   make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *ViewHub) run() {
	defer close(h.done)
	for e := range h.events {
		for _, s := range h.sinks {
			e.apply(s)
		}
	}
}

// Close stops accepting events, waits for every queued event to be
// delivered, then closes the sinks implementing io.Closer.
func (h *ViewHub) Close() error {
	h.mx.Lock()
	if h.closed == true {
		h.mx.Unlock()
		return nil
	}
	h.closed = true
	close(h.events)
	h.mx.Unlock()
	<-h.done
	for _, s := range h.sinks {
		if closer, ok := s.(io.Closer); ok == true {
			if err := closer.Close(); err != nil {
				h.logger.WithError(err).Warn("could not close view")
			}
		}
	}
	return nil
}

func (h *ViewHub) push(e ViewEvent) {
	e.Time = time.Now()
	h.mx.RLock()
	defer h.mx.RUnlock()
	if h.closed == true {
		h.logger.WithField("event", e.Kind).Warn("view is closed, dropping event")
		return
	}
	h.events <- e
}

func (h *ViewHub) Print(message string) {
	h.push(ViewEvent{Kind: PrintEvent, Message: message})
}

func (h *ViewHub) ChangeZoneColor(zone int, color Color) {
	h.push(ViewEvent{Kind: ColorEvent, Zone: zone, Color: color})
}

func (h *ViewHub) ChangeZoneBorder(zone int, width float64) {
	h.push(ViewEvent{Kind: BorderEvent, Zone: zone, Width: width})
}

func (h *ViewHub) ShowLineMarker(zone int) {
	h.push(ViewEvent{Kind: ShowLineEvent, Zone: zone})
}

func (h *ViewHub) HideLineMarker(zone int) {
	h.push(ViewEvent{Kind: HideLineEvent, Zone: zone})
}

// logView writes printed messages to the log.
type logView struct {
	logger *logrus.Entry
}

func NewLogView() View {
	return &logView{logger: tm.NewLogger("view/log")}
}

func (v *logView) Print(message string) {
	v.logger.Info(message)
}

func (v *logView) ChangeZoneColor(zone int, color Color) {
	v.logger.WithFields(logrus.Fields{"zone": zone, "color": color}).Trace("color change")
}

func (v *logView) ChangeZoneBorder(zone int, width float64) {
	v.logger.WithFields(logrus.Fields{"zone": zone, "width": width}).Trace("border change")
}

func (v *logView) ShowLineMarker(zone int) {
	v.logger.WithField("zone", zone).Debug("zone marked as stopped")
}

func (v *logView) HideLineMarker(zone int) {
	v.logger.WithField("zone", zone).Trace("zone marker cleared")
}
