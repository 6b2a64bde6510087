package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/formicidae-tracker/olympus/pkg/tm"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type TimerKind int

const (
	WateringTimer TimerKind = iota
	SensorTimer
)

func (k TimerKind) String() string {
	switch k {
	case WateringTimer:
		return "watering"
	case SensorTimer:
		return "sensor"
	default:
		return fmt.Sprintf("<unknown timer %d>", int(k))
	}
}

type timerKey struct {
	zone int
	kind TimerKind
}

// periodicSchedule fires once at first, or as soon as possible if first
// is already past, then every period. A non-positive period makes it
// a one-shot schedule.
type periodicSchedule struct {
	next    time.Time
	period  time.Duration
	started bool
}

func (s *periodicSchedule) Next(t time.Time) time.Time {
	if s.started == false {
		s.started = true
		if s.next.Before(t) {
			s.next = t
		}
		return s.next
	}
	if s.period <= 0 {
		return time.Time{}
	}
	if s.next.After(t) == false {
		s.next = s.next.Add((t.Sub(s.next)/s.period + 1) * s.period)
	}
	return s.next
}

// Scheduler owns every per zone timer. There is at most one live
// recurring entry for each zone and TimerKind. Replacing or cancelling
// an entry only suppresses future firings.
type Scheduler struct {
	cron   *cron.Cron
	logger *logrus.Entry

	mx      sync.Mutex
	entries map[timerKey]cron.EntryID
	stops   map[int]*time.Timer
}

func NewScheduler() *Scheduler {
	logger := tm.NewLogger("scheduler")
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cron.PrintfLogger(logger)),
			cron.WithChain(cron.Recover(cron.PrintfLogger(logger))),
		),
		logger:  logger,
		entries: make(map[timerKey]cron.EntryID),
		stops:   make(map[int]*time.Timer),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels every timer and returns a context done once running
// jobs have completed.
func (s *Scheduler) Stop() context.Context {
	s.mx.Lock()
	defer s.mx.Unlock()
	for key, id := range s.entries {
		s.cron.Remove(id)
		delete(s.entries, key)
	}
	for zone, t := range s.stops {
		t.Stop()
		delete(s.stops, zone)
	}
	return s.cron.Stop()
}

// Replace cancels the zone's timer of the given kind, if any, and
// registers job to run at first, then every period. A one-shot timer
// is unregistered once its job has run.
func (s *Scheduler) Replace(zone int, kind TimerKind, first time.Time, period time.Duration, job func()) {
	s.mx.Lock()
	defer s.mx.Unlock()
	key := timerKey{zone, kind}
	s.cancelUnsafe(key)
	var id cron.EntryID
	run := job
	if period <= 0 {
		run = func() {
			job()
			s.mx.Lock()
			defer s.mx.Unlock()
			if current, ok := s.entries[key]; ok == true && current == id {
				s.cron.Remove(id)
				delete(s.entries, key)
			}
		}
	}
	id = s.cron.Schedule(&periodicSchedule{next: first, period: period}, cron.FuncJob(run))
	s.entries[key] = id
	s.logger.WithFields(logrus.Fields{
		"zone":   zone,
		"timer":  kind,
		"first":  first,
		"period": period,
	}).Debug("timer registered")
}

// Cancel removes the zone's timer of the given kind. Cancelling the
// watering timer also drops its pending stop. It returns false if no
// timer was registered.
func (s *Scheduler) Cancel(zone int, kind TimerKind) bool {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.cancelUnsafe(timerKey{zone, kind})
}

func (s *Scheduler) cancelUnsafe(key timerKey) bool {
	if key.kind == WateringTimer {
		if t, ok := s.stops[key.zone]; ok == true {
			t.Stop()
			delete(s.stops, key.zone)
		}
	}
	id, ok := s.entries[key]
	if ok == false {
		return false
	}
	s.cron.Remove(id)
	delete(s.entries, key)
	s.logger.WithFields(logrus.Fields{"zone": key.zone, "timer": key.kind}).Debug("timer cancelled")
	return true
}

// After runs job once after d for the zone. It replaces any pending
// one-shot job of the zone.
func (s *Scheduler) After(zone int, d time.Duration, job func()) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if t, ok := s.stops[zone]; ok == true {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mx.Lock()
		current := s.stops[zone] == t
		if current == true {
			delete(s.stops, zone)
		}
		s.mx.Unlock()
		if current == true {
			job()
		}
	})
	s.stops[zone] = t
}

func (s *Scheduler) Active(zone int, kind TimerKind) bool {
	s.mx.Lock()
	defer s.mx.Unlock()
	_, ok := s.entries[timerKey{zone, kind}]
	return ok
}

// Zones returns the zones with a live timer of the given kind, in
// ascending order.
func (s *Scheduler) Zones(kind TimerKind) []int {
	s.mx.Lock()
	defer s.mx.Unlock()
	res := []int{}
	for key := range s.entries {
		if key.kind == kind {
			res = append(res, key.zone)
		}
	}
	sort.Ints(res)
	return res
}

// CancelAll cancels every timer of the given kind and returns the
// affected zones.
func (s *Scheduler) CancelAll(kind TimerKind) []int {
	zones := s.Zones(kind)
	s.mx.Lock()
	defer s.mx.Unlock()
	for _, z := range zones {
		s.cancelUnsafe(timerKey{z, kind})
	}
	return zones
}

// Entries returns the number of recurring entries known to the
// underlying cron runner.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
