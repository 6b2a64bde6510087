package main

//go:generate mockgen -destination=mock_zone_store_test.go -package=main github.com/formicidae-tracker/naiad/internal/naiad ZoneStore

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/formicidae-tracker/naiad/internal/naiad"
	"github.com/formicidae-tracker/olympus/pkg/tm"
	"github.com/sirupsen/logrus"
)

type SensorKind int

const (
	WaterSensor SensorKind = iota
	FertilizerSensor
)

// Dispatcher applies commands and interrupts to the zone registry, and
// owns the watering and sensor timers of every zone. A single mutex
// serializes command application and timer callbacks.
type Dispatcher struct {
	mx        sync.Mutex
	store     naiad.ZoneStore
	scheduler *Scheduler
	view      View
	metrics   *Metrics
	logger    *logrus.Entry
	zones     int
	rand      *rand.Rand
	now       func() time.Time
}

type DispatcherOptions struct {
	Store     naiad.ZoneStore
	Scheduler *Scheduler
	View      View
	Metrics   *Metrics
	// Zones is the configured zone id range [1;Zones].
	Zones int
}

func NewDispatcher(o DispatcherOptions) *Dispatcher {
	return &Dispatcher{
		store:     o.Store,
		scheduler: o.Scheduler,
		view:      o.View,
		metrics:   o.Metrics,
		logger:    tm.NewLogger("dispatcher"),
		zones:     o.Zones,
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
	}
}

// Start registers the sensor timer of every zone.
func (d *Dispatcher) Start() {
	d.mx.Lock()
	defer d.mx.Unlock()
	for _, z := range d.store.FindAll() {
		d.scheduleSensor(z)
	}
}

// Apply applies commands in order. Every targeted zone is looked up
// first: if one is missing, no command is applied.
func (d *Dispatcher) Apply(commands []naiad.Command) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	if err := d.lookupAll(commands); err != nil {
		return err
	}
	for _, c := range commands {
		if err := d.apply(c); err != nil {
			return fmt.Errorf("%s: %w", c.Name(), err)
		}
		d.metrics.ObserveCommand(c.Name())
	}
	return nil
}

func (d *Dispatcher) lookupAll(commands []naiad.Command) error {
	for _, c := range commands {
		for _, ID := range c.Zones() {
			if _, err := d.store.Find(ID); err != nil {
				return fmt.Errorf("%s: %w", c.Name(), err)
			}
		}
	}
	return nil
}

func (d *Dispatcher) apply(c naiad.Command) error {
	switch cmd := c.(type) {
	case naiad.EnableWatering:
		return d.forEach(cmd, func(z *naiad.Zone) (bool, error) {
			z.Enable(cmd)
			d.scheduleWatering(*z)
			d.view.ChangeZoneColor(z.ID, Green)
			d.view.Print(fmt.Sprintf("Enable watering zone %d", z.ID))
			return true, nil
		})
	case naiad.ShowWatering:
		return d.forEach(cmd, func(z *naiad.Zone) (bool, error) {
			d.view.Print(describeWatering(*z))
			return false, nil
		})
	case naiad.StopWatering:
		return d.forEach(cmd, func(z *naiad.Zone) (bool, error) {
			if z.WateringStatus != naiad.Enabled {
				return false, nil
			}
			z.WateringStatus = naiad.Disabled
			d.scheduler.Cancel(z.ID, WateringTimer)
			d.view.ChangeZoneColor(z.ID, Black)
			d.view.Print(fmt.Sprintf("Stop watering zone %d", z.ID))
			return true, nil
		})
	case naiad.ResumeWatering:
		return d.forEach(cmd, func(z *naiad.Zone) (bool, error) {
			return d.resume(z), nil
		})
	case naiad.ChangeWatering:
		return d.forEach(cmd, func(z *naiad.Zone) (bool, error) {
			z.Apply(cmd)
			if z.WateringStatus == naiad.Enabled {
				d.scheduleWatering(*z)
			} else {
				d.scheduler.Cancel(z.ID, WateringTimer)
			}
			d.view.Print(fmt.Sprintf("Change watering zone %d", z.ID))
			return true, nil
		})
	case naiad.SetSensorPeriodicity:
		return d.forEach(cmd, func(z *naiad.Zone) (bool, error) {
			z.SensorsCheckInterval = cmd.Interval
			d.scheduleSensor(*z)
			d.view.Print(fmt.Sprintf("Set sensor periodicity for zone %d", z.ID))
			return true, nil
		})
	case naiad.ShowHumidity:
		return d.forEach(cmd, func(z *naiad.Zone) (bool, error) {
			if z.WateringStatus != naiad.Enabled {
				return false, nil
			}
			d.view.Print(fmt.Sprintf("Zone %d: humidity - %d%%", z.ID, d.sampleHumidity(z.HumidityRange)))
			return false, nil
		})
	case naiad.EnableFertilizing:
		return d.forEach(cmd, func(z *naiad.Zone) (bool, error) {
			z.FertilizerVolume = cmd.FertilizerVolume
			z.FertilizingStatus = naiad.Enabled
			d.view.ChangeZoneBorder(z.ID, FertilizingBorder)
			d.view.Print(fmt.Sprintf("Enable fertilizing zone %d", z.ID))
			return true, nil
		})
	case naiad.ChangeFertilizing:
		return d.forEach(cmd, func(z *naiad.Zone) (bool, error) {
			z.FertilizerVolume = cmd.FertilizerVolume
			d.view.Print(fmt.Sprintf("Change fertilizing zone %d", z.ID))
			return true, nil
		})
	case naiad.ShowFertilizing:
		return d.forEach(cmd, func(z *naiad.Zone) (bool, error) {
			d.view.Print(fmt.Sprintf("Zone %d: fertilizing enabled - %t, fertilizer volume - %dL",
				z.ID, z.FertilizingStatus == naiad.Enabled, z.FertilizerVolume))
			return false, nil
		})
	case naiad.StopFertilizing:
		return d.forEach(cmd, func(z *naiad.Zone) (bool, error) {
			if z.FertilizingStatus != naiad.Enabled {
				return false, nil
			}
			z.FertilizingStatus = naiad.Disabled
			d.view.ChangeZoneBorder(z.ID, NoBorder)
			d.view.Print(fmt.Sprintf("Stop fertilizing zone %d", z.ID))
			return true, nil
		})
	default:
		return fmt.Errorf("unsupported command %T", c)
	}
}

// forEach runs fn on a copy of every targeted zone, in selector order,
// and saves the copy if fn reports a modification.
func (d *Dispatcher) forEach(c naiad.Command, fn func(z *naiad.Zone) (bool, error)) error {
	for _, ID := range c.Zones() {
		if err := d.update(ID, fn); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) update(ID int, fn func(z *naiad.Zone) (bool, error)) error {
	z, err := d.store.Find(ID)
	if err != nil {
		return err
	}
	modified, err := fn(&z)
	if err != nil || modified == false {
		return err
	}
	return d.store.Update(z)
}

func (d *Dispatcher) resume(z *naiad.Zone) bool {
	if z.WateringStatus != naiad.Disabled {
		return false
	}
	z.WateringStatus = naiad.Enabled
	d.scheduleWatering(*z)
	d.view.ChangeZoneColor(z.ID, Green)
	d.view.Print(fmt.Sprintf("Resuming watering zone %d", z.ID))
	return true
}

func (d *Dispatcher) scheduleWatering(z naiad.Zone) {
	ID := z.ID
	d.scheduler.Replace(ID, WateringTimer, z.FirstWatering, z.WateringInterval, func() {
		d.wateringTick(ID)
	})
}

func (d *Dispatcher) scheduleSensor(z naiad.Zone) {
	ID := z.ID
	d.scheduler.Replace(ID, SensorTimer, d.now(), z.SensorsCheckInterval, func() {
		d.sensorTick(ID)
	})
}

func (d *Dispatcher) wateringTick(ID int) {
	d.mx.Lock()
	defer d.mx.Unlock()
	z, err := d.store.Find(ID)
	if err != nil {
		d.logger.WithError(err).WithField("zone", ID).Error("watering tick")
		return
	}
	if z.WateringStatus != naiad.Enabled {
		return
	}

	if z.WaterSensorFault == true {
		d.view.Print(fmt.Sprintf("Zone %d: %s", ID, naiad.WaterSensorFault.Description()))
	}
	d.view.ChangeZoneColor(ID, Green)
	d.view.Print(fmt.Sprintf("Watering zone %d", ID))
	d.metrics.ObserveWatering(ID, z.WaterVolume)
	if z.FertilizingStatus == naiad.Enabled {
		if z.FertilizerSensorFault == true {
			d.view.Print(fmt.Sprintf("Zone %d: %s", ID, naiad.FertilizerSensorFault.Description()))
		}
		d.view.Print(fmt.Sprintf("Fertilizing zone %d", ID))
		d.view.ChangeZoneBorder(ID, FertilizingBorder)
	}

	d.scheduler.After(ID, z.WateringTime(), func() {
		d.view.ChangeZoneColor(ID, Black)
		d.view.ChangeZoneBorder(ID, NoBorder)
		d.view.Print(fmt.Sprintf("Watering zone stopped: %d", ID))
	})
}

func (d *Dispatcher) sensorTick(ID int) {
	d.mx.Lock()
	defer d.mx.Unlock()
	err := d.update(ID, func(z *naiad.Zone) (bool, error) {
		z.LastHumidityValue = d.sampleHumidity(z.HumidityRange)
		d.logger.WithFields(logrus.Fields{
			"zone":     ID,
			"humidity": z.LastHumidityValue,
		}).Debug("sensor reading")
		d.metrics.ObserveHumidity(ID, z.LastHumidityValue)
		return true, nil
	})
	if err != nil {
		d.logger.WithError(err).WithField("zone", ID).Error("sensor tick")
	}
}

func (d *Dispatcher) sampleHumidity(r naiad.HumidityRange) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + d.rand.Intn(r.Max-r.Min+1)
}

// forceStop disables an enabled zone and marks it on the view. It is a
// no-op for other zones.
func (d *Dispatcher) forceStop(z *naiad.Zone) bool {
	if z.WateringStatus != naiad.Enabled {
		return false
	}
	d.scheduler.Cancel(z.ID, WateringTimer)
	z.WateringStatus = naiad.Disabled
	d.view.ShowLineMarker(z.ID)
	d.view.ChangeZoneColor(z.ID, Black)
	d.view.ChangeZoneBorder(z.ID, NoBorder)
	return true
}

func (d *Dispatcher) forceStopAll() error {
	for _, z := range d.store.FindAll() {
		if d.forceStop(&z) == false {
			continue
		}
		if err := d.store.Update(z); err != nil {
			return err
		}
	}
	return nil
}

// ResetAll stops every watering zone and every sensor timer.
func (d *Dispatcher) ResetAll() error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.metrics.ObserveInterrupt(naiad.ResetAll)
	err := d.forceStopAll()
	d.scheduler.CancelAll(SensorTimer)
	d.view.Print(naiad.ResetAll.Description())
	return err
}

// WaterShortage stops every watering zone. Sensor timers are kept.
func (d *Dispatcher) WaterShortage() error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.metrics.ObserveInterrupt(naiad.WaterShortage)
	err := d.forceStopAll()
	d.view.Print(naiad.WaterShortage.Description())
	return err
}

// FertilizerShortage disables fertilizing on every zone.
func (d *Dispatcher) FertilizerShortage() error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.metrics.ObserveInterrupt(naiad.FertilizerShortage)
	for _, z := range d.store.FindAll() {
		z.FertilizingStatus = naiad.Disabled
		if err := d.store.Update(z); err != nil {
			return err
		}
		d.view.ChangeZoneBorder(z.ID, NoBorder)
	}
	d.view.Print(naiad.FertilizerShortage.Description())
	return nil
}

// InvalidHumidity stores an out of range humidity value for a zone and
// stops it as a reset would.
func (d *Dispatcher) InvalidHumidity(ID, value int) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.metrics.ObserveInterrupt(naiad.InvalidHumidity)
	return d.update(ID, func(z *naiad.Zone) (bool, error) {
		z.LastHumidityValue = value
		d.forceStop(z)
		d.view.Print(fmt.Sprintf("Zone %d: %s - %d%%", ID, naiad.InvalidHumidity.Description(), value))
		return true, nil
	})
}

// SensorFault flags a zone sensor as not responding. It is reported
// by the next watering tick of the zone.
func (d *Dispatcher) SensorFault(ID int, sensor SensorKind) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	i := naiad.WaterSensorFault
	if sensor == FertilizerSensor {
		i = naiad.FertilizerSensorFault
	}
	d.metrics.ObserveInterrupt(i)
	return d.update(ID, func(z *naiad.Zone) (bool, error) {
		if sensor == FertilizerSensor {
			z.FertilizerSensorFault = true
		} else {
			z.WaterSensorFault = true
		}
		d.logger.WithField("zone", ID).Warn(i.Description())
		return true, nil
	})
}

// ResumeAll resumes watering on every disabled zone of the configured
// range, clears all line markers and re-arms missing sensor timers.
func (d *Dispatcher) ResumeAll() error {
	d.mx.Lock()
	defer d.mx.Unlock()
	for ID := 1; ID <= d.zones; ID++ {
		if err := d.update(ID, func(z *naiad.Zone) (bool, error) {
			if d.scheduler.Active(ID, SensorTimer) == false {
				d.scheduleSensor(*z)
			}
			return d.resume(z), nil
		}); err != nil {
			return err
		}
		d.view.HideLineMarker(ID)
	}
	return nil
}

// Zones returns a snapshot of every zone.
func (d *Dispatcher) Zones() []naiad.Zone {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.store.FindAll()
}

func describeWatering(z naiad.Zone) string {
	enabled := z.WateringStatus == naiad.Enabled
	res := fmt.Sprintf("Zone %d: watering enabled - %t", z.ID, enabled)
	if enabled == true {
		res += fmt.Sprintf(", first watering - %s, watering interval - %s, water volume - %dL, watering duration - %sm, humidity range - %d%%-%d%%",
			z.FirstWatering.Format("2006-01-02T15:04"),
			naiad.FormatClock(z.WateringInterval),
			z.WaterVolume,
			strconv.FormatFloat(z.WateringDuration, 'f', -1, 64),
			z.HumidityRange.Min,
			z.HumidityRange.Max)
	}
	return res + fmt.Sprintf(", sensors' check interval - %s", naiad.FormatClock(z.SensorsCheckInterval))
}
