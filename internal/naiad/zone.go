package naiad

import (
	"fmt"
	"time"
)

type Status int

const (
	NotInitialised Status = iota
	Enabled
	Disabled
)

func (s Status) String() string {
	switch s {
	case NotInitialised:
		return "NOT_INITIALISED"
	case Enabled:
		return "ENABLED"
	case Disabled:
		return "DISABLED"
	default:
		return fmt.Sprintf("<unknown status %d>", int(s))
	}
}

const DefaultSensorsCheckInterval = 5 * time.Minute

// Zone is the configuration and status of an irrigation unit.
type Zone struct {
	ID             int
	WateringStatus Status
	FirstWatering  time.Time
	// WateringInterval is the period between two watering starts.
	WateringInterval time.Duration
	WaterVolume      int
	// WateringDuration is expressed in minutes.
	WateringDuration     float64
	HumidityRange        HumidityRange
	SensorsCheckInterval time.Duration

	FertilizingStatus Status
	FertilizerVolume  int

	WaterSensorFault      bool
	FertilizerSensorFault bool
	LastHumidityValue     int
}

func NewZone(ID int) Zone {
	return Zone{
		ID:                   ID,
		WateringStatus:       NotInitialised,
		FertilizingStatus:    NotInitialised,
		SensorsCheckInterval: DefaultSensorsCheckInterval,
	}
}

// WateringTime returns the watering duration as a time.Duration.
func (z Zone) WateringTime() time.Duration {
	return time.Duration(z.WateringDuration * float64(time.Minute))
}

// Apply writes the present fields of a ChangeWatering into the zone.
func (z *Zone) Apply(c ChangeWatering) {
	if c.FirstWatering != nil {
		z.FirstWatering = *c.FirstWatering
	}
	if c.Interval != nil {
		z.WateringInterval = *c.Interval
	}
	if c.WaterVolume != nil {
		z.WaterVolume = *c.WaterVolume
	}
	if c.WateringDuration != nil {
		z.WateringDuration = *c.WateringDuration
	}
	if c.HumidityRange != nil {
		z.HumidityRange = *c.HumidityRange
	}
}

// Enable writes every watering parameter of an EnableWatering into
// the zone and sets its watering status to Enabled.
func (z *Zone) Enable(c EnableWatering) {
	z.FirstWatering = c.FirstWatering
	z.WateringInterval = c.Interval
	z.WaterVolume = c.WaterVolume
	z.WateringDuration = float64(c.WateringDuration)
	z.HumidityRange = c.HumidityRange
	z.WateringStatus = Enabled
}

// FormatClock formats a duration as HH:MM. Seconds are truncated.
func FormatClock(d time.Duration) string {
	hours := int(d / time.Hour)
	minutes := int(d % time.Hour / time.Minute)
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}
