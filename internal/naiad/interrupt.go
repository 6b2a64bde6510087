package naiad

import (
	"fmt"
	"time"
)

type InterruptFlags int

const (
	Warning    InterruptFlags = 0x00
	Emergency  InterruptFlags = 0x01
	ZoneScoped InterruptFlags = 0x02
)

// InterruptKind identifies an operator or hardware interrupt. Values
// are the codes written to the interrupt journal.
type InterruptKind int

const (
	ResetInterrupt InterruptKind = iota + 1
	InvalidHumidityInterrupt
	WaterShortageInterrupt
	FertilizerShortageInterrupt
	WaterSensorFaultInterrupt
	FertilizerSensorFaultInterrupt
)

type Interrupt interface {
	Kind() InterruptKind
	Flags() InterruptFlags
	Identifier() string
	Description() string
}

type InterruptString struct {
	kind        InterruptKind
	f           InterruptFlags
	identifier  string
	description string
}

func (i InterruptString) Kind() InterruptKind {
	return i.kind
}

func (i InterruptString) Flags() InterruptFlags {
	return i.f
}

func (i InterruptString) Identifier() string {
	return i.identifier
}

func (i InterruptString) Description() string {
	return i.description
}

var ResetAll = InterruptString{ResetInterrupt, Emergency, "system.reset", "System urgently stopped"}
var InvalidHumidity = InterruptString{InvalidHumidityInterrupt, Emergency | ZoneScoped, "zone.humidity.invalid", "Invalid humidity value"}
var WaterShortage = InterruptString{WaterShortageInterrupt, Emergency, "system.water_shortage", "Water shortage!"}
var FertilizerShortage = InterruptString{FertilizerShortageInterrupt, Warning, "system.fertilizer_shortage", "Fertilizer shortage!"}
var WaterSensorFault = InterruptString{WaterSensorFaultInterrupt, Warning | ZoneScoped, "zone.water_sensor", "Water sensor is not responding"}
var FertilizerSensorFault = InterruptString{FertilizerSensorFaultInterrupt, Warning | ZoneScoped, "zone.fertilizer_sensor", "Fertilizer sensor is not responding"}

var interrupts = []Interrupt{
	ResetAll,
	InvalidHumidity,
	WaterShortage,
	FertilizerShortage,
	WaterSensorFault,
	FertilizerSensorFault,
}

// InterruptForKind returns the interrupt with the given journal code.
func InterruptForKind(k InterruptKind) (Interrupt, error) {
	if k < ResetInterrupt || int(k) > len(interrupts) {
		return nil, fmt.Errorf("unknown interrupt code %d", int(k))
	}
	return interrupts[k-1], nil
}

type InterruptEvent struct {
	Zone        int
	Code        InterruptKind
	Identifier  string
	Description string
	Flags       InterruptFlags
	Time        time.Time
}

func NewInterruptEvent(i Interrupt, zone int) InterruptEvent {
	return InterruptEvent{
		Zone:        zone,
		Code:        i.Kind(),
		Identifier:  i.Identifier(),
		Description: i.Description(),
		Flags:       i.Flags(),
		Time:        time.Now(),
	}
}
