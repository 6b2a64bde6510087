package naiad

import "time"

const (
	EnableWateringKeyword       = "ПідключитиПолив"
	ShowWateringKeyword         = "ПоказатиПолив"
	StopWateringKeyword         = "ЗупинитиПолив"
	ResumeWateringKeyword       = "ВідновитиПолив"
	ChangeWateringKeyword       = "ЗмінитиПолив"
	SetSensorPeriodicityKeyword = "ЗадатиПеріодичністьДатчиків"
	ShowHumidityKeyword         = "ПоказатиРівеньВологості"
	EnableFertilizingKeyword    = "ПідключитиУдобрювання"
	ShowFertilizingKeyword      = "ПоказатиУдобрювання"
	ChangeFertilizingKeyword    = "ЗмінитиУдобрювання"
	StopFertilizingKeyword      = "ЗупинитиУдобрювання"
)

// Command is one parsed statement of a program. The set of
// implementations is closed to this package.
type Command interface {
	// Name returns the keyword the command was written with.
	Name() string
	// Zones returns the targeted zone identifiers, in selector order.
	Zones() []int

	command()
}

// Selector is the ordered list of zone identifiers a command applies
// to. Identifiers may repeat.
type Selector []int

func (s Selector) Zones() []int {
	return s
}

func (s Selector) command() {}

// MaxZoneRange is the largest number of zones a single range item of
// a selector may expand to.
const MaxZoneRange = 10000

// ExpandRange returns every identifier in [from;to] in ascending
// order. It returns nil if to < from or if the range holds more than
// MaxZoneRange identifiers.
func ExpandRange(from, to int) []int {
	if to < from {
		return nil
	}
	span := uint(to) - uint(from)
	if span >= MaxZoneRange {
		return nil
	}
	n := int(span) + 1
	res := make([]int, 0, n)
	for i := 0; i < n; i++ {
		res = append(res, from+i)
	}
	return res
}

type HumidityRange struct {
	Min, Max int
}

func (r HumidityRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

type EnableWatering struct {
	Selector
	FirstWatering time.Time
	Interval      time.Duration
	WaterVolume   int
	// Duration in minutes.
	WateringDuration int
	HumidityRange    HumidityRange
}

func (EnableWatering) Name() string { return EnableWateringKeyword }

// ChangeWatering overwrites only the non-nil fields of the targeted
// zones.
type ChangeWatering struct {
	Selector
	FirstWatering    *time.Time
	Interval         *time.Duration
	WaterVolume      *int
	WateringDuration *float64
	HumidityRange    *HumidityRange
}

func (ChangeWatering) Name() string { return ChangeWateringKeyword }

type ShowWatering struct{ Selector }

func (ShowWatering) Name() string { return ShowWateringKeyword }

type StopWatering struct{ Selector }

func (StopWatering) Name() string { return StopWateringKeyword }

type ResumeWatering struct{ Selector }

func (ResumeWatering) Name() string { return ResumeWateringKeyword }

type ShowHumidity struct{ Selector }

func (ShowHumidity) Name() string { return ShowHumidityKeyword }

type SetSensorPeriodicity struct {
	Selector
	Interval time.Duration
}

func (SetSensorPeriodicity) Name() string { return SetSensorPeriodicityKeyword }

type EnableFertilizing struct {
	Selector
	FertilizerVolume int
}

func (EnableFertilizing) Name() string { return EnableFertilizingKeyword }

type ChangeFertilizing struct {
	Selector
	FertilizerVolume int
}

func (ChangeFertilizing) Name() string { return ChangeFertilizingKeyword }

type ShowFertilizing struct{ Selector }

func (ShowFertilizing) Name() string { return ShowFertilizingKeyword }

type StopFertilizing struct{ Selector }

func (StopFertilizing) Name() string { return StopFertilizingKeyword }
