package main

import (
	"errors"
	"time"

	"github.com/formicidae-tracker/naiad/internal/naiad"
	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	. "gopkg.in/check.v1"
)

type DispatcherSuite struct {
	store     naiad.ZoneStore
	scheduler *Scheduler
	view      *recordingView
	metrics   *Metrics
	d         *Dispatcher
	hook      *test.Hook
}

var _ = Suite(&DispatcherSuite{})

func (s *DispatcherSuite) SetUpTest(c *C) {
	s.store = naiad.NewZoneStoreWithZones(10)
	s.scheduler = NewScheduler()
	s.view = &recordingView{}
	s.metrics = NewMetrics()
	s.d = NewDispatcher(DispatcherOptions{
		Store:     s.store,
		Scheduler: s.scheduler,
		View:      s.view,
		Metrics:   s.metrics,
		Zones:     10,
	})
	_, s.hook = test.NewNullLogger()
	s.d.logger.Logger.AddHook(s.hook)
}

func (s *DispatcherSuite) TearDownTest(c *C) {
	<-s.scheduler.Stop().Done()
	s.hook.Reset()
}

func (s *DispatcherSuite) apply(c *C, program string) {
	commands, err := naiad.Parse(program)
	c.Assert(err, IsNil)
	c.Assert(s.d.Apply(commands), IsNil)
}

func (s *DispatcherSuite) zone(c *C, ID int) naiad.Zone {
	z, err := s.store.Find(ID)
	c.Assert(err, IsNil)
	return z
}

// checkTimers asserts that exactly the enabled zones hold a watering
// timer.
func (s *DispatcherSuite) checkTimers(c *C) {
	for _, z := range s.store.FindAll() {
		c.Check(s.scheduler.Active(z.ID, WateringTimer), Equals, z.WateringStatus == naiad.Enabled,
			Commentf("zone %d is %s", z.ID, z.WateringStatus))
	}
}

const enableProgram = "ПідключитиПолив: (1-2,7), 2017-11-01 10:10, 00:30, 1, 2, 30-40;"

func (s *DispatcherSuite) TestEnableWatering(c *C) {
	s.apply(c, enableProgram)

	for _, ID := range []int{1, 2, 7} {
		z := s.zone(c, ID)
		c.Check(z.WateringStatus, Equals, naiad.Enabled)
		c.Check(z.FirstWatering, Equals, time.Date(2017, 11, 1, 10, 10, 0, 0, time.Local))
		c.Check(z.WateringInterval, Equals, 30*time.Minute)
		c.Check(z.WaterVolume, Equals, 1)
		c.Check(z.WateringDuration, Equals, 2.0)
		c.Check(z.HumidityRange, Equals, naiad.HumidityRange{Min: 30, Max: 40})
	}
	c.Check(s.zone(c, 3).WateringStatus, Equals, naiad.NotInitialised)
	c.Check(s.scheduler.Zones(WateringTimer), DeepEquals, []int{1, 2, 7})

	c.Check(s.view.Messages(), DeepEquals, []string{
		"Enable watering zone 1",
		"Enable watering zone 2",
		"Enable watering zone 7",
	})
	c.Check(s.view.Events()[0], Equals, ViewEvent{Kind: ColorEvent, Zone: 1, Color: Green})
}

func (s *DispatcherSuite) TestSingleTimerPerZone(c *C) {
	s.apply(c, enableProgram)
	s.apply(c, enableProgram)
	s.apply(c, "ЗмінитиПолив: 1, , 01:00, , , ;")
	s.apply(c, "ЗупинитиПолив: 2;")
	s.apply(c, "ВідновитиПолив: 2;")
	s.apply(c, "ЗадатиПеріодичністьДатчиків: 1, 00:03;")
	s.apply(c, "ЗадатиПеріодичністьДатчиків: 1, 00:04;")

	c.Check(s.scheduler.Zones(WateringTimer), DeepEquals, []int{1, 2, 7})
	c.Check(s.scheduler.Zones(SensorTimer), DeepEquals, []int{1})
	c.Check(s.scheduler.Entries(), Equals, 4)
	c.Check(s.zone(c, 1).SensorsCheckInterval, Equals, 4*time.Minute)
}

func (s *DispatcherSuite) TestStopAndResume(c *C) {
	s.apply(c, "ЗупинитиПолив: 3;")
	s.apply(c, "ВідновитиПолив: 3;")
	c.Check(s.view.Messages(), HasLen, 0)
	c.Check(s.zone(c, 3).WateringStatus, Equals, naiad.NotInitialised)

	s.apply(c, enableProgram)
	s.view.Reset()
	s.apply(c, "ЗупинитиПолив: (3,7);")
	c.Check(s.zone(c, 7).WateringStatus, Equals, naiad.Disabled)
	c.Check(s.scheduler.Active(7, WateringTimer), Equals, false)
	c.Check(s.view.Messages(), DeepEquals, []string{"Stop watering zone 7"})

	s.view.Reset()
	s.apply(c, "ВідновитиПолив: (1,7,8);")
	c.Check(s.zone(c, 7).WateringStatus, Equals, naiad.Enabled)
	c.Check(s.scheduler.Active(7, WateringTimer), Equals, true)
	c.Check(s.view.Messages(), DeepEquals, []string{"Resuming watering zone 7"})
}

func (s *DispatcherSuite) TestChangeWatering(c *C) {
	s.apply(c, enableProgram)
	s.view.Reset()
	s.apply(c, "ЗмінитиПолив: 1, , 00:05, , 0.5, 5-10;")

	z := s.zone(c, 1)
	c.Check(z.WateringStatus, Equals, naiad.Enabled)
	c.Check(z.FirstWatering, Equals, time.Date(2017, 11, 1, 10, 10, 0, 0, time.Local))
	c.Check(z.WateringInterval, Equals, 5*time.Minute)
	c.Check(z.WaterVolume, Equals, 1)
	c.Check(z.WateringTime(), Equals, 30*time.Second)
	c.Check(z.HumidityRange, Equals, naiad.HumidityRange{Min: 5, Max: 10})
	c.Check(s.view.Messages(), DeepEquals, []string{"Change watering zone 1"})
	c.Check(s.scheduler.Active(1, WateringTimer), Equals, true)

	s.apply(c, "ЗмінитиПолив: 4, , , 3, , ;")
	c.Check(s.zone(c, 4).WateringStatus, Equals, naiad.NotInitialised)
	c.Check(s.zone(c, 4).WaterVolume, Equals, 3)
	c.Check(s.scheduler.Active(4, WateringTimer), Equals, false)

	s.apply(c, "ЗупинитиПолив: 2; ЗмінитиПолив: 2, , 00:10, , , ;")
	c.Check(s.zone(c, 2).WateringStatus, Equals, naiad.Disabled)
	c.Check(s.scheduler.Active(2, WateringTimer), Equals, false)
	s.checkTimers(c)
}

func (s *DispatcherSuite) TestChangeWateringDoesNotEnableThroughInterrupts(c *C) {
	s.d.Start()
	s.apply(c, enableProgram)
	s.apply(c, "ЗмінитиПолив: 3, , , 5, , ;")
	s.checkTimers(c)

	c.Assert(s.d.ResetAll(), IsNil)
	c.Check(s.zone(c, 3).WateringStatus, Equals, naiad.NotInitialised)
	s.checkTimers(c)
	for _, e := range s.view.Events() {
		c.Check(e.Kind == ShowLineEvent && e.Zone == 3, Equals, false)
	}

	s.view.Reset()
	c.Assert(s.d.ResumeAll(), IsNil)
	c.Check(s.zone(c, 3).WateringStatus, Equals, naiad.NotInitialised)
	c.Check(s.zone(c, 1).WateringStatus, Equals, naiad.Enabled)
	s.checkTimers(c)
	c.Check(s.view.Messages(), DeepEquals, []string{
		"Resuming watering zone 1",
		"Resuming watering zone 2",
		"Resuming watering zone 7",
	})

	s.apply(c, "ЗмінитиПолив: 3, , , 6, , ;")
	c.Assert(s.d.WaterShortage(), IsNil)
	c.Check(s.zone(c, 3).WateringStatus, Equals, naiad.NotInitialised)
	s.checkTimers(c)
}

func (s *DispatcherSuite) TestShowWatering(c *C) {
	s.apply(c, enableProgram)
	s.apply(c, "ЗадатиПеріодичністьДатчиків: 7, 00:03;")
	s.view.Reset()
	s.apply(c, "ПоказатиПолив: (5,7);")
	c.Check(s.view.Messages(), DeepEquals, []string{
		"Zone 5: watering enabled - false, sensors' check interval - 00:05",
		"Zone 7: watering enabled - true, first watering - 2017-11-01T10:10, watering interval - 00:30, water volume - 1L, watering duration - 2m, humidity range - 30%-40%, sensors' check interval - 00:03",
	})
}

func (s *DispatcherSuite) TestShowHumidity(c *C) {
	s.apply(c, "ПідключитиПолив: 1, 2017-11-01 10:10, 00:30, 1, 2, 35-35;")
	s.view.Reset()
	s.apply(c, "ПоказатиРівеньВологості: (1,2);")
	c.Check(s.view.Messages(), DeepEquals, []string{"Zone 1: humidity - 35%"})

	for i := 0; i < 20; i++ {
		v := s.d.sampleHumidity(naiad.HumidityRange{Min: 30, Max: 40})
		c.Check(v >= 30 && v <= 40, Equals, true)
	}
}

func (s *DispatcherSuite) TestFertilizing(c *C) {
	s.apply(c, "ПоказатиУдобрювання: 1;")
	s.apply(c, "ЗупинитиУдобрювання: 1;")
	s.apply(c, "ПідключитиУдобрювання: 1, 10;")
	s.apply(c, "ЗмінитиУдобрювання: 1, 12;")
	s.apply(c, "ПоказатиУдобрювання: 1;")
	s.apply(c, "ЗупинитиУдобрювання: 1;")

	c.Check(s.view.Messages(), DeepEquals, []string{
		"Zone 1: fertilizing enabled - false, fertilizer volume - 0L",
		"Enable fertilizing zone 1",
		"Change fertilizing zone 1",
		"Zone 1: fertilizing enabled - true, fertilizer volume - 12L",
		"Stop fertilizing zone 1",
	})
	borders := []float64{}
	for _, e := range s.view.Events() {
		if e.Kind == BorderEvent {
			borders = append(borders, e.Width)
		}
	}
	c.Check(borders, DeepEquals, []float64{FertilizingBorder, NoBorder})
	c.Check(s.zone(c, 1).FertilizingStatus, Equals, naiad.Disabled)
	c.Check(s.zone(c, 1).FertilizerVolume, Equals, 12)
}

func (s *DispatcherSuite) TestRegistryErrorAbortsBatch(c *C) {
	commands, err := naiad.Parse("ЗупинитиУдобрювання: 1; ПідключитиУдобрювання: (2,11,3), 10; ПідключитиУдобрювання: 4, 10;")
	c.Assert(err, IsNil)
	err = s.d.Apply(commands)
	c.Check(errors.Is(err, naiad.ErrZoneNotFound), Equals, true)
	c.Check(err, ErrorMatches, "ПідключитиУдобрювання: find zone 11: zone not found")

	for _, ID := range []int{1, 2, 3, 4} {
		c.Check(s.zone(c, ID).FertilizingStatus, Equals, naiad.NotInitialised)
	}
	c.Check(s.view.Events(), HasLen, 0)

	commands, err = naiad.Parse("ПідключитиПолив: (1, 99), 2017-11-01 10:10, 00:30, 1, 2, 30-40;")
	c.Assert(err, IsNil)
	err = s.d.Apply(commands)
	c.Check(errors.Is(err, naiad.ErrZoneNotFound), Equals, true)
	c.Check(s.zone(c, 1).WateringStatus, Equals, naiad.NotInitialised)
	c.Check(s.scheduler.Zones(WateringTimer), HasLen, 0)
	c.Check(s.view.Events(), HasLen, 0)
}

func (s *DispatcherSuite) TestWateringTick(c *C) {
	s.apply(c, "ПідключитиПолив: 1, 2017-11-01 10:10, 00:30, 4, 2, 30-40;")
	s.apply(c, "ЗмінитиПолив: 1, , , , 0.001, ;")
	s.apply(c, "ПідключитиУдобрювання: 1, 10;")
	c.Assert(s.d.SensorFault(1, WaterSensor), IsNil)
	c.Assert(s.d.SensorFault(1, FertilizerSensor), IsNil)
	s.view.Reset()

	s.d.wateringTick(1)
	messages := s.view.Messages()
	c.Assert(len(messages) >= 4, Equals, true)
	c.Check(messages[:4], DeepEquals, []string{
		"Zone 1: Water sensor is not responding",
		"Watering zone 1",
		"Zone 1: Fertilizer sensor is not responding",
		"Fertilizing zone 1",
	})
	c.Check(s.view.waitMessage("Watering zone stopped: 1", time.Second), Equals, true)

	events := s.view.Events()
	c.Check(events[len(events)-3], Equals, ViewEvent{Kind: ColorEvent, Zone: 1, Color: Black})
	c.Check(events[len(events)-2], Equals, ViewEvent{Kind: BorderEvent, Zone: 1, Width: NoBorder})
}

func (s *DispatcherSuite) TestWateringTickSkipsDisabledZones(c *C) {
	s.apply(c, enableProgram)
	s.apply(c, "ЗупинитиПолив: 1;")
	s.view.Reset()
	s.d.wateringTick(1)
	s.d.wateringTick(3)
	c.Check(s.view.Events(), HasLen, 0)
}

func (s *DispatcherSuite) TestSensorTick(c *C) {
	s.apply(c, "ПідключитиПолив: 1, 2017-11-01 10:10, 00:30, 4, 2, 42-42;")
	s.apply(c, "ЗмінитиПолив: 2, , , , , 55-55;")
	s.apply(c, "ПідключитиПолив: 3, 2017-11-01 10:10, 00:30, 4, 2, 61-61; ЗупинитиПолив: 3;")
	for _, ID := range []int{1, 2, 3, 4} {
		s.d.sensorTick(ID)
	}
	c.Check(s.zone(c, 1).LastHumidityValue, Equals, 42)
	c.Check(s.zone(c, 2).LastHumidityValue, Equals, 55)
	c.Check(s.zone(c, 3).LastHumidityValue, Equals, 61)
	c.Check(s.zone(c, 4).LastHumidityValue, Equals, 0)
}

func (s *DispatcherSuite) TestStartArmsSensors(c *C) {
	s.d.Start()
	c.Check(s.scheduler.Zones(SensorTimer), DeepEquals, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
}

func (s *DispatcherSuite) TestResetAll(c *C) {
	s.d.Start()
	s.apply(c, enableProgram)
	s.view.Reset()

	c.Assert(s.d.ResetAll(), IsNil)
	for _, ID := range []int{1, 2, 7} {
		c.Check(s.zone(c, ID).WateringStatus, Equals, naiad.Disabled)
	}
	c.Check(s.zone(c, 3).WateringStatus, Equals, naiad.NotInitialised)
	c.Check(s.scheduler.Entries(), Equals, 0)

	lines := []int{}
	for _, e := range s.view.Events() {
		if e.Kind == ShowLineEvent {
			lines = append(lines, e.Zone)
		}
	}
	c.Check(lines, DeepEquals, []int{1, 2, 7})
	c.Check(s.view.Messages(), DeepEquals, []string{"System urgently stopped"})

	s.view.Reset()
	c.Assert(s.d.ResumeAll(), IsNil)
	for _, ID := range []int{1, 2, 7} {
		c.Check(s.zone(c, ID).WateringStatus, Equals, naiad.Enabled)
	}
	c.Check(s.scheduler.Zones(WateringTimer), DeepEquals, []int{1, 2, 7})
	c.Check(s.scheduler.Zones(SensorTimer), HasLen, 10)
	c.Check(s.view.Messages(), DeepEquals, []string{
		"Resuming watering zone 1",
		"Resuming watering zone 2",
		"Resuming watering zone 7",
	})
	hidden := 0
	for _, e := range s.view.Events() {
		if e.Kind == HideLineEvent {
			hidden++
		}
	}
	c.Check(hidden, Equals, 10)
}

func (s *DispatcherSuite) TestWaterShortageKeepsSensors(c *C) {
	s.d.Start()
	s.apply(c, enableProgram)
	s.view.Reset()
	c.Assert(s.d.WaterShortage(), IsNil)
	c.Check(s.scheduler.Zones(WateringTimer), HasLen, 0)
	c.Check(s.scheduler.Zones(SensorTimer), HasLen, 10)
	c.Check(s.zone(c, 2).WateringStatus, Equals, naiad.Disabled)
	c.Check(s.view.Messages(), DeepEquals, []string{"Water shortage!"})
}

func (s *DispatcherSuite) TestFertilizerShortage(c *C) {
	s.apply(c, "ПідключитиУдобрювання: (1-3), 10;")
	s.view.Reset()
	c.Assert(s.d.FertilizerShortage(), IsNil)
	for _, z := range s.store.FindAll() {
		c.Check(z.FertilizingStatus, Equals, naiad.Disabled)
	}
	borders := 0
	for _, e := range s.view.Events() {
		if e.Kind == BorderEvent {
			c.Check(e.Width, Equals, NoBorder)
			borders++
		}
	}
	c.Check(borders, Equals, 10)
	c.Check(s.view.Messages(), DeepEquals, []string{"Fertilizer shortage!"})
}

func (s *DispatcherSuite) TestInvalidHumidity(c *C) {
	s.apply(c, enableProgram)
	s.view.Reset()
	c.Assert(s.d.InvalidHumidity(7, 120), IsNil)
	z := s.zone(c, 7)
	c.Check(z.LastHumidityValue, Equals, 120)
	c.Check(z.WateringStatus, Equals, naiad.Disabled)
	c.Check(s.scheduler.Active(7, WateringTimer), Equals, false)
	c.Check(s.scheduler.Active(1, WateringTimer), Equals, true)
	c.Check(s.view.Messages(), DeepEquals, []string{"Zone 7: Invalid humidity value - 120%"})

	err := s.d.InvalidHumidity(12, 50)
	c.Check(errors.Is(err, naiad.ErrZoneNotFound), Equals, true)
}

func (s *DispatcherSuite) TestSensorFaultIsLogged(c *C) {
	c.Assert(s.d.SensorFault(3, FertilizerSensor), IsNil)
	z := s.zone(c, 3)
	c.Check(z.FertilizerSensorFault, Equals, true)
	c.Check(z.WaterSensorFault, Equals, false)
	c.Check(s.view.Events(), HasLen, 0)

	entries := s.hook.AllEntries()
	c.Assert(len(entries) >= 1, Equals, true)
	last := entries[len(entries)-1]
	c.Check(last.Level, Equals, logrus.WarnLevel)
	c.Check(last.Message, Equals, "Fertilizer sensor is not responding")
	c.Check(last.Data["zone"], Equals, 3)
	c.Check(last.Data["domain"], Equals, "dispatcher")
}

type DispatcherMockSuite struct {
	ctrl  *gomock.Controller
	store *MockZoneStore
	view  *MockView
	d     *Dispatcher
}

var _ = Suite(&DispatcherMockSuite{})

func (s *DispatcherMockSuite) SetUpTest(c *C) {
	s.ctrl = gomock.NewController(c)
	s.store = NewMockZoneStore(s.ctrl)
	s.view = NewMockView(s.ctrl)
	s.d = NewDispatcher(DispatcherOptions{
		Store:     s.store,
		Scheduler: NewScheduler(),
		View:      s.view,
		Zones:     3,
	})
}

func (s *DispatcherMockSuite) TearDownTest(c *C) {
	s.ctrl.Finish()
}

func (s *DispatcherMockSuite) TestReadOnlyCommandsDoNotUpdate(c *C) {
	z := naiad.NewZone(2)
	s.store.EXPECT().Find(2).Return(z, nil).Times(6)
	s.view.EXPECT().Print(gomock.Any()).Times(2)

	commands, err := naiad.Parse("ПоказатиПолив: 2; ПоказатиРівеньВологості: 2; ПоказатиУдобрювання: 2;")
	c.Assert(err, IsNil)
	c.Check(s.d.Apply(commands), IsNil)
}

func (s *DispatcherMockSuite) TestStopFertilizingUpdatesOnce(c *C) {
	z := naiad.NewZone(1)
	z.FertilizingStatus = naiad.Enabled
	disabled := z
	disabled.FertilizingStatus = naiad.Disabled

	gomock.InOrder(
		s.store.EXPECT().Find(1).Return(z, nil).Times(2),
		s.store.EXPECT().Find(1).Return(z, nil),
		s.view.EXPECT().ChangeZoneBorder(1, NoBorder),
		s.view.EXPECT().Print("Stop fertilizing zone 1"),
		s.store.EXPECT().Update(disabled).Return(nil),
		s.store.EXPECT().Find(1).Return(disabled, nil),
	)

	commands, err := naiad.Parse("ЗупинитиУдобрювання: (1,1);")
	c.Assert(err, IsNil)
	c.Check(s.d.Apply(commands), IsNil)
}
