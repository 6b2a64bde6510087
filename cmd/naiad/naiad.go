package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/formicidae-tracker/naiad/internal/naiad"
	"github.com/formicidae-tracker/naiad/pkg/naiadpb"
	"github.com/formicidae-tracker/olympus/pkg/tm"
	"github.com/grandcat/zeroconf"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type Naiad struct {
	naiadpb.UnimplementedNaiadServer

	config Config
	logger *logrus.Entry
	tracer trace.Tracer
	since  time.Time

	parser     naiad.Parser
	store      naiad.ZoneStore
	scheduler  *Scheduler
	dispatcher *Dispatcher
	board      *Board
	metrics    *Metrics
	hub        *ViewHub
	journal    *Journal

	mx               sync.Mutex
	cancel           context.CancelFunc
	quit, done, idle chan struct{}
}

var instrumentationName = "github.com/formicidae-tracker/naiad/cmd/naiad"

// NaiadOptions holds the collaborators of a Naiad service. Nil fields
// are built from the Config.
type NaiadOptions struct {
	Config  Config
	Store   naiad.ZoneStore
	Journal *Journal
	Sinks   []View
}

func OpenNaiad(c Config) (*Naiad, error) {
	if err := c.Check(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if c.OTELEndpoint != "" {
		tm.SetUpTelemetry(tm.OtelProviderArgs{
			CollectorURL:   c.OTELEndpoint,
			ServiceName:    "naiad",
			ServiceVersion: naiad.NAIAD_VERSION,
			Level:          tm.VerboseLevel(c.Verbosity),
		})
	}

	journal, err := OpenJournal(c.JournalDir)
	if err != nil {
		return nil, fmt.Errorf("could not open journal: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sinks := []View{NewLogView()}
	if len(c.MQTT.Broker) > 0 {
		client, err := ConnectMQTT(ctx, c.MQTT)
		if err != nil {
			cancel()
			journal.Close()
			return nil, err
		}
		view, err := NewMQTTView(client, c.MQTT)
		if err != nil {
			cancel()
			journal.Close()
			return nil, err
		}
		sinks = append(sinks, view)
	}

	n, err := NewNaiad(NaiadOptions{
		Config:  c,
		Journal: journal,
		Sinks:   sinks,
	})
	if err != nil {
		cancel()
		journal.Close()
		return nil, err
	}
	n.cancel = cancel
	return n, nil
}

func NewNaiad(o NaiadOptions) (*Naiad, error) {
	c := o.Config
	store := o.Store
	if store == nil {
		store = naiad.NewZoneStoreWithZones(c.Zones)
		for _, z := range store.FindAll() {
			z.SensorsCheckInterval = c.SensorsCheckInterval
			if err := store.Update(z); err != nil {
				return nil, err
			}
		}
	}

	n := &Naiad{
		config:    c,
		logger:    tm.NewLogger("naiad"),
		tracer:    otel.Tracer(instrumentationName),
		parser:    naiad.NewParser(naiad.NewLexer()),
		store:     store,
		scheduler: NewScheduler(),
		board:     NewBoard(c.Zones, c.Columns, DefaultBoardMessages),
		journal:   o.Journal,
		cancel:    func() {},
	}
	if len(c.Metrics.Address) > 0 {
		n.metrics = NewMetrics()
	}

	sinks := append([]View{n.board}, o.Sinks...)
	if n.metrics != nil {
		sinks = append(sinks, n.metrics)
	}
	n.hub = NewViewHub(sinks...)

	n.dispatcher = NewDispatcher(DispatcherOptions{
		Store:     store,
		Scheduler: n.scheduler,
		View:      n.hub,
		Metrics:   n.metrics,
		Zones:     c.Zones,
	})
	return n, nil
}

func (n *Naiad) spawnZeroconf() {
	go func() {
		host, err := os.Hostname()
		if err != nil {
			n.logger.WithError(err).Error("zeroconf error: could not get hostname")
			return
		}
		info := naiad.ServiceInfo{Version: naiad.NAIAD_VERSION, Zones: n.config.Zones}
		server, err := zeroconf.Register(naiad.ServiceInstance(host),
			naiad.ServiceType, naiad.ServiceDomain, n.config.RPCPort, info.TXT(), nil)
		if err != nil {
			n.logger.WithError(err).Error("zeroconf error")
			return
		}
		<-n.idle
		server.Shutdown()
	}()
}

func (n *Naiad) spawnMetrics(ctx context.Context) {
	if n.metrics == nil {
		return
	}
	go func() {
		if err := n.metrics.Serve(ctx, n.config.Metrics.Address); err != nil {
			n.logger.WithError(err).Error("metrics server error")
		}
	}()
}

func (n *Naiad) runRPC() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", n.config.RPCPort))
	if err != nil {
		return err
	}
	options := []grpc.ServerOption{}

	if tm.Enabled() {
		options = append(options,
			grpc.UnaryInterceptor(otelgrpc.UnaryServerInterceptor()),
			grpc.StreamInterceptor(otelgrpc.StreamServerInterceptor()),
		)
	}

	server := grpc.NewServer(options...)
	naiadpb.RegisterNaiadServer(server, n)

	go func() {
		<-n.quit
		server.GracefulStop()
		close(n.idle)
	}()

	if err := server.Serve(lis); err != nil {
		return err
	}

	<-n.idle
	n.quit = nil
	n.idle = nil
	return nil
}

// start arms the sensor timers and applies the startup program, if
// any.
func (n *Naiad) start() error {
	n.since = time.Now()
	n.scheduler.Start()
	n.dispatcher.Start()
	if len(n.config.Program) == 0 {
		return nil
	}
	program, err := naiad.ReadProgramFile(n.config.Program)
	if err != nil {
		return err
	}
	_, err = n.submit(program)
	return err
}

func (n *Naiad) run() error {
	n.quit = make(chan struct{})
	n.done = make(chan struct{})
	n.idle = make(chan struct{})
	defer close(n.done)
	defer n.close()

	if err := n.start(); err != nil {
		return err
	}

	n.logger.WithFields(logrus.Fields{
		"zones":   n.config.Zones,
		"columns": n.config.Columns,
		"port":    n.config.RPCPort,
	}).Info("managing zones")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	n.spawnMetrics(ctx)
	n.spawnZeroconf()

	return n.runRPC()
}

func (n *Naiad) close() {
	<-n.scheduler.Stop().Done()
	if err := n.hub.Close(); err != nil {
		n.logger.WithError(err).Error("view did not close gracefully")
	}
	n.cancel()
	if err := n.journal.Close(); err != nil {
		n.logger.WithError(err).Error("journal did not close gracefully")
	}
}

func (n *Naiad) shutdown() error {
	if n.quit == nil {
		return fmt.Errorf("naiad: not started")
	}

	close(n.quit)
	<-n.done
	n.done = nil
	return nil
}

func endWithError(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, "naiad error")
		span.RecordError(err)
	}
	span.End()
}

// submit parses a whole program and applies it. A program that does
// not parse leaves every zone untouched.
func (n *Naiad) submit(program string) (commands []naiad.Command, err error) {
	n.mx.Lock()
	defer n.mx.Unlock()

	defer func() {
		n.journal.Program(program, commands, err)
		if err != nil {
			n.hub.Print(err.Error())
		}
	}()

	commands, err = n.parser.Parse(program)
	if err != nil {
		return nil, err
	}
	return commands, n.dispatcher.Apply(commands)
}

func mapError(err error) error {
	var lexErr *naiad.LexError
	var parseErr *naiad.ParseError
	switch {
	case errors.As(err, &lexErr), errors.As(err, &parseErr):
		return status.Error(grpccodes.InvalidArgument, err.Error())
	case errors.Is(err, naiad.ErrZoneNotFound):
		return status.Error(grpccodes.NotFound, err.Error())
	default:
		return status.Error(grpccodes.Internal, err.Error())
	}
}

func (n *Naiad) Submit(ctx context.Context, request *naiadpb.SubmitRequest) (*naiadpb.SubmitReply, error) {
	var err error
	_, span := n.tracer.Start(ctx, "naiad/Submit")
	defer func() { endWithError(span, err) }()

	compatible, err := naiad.VersionAreCompatible(naiad.NAIAD_VERSION, request.Version)
	if err != nil {
		return nil, status.Error(grpccodes.InvalidArgument, err.Error())
	}
	if compatible == false {
		err = fmt.Errorf("client version (%s) is incompatible with service version (%s)", request.Version, naiad.NAIAD_VERSION)
		return nil, status.Error(grpccodes.FailedPrecondition, err.Error())
	}

	commands, err := n.submit(request.Program)
	span.SetAttributes(attribute.Int("commands", len(commands)))
	if err != nil {
		return nil, mapError(err)
	}
	return &naiadpb.SubmitReply{Commands: len(commands)}, nil
}

// raise dispatches a numbered interrupt. zone and value are ignored by
// system wide interrupts.
func (n *Naiad) raise(code naiad.InterruptKind, zone, value int) (err error) {
	i, err := naiad.InterruptForKind(code)
	if err != nil {
		return status.Error(grpccodes.InvalidArgument, err.Error())
	}
	if i.Flags()&naiad.ZoneScoped == 0 {
		zone = 0
	} else if zone < 1 || zone > n.config.Zones {
		return status.Errorf(grpccodes.InvalidArgument, "%s: invalid zone %d", i.Identifier(), zone)
	}

	n.mx.Lock()
	defer n.mx.Unlock()
	defer func() {
		n.journal.Interrupt(naiad.NewInterruptEvent(i, zone), err)
	}()

	switch code {
	case naiad.ResetInterrupt:
		err = n.dispatcher.ResetAll()
	case naiad.InvalidHumidityInterrupt:
		err = n.dispatcher.InvalidHumidity(zone, value)
	case naiad.WaterShortageInterrupt:
		err = n.dispatcher.WaterShortage()
	case naiad.FertilizerShortageInterrupt:
		err = n.dispatcher.FertilizerShortage()
	case naiad.WaterSensorFaultInterrupt:
		err = n.dispatcher.SensorFault(zone, WaterSensor)
	case naiad.FertilizerSensorFaultInterrupt:
		err = n.dispatcher.SensorFault(zone, FertilizerSensor)
	}
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (n *Naiad) Interrupt(ctx context.Context, request *naiadpb.InterruptRequest) (*naiadpb.Empty, error) {
	var err error
	_, span := n.tracer.Start(ctx, "naiad/Interrupt")
	defer func() { endWithError(span, err) }()
	span.SetAttributes(attribute.Int("code", request.Code), attribute.Int("zone", request.Zone))

	if err = n.raise(naiad.InterruptKind(request.Code), request.Zone, request.Value); err != nil {
		return nil, err
	}
	return &naiadpb.Empty{}, nil
}

func (n *Naiad) ResumeAll(ctx context.Context, e *naiadpb.Empty) (*naiadpb.Empty, error) {
	var err error
	_, span := n.tracer.Start(ctx, "naiad/ResumeAll")
	defer func() { endWithError(span, err) }()

	n.mx.Lock()
	defer n.mx.Unlock()
	if err = n.dispatcher.ResumeAll(); err != nil {
		return nil, mapError(err)
	}
	return &naiadpb.Empty{}, nil
}

func (n *Naiad) GetStatus(ctx context.Context, e *naiadpb.Empty) (*naiadpb.Status, error) {
	var err error
	_, span := n.tracer.Start(ctx, "naiad/GetStatus")
	defer func() { endWithError(span, err) }()

	res := &naiadpb.Status{
		Version: naiad.NAIAD_VERSION,
		Since:   timestamppb.New(n.since),
		Columns: n.config.Columns,
	}
	for _, z := range n.dispatcher.Zones() {
		res.Zones = append(res.Zones, n.zoneStatus(z))
	}
	board := n.board.Snapshot()
	for _, c := range board.Cells {
		res.Cells = append(res.Cells, naiadpb.Cell{
			Zone:   c.Zone,
			Row:    c.Row,
			Column: c.Column,
			Color:  c.Color.String(),
			Border: c.Border,
			Line:   c.Line,
		})
	}
	for _, m := range board.Messages {
		res.Messages = append(res.Messages, naiadpb.Message{Time: timestamppb.New(m.Time), Text: m.Text})
	}
	return res, nil
}

func (n *Naiad) zoneStatus(z naiad.Zone) naiadpb.ZoneStatus {
	res := naiadpb.ZoneStatus{
		ID:                    z.ID,
		WateringStatus:        z.WateringStatus.String(),
		SensorsCheckInterval:  durationpb.New(z.SensorsCheckInterval),
		FertilizingStatus:     z.FertilizingStatus.String(),
		FertilizerVolume:      z.FertilizerVolume,
		WaterSensorFault:      z.WaterSensorFault,
		FertilizerSensorFault: z.FertilizerSensorFault,
		LastHumidityValue:     z.LastHumidityValue,
		WateringScheduled:     n.scheduler.Active(z.ID, WateringTimer),
	}
	if z.WateringStatus == naiad.NotInitialised {
		return res
	}
	res.FirstWatering = timestamppb.New(z.FirstWatering)
	res.WateringInterval = durationpb.New(z.WateringInterval)
	res.WaterVolume = z.WaterVolume
	res.WateringDuration = z.WateringDuration
	res.HumidityMin = z.HumidityRange.Min
	res.HumidityMax = z.HumidityRange.Max
	return res
}
