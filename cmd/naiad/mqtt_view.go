package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/formicidae-tracker/olympus/pkg/tm"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	TopicPrefix string `yaml:"topic-prefix"`
	ClientID    string `yaml:"client-id"`
	MaxFailures int    `yaml:"max-failures"`
}

const (
	mqttConnectRetries = 5
	mqttPublishTimeout = 2 * time.Second
	mqttBreakerTimeout = 30 * time.Second
	mqttQueueSize      = 64
)

// ConnectMQTT connects to the configured broker, retrying with an
// exponential backoff. The connection is closed when ctx is done.
func ConnectMQTT(ctx context.Context, c MQTTConfig) (mqtt.Client, error) {
	logger := tm.NewLogger("view/mqtt").WithField("broker", c.Broker)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(c.Broker)
	opts.SetClientID(c.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 10 * time.Second

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			logger.WithError(token.Error()).Warn("could not connect")
			return token.Error()
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, mqttConnectRetries-1), ctx))
	if err != nil {
		return nil, fmt.Errorf("could not connect to MQTT broker %s: %w", c.Broker, err)
	}
	logger.Info("connected")

	go func() {
		<-ctx.Done()
		client.Disconnect(250)
		logger.Debug("disconnected")
	}()

	return client, nil
}

type publishFunc func(topic string, payload []byte) error

// MQTTView publishes every view event as JSON, on
// <prefix>/<host>/zone/<id> for zone events and <prefix>/<host>/system
// for the others. Events are published from their own goroutine, and
// dropped when the publishing queue is full.
type MQTTView struct {
	publish publishFunc
	prefix  string
	host    string
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Entry

	mx     sync.RWMutex
	closed bool
	queue  chan ViewEvent
	done   chan struct{}
}

func NewMQTTView(client mqtt.Client, c MQTTConfig) (*MQTTView, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, err
	}
	publish := func(topic string, payload []byte) error {
		token := client.Publish(topic, 0, false, payload)
		if token.WaitTimeout(mqttPublishTimeout) == false {
			return fmt.Errorf("publish on %s: timeout", topic)
		}
		return token.Error()
	}
	return newMQTTView(publish, c.TopicPrefix, host, c.MaxFailures), nil
}

func newMQTTView(publish publishFunc, prefix, host string, maxFailures int) *MQTTView {
	if maxFailures <= 0 {
		maxFailures = 1
	}
	v := &MQTTView{
		publish: publish,
		prefix:  prefix,
		host:    host,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "mqtt",
			Timeout: mqttBreakerTimeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= uint32(maxFailures)
			},
		}),
		logger: tm.NewLogger("view/mqtt"),
		queue:  make(chan ViewEvent, mqttQueueSize),
		done:   make(chan struct{}),
	}
	go v.run()
	return v
}

func (v *MQTTView) run() {
	defer close(v.done)
	for e := range v.queue {
		v.publishEvent(e)
	}
}

// Close publishes the queued events and stops the view. Events sent
// afterwards are dropped.
func (v *MQTTView) Close() error {
	v.mx.Lock()
	if v.closed == false {
		v.closed = true
		close(v.queue)
	}
	v.mx.Unlock()
	<-v.done
	return nil
}

func (v *MQTTView) topic(zone int) string {
	if zone == 0 {
		return fmt.Sprintf("%s/%s/system", v.prefix, v.host)
	}
	return fmt.Sprintf("%s/%s/zone/%d", v.prefix, v.host, zone)
}

func (v *MQTTView) send(e ViewEvent) {
	e.Time = time.Now()
	v.mx.RLock()
	defer v.mx.RUnlock()
	if v.closed == true {
		v.logger.WithField("event", e.Kind).Warn("view is closed, dropping event")
		return
	}
	select {
	case v.queue <- e:
	default:
		v.logger.WithField("event", e.Kind).Warn("queue is full, dropping event")
	}
}

func (v *MQTTView) publishEvent(e ViewEvent) {
	payload, err := json.Marshal(e)
	if err != nil {
		v.logger.WithError(err).Error("could not encode event")
		return
	}
	topic := v.topic(e.Zone)
	_, err = v.breaker.Execute(func() (interface{}, error) {
		return nil, v.publish(topic, payload)
	})
	if err != nil {
		v.logger.WithError(err).WithField("topic", topic).Warn("event not published")
	}
}

func (v *MQTTView) Print(message string) {
	v.send(ViewEvent{Kind: PrintEvent, Message: message})
}

func (v *MQTTView) ChangeZoneColor(zone int, color Color) {
	v.send(ViewEvent{Kind: ColorEvent, Zone: zone, Color: color})
}

func (v *MQTTView) ChangeZoneBorder(zone int, width float64) {
	v.send(ViewEvent{Kind: BorderEvent, Zone: zone, Width: width})
}

func (v *MQTTView) ShowLineMarker(zone int) {
	v.send(ViewEvent{Kind: ShowLineEvent, Zone: zone})
}

func (v *MQTTView) HideLineMarker(zone int) {
	v.send(ViewEvent{Kind: HideLineEvent, Zone: zone})
}
