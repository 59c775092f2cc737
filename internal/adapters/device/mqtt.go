package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/okian/comfortloop/pkg/logger"
)

// MQTTConfig holds the broker and topics of an MQTT bridged air conditioner.
type MQTTConfig struct {
	Broker       string // e.g. "tcp://localhost:1883"
	ClientID     string
	Username     string
	Password     string
	StateTopic   string // retained state documents published by the bridge
	CommandTopic string // setpoint commands consumed by the bridge
}

// MQTTDevice reads state from a retained topic and publishes setpoint commands.
type MQTTDevice struct {
	cfg    MQTTConfig
	opts   options
	client mqtt.Client

	mu         sync.RWMutex
	last       *State
	receivedAt time.Time
}

// NewMQTTDevice connects to the broker and subscribes to the state topic.
func NewMQTTDevice(ctx context.Context, cfg MQTTConfig, opts ...Option) (*MQTTDevice, error) {
	if cfg.StateTopic == "" || cfg.CommandTopic == "" {
		return nil, fmt.Errorf("state and command topics are required")
	}
	d := &MQTTDevice{cfg: cfg, opts: newOptions("device.mqtt", opts)}

	d.client = d.opts.mqttClient
	if d.client == nil {
		if cfg.Broker == "" {
			return nil, fmt.Errorf("MQTT broker address is required")
		}
		if cfg.ClientID == "" {
			cfg.ClientID = fmt.Sprintf("comfortloop-%d", time.Now().Unix())
		}
		d.client = mqtt.NewClient(d.clientOptions(ctx, cfg))
	}

	if !d.client.IsConnected() {
		if err := wait(ctx, d.client.Connect()); err != nil {
			return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
		}
	}
	if err := d.subscribe(ctx); err != nil {
		d.client.Disconnect(250)
		return nil, err
	}
	return d, nil
}

func (d *MQTTDevice) clientOptions(ctx context.Context, cfg MQTTConfig) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(10 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		d.opts.log.Warn(ctx, "mqtt connection lost", logger.Error(err))
	})
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		d.opts.log.Info(ctx, "mqtt connected", logger.String("broker", cfg.Broker))
		// clean sessions drop subscriptions on reconnect
		if token := c.Subscribe(cfg.StateTopic, 1, d.onState); token.Wait() && token.Error() != nil {
			d.opts.log.Error(ctx, "mqtt resubscribe failed", logger.Error(token.Error()))
		}
	})
	return opts
}

func (d *MQTTDevice) subscribe(ctx context.Context) error {
	if err := wait(ctx, d.client.Subscribe(d.cfg.StateTopic, 1, d.onState)); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", d.cfg.StateTopic, err)
	}
	return nil
}

func (d *MQTTDevice) onState(_ mqtt.Client, msg mqtt.Message) {
	s, err := ParseState(msg.Payload())
	if err != nil {
		d.opts.log.Warn(context.Background(), "ignoring device state",
			logger.String("topic", msg.Topic()), logger.Error(err))
		return
	}
	d.mu.Lock()
	d.last = &s
	d.receivedAt = d.opts.now()
	d.mu.Unlock()
}

func (d *MQTTDevice) Name() string { return "mqtt" }

// ReadState returns the most recent state published by the bridge.
func (d *MQTTDevice) ReadState(ctx context.Context) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.last == nil {
		return State{}, fmt.Errorf("%w: no state received on %s", ErrUnavailable, d.cfg.StateTopic)
	}
	if age := d.opts.now().Sub(d.receivedAt); d.opts.maxStateAge > 0 && age > d.opts.maxStateAge {
		return State{}, fmt.Errorf("%w: last state is %s old", ErrUnavailable, age.Round(time.Second))
	}
	return *d.last, nil
}

// SetTargetTemperature publishes a setpoint command with QoS 1.
func (d *MQTTDevice) SetTargetTemperature(ctx context.Context, value float64, unit string) error {
	unit, err := NormalizeUnit(unit)
	if err != nil {
		return err
	}
	payload, err := encodeCommand(value, unit)
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}
	if !d.client.IsConnected() {
		return fmt.Errorf("%w: not connected", ErrUnavailable)
	}
	if err := wait(ctx, d.client.Publish(d.cfg.CommandTopic, 1, false, payload)); err != nil {
		return fmt.Errorf("%w: publish: %w", ErrUnavailable, err)
	}
	return nil
}

func (d *MQTTDevice) Close() error {
	d.client.Disconnect(250)
	return nil
}

// wait blocks until the token completes or ctx is done.
func wait(ctx context.Context, t mqtt.Token) error {
	select {
	case <-t.Done():
		return t.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
