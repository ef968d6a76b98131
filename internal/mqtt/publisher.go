package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mesembria/Magtag-Weather-Odin/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher pushes rendered frames and condition summaries to the display
// topics. Messages are retained so a display waking from deep sleep receives
// the newest frame immediately after subscribing.
type Publisher struct {
	client    mqtt.Client
	cfg       config.Config
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewPublisher(cfg config.Config, logger *slog.Logger) (*Publisher, error) {
	p := &Publisher{
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)

	// Session settings
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	// Keepalive / timeouts
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	// Callbacks keep internal state accurate
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		p.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
	})

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = mqtt.NewClient(opts)
	return p, nil
}

// Connect establishes connection to the MQTT broker.
// This function waits for the initial connection, and respects ctx and Disconnect().
func (p *Publisher) Connect(ctx context.Context) error {
	// Fail fast if already stopped.
	select {
	case <-p.stopCh:
		return fmt.Errorf("publisher stopped")
	default:
	}

	// Fast path.
	if p.IsConnected() {
		return nil
	}

	// Start connect attempt. With ConnectRetry(true), it may keep retrying internally.
	token := p.client.Connect()

	// Wait in a ctx/stop-aware loop.
	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			// OnConnectHandler sets connected=true.
			return nil
		}

		select {
		case <-ctx.Done():
			// Leave the client alone: with ConnectRetry it keeps trying in
			// the background and OnConnect flips connected when it lands.
			return ctx.Err()
		case <-p.stopCh:
			p.client.Disconnect(0)
			return fmt.Errorf("publisher stopped")
		default:
		}
	}
}

// PublishFrame publishes the PNG frame bytes to the display's frame topic.
func (p *Publisher) PublishFrame(displayID string, png []byte) error {
	topic := fmt.Sprintf("%s/%s/frame", p.cfg.MQTTTopicPrefix, displayID)
	return p.publishRetained(topic, png)
}

// PublishConditions publishes the JSON condition summary for a display.
func (p *Publisher) PublishConditions(displayID string, summary any) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal conditions: %w", err)
	}
	topic := fmt.Sprintf("%s/%s/conditions", p.cfg.MQTTTopicPrefix, displayID)
	return p.publishRetained(topic, data)
}

func (p *Publisher) publishRetained(topic string, payload []byte) error {
	if !p.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}

	qos := byte(1) // At least once delivery
	retained := true

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", topic, token.Error())
	}

	p.logger.Debug("published", "topic", topic, "size", len(payload))
	return nil
}

// IsConnected returns whether the client is connected.
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Disconnect stops the publisher and closes the MQTT connection.
// Idempotent and safe to call multiple times.
func (p *Publisher) Disconnect() {
	// Signal shutdown once (unblocks any Connect loops).
	p.stopOnce.Do(func() { close(p.stopCh) })

	// Disconnect without holding p.mu to avoid lock contention/deadlocks.
	if p.client != nil {
		p.client.Disconnect(250)
	}

	// Update our internal state.
	p.setConnected(false)
	p.logger.Info("mqtt publisher disconnected")
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}
