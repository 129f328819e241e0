package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/timetable/core/events"
	coremon "github.com/kilianp07/timetable/core/monitoring"
	"github.com/kilianp07/timetable/infra/logger"
)

// Notifier publishes run outcomes to an MQTT topic.
type Notifier struct {
	cli        pahoClient
	topic      string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	logger     logger.Logger
}

// NewNotifier connects to the broker described by cfg.
func NewNotifier(cfg Config) (*Notifier, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_notifier")
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected to %s", cfg.Broker) }
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	n := &Notifier{
		topic:      cfg.Topic,
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:     log,
	}
	if n.maxRetries <= 0 {
		n.maxRetries = 3
	}
	if n.backoff <= 0 {
		n.backoff = 100 * time.Millisecond
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	n.cli = c
	return n, nil
}

// Notify publishes a single event, retrying with exponential backoff.
func (n *Notifier) Notify(ctx context.Context, ev events.RunCompleted) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		token := n.cli.Publish(n.topic, n.qos, n.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			n.logger.Debugf("published run %s to %s", ev.RunID, n.topic)
			return nil
		}
		n.logger.Warnf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt == n.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(n.backoff * time.Duration(1<<attempt)):
		}
	}
	err = fmt.Errorf("publish run %s: %w", ev.RunID, publishErr)
	coremon.CaptureException(err, map[string]string{"module": "mqtt", "run_id": ev.RunID})
	return err
}

// Listen publishes every event received on ch until ch closes or ctx ends.
func (n *Notifier) Listen(ctx context.Context, ch <-chan events.RunCompleted) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := n.Notify(ctx, ev); err != nil {
				n.logger.Errorf("notify: %v", err)
			}
		}
	}
}

// Close disconnects from the broker.
func (n *Notifier) Close() {
	if n.cli != nil && n.cli.IsConnected() {
		n.cli.Disconnect(250)
	}
}
