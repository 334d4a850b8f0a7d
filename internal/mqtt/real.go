package mqtt

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/assistant-power/internal/gesture"
)

const (
	clientID       = "assistant-power"
	bufferCapacity = 100
	publishTimeout = 5 * time.Second
)

// ErrNotConnected is returned for commands issued while the broker is unreachable.
var ErrNotConnected = errors.New("mqtt: not connected")

// RealPublisher publishes to an actual MQTT broker. Events published while
// disconnected are buffered and replayed on reconnect.
type RealPublisher struct {
	client paho.Client

	mu        sync.Mutex
	buffer    *ringBuffer
	online    bool // set by the connect handler, cleared on connection loss
	replaying bool // new messages queue behind the buffer until replay ends
	onConnect []func(paho.Client)
}

// NewRealPublisher creates a publisher for the given broker. The connection
// is established in the background and retried until it succeeds, so the
// daemon keeps running without a broker.
func NewRealPublisher(broker string) *RealPublisher {
	p := &RealPublisher{buffer: newRingBuffer(bufferCapacity)}

	will, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE", Reason: "connection lost"})

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.handleConnect).
		SetConnectionLostHandler(p.handleConnectionLost)

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

// Client returns the underlying client for the command bus.
func (p *RealPublisher) Client() paho.Client {
	return p.client
}

// OnConnect registers fn to run after every (re)connect.
func (p *RealPublisher) OnConnect(fn func(paho.Client)) {
	p.mu.Lock()
	p.onConnect = append(p.onConnect, fn)
	p.mu.Unlock()
}

func (p *RealPublisher) handleConnect(c paho.Client) {
	p.mu.Lock()
	p.online = true
	p.replaying = true
	hooks := append([]func(paho.Client){}, p.onConnect...)
	p.mu.Unlock()

	replayed := p.replay(c)
	log.Printf("mqtt: connected, replayed %d buffered messages", replayed)

	for _, fn := range hooks {
		fn(c)
	}
}

func (p *RealPublisher) handleConnectionLost(_ paho.Client, err error) {
	p.mu.Lock()
	p.online = false
	p.mu.Unlock()
	log.Printf("mqtt: connection lost: %v", err)
}

// replay publishes buffered messages oldest first. Messages published while
// a batch is in flight land in the buffer and go out in the next batch, so
// the broker sees events in the order they happened.
func (p *RealPublisher) replay(c paho.Client) int {
	total := 0
	for {
		p.mu.Lock()
		msgs, dropped := p.buffer.drainAll()
		if len(msgs) == 0 {
			p.replaying = false
			p.mu.Unlock()
			return total
		}
		p.mu.Unlock()

		if dropped > 0 {
			log.Printf("mqtt: %d messages dropped while disconnected", dropped)
		}
		for _, m := range msgs {
			token := c.Publish(m.topic, m.qos, m.retained, m.payload)
			if !token.WaitTimeout(publishTimeout) {
				log.Printf("mqtt: replay %s timeout", m.topic)
			} else if err := token.Error(); err != nil {
				log.Printf("mqtt: replay %s: %v", m.topic, err)
			}
		}
		total += len(msgs)
	}
}

// PublishPower sends a power transition to the MQTT broker.
func (p *RealPublisher) PublishPower(event PowerEvent) error {
	payload, err := FormatPowerPayload(event)
	if err != nil {
		return fmt.Errorf("format power payload: %w", err)
	}
	// QoS 1, retained so late subscribers see the current power state
	return p.publish(TopicPower, 1, true, payload)
}

// PublishGesture sends a gesture to the MQTT broker.
func (p *RealPublisher) PublishGesture(event gesture.Event) error {
	payload, err := FormatGesturePayload(event)
	if err != nil {
		return fmt.Errorf("format gesture payload: %w", err)
	}
	// QoS 0 (at-most-once), not retained
	return p.publish(TopicGesture, 0, false, payload)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	// QoS 1 (at-least-once) for lifecycle events
	return p.publish(TopicSystem, 1, event.Retained, payload)
}

func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	p.mu.Lock()
	if !p.online || p.replaying || !p.client.IsConnectionOpen() {
		p.buffer.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// IsConnected reports whether the broker connection is open.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
