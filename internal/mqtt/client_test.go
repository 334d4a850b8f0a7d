package mqtt

import (
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// fakeToken completes immediately with err.
type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                       { return true }
func (t *fakeToken) WaitTimeout(_ time.Duration) bool { return true }
func (t *fakeToken) Error() error                     { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  string
}

// fakeClient implements the parts of paho.Client the publisher and bus use.
// Unused methods panic through the nil embedded interface.
type fakeClient struct {
	paho.Client

	mu        sync.Mutex
	open      bool
	published []published
	handlers  map[string]paho.MessageHandler
	subErr    map[string]error

	// onPublish, if set, runs after the n-th (1-based) publish is recorded.
	onPublish func(n int)
}

func newFakeClient(open bool) *fakeClient {
	return &fakeClient{
		open:     open,
		handlers: make(map[string]paho.MessageHandler),
		subErr:   make(map[string]error),
	}
}

func (c *fakeClient) IsConnectionOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *fakeClient) IsConnected() bool { return c.IsConnectionOpen() }

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	c.published = append(c.published, published{topic: topic, qos: qos, retained: retained, payload: string(payload.([]byte))})
	n := len(c.published)
	hook := c.onPublish
	c.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return &fakeToken{}
}

func (c *fakeClient) Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.subErr[topic]; err != nil {
		return &fakeToken{err: err}
	}
	c.handlers[topic] = callback
	return &fakeToken{}
}

func (c *fakeClient) deliver(topic, payload string) {
	c.mu.Lock()
	h := c.handlers[topic]
	c.mu.Unlock()
	if h != nil {
		h(c, &fakeMessage{topic: topic, payload: []byte(payload)})
	}
}

func (c *fakeClient) topics() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.published))
	for i, p := range c.published {
		out[i] = p.topic
	}
	return out
}

type fakeMessage struct {
	paho.Message
	topic   string
	payload []byte
}

func (m *fakeMessage) Topic() string   { return m.topic }
func (m *fakeMessage) Payload() []byte { return m.payload }
