package amqp_test

import (
	"context"
	"errors"
	"sync"

	"catering/internal/adapters/out/amqp"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

type published struct {
	Exchange string
	Key      string
	Msg      amqp091.Publishing
}

type declaredQueue struct {
	Name string
	Args amqp091.Table
}

type fakeChannel struct {
	mu         sync.Mutex
	exchanges  map[string]string
	queues     map[string]declaredQueue
	bindings   map[string]string
	published  []published
	publishErr error
	closed     bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		exchanges: make(map[string]string),
		queues:    make(map[string]declaredQueue),
		bindings:  make(map[string]string),
	}
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp091.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exchanges[name] = kind
	return nil
}

func (c *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, args amqp091.Table) (amqp091.Queue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queues[name] = declaredQueue{Name: name, Args: args}
	return amqp091.Queue{Name: name}, nil
}

func (c *fakeChannel) QueueBind(name, key, exchange string, _ bool, _ amqp091.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings[name] = exchange + "/" + key
	return nil
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, published{Exchange: exchange, Key: key, Msg: msg})
	return nil
}

func (c *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp091.Table) (<-chan amqp091.Delivery, error) {
	return nil, errors.New("not consumable")
}

func (c *fakeChannel) Qos(int, int, bool) error { return nil }

func (c *fakeChannel) NotifyClose(receiver chan *amqp091.Error) chan *amqp091.Error { return receiver }

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

type fakeConnection struct {
	mu       sync.Mutex
	channels []*fakeChannel
	err      error
}

func (c *fakeConnection) Channel() (amqp.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	ch := newFakeChannel()
	c.channels = append(c.channels, ch)
	return ch, nil
}

func (c *fakeConnection) Close() error { return nil }

func (c *fakeConnection) opened() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.channels)
}

func (c *fakeConnection) last() *fakeChannel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channels[len(c.channels)-1]
}
