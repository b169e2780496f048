// Package amqp carries tasks and status notifications over RabbitMQ.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

// ErrConnectionClosed is returned once Close was called.
var ErrConnectionClosed = errors.New("amqp connection is closed")

// Connection hands out channels on a broker connection.
type Connection interface {
	Channel() (Channel, error)
	Close() error
}

// Channel is the subset of *amqp091.Channel the adapters use.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	Qos(prefetchCount, prefetchSize int, global bool) error
	NotifyClose(receiver chan *amqp091.Error) chan *amqp091.Error
	Close() error
}

type connection struct {
	url    string
	mu     sync.Mutex
	conn   *amqp091.Connection
	closed bool
}

// Dial connects to the broker at url. A dropped connection is re-dialled on the
// next Channel call.
func Dial(url string) (Connection, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	return &connection{url: url, conn: conn}, nil
}

func (c *connection) Channel() (Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrConnectionClosed
	}
	if c.conn.IsClosed() {
		conn, err := amqp091.Dial(c.url)
		if err != nil {
			return nil, fmt.Errorf("reconnect to rabbitmq: %w", err)
		}
		c.conn = conn
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return ch, nil
}

func (c *connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if !c.conn.IsClosed() {
		return c.conn.Close()
	}
	return nil
}
