// Package messaging implements the trusted peer surface over RabbitMQ.
// Peer services (auth, orders) reach this service through named message
// queues; the trust boundary is the broker's network placement, not
// per-call authorization.
package messaging

import (
	"context"
	"io"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client wraps a RabbitMQ connection and channel.
type Client struct {
	conn *amqp.Connection
	chn  *amqp.Channel
}

// NewClient dials the broker and opens a channel.
func NewClient(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	chn, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Client{conn: conn, chn: chn}, nil
}

// Close shuts down the channel and connection. The connection is closed
// even when the channel close fails; the first error wins.
func (c *Client) Close() error {
	return closeAll(c.chn, c.conn)
}

func closeAll(closers ...io.Closer) error {
	var first error
	for _, cl := range closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// CreateQueue declares a durable queue.
func (c *Client) CreateQueue(queueName string) error {
	_, err := c.chn.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	return err
}

// Consume starts delivering messages from a queue. Deliveries must be
// acked by the worker after the reply is published.
func (c *Client) Consume(queueName string) (<-chan amqp.Delivery, error) {
	return c.chn.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
}

// Reply publishes an RPC response to the caller's reply queue, carrying
// the correlation id of the request.
func (c *Client) Reply(ctx context.Context, replyTo, correlationID string, body []byte) error {
	return c.chn.PublishWithContext(
		ctx,
		"",      // default exchange
		replyTo, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: correlationID,
			Body:          body,
		},
	)
}
