// Package service publishes domain events to RabbitMQ. Errors are logged
// and returned so callers can ignore them without interrupting the
// request that produced the event.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/theater-seat-booking/internal/queue"
)

// Publisher sends booking events to the broker at URL. Each publish uses
// its own short-lived connection.
type Publisher struct {
	URL    string
	Logger *log.Logger
}

// NewPublisher returns a publisher for url.
func NewPublisher(url string) *Publisher {
	return &Publisher{URL: url, Logger: log.Default()}
}

// PublishBookingConfirmed publishes ev to the booking queue as a
// persistent JSON message.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		p.Logger.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Logger.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Logger.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.BookingQueue, true, false, false, false, nil); err != nil {
		p.Logger.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    ev.BookingID,
		Body:         body,
	}
	// Default exchange; the routing key is the queue name.
	if err := ch.PublishWithContext(ctx, "", queue.BookingQueue, false, false, pub); err != nil {
		p.Logger.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
