// Package printer forwards finished tickets to the receipt-printing
// gateway over RabbitMQ. Delivery is best effort: the sale is already
// committed by the time a ticket is published, so failures are logged
// and dropped rather than retried.
package printer

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const queueName = "impresora"

// Line is one printed row on the ticket.
type Line struct {
	Nombre  string   `json:"nombre"`
	Precio  string   `json:"precio"`
	Sabores []string `json:"sabores,omitempty"`
	Notas   string   `json:"notas,omitempty"`
}

// Ticket is the JSON payload the printing service consumes.
type Ticket struct {
	OrdenNum string `json:"orden_num"`
	Fecha    string `json:"fecha"`
	Hora     string `json:"hora"`
	Mesa     string `json:"mesa"`
	Total    string `json:"total"`
	Items    []Line `json:"items"`
}

// Publisher sends tickets to the durable impresora queue.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	// Publishes are serialized; the amqp channel is not safe for
	// concurrent writers.
	mu sync.Mutex
}

// Dial connects to the broker and declares the ticket queue. Durable
// queue + persistent messages so tickets survive a broker restart while
// the printer is offline.
func Dial(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, ch: ch}, nil
}

// PublishTicket sends one ticket to the queue.
func (p *Publisher) PublishTicket(ctx context.Context, ticket Ticket) error {
	body, err := json.Marshal(ticket)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.PublishWithContext(
		ctx,
		"", // default exchange
		queueName,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// Close shuts down the channel and connection.
func (p *Publisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
