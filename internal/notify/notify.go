// Package notify публикует события платформы в RabbitMQ.
// Подписчики (рассылка писем, push-уведомления) живут в отдельных
// сервисах и читают очередь notifications.evaluation.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

const (
	exchangeName = "notifications"
	queueName    = "notifications.evaluation"
	routingKey   = "evaluation.completed"
)

// EvaluationCompletedEvent событие о завершении проверки ответа.
type EvaluationCompletedEvent struct {
	AnswerID     int       `json:"answer_id"`
	EvaluationID int       `json:"evaluation_id"`
	UserUID      string    `json:"user_uid"`
	Subject      string    `json:"subject"`
	TotalScore   int       `json:"total_score"`
	EvaluatedAt  time.Time `json:"evaluated_at"`
}

// Publisher канал RabbitMQ с объявленной топологией событий проверки.
type Publisher struct {
	ch *amqp.Channel
}

// Connect подключается к брокеру с повторными попытками.
func Connect(connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "notify.Connect"
	var conn *amqp.Connection
	var err error

	for range retries {
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}

// NewPublisher открывает канал и объявляет exchange, очередь и binding.
func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	const op = "notify.NewPublisher"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		exchangeName,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = ch.QueueBind(queueName, routingKey, exchangeName, false, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Publisher{ch: ch}, nil
}

// PublishEvaluationCompleted публикует событие о завершённой проверке.
// Вызов на nil-издателе — no-op: брокер в конфигурации опционален.
func (p *Publisher) PublishEvaluationCompleted(event EvaluationCompletedEvent) error {
	const op = "notify.PublishEvaluationCompleted"
	if p == nil {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = p.ch.Publish(
		exchangeName,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает канал.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.ch.Close()
}
