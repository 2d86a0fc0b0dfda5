package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/agriclinic/agri-clinic-hub/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	UserRegistered = "user.registered"
	UserVerified   = "user.verified"

	BookingCreated   = "booking.created"
	BookingApproved  = "booking.approved"
	BookingRejected  = "booking.rejected"
	BookingCompleted = "booking.completed"

	ArticlePublished = "article.published"
)

// Event payloads
type UserRegisteredEvent struct {
	UserID       int64     `json:"user_id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	RegisteredAt time.Time `json:"registered_at"`
}

type UserVerifiedEvent struct {
	UserID     int64     `json:"user_id"`
	VerifiedAt time.Time `json:"verified_at"`
}

type BookingCreatedEvent struct {
	BookingID        int64     `json:"booking_id"`
	FarmerID         int64     `json:"farmer_id"`
	OfficerID        int64     `json:"officer_id"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	ConsultationType string    `json:"consultation_type"`
	CreatedAt        time.Time `json:"created_at"`
}

type BookingStatusChangedEvent struct {
	BookingID int64     `json:"booking_id"`
	OfficerID int64     `json:"officer_id"`
	Previous  string    `json:"previous"`
	Next      string    `json:"next"`
	ChangedAt time.Time `json:"changed_at"`
}

type ArticlePublishedEvent struct {
	ArticleID   int64     `json:"article_id"`
	AuthorID    int64     `json:"author_id"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published_at"`
}
