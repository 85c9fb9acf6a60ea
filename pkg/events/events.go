package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/soberstay/marketplace/pkg/logger"
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
	conn, err := nats.Connect(url,
		nats.Name("soberstay-marketplace"),
		nats.MaxReconnects(-1),
	)
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

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "bytes", len(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{Subject: msg.Subject, Data: msg.Data, Timestamp: time.Now()})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{Subject: msg.Subject, Data: msg.Data, Timestamp: time.Now()})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return err
	}
	return nil
}

// Event subjects
const (
	ListingSubmitted = "listing.submitted"
	ListingReviewed  = "listing.reviewed"
	ListingViewed    = "listing.viewed"

	FavoriteAdded   = "favorite.added"
	FavoriteRemoved = "favorite.removed"

	FeaturedCreated = "featured.created"
	FeaturedExpired = "featured.expired"
)

// Event payloads
type ListingSubmittedEvent struct {
	ListingID    string    `json:"listing_id"`
	ProviderID   int64     `json:"provider_id"`
	PropertyName string    `json:"property_name"`
	Score        int       `json:"score"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

type ListingReviewedEvent struct {
	ListingID  string    `json:"listing_id"`
	ProviderID int64     `json:"provider_id"`
	Decision   string    `json:"decision"`
	ReviewerID int64     `json:"reviewer_id"`
	Note       string    `json:"note,omitempty"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

type ListingViewedEvent struct {
	ListingID string    `json:"listing_id"`
	TenantID  int64     `json:"tenant_id"`
	ViewedAt  time.Time `json:"viewed_at"`
}

type FavoriteEvent struct {
	ListingID string    `json:"listing_id"`
	TenantID  int64     `json:"tenant_id"`
	At        time.Time `json:"at"`
}

type FeaturedCreatedEvent struct {
	FeaturedID string    `json:"featured_id"`
	ListingID  string    `json:"listing_id"`
	BoostLevel int       `json:"boost_level"`
	EndDate    time.Time `json:"end_date"`
}

type FeaturedExpiredEvent struct {
	FeaturedID string    `json:"featured_id"`
	ListingID  string    `json:"listing_id"`
	ExpiredAt  time.Time `json:"expired_at"`
}
