package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/shopfront/internal/domain"
	pkgkafka "github.com/utafrali/shopfront/pkg/kafka"
)

// Kafka topics for shopfront activity events.
const (
	TopicCartUpdated  = "shopfront.cart.updated"
	TopicCartCleared  = "shopfront.cart.cleared"
	TopicVoteRecorded = "shopfront.post.vote.recorded"
)

// Aggregate type constants.
const (
	AggregateTypeCart = "cart"
	AggregateTypePost = "post"
)

// SourceShopfront identifies events originating from this service.
const SourceShopfront = "shopfront-bff"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	UserID        string            `json:"user_id"`
	Items         []domain.LineItem `json:"items"`
	TotalQuantity int               `json:"total_quantity"`
	TotalPrice    int64             `json:"total_price"`
	Currency      string            `json:"currency"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	UserID string `json:"user_id"`
}

// VoteRecordedData is the payload for a post.vote.recorded event.
type VoteRecordedData struct {
	PostID    string `json:"post_id"`
	UserID    string `json:"user_id"`
	Direction string `json:"direction"`
}

// Publisher is the broker-facing publish operation the producer needs.
// *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes shopfront activity events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates an event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	data := CartUpdatedData{
		UserID:        cart.UserID,
		Items:         cart.Lines(),
		TotalQuantity: cart.TotalQuantity(),
		TotalPrice:    cart.TotalPrice(),
		Currency:      cart.Currency,
	}

	event, err := pkgkafka.NewEvent(TopicCartUpdated, cart.UserID, AggregateTypeCart, SourceShopfront, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("user_id", cart.UserID),
		slog.Int("total_quantity", data.TotalQuantity),
	)

	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, userID string) error {
	data := CartClearedData{UserID: userID}

	event, err := pkgkafka.NewEvent(TopicCartCleared, userID, AggregateTypeCart, SourceShopfront, data)
	if err != nil {
		return fmt.Errorf("create cart.cleared event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartCleared, event); err != nil {
		return fmt.Errorf("publish cart.cleared event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("user_id", userID),
	)

	return nil
}

// PublishVoteRecorded publishes a post.vote.recorded event.
func (p *Producer) PublishVoteRecorded(ctx context.Context, vote domain.Vote) error {
	data := VoteRecordedData{
		PostID:    vote.PostID,
		UserID:    vote.UserID,
		Direction: vote.Direction,
	}

	event, err := pkgkafka.NewEvent(TopicVoteRecorded, vote.PostID, AggregateTypePost, SourceShopfront, data)
	if err != nil {
		return fmt.Errorf("create post.vote.recorded event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicVoteRecorded, event); err != nil {
		return fmt.Errorf("publish post.vote.recorded event: %w", err)
	}

	p.logger.DebugContext(ctx, "published post.vote.recorded event",
		slog.String("post_id", vote.PostID),
		slog.String("direction", vote.Direction),
	)

	return nil
}
