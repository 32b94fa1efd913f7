package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/veymira/poslite/internal/domain"
	pkgkafka "github.com/veymira/poslite/pkg/kafka"
)

// Kafka topic constants for poslite domain events.
const (
	TopicCartUpdated   = "poslite.cart.updated"
	TopicCartCleared   = "poslite.cart.cleared"
	TopicSaleCompleted = "poslite.sale.completed"
)

// Aggregate type constants.
const (
	AggregateTypeCart = "cart"
	AggregateTypeSale = "sale"
)

// Source identifier for events originating from this service.
const Source = "poslite"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	UserID    string                `json:"user_id"`
	Items     []CartItemData        `json:"items"`
	ItemCount int                   `json:"item_count"`
	Subtotal  int64                 `json:"subtotal"`
	Total     int64                 `json:"total"`
	Discount  domain.DiscountPolicy `json:"discount"`
	Currency  string                `json:"currency"`
}

// CartItemData is the line-item payload within cart events.
type CartItemData struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	UserID string `json:"user_id"`
}

// SaleCompletedData is the payload for a sale.completed event.
type SaleCompletedData struct {
	SaleID      string `json:"sale_id"`
	UserID      string `json:"user_id"`
	ItemCount   int    `json:"item_count"`
	TotalAmount int64  `json:"total_amount"`
	Currency    string `json:"currency"`
}

// Producer publishes poslite domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	items := make([]CartItemData, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = CartItemData{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	data := CartUpdatedData{
		UserID:    cart.UserID,
		Items:     items,
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.Subtotal(),
		Total:     cart.Total(),
		Discount:  cart.Discount,
		Currency:  cart.Currency,
	}

	event, err := pkgkafka.NewEvent(TopicCartUpdated, cart.UserID, AggregateTypeCart, Source, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("user_id", cart.UserID),
		slog.Int("item_count", cart.ItemCount()),
	)

	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, userID string) error {
	data := CartClearedData{UserID: userID}

	event, err := pkgkafka.NewEvent(TopicCartCleared, userID, AggregateTypeCart, Source, data)
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

// PublishSaleCompleted publishes a sale.completed event.
func (p *Producer) PublishSaleCompleted(ctx context.Context, sale *domain.Sale) error {
	var count int
	for i := range sale.Items {
		count += sale.Items[i].Quantity
	}

	data := SaleCompletedData{
		SaleID:      sale.ID,
		UserID:      sale.UserID,
		ItemCount:   count,
		TotalAmount: sale.TotalAmount,
		Currency:    sale.Currency,
	}

	event, err := pkgkafka.NewEvent(TopicSaleCompleted, sale.ID, AggregateTypeSale, Source, data)
	if err != nil {
		return fmt.Errorf("create sale.completed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSaleCompleted, event); err != nil {
		return fmt.Errorf("publish sale.completed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published sale.completed event",
		slog.String("sale_id", sale.ID),
		slog.Int64("total_amount", sale.TotalAmount),
	)

	return nil
}
