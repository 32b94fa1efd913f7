package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/veymira/poslite/internal/domain"
	"github.com/veymira/poslite/internal/event"
	"github.com/veymira/poslite/internal/repository"
	apperrors "github.com/veymira/poslite/pkg/errors"
	"github.com/veymira/poslite/pkg/pagination"
)

// CheckoutInput holds the parameters for completing a sale.
type CheckoutInput struct {
	Note string `json:"note" validate:"max=500"`
}

// ListSalesInput holds the filter parameters for listing sales.
type ListSalesInput struct {
	UserID  string
	From    *time.Time
	To      *time.Time
	Page    int
	PerPage int
}

// SaleService implements the business logic for checkout and sale history.
type SaleService struct {
	sales    repository.SaleRepository
	carts    repository.CartRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewSaleService creates a new sale service.
func NewSaleService(sales repository.SaleRepository, carts repository.CartRepository, producer *event.Producer, logger *slog.Logger) *SaleService {
	return &SaleService{
		sales:    sales,
		carts:    carts,
		producer: producer,
		logger:   logger,
	}
}

// Checkout turns the user's cart into a completed sale. The sale record
// captures the cart's lines and derived amounts, the sold products' stock is
// decremented in the same transaction, and the cart is deleted afterwards.
// An empty or missing cart cannot be checked out.
func (s *SaleService) Checkout(ctx context.Context, userID string, input CheckoutInput) (*domain.Sale, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput("cart is empty")
		}
		return nil, fmt.Errorf("get cart for checkout: %w", err)
	}
	if cart.IsEmpty() {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	subtotal := cart.Subtotal()
	total := cart.Total()

	sale := &domain.Sale{
		ID:             uuid.New().String(),
		UserID:         userID,
		SubtotalAmount: subtotal,
		DiscountKind:   cart.Discount.Kind,
		DiscountValue:  cart.Discount.Value,
		DiscountAmount: subtotal - total,
		TotalAmount:    total,
		Currency:       cart.Currency,
		Note:           input.Note,
		CreatedAt:      time.Now().UTC(),
	}

	sale.Items = make([]domain.SaleItem, len(cart.Items))
	for i, item := range cart.Items {
		sale.Items[i] = domain.SaleItem{
			ID:        uuid.New().String(),
			SaleID:    sale.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	if err := s.sales.Create(ctx, sale); err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}

	if err := s.carts.Delete(ctx, userID); err != nil {
		// The sale is committed; a stale cart is recoverable, so log and move on.
		s.logger.ErrorContext(ctx, "failed to delete cart after checkout",
			slog.String("user_id", userID),
			slog.String("sale_id", sale.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishSaleCompleted(ctx, sale); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish sale.completed event",
			slog.String("sale_id", sale.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "sale completed",
		slog.String("sale_id", sale.ID),
		slog.String("user_id", userID),
		slog.Int64("total_amount", sale.TotalAmount),
	)

	return sale, nil
}

// GetSale retrieves a sale by its ID, including line items.
func (s *SaleService) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	sale, err := s.sales.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get sale by id: %w", err)
	}
	return sale, nil
}

// ListSales returns a paginated sale history, optionally filtered by user and
// time window.
func (s *SaleService) ListSales(ctx context.Context, input ListSalesInput) (*pagination.Result[domain.Sale], error) {
	if input.From != nil && input.To != nil && input.To.Before(*input.From) {
		return nil, apperrors.InvalidInput("to must not be before from")
	}

	filter := repository.SaleFilter{
		From:    input.From,
		To:      input.To,
		Page:    input.Page,
		PerPage: input.PerPage,
	}
	if input.UserID != "" {
		filter.UserID = &input.UserID
	}

	sales, total, err := s.sales.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	result := pagination.NewResult(sales, total, pagination.Params{Page: filter.Page, PerPage: filter.PerPage})
	return &result, nil
}
