package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/veymira/poslite/internal/domain"
	"github.com/veymira/poslite/internal/repository"
	apperrors "github.com/veymira/poslite/pkg/errors"
	"github.com/veymira/poslite/pkg/pagination"
)

// ProductService implements the business logic for catalog operations.
type ProductService struct {
	repo   repository.ProductRepository
	logger *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		logger: logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	Price       int64  `json:"price" validate:"gte=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
	Category    string `json:"category" validate:"max=100"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
}

// UpdateProductInput holds the parameters for updating a product. Nil fields
// are left unchanged.
type UpdateProductInput struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	Price       *int64  `json:"price" validate:"omitempty,gte=0"`
	Stock       *int    `json:"stock" validate:"omitempty,gte=0"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
}

// AdjustStockInput holds the parameters for a relative stock adjustment.
type AdjustStockInput struct {
	Delta int `json:"delta" validate:"required"`
}

// ListProductsInput holds the filter parameters for listing products.
type ListProductsInput struct {
	Category string
	Search   string
	MinPrice *int64
	MaxPrice *int64
	LowStock *int
	Page     int
	PerPage  int
}

// CreateProduct creates a new catalog product.
func (s *ProductService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if input.Stock < 0 {
		return nil, apperrors.InvalidInput("stock must not be negative")
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("name", product.Name),
	)

	return product, nil
}

// GetProduct retrieves a product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// ListProducts returns a paginated, filtered product listing.
func (s *ProductService) ListProducts(ctx context.Context, input ListProductsInput) (*pagination.Result[domain.Product], error) {
	filter := repository.ProductFilter{
		MinPrice: input.MinPrice,
		MaxPrice: input.MaxPrice,
		LowStock: input.LowStock,
		Page:     input.Page,
		PerPage:  input.PerPage,
	}
	if input.Category != "" {
		filter.Category = &input.Category
	}
	if input.Search != "" {
		filter.Search = &input.Search
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	result := pagination.NewResult(products, total, pagination.Params{Page: filter.Page, PerPage: filter.PerPage})
	return &result, nil
}

// UpdateProduct applies a partial update to a product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("product name must not be empty")
		}
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperrors.InvalidInput("price must not be negative")
		}
		product.Price = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, apperrors.InvalidInput("stock must not be negative")
		}
		product.Stock = *input.Stock
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
	}

	product.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
	)

	return product, nil
}

// DeleteProduct removes a product from the catalog.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}

// AdjustStock changes a product's stock by a relative delta, for example a
// restock delivery or a shrinkage correction. An adjustment that would drive
// the stock negative is rejected.
func (s *ProductService) AdjustStock(ctx context.Context, id string, input AdjustStockInput) (*domain.Product, error) {
	if input.Delta == 0 {
		return nil, apperrors.InvalidInput("delta must not be zero")
	}

	product, err := s.repo.AdjustStock(ctx, id, input.Delta)
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}

	s.logger.InfoContext(ctx, "product stock adjusted",
		slog.String("product_id", id),
		slog.Int("delta", input.Delta),
		slog.Int("stock", product.Stock),
	)

	return product, nil
}
