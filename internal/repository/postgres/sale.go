package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/veymira/poslite/internal/domain"
	"github.com/veymira/poslite/internal/repository"
	"github.com/veymira/poslite/pkg/database"
	apperrors "github.com/veymira/poslite/pkg/errors"
)

// SaleRepository implements repository.SaleRepository using PostgreSQL.
type SaleRepository struct {
	pool database.DBTX
}

// NewSaleRepository creates a new PostgreSQL-backed sale repository.
func NewSaleRepository(pool database.DBTX) *SaleRepository {
	return &SaleRepository{pool: pool}
}

// Create inserts the sale and its items and decrements the sold products'
// stock, all within one transaction. A stock decrement that would go negative
// fails the whole transaction.
func (r *SaleRepository) Create(ctx context.Context, s *domain.Sale) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateSale", "INSERT INTO sales")
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	saleQuery := `
		INSERT INTO sales (id, user_id, subtotal_amount, discount_kind, discount_value, discount_amount, total_amount, currency, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = tx.Exec(ctx, saleQuery,
		s.ID,
		s.UserID,
		s.SubtotalAmount,
		s.DiscountKind,
		s.DiscountValue,
		s.DiscountAmount,
		s.TotalAmount,
		s.Currency,
		s.Note,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	itemQuery := `
		INSERT INTO sale_items (id, sale_id, product_id, name, price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)`

	stockQuery := `
		UPDATE products
		SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock - $1 >= 0`

	for _, item := range s.Items {
		if _, err = tx.Exec(ctx, itemQuery,
			item.ID,
			item.SaleID,
			item.ProductID,
			item.Name,
			item.Price,
			item.Quantity,
		); err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}

		ct, execErr := tx.Exec(ctx, stockQuery, item.Quantity, item.ProductID)
		if execErr != nil {
			err = execErr
			return fmt.Errorf("decrement stock for %s: %w", item.ProductID, err)
		}
		if ct.RowsAffected() == 0 {
			err = apperrors.Conflict(fmt.Sprintf("insufficient stock for product %s", item.ProductID))
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit sale: %w", err)
	}

	return nil
}

// GetByID retrieves a sale by its ID, including its items.
func (r *SaleRepository) GetByID(ctx context.Context, id string) (_ *domain.Sale, err error) {
	saleQuery := `
		SELECT id, user_id, subtotal_amount, discount_kind, discount_value, discount_amount, total_amount, currency, note, created_at
		FROM sales
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetSale", saleQuery)
	defer func() { end(err) }()

	var s domain.Sale
	err = r.pool.QueryRow(ctx, saleQuery, id).Scan(
		&s.ID,
		&s.UserID,
		&s.SubtotalAmount,
		&s.DiscountKind,
		&s.DiscountValue,
		&s.DiscountAmount,
		&s.TotalAmount,
		&s.Currency,
		&s.Note,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("sale", id)
		}
		return nil, fmt.Errorf("scan sale: %w", err)
	}

	itemQuery := `
		SELECT id, sale_id, product_id, name, price, quantity
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY id`

	rows, err := r.pool.Query(ctx, itemQuery, id)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.SaleItem
		if err = rows.Scan(
			&item.ID,
			&item.SaleID,
			&item.ProductID,
			&item.Name,
			&item.Price,
			&item.Quantity,
		); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		s.Items = append(s.Items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale items: %w", err)
	}

	return &s, nil
}

// List returns sales matching the given filter with the total count. Items
// are not populated; use GetByID for the full record.
func (r *SaleRepository) List(ctx context.Context, filter repository.SaleFilter) (_ []domain.Sale, _ int, err error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}

	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIndex))
		args = append(args, *filter.From)
		argIndex++
	}

	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at < $%d", argIndex))
		args = append(args, *filter.To)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, subtotal_amount, discount_kind, discount_value, discount_amount, total_amount, currency, note, created_at,
			   count(*) OVER() AS total_count
		FROM sales
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	ctx, end := database.TraceQuery(ctx, "ListSales", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var (
		sales      []domain.Sale
		totalCount int
	)

	for rows.Next() {
		var s domain.Sale
		if err = rows.Scan(
			&s.ID,
			&s.UserID,
			&s.SubtotalAmount,
			&s.DiscountKind,
			&s.DiscountValue,
			&s.DiscountAmount,
			&s.TotalAmount,
			&s.Currency,
			&s.Note,
			&s.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan sale row: %w", err)
		}
		sales = append(sales, s)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate sale rows: %w", err)
	}

	if sales == nil {
		sales = []domain.Sale{}
	}

	return sales, totalCount, nil
}
