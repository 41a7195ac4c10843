package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tuanvumaihuynh/self-checkout/internal/model"
	"github.com/tuanvumaihuynh/self-checkout/internal/storage/db"
)

type UpsertProductParams struct {
	ID            uuid.UUID
	Name          string
	Price         float64
	QuantityDelta int
	Now           time.Time
}

// ProductRepository is the catalog store. Every mutation is a single statement, so it is
// atomic for one product name even outside a transaction.
type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	// UpsertProduct creates the product or overwrites its price and adds QuantityDelta to its stock.
	UpsertProduct(ctx context.Context, params UpsertProductParams) (model.Product, error)
	GetProductByName(ctx context.Context, name string) (model.Product, error)
	// DecrementProductStock returns ErrProductNotFound or ErrInsufficientStock without changing anything
	// when the decrement cannot be applied.
	DecrementProductStock(ctx context.Context, name string, amount int) (model.Product, error)
	ListAllProducts(ctx context.Context) ([]model.Product, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

const productColumns = `id, name, price, quantity, created_at, updated_at`

func (r productRepository) UpsertProduct(ctx context.Context, params UpsertProductParams) (model.Product, error) {
	price, err := priceToNumeric(params.Price)
	if err != nil {
		return model.Product{}, err
	}

	if params.QuantityDelta > math.MaxInt32 || params.QuantityDelta < 0 {
		return model.Product{}, fmt.Errorf("%w: delta %d", ErrQuantityOutOfRange, params.QuantityDelta)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO products (id, name, price, quantity, created_at, updated_at)
		VALUES (@id, @name, @price, @quantity, @now, @now)
		ON CONFLICT (name) DO UPDATE
		SET
			price      = EXCLUDED.price,
			quantity   = products.quantity + EXCLUDED.quantity,
			updated_at = EXCLUDED.updated_at
		RETURNING `+productColumns, pgx.NamedArgs{
		"id":       params.ID,
		"name":     params.Name,
		"price":    price,
		"quantity": int32(params.QuantityDelta),
		"now":      params.Now,
	})

	product, err := scanProduct(row)
	if err != nil {
		if isNumericOutOfRange(err) {
			return model.Product{}, fmt.Errorf("%w: %s + %d", ErrQuantityOutOfRange, params.Name, params.QuantityDelta)
		}
		return model.Product{}, fmt.Errorf("upsert product: %w", err)
	}

	return product, nil
}

func (r productRepository) GetProductByName(ctx context.Context, name string) (model.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE name = @name`, pgx.NamedArgs{
		"name": name,
	})

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, ErrProductNotFound
		}
		return model.Product{}, fmt.Errorf("get product by name: %w", err)
	}

	return product, nil
}

func (r productRepository) DecrementProductStock(ctx context.Context, name string, amount int) (model.Product, error) {
	if amount > math.MaxInt32 || amount < 0 {
		return model.Product{}, fmt.Errorf("%w: decrement %d", ErrQuantityOutOfRange, amount)
	}

	row := r.db.QueryRow(ctx, `
		UPDATE products
		SET
			quantity   = quantity - @amount,
			updated_at = NOW()
		WHERE name = @name AND quantity >= @amount
		RETURNING `+productColumns, pgx.NamedArgs{
		"name":   name,
		"amount": int32(amount),
	})

	product, err := scanProduct(row)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Product{}, fmt.Errorf("decrement product stock: %w", err)
	}

	// Nothing matched: either the product is missing or its stock is too low.
	if _, err := r.GetProductByName(ctx, name); err != nil {
		return model.Product{}, err
	}

	return model.Product{}, ErrInsufficientStock
}

func (r productRepository) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// numericValueOutOfRange is the Postgres SQLSTATE raised when an INTEGER overflows.
const numericValueOutOfRange = "22003"

func isNumericOutOfRange(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == numericValueOutOfRange
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		p        model.Product
		price    pgtype.Numeric
		quantity int32
	)
	if err := row.Scan(&p.ID, &p.Name, &price, &quantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return model.Product{}, err
	}

	f, err := price.Float64Value()
	if err != nil {
		return model.Product{}, fmt.Errorf("convert price to float64: %w", err)
	}

	p.Price = f.Float64
	p.Quantity = int(quantity)

	return p, nil
}

func priceToNumeric(price float64) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(strconv.FormatFloat(price, 'f', -1, 64)); err != nil {
		return n, fmt.Errorf("scan price: %w", err)
	}
	return n, nil
}
