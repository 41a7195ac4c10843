package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/self-checkout/internal/model"
	"github.com/tuanvumaihuynh/self-checkout/internal/storage/db"
)

// scriptedDB answers QueryRow calls with rows in order and records every query.
type scriptedDB struct {
	db.DB
	rows    []pgx.Row
	queries []string
	args    []pgx.NamedArgs
}

func (s *scriptedDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	s.queries = append(s.queries, sql)
	if len(args) == 1 {
		if named, ok := args[0].(pgx.NamedArgs); ok {
			s.args = append(s.args, named)
		}
	}
	if len(s.rows) == 0 {
		return productRow{err: errors.New("unexpected query")}
	}
	row := s.rows[0]
	s.rows = s.rows[1:]
	return row
}

// productRow scans a products row the way pgx would, or fails with err.
type productRow struct {
	product model.Product
	price   string
	err     error
}

func (r productRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != 6 {
		return fmt.Errorf("expected 6 destinations, got %d", len(dest))
	}
	*dest[0].(*uuid.UUID) = r.product.ID
	*dest[1].(*string) = r.product.Name
	if err := dest[2].(*pgtype.Numeric).Scan(r.price); err != nil {
		return err
	}
	*dest[3].(*int32) = int32(r.product.Quantity)
	*dest[4].(*time.Time) = r.product.CreatedAt
	*dest[5].(*time.Time) = r.product.UpdatedAt
	return nil
}

func newProductRow(name, price string, quantity int) productRow {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return productRow{
		product: model.Product{
			ID:        uuid.Must(uuid.NewV7()),
			Name:      name,
			Quantity:  quantity,
			CreatedAt: now,
			UpdatedAt: now,
		},
		price: price,
	}
}

func TestPriceNumericRoundTrip(t *testing.T) {
	for _, price := range []float64{0, 0.1, 2.5, 2.99, 185, 1234.56} {
		t.Run(fmt.Sprint(price), func(t *testing.T) {
			n, err := priceToNumeric(price)
			require.NoError(t, err)

			f, err := n.Float64Value()
			require.NoError(t, err)
			assert.Equal(t, price, f.Float64)
		})
	}
}

func TestScanProduct(t *testing.T) {
	t.Run("Should convert NUMERIC price and INTEGER quantity", func(t *testing.T) {
		row := newProductRow("tea", "2.50", 7)

		p, err := scanProduct(row)
		require.NoError(t, err)
		assert.Equal(t, row.product.ID, p.ID)
		assert.Equal(t, "tea", p.Name)
		assert.Equal(t, 2.5, p.Price)
		assert.Equal(t, 7, p.Quantity)
	})

	t.Run("Should keep decimal fractions", func(t *testing.T) {
		p, err := scanProduct(newProductRow("gum", "0.1", 1))
		require.NoError(t, err)
		assert.Equal(t, 0.1, p.Price)
	})

	t.Run("Should return the scan error unchanged", func(t *testing.T) {
		_, err := scanProduct(productRow{err: pgx.ErrNoRows})
		assert.ErrorIs(t, err, pgx.ErrNoRows)
	})
}

func TestProductRepositoryUpsertProduct(t *testing.T) {
	ctx := context.Background()
	params := UpsertProductParams{
		ID:            uuid.Must(uuid.NewV7()),
		Name:          "tea",
		Price:         2.5,
		QuantityDelta: 3,
		Now:           time.Now(),
	}

	t.Run("Should add the delta on conflict and return the stored row", func(t *testing.T) {
		fake := &scriptedDB{rows: []pgx.Row{newProductRow("tea", "2.5", 8)}}

		p, err := NewProductRepository(fake).UpsertProduct(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, 8, p.Quantity)
		assert.Equal(t, 2.5, p.Price)

		require.Len(t, fake.queries, 1)
		assert.Contains(t, fake.queries[0], "ON CONFLICT (name) DO UPDATE")
		assert.Contains(t, fake.queries[0], "quantity   = products.quantity + EXCLUDED.quantity")
		assert.Equal(t, int32(3), fake.args[0]["quantity"])
	})

	t.Run("Should reject deltas outside the column range without querying", func(t *testing.T) {
		for _, delta := range []int{-1, math.MaxInt32 + 1} {
			fake := &scriptedDB{}
			p := params
			p.QuantityDelta = delta

			_, err := NewProductRepository(fake).UpsertProduct(ctx, p)
			assert.ErrorIs(t, err, ErrQuantityOutOfRange)
			assert.Empty(t, fake.queries)
		}
	})

	t.Run("Should map an INTEGER overflow to ErrQuantityOutOfRange", func(t *testing.T) {
		fake := &scriptedDB{rows: []pgx.Row{
			productRow{err: &pgconn.PgError{Code: "22003", Message: "integer out of range"}},
		}}

		_, err := NewProductRepository(fake).UpsertProduct(ctx, params)
		assert.ErrorIs(t, err, ErrQuantityOutOfRange)
	})

	t.Run("Should wrap other database errors", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		fake := &scriptedDB{rows: []pgx.Row{productRow{err: dbErr}}}

		_, err := NewProductRepository(fake).UpsertProduct(ctx, params)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, ErrQuantityOutOfRange)
	})
}

func TestProductRepositoryDecrementProductStock(t *testing.T) {
	ctx := context.Background()

	t.Run("Should decrement with a conditional update", func(t *testing.T) {
		fake := &scriptedDB{rows: []pgx.Row{newProductRow("tea", "2.5", 2)}}

		p, err := NewProductRepository(fake).DecrementProductStock(ctx, "tea", 3)
		require.NoError(t, err)
		assert.Equal(t, 2, p.Quantity)

		require.Len(t, fake.queries, 1)
		assert.Contains(t, fake.queries[0], "WHERE name = @name AND quantity >= @amount")
		assert.Equal(t, int32(3), fake.args[0]["amount"])
	})

	t.Run("Should report insufficient stock when the product exists", func(t *testing.T) {
		fake := &scriptedDB{rows: []pgx.Row{
			productRow{err: pgx.ErrNoRows},
			newProductRow("tea", "2.5", 1),
		}}

		_, err := NewProductRepository(fake).DecrementProductStock(ctx, "tea", 3)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.Len(t, fake.queries, 2)
	})

	t.Run("Should report not found when the product is missing", func(t *testing.T) {
		fake := &scriptedDB{rows: []pgx.Row{
			productRow{err: pgx.ErrNoRows},
			productRow{err: pgx.ErrNoRows},
		}}

		_, err := NewProductRepository(fake).DecrementProductStock(ctx, "ghost", 1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Should not look the product up after a database error", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		fake := &scriptedDB{rows: []pgx.Row{productRow{err: dbErr}}}

		_, err := NewProductRepository(fake).DecrementProductStock(ctx, "tea", 1)
		assert.ErrorIs(t, err, dbErr)
		assert.Len(t, fake.queries, 1)
	})

	t.Run("Should reject amounts outside the column range without querying", func(t *testing.T) {
		for _, amount := range []int{-1, math.MaxInt32 + 1} {
			fake := &scriptedDB{}

			_, err := NewProductRepository(fake).DecrementProductStock(ctx, "tea", amount)
			assert.ErrorIs(t, err, ErrQuantityOutOfRange)
			assert.Empty(t, fake.queries)
		}
	})
}
