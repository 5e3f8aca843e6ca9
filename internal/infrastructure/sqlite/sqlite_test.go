package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	appOrder "github.com/Zhima-Mochi/minishop-orders/internal/application/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/customer"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seed(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, NewCustomerRepository(db).Save(ctx, &customer.Customer{ID: "C1", Name: "Ada", Email: "ada@example.com"}))
	products := NewProductRepository(db)
	require.NoError(t, products.Save(ctx, &product.Product{ID: "P1", Name: "Widget", Price: 500, Quantity: 10}))
	require.NoError(t, products.Save(ctx, &product.Product{ID: "P2", Name: "Gadget", Price: 200, Quantity: 3}))
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	assert.NoError(t, db.Ping(context.Background()))
	require.NoError(t, db.Close())
}

func TestCustomerRepository_FindByID(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)
	repo := NewCustomerRepository(db)

	got, err := repo.FindByID(context.Background(), "C1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, customer.ErrNotFound)
}

func TestProductRepository_FindAllByID(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)
	repo := NewProductRepository(db)

	tests := map[string]struct {
		ids  []string
		want []string
	}{
		"caller order kept": {ids: []string{"P2", "P1"}, want: []string{"P2", "P1"}},
		"missing skipped":   {ids: []string{"X", "P1"}, want: []string{"P1"}},
		"duplicates folded": {ids: []string{"P1", "P1"}, want: []string{"P1"}},
		"empty input":       {ids: nil, want: []string{}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := repo.FindAllByID(context.Background(), tc.ids)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestProductRepository_UpdateQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("last level wins", func(t *testing.T) {
		db := openTestDB(t)
		seed(t, db)
		repo := NewProductRepository(db)

		require.NoError(t, repo.UpdateQuantity(ctx, []inventory.Level{
			{ProductID: "P1", Quantity: 7},
			{ProductID: "P1", Quantity: 9},
		}))
		got, err := repo.FindAllByID(ctx, []string{"P1"})
		require.NoError(t, err)
		assert.Equal(t, 9, got[0].Quantity)
	})

	t.Run("unknown product rolls back", func(t *testing.T) {
		db := openTestDB(t)
		seed(t, db)
		repo := NewProductRepository(db)

		err := repo.UpdateQuantity(ctx, []inventory.Level{
			{ProductID: "P1", Quantity: 1},
			{ProductID: "X", Quantity: 1},
		})
		require.ErrorIs(t, err, product.ErrNotFound)
		got, _ := repo.FindAllByID(ctx, []string{"P1"})
		assert.Equal(t, 10, got[0].Quantity)
	})

	t.Run("negative stock is refused", func(t *testing.T) {
		db := openTestDB(t)
		seed(t, db)
		err := NewProductRepository(db).UpdateQuantity(ctx, []inventory.Level{{ProductID: "P1", Quantity: -1}})
		assert.Error(t, err)
	})
}

func TestOrderRepository_CreateAndFind(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)
	repo := NewOrderRepository(db, id.NewSequence("O1", "L1", "L2"))
	ctx := context.Background()

	created, err := repo.Create(ctx, order.CreateParams{
		Customer: &customer.Customer{ID: "C1"},
		Products: []order.Line{
			{ProductID: "P2", Quantity: 1, Price: 200},
			{ProductID: "P1", Quantity: 2, Price: 500},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "O1", created.ID)

	found, err := repo.FindByID(ctx, "O1")
	require.NoError(t, err)
	assert.Equal(t, "C1", found.CustomerID)
	assert.True(t, created.CreatedAt.Equal(found.CreatedAt))
	require.Len(t, found.Products, 2)
	assert.Equal(t, "L1", found.Products[0].ID)
	assert.Equal(t, "P2", found.Products[0].ProductID)
	assert.Equal(t, "P1", found.Products[1].ProductID)
	assert.Equal(t, int64(1200), found.Total())

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestOrderRepository_Conflict(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)
	repo := NewOrderRepository(db, id.NewSequence("O1", "O1"))
	params := order.CreateParams{Customer: &customer.Customer{ID: "C1"}}

	_, err := repo.Create(context.Background(), params)
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), params)
	assert.ErrorIs(t, err, order.ErrConflict)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)
	orders := NewOrderRepository(db, id.NewSequence("O1", "L1"))
	boom := errors.New("boom")

	err := db.WithinTx(context.Background(), func(ctx context.Context) error {
		_, err := orders.Create(ctx, order.CreateParams{
			Customer: &customer.Customer{ID: "C1"},
			Products: []order.Line{{ProductID: "P1", Quantity: 1, Price: 500}},
		})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = orders.FindByID(context.Background(), "O1")
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestCreateOrder_StockFailureRollsBackOrder(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)
	ctx := context.Background()
	orders := NewOrderRepository(db, id.NewSequence("O1", "L1"))

	uc := appOrder.NewCreateOrderUseCase(
		NewCustomerRepository(db),
		failingProducts{NewProductRepository(db)},
		orders,
		nil, nil,
		appOrder.Options{Transactor: db},
	)
	_, err := uc.Execute(ctx, appOrder.CreateOrderInput{
		CustomerID: "C1",
		Products:   []appOrder.ProductInput{{ID: "P1", Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, appOrder.KindRepository, appOrder.KindOf(err))

	_, err = orders.FindByID(ctx, "O1")
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestCreateOrder_CommitsOrderAndStock(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)
	ctx := context.Background()
	products := NewProductRepository(db)
	orders := NewOrderRepository(db, nil)

	uc := appOrder.NewCreateOrderUseCase(NewCustomerRepository(db), products, orders, nil, nil,
		appOrder.Options{Transactor: db})
	created, err := uc.Execute(ctx, appOrder.CreateOrderInput{
		CustomerID: "C1",
		Products: []appOrder.ProductInput{
			{ID: "P1", Quantity: 2},
			{ID: "P2", Quantity: 1},
			{ID: "P1", Quantity: 3},
		},
	})
	require.NoError(t, err)

	stock, err := products.FindAllByID(ctx, []string{"P1", "P2"})
	require.NoError(t, err)
	assert.Equal(t, 5, stock[0].Quantity)
	assert.Equal(t, 2, stock[1].Quantity)

	persisted, err := orders.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, persisted.Products, 3)
	assert.Equal(t, int64(2700), persisted.Total())
}

type failingProducts struct {
	*ProductRepository
}

func (failingProducts) UpdateQuantity(context.Context, []inventory.Level) error {
	return errors.New("disk full")
}
