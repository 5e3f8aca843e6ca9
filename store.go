package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	appOrder "github.com/Zhima-Mochi/minishop-orders/internal/application/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/config"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/customer"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/postgres"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/sqlite"
	httppresentation "github.com/Zhima-Mochi/minishop-orders/internal/presentation/http"
)

// store bundles the repositories of one driver. tx and pinger are nil for memory.
type store struct {
	customers customer.Repository
	products  product.Repository
	orders    order.Repository
	tx        appOrder.Transactor
	pinger    httppresentation.Pinger

	saveCustomer func(context.Context, *customer.Customer) error
	saveProduct  func(context.Context, *product.Product) error
	close        func()
}

func openStore(ctx context.Context, cfg config.Config) (*store, error) {
	ids := id.NewUUIDGenerator()

	switch cfg.Driver {
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite: create data dir: %w", err)
			}
		}
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		customers := sqlite.NewCustomerRepository(db)
		products := sqlite.NewProductRepository(db)
		return &store{
			customers:    customers,
			products:     products,
			orders:       sqlite.NewOrderRepository(db, ids),
			tx:           db,
			pinger:       db,
			saveCustomer: customers.Save,
			saveProduct:  products.Save,
			close:        func() { _ = db.Close() },
		}, nil

	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		customers := postgres.NewCustomerRepository(db)
		products := postgres.NewProductRepository(db)
		return &store{
			customers:    customers,
			products:     products,
			orders:       postgres.NewOrderRepository(db, ids),
			tx:           db,
			pinger:       db,
			saveCustomer: customers.Save,
			saveProduct:  products.Save,
			close:        db.Close,
		}, nil

	default:
		customers := memory.NewCustomerRepository()
		products := memory.NewProductRepository()
		return &store{
			customers:    customers,
			products:     products,
			orders:       memory.NewOrderRepository(ids),
			saveCustomer: customers.Add,
			saveProduct:  products.Add,
			close:        func() {},
		}, nil
	}
}

func (s *store) seed(ctx context.Context, seed *config.Seed) error {
	for _, c := range seed.Customers {
		if err := s.saveCustomer(ctx, c); err != nil {
			return fmt.Errorf("seed customer %q: %w", c.ID, err)
		}
	}
	for _, p := range seed.Products {
		if err := s.saveProduct(ctx, p); err != nil {
			return fmt.Errorf("seed product %q: %w", p.ID, err)
		}
	}
	return nil
}
