package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/customer"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/product"
)

// Seed is the catalog loaded into a store at startup.
type Seed struct {
	Customers []*customer.Customer
	Products  []*product.Product
}

type seedFile struct {
	Customers []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"customers"`
	Products []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Price    int64  `json:"price"`
		Quantity int    `json:"quantity"`
	} `json:"products"`
}

// LoadSeed reads a JSON catalog such as
//
//	{"customers":[{"id":"C1","name":"Ada"}],"products":[{"id":"P1","price":500,"quantity":10}]}
//
// Prices are in minor currency units.
func LoadSeed(path string) (*Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %q: %w", path, err)
	}

	var f seedFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("seed: decode %q: %w", path, err)
	}

	seed := &Seed{}
	for i, c := range f.Customers {
		if c.ID == "" {
			return nil, fmt.Errorf("seed: customer %d: id is required", i)
		}
		seed.Customers = append(seed.Customers, &customer.Customer{ID: c.ID, Name: c.Name, Email: c.Email})
	}
	for i, p := range f.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("seed: product %d: id is required", i)
		}
		prod, err := product.New(p.ID, p.Name, p.Price, p.Quantity)
		if err != nil {
			return nil, fmt.Errorf("seed: product %q: %w", p.ID, err)
		}
		seed.Products = append(seed.Products, prod)
	}
	return seed, nil
}
