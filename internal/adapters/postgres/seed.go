package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/harborworks/claimstream/internal/domain"
	"github.com/harborworks/claimstream/internal/ports"
)

// SeedDemoData inserts a small reference dataset for local runs. Existing
// rows are left alone so reseeding an environment is harmless.
func SeedDemoData(ctx context.Context, repos Repositories, now time.Time) error {
	now = now.UTC()

	customers := []ports.Customer{
		{CustomerID: "cust_1001", Name: "Ada Morales", Email: "ada.morales@example.com", CreatedAt: now},
		{CustomerID: "cust_1002", Name: "Jonas Berg", Email: "jonas.berg@example.com", CreatedAt: now},
	}
	for _, row := range customers {
		if err := ignoreConflict(repos.Customers.Create(ctx, row)); err != nil {
			return err
		}
	}

	products := []ports.Product{
		{ProductID: "prod_2001", Name: "Trail Kettle 1.2L", SKU: "TK-12", UnitPrice: 39.90, CreatedAt: now},
		{ProductID: "prod_2002", Name: "Alpine Stove Mini", SKU: "AS-01", UnitPrice: 89.00, CreatedAt: now},
	}
	for _, row := range products {
		if err := ignoreConflict(repos.Products.Create(ctx, row)); err != nil {
			return err
		}
	}

	orders := []ports.Order{
		{OrderID: "ord_3001", CustomerID: "cust_1001", ProductID: "prod_2001", Quantity: 1, PlacedAt: now},
		{OrderID: "ord_3002", CustomerID: "cust_1002", ProductID: "prod_2002", Quantity: 2, PlacedAt: now},
	}
	for _, row := range orders {
		if err := ignoreConflict(repos.Orders.Create(ctx, row)); err != nil {
			return err
		}
	}

	locations := []ports.StockLocation{
		{LocationID: "loc_01", Name: "Central Warehouse", Region: "eu-north", CreatedAt: now},
		{LocationID: "loc_02", Name: "Returns Depot", Region: "eu-west", CreatedAt: now},
	}
	for _, row := range locations {
		if err := ignoreConflict(repos.StockLocations.Create(ctx, row)); err != nil {
			return err
		}
	}
	return nil
}

func ignoreConflict(err error) error {
	if errors.Is(err, domain.ErrConflict) {
		return nil
	}
	return err
}
