package ports

import (
	"context"
	"time"

	"github.com/harborworks/claimstream/internal/domain"
)

// ClaimRepository persists the claim aggregate. Updates replace the full row;
// optimistic concurrency is not needed because all mutations flow through the
// claims service which loads, guards and saves within one request.
type ClaimRepository interface {
	Create(ctx context.Context, claim domain.Claim) error
	GetByID(ctx context.Context, claimID string) (domain.Claim, error)
	Update(ctx context.Context, claim domain.Claim) error
	List(ctx context.Context, customerID, status string, limit, offset int) ([]domain.Claim, error)
}

// Customer, Product, Order and StockLocation are plain relational rows with no
// coordination logic; their repositories exist for seed data and lookups.
type Customer struct {
	CustomerID string
	Name       string
	Email      string
	CreatedAt  time.Time
}

type Product struct {
	ProductID string
	Name      string
	SKU       string
	UnitPrice float64
	CreatedAt time.Time
}

type Order struct {
	OrderID    string
	CustomerID string
	ProductID  string
	Quantity   int
	PlacedAt   time.Time
}

type StockLocation struct {
	LocationID string
	Name       string
	Region     string
	CreatedAt  time.Time
}

type CustomerRepository interface {
	Create(ctx context.Context, row Customer) error
	GetByID(ctx context.Context, customerID string) (Customer, error)
}

type ProductRepository interface {
	Create(ctx context.Context, row Product) error
	GetByID(ctx context.Context, productID string) (Product, error)
}

type OrderRepository interface {
	Create(ctx context.Context, row Order) error
	ListByCustomer(ctx context.Context, customerID string) ([]Order, error)
}

type StockLocationRepository interface {
	Create(ctx context.Context, row StockLocation) error
	List(ctx context.Context) ([]StockLocation, error)
}
