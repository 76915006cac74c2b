package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harborworks/claimstream/internal/domain"
	"github.com/harborworks/claimstream/internal/ports"
)

type Repositories struct {
	Claims         ports.ClaimRepository
	EventLog       ports.EventLog
	Customers      ports.CustomerRepository
	Products       ports.ProductRepository
	Orders         ports.OrderRepository
	StockLocations ports.StockLocationRepository
	ReadModels     ports.ReadModelRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Claims:         &claimRepository{db: db},
		EventLog:       &eventLogRepository{db: db},
		Customers:      &customerRepository{db: db},
		Products:       &productRepository{db: db},
		Orders:         &orderRepository{db: db},
		StockLocations: &stockLocationRepository{db: db},
		ReadModels:     &readModelRepository{db: db},
	}
}

type claimRepository struct {
	db *gorm.DB
}

func toClaimModel(claim domain.Claim) claimModel {
	return claimModel{
		ClaimID:       claim.ClaimID,
		CustomerID:    claim.CustomerID,
		ClaimType:     claim.ClaimType,
		Description:   claim.Description,
		ProductID:     claim.ProductID,
		Status:        claim.Status,
		AssignedAgent: claim.AssignedAgent,
		Resolution:    claim.Resolution,
		CreatedAt:     claim.CreatedAt,
		UpdatedAt:     claim.UpdatedAt,
	}
}

func fromClaimModel(row claimModel) domain.Claim {
	return domain.Claim{
		ClaimID:       row.ClaimID,
		CustomerID:    row.CustomerID,
		ClaimType:     row.ClaimType,
		Description:   row.Description,
		ProductID:     row.ProductID,
		Status:        row.Status,
		AssignedAgent: row.AssignedAgent,
		Resolution:    row.Resolution,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

func (r *claimRepository) Create(ctx context.Context, claim domain.Claim) error {
	err := r.db.WithContext(ctx).Create(toClaimModel(claim)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return err
}

func (r *claimRepository) GetByID(ctx context.Context, claimID string) (domain.Claim, error) {
	var row claimModel
	err := r.db.WithContext(ctx).First(&row, "claim_id = ?", claimID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Claim{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Claim{}, err
	}
	return fromClaimModel(row), nil
}

func (r *claimRepository) Update(ctx context.Context, claim domain.Claim) error {
	result := r.db.WithContext(ctx).
		Model(&claimModel{}).
		Where("claim_id = ?", claim.ClaimID).
		Updates(toClaimModel(claim))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *claimRepository) List(ctx context.Context, customerID, status string, limit, offset int) ([]domain.Claim, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := r.db.WithContext(ctx).Model(&claimModel{}).Order("created_at DESC").Limit(limit).Offset(offset)
	if customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var rows []claimModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Claim, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromClaimModel(row))
	}
	return out, nil
}

type eventLogRepository struct {
	db *gorm.DB
}

func (r *eventLogRepository) Append(ctx context.Context, envelope domain.EventEnvelope) error {
	payload, err := json.Marshal(envelope.Data)
	if err != nil {
		return fmt.Errorf("encode event data: %w", err)
	}
	row := eventLogModel{
		EventID:       envelope.EventID,
		EventType:     envelope.EventType,
		AggregateID:   envelope.AggregateID,
		Data:          string(payload),
		Timestamp:     envelope.Timestamp,
		CorrelationID: envelope.CorrelationID,
		Service:       envelope.Service,
	}
	err = r.db.WithContext(ctx).Create(row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Event ids are assigned once; a replayed append is a no-op.
		return nil
	}
	return err
}

func (r *eventLogRepository) listWhere(ctx context.Context, query string, arg string) ([]domain.EventEnvelope, error) {
	var rows []eventLogModel
	if err := r.db.WithContext(ctx).Where(query, arg).Order("timestamp ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.EventEnvelope, 0, len(rows))
	for _, row := range rows {
		envelope := domain.EventEnvelope{
			EventID:       row.EventID,
			EventType:     row.EventType,
			AggregateID:   row.AggregateID,
			Timestamp:     row.Timestamp.UTC(),
			CorrelationID: row.CorrelationID,
			Service:       row.Service,
		}
		if row.Data != "" {
			if err := json.Unmarshal([]byte(row.Data), &envelope.Data); err != nil {
				return nil, fmt.Errorf("decode event data: %w", err)
			}
		}
		out = append(out, envelope)
	}
	return out, nil
}

func (r *eventLogRepository) ListByAggregate(ctx context.Context, aggregateID string) ([]domain.EventEnvelope, error) {
	return r.listWhere(ctx, "aggregate_id = ?", aggregateID)
}

func (r *eventLogRepository) ListByType(ctx context.Context, eventType string) ([]domain.EventEnvelope, error) {
	return r.listWhere(ctx, "event_type = ?", eventType)
}

func (r *eventLogRepository) ListByCorrelation(ctx context.Context, correlationID string) ([]domain.EventEnvelope, error) {
	return r.listWhere(ctx, "correlation_id = ?", correlationID)
}

type customerRepository struct {
	db *gorm.DB
}

func (r *customerRepository) Create(ctx context.Context, row ports.Customer) error {
	err := r.db.WithContext(ctx).Create(customerModel(row)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return err
}

func (r *customerRepository) GetByID(ctx context.Context, customerID string) (ports.Customer, error) {
	var row customerModel
	err := r.db.WithContext(ctx).First(&row, "customer_id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.Customer{}, domain.ErrNotFound
	}
	if err != nil {
		return ports.Customer{}, err
	}
	return ports.Customer(row), nil
}

type productRepository struct {
	db *gorm.DB
}

func (r *productRepository) Create(ctx context.Context, row ports.Product) error {
	err := r.db.WithContext(ctx).Create(productModel(row)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return err
}

func (r *productRepository) GetByID(ctx context.Context, productID string) (ports.Product, error) {
	var row productModel
	err := r.db.WithContext(ctx).First(&row, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.Product{}, domain.ErrNotFound
	}
	if err != nil {
		return ports.Product{}, err
	}
	return ports.Product(row), nil
}

type orderRepository struct {
	db *gorm.DB
}

func (r *orderRepository) Create(ctx context.Context, row ports.Order) error {
	err := r.db.WithContext(ctx).Create(orderModel(row)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return err
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID string) ([]ports.Order, error) {
	var rows []orderModel
	if err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("placed_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ports.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.Order(row))
	}
	return out, nil
}

type stockLocationRepository struct {
	db *gorm.DB
}

func (r *stockLocationRepository) Create(ctx context.Context, row ports.StockLocation) error {
	err := r.db.WithContext(ctx).Create(stockLocationModel(row)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return err
}

func (r *stockLocationRepository) List(ctx context.Context) ([]ports.StockLocation, error) {
	var rows []stockLocationModel
	if err := r.db.WithContext(ctx).Order("location_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ports.StockLocation, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.StockLocation(row))
	}
	return out, nil
}
