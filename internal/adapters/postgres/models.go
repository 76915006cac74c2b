package postgres

import "time"

type claimModel struct {
	ClaimID       string    `gorm:"column:claim_id;primaryKey"`
	CustomerID    string    `gorm:"column:customer_id;index"`
	ClaimType     string    `gorm:"column:claim_type"`
	Description   string    `gorm:"column:description"`
	ProductID     string    `gorm:"column:product_id"`
	Status        string    `gorm:"column:status;index"`
	AssignedAgent string    `gorm:"column:assigned_agent"`
	Resolution    string    `gorm:"column:resolution"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (claimModel) TableName() string { return "claims" }

// eventLogModel is the durable envelope record. The four indexed columns are
// the replay query dimensions.
type eventLogModel struct {
	EventID       string    `gorm:"column:event_id;primaryKey"`
	EventType     string    `gorm:"column:event_type;index"`
	AggregateID   string    `gorm:"column:aggregate_id;index"`
	Data          string    `gorm:"column:data;type:jsonb"`
	Timestamp     time.Time `gorm:"column:timestamp;index"`
	CorrelationID string    `gorm:"column:correlation_id;index"`
	Service       string    `gorm:"column:service"`
}

func (eventLogModel) TableName() string { return "event_log" }

type customerModel struct {
	CustomerID string    `gorm:"column:customer_id;primaryKey"`
	Name       string    `gorm:"column:name"`
	Email      string    `gorm:"column:email"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (customerModel) TableName() string { return "customers" }

type productModel struct {
	ProductID string    `gorm:"column:product_id;primaryKey"`
	Name      string    `gorm:"column:name"`
	SKU       string    `gorm:"column:sku"`
	UnitPrice float64   `gorm:"column:unit_price"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (productModel) TableName() string { return "products" }

type orderModel struct {
	OrderID    string    `gorm:"column:order_id;primaryKey"`
	CustomerID string    `gorm:"column:customer_id;index"`
	ProductID  string    `gorm:"column:product_id"`
	Quantity   int       `gorm:"column:quantity"`
	PlacedAt   time.Time `gorm:"column:placed_at"`
}

func (orderModel) TableName() string { return "orders" }

type stockLocationModel struct {
	LocationID string    `gorm:"column:location_id;primaryKey"`
	Name       string    `gorm:"column:name"`
	Region     string    `gorm:"column:region"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (stockLocationModel) TableName() string { return "stock_locations" }

type claimViewModel struct {
	ClaimID       string    `gorm:"column:claim_id;primaryKey"`
	CustomerID    string    `gorm:"column:customer_id;index"`
	ClaimType     string    `gorm:"column:claim_type"`
	Status        string    `gorm:"column:status"`
	AssignedAgent string    `gorm:"column:assigned_agent"`
	Resolution    string    `gorm:"column:resolution"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (claimViewModel) TableName() string { return "claim_views" }

type customerClaimSummaryModel struct {
	CustomerID  string    `gorm:"column:customer_id;primaryKey"`
	TotalClaims int       `gorm:"column:total_claims"`
	OpenClaims  int       `gorm:"column:open_claims"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (customerClaimSummaryModel) TableName() string { return "customer_claim_summaries" }

type agentClaimSummaryModel struct {
	AgentID        string    `gorm:"column:agent_id;primaryKey"`
	AssignedClaims int       `gorm:"column:assigned_claims"`
	ResolvedClaims int       `gorm:"column:resolved_claims"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (agentClaimSummaryModel) TableName() string { return "agent_claim_summaries" }

type claimTypeStatsModel struct {
	ClaimType   string    `gorm:"column:claim_type;primaryKey"`
	TotalClaims int       `gorm:"column:total_claims"`
	Resolved    int       `gorm:"column:resolved"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (claimTypeStatsModel) TableName() string { return "claim_type_stats" }

type dailyClaimStatsModel struct {
	Day          time.Time `gorm:"column:day;primaryKey"`
	ClaimsOpened int       `gorm:"column:claims_opened"`
	ClaimsClosed int       `gorm:"column:claims_closed"`
}

func (dailyClaimStatsModel) TableName() string { return "daily_claim_stats" }
