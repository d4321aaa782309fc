package model

// Asset values are dollars.
type Asset struct {
	ID           int64   `json:"id"`
	UserID       int64   `json:"user_id"`
	Name         string  `json:"name"`
	AssetType    string  `json:"asset_type"`
	CurrentValue float64 `json:"current_value"`
	Institution  string  `json:"institution,omitempty"`
	Notes        string  `json:"notes,omitempty"`
	IsLiquid     bool    `json:"is_liquid"`
	IsActive     bool    `json:"is_active"`
	CreatedAt    string  `json:"created_at,omitempty"`
	UpdatedAt    string  `json:"updated_at,omitempty"`
}

// AssetInput creates or updates an asset.
type AssetInput struct {
	Name         string  `json:"name,omitempty"`
	AssetType    string  `json:"asset_type,omitempty"`
	CurrentValue float64 `json:"current_value"`
	Institution  string  `json:"institution,omitempty"`
	Notes        string  `json:"notes,omitempty"`
	IsLiquid     *bool   `json:"is_liquid,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

// Liability balances are dollars; InterestRate is an annual percentage.
type Liability struct {
	ID             int64   `json:"id"`
	UserID         int64   `json:"user_id"`
	Name           string  `json:"name"`
	LiabilityType  string  `json:"liability_type"`
	CurrentBalance float64 `json:"current_balance"`
	InterestRate   float64 `json:"interest_rate"`
	MinimumPayment float64 `json:"minimum_payment"`
	Institution    string  `json:"institution,omitempty"`
	Notes          string  `json:"notes,omitempty"`
	IsActive       bool    `json:"is_active"`
	CreatedAt      string  `json:"created_at,omitempty"`
	UpdatedAt      string  `json:"updated_at,omitempty"`
}

// LiabilityInput creates or updates a liability.
type LiabilityInput struct {
	Name           string  `json:"name,omitempty"`
	LiabilityType  string  `json:"liability_type,omitempty"`
	CurrentBalance float64 `json:"current_balance"`
	InterestRate   float64 `json:"interest_rate"`
	MinimumPayment float64 `json:"minimum_payment"`
	Institution    string  `json:"institution,omitempty"`
	Notes          string  `json:"notes,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

// NetWorthSummary is the current assets-minus-liabilities position.
type NetWorthSummary struct {
	CurrentNetWorth  float64  `json:"current_net_worth"`
	TotalAssets      float64  `json:"total_assets"`
	TotalLiabilities float64  `json:"total_liabilities"`
	LiquidAssets     float64  `json:"liquid_assets"`
	AssetCount       int      `json:"asset_count"`
	LiabilityCount   int      `json:"liability_count"`
	MonthlyChange    *float64 `json:"monthly_change,omitempty"`
	MonthlyChangePct *float64 `json:"monthly_change_percentage,omitempty"`
}

// NetWorthTrend is one historical point.
type NetWorthTrend struct {
	Date        string  `json:"date"`
	NetWorth    float64 `json:"net_worth"`
	Assets      float64 `json:"assets"`
	Liabilities float64 `json:"liabilities"`
}

// AssetBreakdown groups assets by type.
type AssetBreakdown struct {
	AssetType  string  `json:"asset_type"`
	TotalValue float64 `json:"total_value"`
	Percentage float64 `json:"percentage"`
	Count      int     `json:"count"`
}

// LiabilityBreakdown groups liabilities by type.
type LiabilityBreakdown struct {
	LiabilityType       string  `json:"liability_type"`
	TotalBalance        float64 `json:"total_balance"`
	Percentage          float64 `json:"percentage"`
	Count               int     `json:"count"`
	TotalInterestRate   float64 `json:"total_interest_rate"`
	TotalMinimumPayment float64 `json:"total_minimum_payment"`
}

// NetWorthProjection is a server-side linear forecast.
type NetWorthProjection struct {
	ProjectionDate       string         `json:"projection_date"`
	ProjectedNetWorth    float64        `json:"projected_net_worth"`
	ProjectedAssets      float64        `json:"projected_assets"`
	ProjectedLiabilities float64        `json:"projected_liabilities"`
	Assumptions          map[string]any `json:"assumptions"`
}

// NetWorthAlert flags a notable change.
type NetWorthAlert struct {
	AlertType        string   `json:"alert_type"`
	Severity         string   `json:"severity"`
	Message          string   `json:"message"`
	ChangeAmount     *float64 `json:"change_amount,omitempty"`
	ChangePercentage *float64 `json:"change_percentage,omitempty"`
}

// NetWorthSnapshot is returned when a snapshot is recorded.
type NetWorthSnapshot struct {
	ID               int64   `json:"id"`
	SnapshotDate     string  `json:"snapshot_date"`
	TotalAssets      float64 `json:"total_assets"`
	TotalLiabilities float64 `json:"total_liabilities"`
	NetWorth         float64 `json:"net_worth"`
}
