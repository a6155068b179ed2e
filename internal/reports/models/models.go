// Package models holds the read-only report shapes served to the back office.
package models

import (
	"time"

	"github.com/shopspring/decimal"

	"dealer/internal/pricing"
	id "dealer/pkg/domain"
)

// HistoryEntry is one row of a client's purchase history.
type HistoryEntry struct {
	SaleID       id.SaleID     `json:"sale_id"`
	SaleDate     time.Time     `json:"sale_date"`
	Total        pricing.Money `json:"total"`
	Discount     pricing.Money `json:"discount"`
	Status       string        `json:"status"`
	VehicleCount int           `json:"vehicle_count"`
	Vehicles     []string      `json:"vehicles"`
}

type AvailabilityFilter struct {
	Brand       string
	VehicleType string
	IntakeFrom  time.Time
	IntakeTo    time.Time
}

// AvailabilityRow groups AVAILABLE stock by brand and type.
type AvailabilityRow struct {
	Brand        string        `json:"brand"`
	VehicleType  string        `json:"vehicle_type"`
	Count        int           `json:"count"`
	TotalValue   pricing.Money `json:"-"`
	AveragePrice pricing.Money `json:"average_price"`
}

// BrandTotal is the raw per-brand aggregate over ACTIVE sales in a year.
type BrandTotal struct {
	Brand         string
	TotalAmount   pricing.Money
	SalesCount    int
	VehiclesCount int
}

type BrandRanking struct {
	Rank          int             `json:"rank"`
	Brand         string          `json:"brand"`
	TotalAmount   pricing.Money   `json:"total_amount"`
	SalesCount    int             `json:"sales_count"`
	VehiclesCount int             `json:"vehicles_count"`
	AverageSale   pricing.Money   `json:"average_sale"`
	SharePercent  decimal.Decimal `json:"share_percent"`
}

// MonthlyBrandSales is one month and brand cell of a year's ACTIVE sales.
// A sale is counted once for every brand among its vehicles.
type MonthlyBrandSales struct {
	Year          int           `json:"year"`
	Month         int           `json:"month"`
	Brand         string        `json:"brand"`
	SalesCount    int           `json:"sales_count"`
	VehiclesCount int           `json:"vehicles_count"`
	TotalAmount   pricing.Money `json:"total_amount"`
}

// SalesSummary covers ACTIVE sales in [From, To).
type SalesSummary struct {
	From        time.Time     `json:"from"`
	To          time.Time     `json:"to"`
	Revenue     pricing.Money `json:"revenue"`
	ActiveSales int           `json:"active_sales"`
	AverageSale pricing.Money `json:"average_sale"`
}

// AgingStock counts AVAILABLE vehicles taken in before Cutoff.
type AgingStock struct {
	ThresholdDays int       `json:"threshold_days"`
	Cutoff        time.Time `json:"cutoff"`
	Count         int       `json:"count"`
}
