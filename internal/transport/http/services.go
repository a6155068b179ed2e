package httptransport

import (
	"context"
	"time"

	classmodels "dealer/internal/classification/models"
	invmodels "dealer/internal/inventory/models"
	reportmodels "dealer/internal/reports/models"
	salemodels "dealer/internal/sale/models"
	saleservice "dealer/internal/sale/service"
	id "dealer/pkg/domain"
	"dealer/pkg/platform/audit"
)

//go:generate mockgen -source=services.go -destination=mocks/mocks.go -package=mocks

// SaleService is the sale engine surface the adapter calls.
type SaleService interface {
	RegisterSale(ctx context.Context, cmd saleservice.RegisterSaleCommand) (id.SaleID, error)
	CancelSale(ctx context.Context, saleID id.SaleID) error
	GetSale(ctx context.Context, saleID id.SaleID) (*salemodels.SaleDetail, error)
	ListSalesByClient(ctx context.Context, clientID id.ClientID, status salemodels.Status, limit int) ([]*salemodels.Sale, error)
}

type ClassificationService interface {
	Classify(ctx context.Context, clientID id.ClientID) (*classmodels.Classification, error)
}

type InventoryService interface {
	Get(ctx context.Context, vehicleID id.VehicleID) (*invmodels.Vehicle, error)
	List(ctx context.Context, filter invmodels.ListFilter) ([]*invmodels.Vehicle, error)
}

type ReportService interface {
	ClientHistory(ctx context.Context, clientID id.ClientID) ([]reportmodels.HistoryEntry, error)
	Availability(ctx context.Context, filter reportmodels.AvailabilityFilter) ([]reportmodels.AvailabilityRow, error)
	TopBrands(ctx context.Context, year, limit int) ([]reportmodels.BrandRanking, error)
	SalesByMonthAndBrand(ctx context.Context, year int) ([]reportmodels.MonthlyBrandSales, error)
	MonthSummary(ctx context.Context, at time.Time) (*reportmodels.SalesSummary, error)
	AgingStock(ctx context.Context, days int) (*reportmodels.AgingStock, error)
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type AuditReader interface {
	ListRecords(ctx context.Context, filter audit.RecordFilter) ([]audit.Record, error)
	ListErrors(ctx context.Context, filter audit.ErrorFilter) ([]audit.ErrorEvent, error)
}
