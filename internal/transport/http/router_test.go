package httptransport_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	classmodels "dealer/internal/classification/models"
	invmodels "dealer/internal/inventory/models"
	jwttoken "dealer/internal/jwt_token"
	"dealer/internal/platform/logger"
	"dealer/internal/pricing"
	reportmodels "dealer/internal/reports/models"
	salemodels "dealer/internal/sale/models"
	saleservice "dealer/internal/sale/service"
	httptransport "dealer/internal/transport/http"
	"dealer/internal/transport/http/mocks"
	id "dealer/pkg/domain"
	dErrors "dealer/pkg/domain-errors"
	"dealer/pkg/platform/audit"
	"dealer/pkg/testutil"
)

type RouterSuite struct {
	suite.Suite
	jwt *jwttoken.JWTService

	sales     *mocks.MockSaleService
	classify  *mocks.MockClassificationService
	inventory *mocks.MockInventoryService
	reports   *mocks.MockReportService
	auditLog  *mocks.MockAuditReader
	health    *mocks.MockHealthChecker
	router    http.Handler

	sellerToken string
	adminToken  string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupSuite() {
	s.jwt = jwttoken.NewJWTService("router-test-key", "dealer", "dealer-api")
	var err error
	s.sellerToken, err = s.jwt.GenerateAccessToken("seller-1", []string{"seller"}, time.Hour)
	s.Require().NoError(err)
	s.adminToken, err = s.jwt.GenerateAccessToken("admin-1", []string{"seller", "admin"}, time.Hour)
	s.Require().NoError(err)
}

func (s *RouterSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.sales = mocks.NewMockSaleService(ctrl)
	s.classify = mocks.NewMockClassificationService(ctrl)
	s.inventory = mocks.NewMockInventoryService(ctrl)
	s.reports = mocks.NewMockReportService(ctrl)
	s.auditLog = mocks.NewMockAuditReader(ctrl)
	s.health = mocks.NewMockHealthChecker(ctrl)
	s.router = httptransport.NewRouter(httptransport.Deps{
		Sales:          s.sales,
		Classification: s.classify,
		Inventory:      s.inventory,
		Reports:        s.reports,
		Audit:          s.auditLog,
		Validator:      jwttoken.NewJWTServiceAdapter(s.jwt),
		Health:         s.health,
		Logger:         logger.Discard(),
	})
}

func (s *RouterSuite) do(method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := testutil.WithBearer(testutil.NewRequestWithBody(s.T(), method, path, body), token)
	rec := testutil.DoRequest(s.router, req)
	return rec, testutil.DecodeJSON(s.T(), rec)
}

func (s *RouterSuite) TestRegisterSale() {
	clientID, employeeID, methodID, vehicleID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	body := `{"client_id":"` + clientID.String() + `","employee_id":"` + employeeID.String() +
		`","payment_method_id":"` + methodID.String() + `","vehicle_id":"` + vehicleID.String() +
		`","seasonal_discount":true}`

	s.Run("created", func() {
		saleID := id.SaleID(uuid.New())
		s.sales.EXPECT().RegisterSale(gomock.Any(), saleservice.RegisterSaleCommand{
			ClientID:         id.ClientID(clientID),
			EmployeeID:       id.EmployeeID(employeeID),
			PaymentMethodID:  id.PaymentMethodID(methodID),
			VehicleID:        id.VehicleID(vehicleID),
			Quantity:         1,
			SeasonalDiscount: true,
		}).Return(saleID, nil)

		rec, out := s.do(http.MethodPost, "/sales", s.sellerToken, body)

		s.Equal(http.StatusCreated, rec.Code)
		s.Equal(saleID.String(), out["sale_id"])
		s.Equal("/sales/"+saleID.String(), rec.Header().Get("Location"))
	})

	s.Run("vehicle not available is 409", func() {
		s.sales.EXPECT().RegisterSale(gomock.Any(), gomock.Any()).
			Return(id.SaleID{}, dErrors.New(dErrors.CodeVehicleNotAvailable, "vehicle is SOLD"))

		rec, out := s.do(http.MethodPost, "/sales", s.sellerToken, body)

		s.Equal(http.StatusConflict, rec.Code)
		s.Equal("vehicle_not_available", out["error"])
		s.Equal("vehicle is SOLD", out["error_description"])
	})

	s.Run("malformed id never reaches the engine", func() {
		rec, out := s.do(http.MethodPost, "/sales", s.sellerToken, `{"client_id":"nope"}`)
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
		s.Equal("invalid_input", out["error"])
	})

	s.Run("unknown field rejected", func() {
		rec, _ := s.do(http.MethodPost, "/sales", s.sellerToken, `{"price":"1.00"}`)
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})

	s.Run("requires a token", func() {
		rec, out := s.do(http.MethodPost, "/sales", "", body)
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Equal("unauthorized", out["error"])
	})
}

func (s *RouterSuite) TestCancelSale() {
	saleID := id.SaleID(uuid.New())
	path := "/sales/" + saleID.String() + "/cancel"

	s.Run("seller is forbidden", func() {
		rec, out := s.do(http.MethodPost, path, s.sellerToken, "")
		s.Equal(http.StatusForbidden, rec.Code)
		s.Equal("forbidden", out["error"])
	})

	s.Run("admin cancels", func() {
		s.sales.EXPECT().CancelSale(gomock.Any(), saleID).Return(nil)
		rec, out := s.do(http.MethodPost, path, s.adminToken, "")
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("CANCELLED", out["status"])
	})

	s.Run("already cancelled is 409", func() {
		s.sales.EXPECT().CancelSale(gomock.Any(), saleID).
			Return(dErrors.New(dErrors.CodeSaleNotCancellable, "sale is CANCELLED"))
		rec, out := s.do(http.MethodPost, path, s.adminToken, "")
		s.Equal(http.StatusConflict, rec.Code)
		s.Equal("sale_not_cancellable", out["error"])
	})

	s.Run("inconsistent inventory is 409 with a description", func() {
		s.sales.EXPECT().CancelSale(gomock.Any(), saleID).
			Return(dErrors.New(dErrors.CodeInconsistentInventoryState, "vehicle is AVAILABLE while its sale is ACTIVE"))
		rec, out := s.do(http.MethodPost, path, s.adminToken, "")
		s.Equal(http.StatusConflict, rec.Code)
		s.Equal("inconsistent_inventory_state", out["error"])
		s.Equal("vehicle is AVAILABLE while its sale is ACTIVE", out["error_description"])
	})

	s.Run("storage failure hides detail", func() {
		s.sales.EXPECT().CancelSale(gomock.Any(), saleID).
			Return(errors.New("pq: connection reset"))
		rec, out := s.do(http.MethodPost, path, s.adminToken, "")
		s.Equal(http.StatusInternalServerError, rec.Code)
		s.NotContains(rec.Body.String(), "connection reset")
		s.Equal("internal_error", out["error"])
	})
}

func (s *RouterSuite) TestReadEndpoints() {
	clientID := id.ClientID(uuid.New())
	vehicleID := id.VehicleID(uuid.New())

	s.Run("sale detail", func() {
		saleID := id.SaleID(uuid.New())
		s.sales.EXPECT().GetSale(gomock.Any(), saleID).Return(&salemodels.SaleDetail{
			Sale: &salemodels.Sale{ID: saleID, Status: salemodels.StatusActive, Total: pricing.MustParseMoney("18000.00")},
		}, nil)
		rec, out := s.do(http.MethodGet, "/sales/"+saleID.String(), s.sellerToken, "")
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(out, "sale")
	})

	s.Run("client sales with status filter", func() {
		s.sales.EXPECT().ListSalesByClient(gomock.Any(), clientID, salemodels.StatusActive, 10).Return(nil, nil)
		rec, out := s.do(http.MethodGet, "/clients/"+clientID.String()+"/sales?status=ACTIVE&limit=10", s.sellerToken, "")
		s.Equal(http.StatusOK, rec.Code)
		s.Equal([]any{}, out["sales"])
	})

	s.Run("bad status filter", func() {
		rec, _ := s.do(http.MethodGet, "/clients/"+clientID.String()+"/sales?status=sold", s.sellerToken, "")
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})

	s.Run("classification", func() {
		s.classify.EXPECT().Classify(gomock.Any(), clientID).
			Return(classmodels.New(clientID, 5, pricing.MustParseMoney("100000.00")), nil)
		rec, out := s.do(http.MethodGet, "/clients/"+clientID.String()+"/classification", s.sellerToken, "")
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("VIP", out["tier"])
	})

	s.Run("unknown client is 404", func() {
		s.classify.EXPECT().Classify(gomock.Any(), clientID).
			Return(nil, dErrors.New(dErrors.CodeReferenceNotFound, "client not found"))
		rec, _ := s.do(http.MethodGet, "/clients/"+clientID.String()+"/classification", s.sellerToken, "")
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("vehicles by state", func() {
		s.inventory.EXPECT().List(gomock.Any(), invmodels.ListFilter{State: invmodels.StateAvailable, Brand: "Toyota"}).
			Return([]*invmodels.Vehicle{{ID: vehicleID, Brand: "Toyota"}}, nil)
		rec, out := s.do(http.MethodGet, "/vehicles?state=AVAILABLE&brand=Toyota", s.sellerToken, "")
		s.Equal(http.StatusOK, rec.Code)
		s.Len(out["vehicles"], 1)
	})

	s.Run("vehicle detail", func() {
		s.inventory.EXPECT().Get(gomock.Any(), vehicleID).Return(&invmodels.Vehicle{ID: vehicleID}, nil)
		rec, _ := s.do(http.MethodGet, "/vehicles/"+vehicleID.String(), s.sellerToken, "")
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("client history", func() {
		s.reports.EXPECT().ClientHistory(gomock.Any(), clientID).Return([]reportmodels.HistoryEntry{{Status: "ACTIVE"}}, nil)
		rec, out := s.do(http.MethodGet, "/clients/"+clientID.String()+"/history", s.sellerToken, "")
		s.Equal(http.StatusOK, rec.Code)
		s.Len(out["entries"], 1)
	})
}

func (s *RouterSuite) TestReports() {
	s.Run("top brands", func() {
		s.reports.EXPECT().TopBrands(gomock.Any(), 2024, 3).Return([]reportmodels.BrandRanking{{Rank: 1, Brand: "Toyota"}}, nil)
		rec, out := s.do(http.MethodGet, "/reports/brands/top?year=2024&limit=3", s.sellerToken, "")
		s.Equal(http.StatusOK, rec.Code)
		s.EqualValues(2024, out["year"])
	})

	s.Run("monthly brand sales", func() {
		s.reports.EXPECT().SalesByMonthAndBrand(gomock.Any(), 2024).Return([]reportmodels.MonthlyBrandSales{
			{Year: 2024, Month: 3, Brand: "Ford", SalesCount: 1},
			{Year: 2024, Month: 3, Brand: "Toyota", SalesCount: 2},
		}, nil)
		rec, out := s.do(http.MethodGet, "/reports/brands/monthly?year=2024", s.sellerToken, "")
		s.Equal(http.StatusOK, rec.Code)
		s.EqualValues(2024, out["year"])
		rows, ok := out["rows"].([]any)
		s.Require().True(ok)
		s.Len(rows, 2)
	})

	s.Run("monthly brand sales bad year", func() {
		rec, out := s.do(http.MethodGet, "/reports/brands/monthly?year=last", s.sellerToken, "")
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
		s.Equal("invalid_input", out["error"])
	})

	s.Run("availability date filter", func() {
		from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		s.reports.EXPECT().Availability(gomock.Any(), reportmodels.AvailabilityFilter{IntakeFrom: from}).Return(nil, nil)
		rec, _ := s.do(http.MethodGet, "/reports/availability?from=2024-01-01", s.sellerToken, "")
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("availability bad date", func() {
		rec, out := s.do(http.MethodGet, "/reports/availability?from=01/02/2024", s.sellerToken, "")
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
		s.Equal("invalid_input", out["error"])
	})

	s.Run("month summary", func() {
		at := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		s.reports.EXPECT().MonthSummary(gomock.Any(), at).Return(&reportmodels.SalesSummary{ActiveSales: 2}, nil)
		rec, out := s.do(http.MethodGet, "/reports/summary?month=2024-03", s.sellerToken, "")
		s.Equal(http.StatusOK, rec.Code)
		s.EqualValues(2, out["active_sales"])
	})

	s.Run("aging stock", func() {
		s.reports.EXPECT().AgingStock(gomock.Any(), 120).Return(&reportmodels.AgingStock{ThresholdDays: 120, Count: 4}, nil)
		rec, out := s.do(http.MethodGet, "/reports/aging?days=120", s.sellerToken, "")
		s.Equal(http.StatusOK, rec.Code)
		s.EqualValues(4, out["count"])
	})
}

func (s *RouterSuite) TestAudit() {
	s.Run("admin only", func() {
		rec, _ := s.do(http.MethodGet, "/audit/records", s.sellerToken, "")
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("records filter", func() {
		s.auditLog.EXPECT().ListRecords(gomock.Any(), audit.RecordFilter{EntityType: audit.EntitySale, Action: audit.ActionCancel}).
			Return([]audit.Record{{ID: "01J", Action: audit.ActionCancel}}, nil)
		rec, out := s.do(http.MethodGet, "/audit/records?entity_type=sale&action=CANCEL", s.adminToken, "")
		s.Equal(http.StatusOK, rec.Code)
		s.Len(out["records"], 1)
	})

	s.Run("errors filter", func() {
		s.auditLog.EXPECT().ListErrors(gomock.Any(), audit.ErrorFilter{Code: "timeout", Limit: 5}).Return(nil, nil)
		rec, out := s.do(http.MethodGet, "/audit/errors?code=timeout&limit=5", s.adminToken, "")
		s.Equal(http.StatusOK, rec.Code)
		s.Equal([]any{}, out["errors"])
	})
}

func (s *RouterSuite) TestHealthAndMetrics() {
	s.Run("healthy", func() {
		s.health.EXPECT().Ping(gomock.Any()).Return(nil)
		rec, out := s.do(http.MethodGet, "/healthz", "", "")
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("ok", out["status"])
	})

	s.Run("database down", func() {
		s.health.EXPECT().Ping(gomock.Any()).Return(errors.New("dial tcp: refused"))
		rec, _ := s.do(http.MethodGet, "/healthz", "", "")
		s.Equal(http.StatusServiceUnavailable, rec.Code)
	})

	s.Run("metrics exposed without auth", func() {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), "go_goroutines")
	})

	s.Run("request id echoed", func() {
		s.health.EXPECT().Ping(gomock.Any()).Return(nil)
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Request-ID", "trace-1")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal("trace-1", rec.Header().Get("X-Request-ID"))
	})
}

func TestRouterExpiredToken(t *testing.T) {
	jwt := jwttoken.NewJWTService("k", "dealer", "dealer-api")
	token, err := jwt.GenerateAccessToken("seller-1", nil, -time.Minute)
	require.NoError(t, err)

	router := httptransport.NewRouter(httptransport.Deps{
		Validator: jwttoken.NewJWTServiceAdapter(jwt),
		Logger:    logger.Discard(),
	})
	req := httptest.NewRequest(http.MethodGet, "/vehicles", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
