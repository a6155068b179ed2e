package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	dirmodels "dealer/internal/directory/models"
	dirstore "dealer/internal/directory/store"
	invmodels "dealer/internal/inventory/models"
	invservice "dealer/internal/inventory/service"
	invstore "dealer/internal/inventory/store"
	"dealer/internal/pricing"
	"dealer/internal/sale/models"
	salestore "dealer/internal/sale/store"
	id "dealer/pkg/domain"
	dErrors "dealer/pkg/domain-errors"
	audit "dealer/pkg/platform/audit"
	"dealer/pkg/platform/audit/publisher"
	auditmemory "dealer/pkg/platform/audit/store/memory"
	"dealer/pkg/platform/tx"
	"dealer/pkg/requestcontext"
)

// SaleEngineSuite runs the engine end to end on the in-memory backend.
type SaleEngineSuite struct {
	suite.Suite
	ctx        context.Context
	gate       *tx.Gate
	directory  *dirstore.InMemory
	vehicles   *invstore.InMemory
	sales      *salestore.InMemory
	auditStore *auditmemory.InMemoryStore
	service    *Service

	client   *dirmodels.Client
	employee *dirmodels.Employee
	method   *dirmodels.PaymentMethod
	vehicle  *invmodels.Vehicle
}

func TestSaleEngineSuite(t *testing.T) {
	suite.Run(t, new(SaleEngineSuite))
}

func (s *SaleEngineSuite) SetupTest() {
	s.ctx = requestcontext.WithActor(context.Background(), "seller-1")
	s.gate = tx.NewGate()
	gate := s.gate
	s.directory = dirstore.NewInMemory()
	s.vehicles = invstore.NewInMemory(gate)
	s.sales = salestore.NewInMemory(gate)
	s.auditStore = auditmemory.NewInMemoryStore(gate)

	calc, err := pricing.NewCalculator(pricing.DefaultPolicy())
	s.Require().NoError(err)

	s.service = New(
		s.sales,
		tx.NewMemoryRunner(gate, s.vehicles, s.sales, s.auditStore),
		s.directory,
		invservice.New(s.vehicles),
		calc,
		publisher.New(s.auditStore),
	)

	s.client = &dirmodels.Client{ID: id.ClientID(uuid.New()), FullName: "Ana Gomez", Email: "ana@example.com", RegisteredAt: time.Now()}
	s.employee = &dirmodels.Employee{ID: id.EmployeeID(uuid.New()), FullName: "Luis Perez", Username: "lperez", Status: dirmodels.EmployeeActive}
	s.method = &dirmodels.PaymentMethod{ID: id.PaymentMethodID(uuid.New()), Name: "Cash", Active: true}
	s.Require().NoError(s.directory.CreateClient(s.ctx, s.client))
	s.Require().NoError(s.directory.CreateEmployee(s.ctx, s.employee))
	s.Require().NoError(s.directory.CreatePaymentMethod(s.ctx, s.method))
	s.vehicle = s.addVehicle("20000.00")
}

func (s *SaleEngineSuite) addVehicle(price string) *invmodels.Vehicle {
	v, err := invmodels.NewVehicle(id.VehicleID(uuid.New()), "Toyota", "Corolla", 2023, "Sedan",
		pricing.MustParseMoney(price), time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.vehicles.Create(s.ctx, v))
	return v
}

func (s *SaleEngineSuite) command(vehicleID id.VehicleID) RegisterSaleCommand {
	return RegisterSaleCommand{
		ClientID:        s.client.ID,
		EmployeeID:      s.employee.ID,
		PaymentMethodID: s.method.ID,
		VehicleID:       vehicleID,
		Quantity:        1,
	}
}

func (s *SaleEngineSuite) records() []audit.Record {
	out, err := s.auditStore.ListRecords(s.ctx, audit.RecordFilter{})
	s.Require().NoError(err)
	return out
}

func (s *SaleEngineSuite) errorEvents() []audit.ErrorEvent {
	out, err := s.auditStore.ListErrors(s.ctx, audit.ErrorFilter{})
	s.Require().NoError(err)
	return out
}

func (s *SaleEngineSuite) vehicleState(vehicleID id.VehicleID) invmodels.AvailabilityState {
	v, err := s.vehicles.FindByID(s.ctx, vehicleID)
	s.Require().NoError(err)
	return v.State
}

// =============================================================================
// RegisterSale
// =============================================================================

func (s *SaleEngineSuite) TestRegisterSale() {
	s.Run("commits sale, line item, sold vehicle and one audit record", func() {
		cmd := s.command(s.vehicle.ID)
		cmd.SeasonalDiscount = true

		saleID, err := s.service.RegisterSale(s.ctx, cmd)
		s.Require().NoError(err)

		detail, err := s.service.GetSale(s.ctx, saleID)
		s.Require().NoError(err)
		s.Equal(models.StatusActive, detail.Sale.Status)
		s.Equal("18000.00", detail.Sale.Total.String())
		s.Equal("2000.00", detail.Sale.Discount.String())
		s.Require().Len(detail.Items, 1)
		s.Equal("20000.00", detail.Items[0].UnitPrice.String())
		s.Equal("Toyota", detail.Items[0].Brand)

		s.Equal(invmodels.StateSold, s.vehicleState(s.vehicle.ID))

		records := s.records()
		s.Require().Len(records, 1)
		s.Equal(audit.ActionCreate, records[0].Action)
		s.Equal(audit.EntitySale, records[0].EntityType)
		s.Equal(saleID.String(), records[0].EntityID)
		s.Equal("seller-1", records[0].Actor)
		s.JSONEq("null", string(records[0].Before))
		s.Empty(s.errorEvents())
	})

	s.Run("sold vehicle is not available and leaves one error event", func() {
		_, err := s.service.RegisterSale(s.ctx, s.command(s.vehicle.ID))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeVehicleNotAvailable))
		s.Contains(dErrors.MessageOf(err), "SOLD")

		s.Len(s.records(), 1)
		events := s.errorEvents()
		s.Require().Len(events, 1)
		s.Equal(string(dErrors.CodeVehicleNotAvailable), events[0].Code)
		s.Equal("sale.register", events[0].Origin)
		s.Equal("seller-1", events[0].Actor)
	})
}

func (s *SaleEngineSuite) TestRegisterSaleValidation() {
	inactive := &dirmodels.Employee{ID: id.EmployeeID(uuid.New()), FullName: "Old Hand", Username: "old", Status: dirmodels.EmployeeInactive}
	s.Require().NoError(s.directory.CreateEmployee(s.ctx, inactive))
	closed := &dirmodels.PaymentMethod{ID: id.PaymentMethodID(uuid.New()), Name: "Cheque", Active: false}
	s.Require().NoError(s.directory.CreatePaymentMethod(s.ctx, closed))

	cases := []struct {
		name   string
		mutate func(*RegisterSaleCommand)
		code   dErrors.Code
	}{
		{"unknown client", func(c *RegisterSaleCommand) { c.ClientID = id.ClientID(uuid.New()) }, dErrors.CodeReferenceNotFound},
		{"unknown employee", func(c *RegisterSaleCommand) { c.EmployeeID = id.EmployeeID(uuid.New()) }, dErrors.CodeReferenceNotFound},
		{"inactive employee", func(c *RegisterSaleCommand) { c.EmployeeID = inactive.ID }, dErrors.CodeInactiveReference},
		{"unknown payment method", func(c *RegisterSaleCommand) { c.PaymentMethodID = id.PaymentMethodID(uuid.New()) }, dErrors.CodeReferenceNotFound},
		{"inactive payment method", func(c *RegisterSaleCommand) { c.PaymentMethodID = closed.ID }, dErrors.CodeInactiveReference},
		{"unknown vehicle", func(c *RegisterSaleCommand) { c.VehicleID = id.VehicleID(uuid.New()) }, dErrors.CodeReferenceNotFound},
		{"zero quantity", func(c *RegisterSaleCommand) { c.Quantity = 0 }, dErrors.CodeInvalidAmount},
		{"quantity above one", func(c *RegisterSaleCommand) { c.Quantity = 2 }, dErrors.CodeInvalidAmount},
	}

	for i, tc := range cases {
		s.Run(tc.name, func() {
			cmd := s.command(s.vehicle.ID)
			tc.mutate(&cmd)

			_, err := s.service.RegisterSale(s.ctx, cmd)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, tc.code), "got %v", err)

			s.Empty(s.records())
			s.Len(s.errorEvents(), i+1)
			s.Equal(invmodels.StateAvailable, s.vehicleState(s.vehicle.ID))
		})
	}
}

func (s *SaleEngineSuite) TestRegisterSaleCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.service.RegisterSale(ctx, s.command(s.vehicle.ID))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))

	s.Equal(invmodels.StateAvailable, s.vehicleState(s.vehicle.ID))
	s.Empty(s.records())
	events := s.errorEvents()
	s.Require().Len(events, 1)
	s.Equal(string(dErrors.CodeTimeout), events[0].Code)
}

// slowVehicles lets the first reads through and then holds every vehicle
// read until the caller's deadline passes.
type slowVehicles struct {
	*invstore.InMemory
	passReads int32
	reads     atomic.Int32
}

func (v *slowVehicles) FindByID(ctx context.Context, vehicleID id.VehicleID) (*invmodels.Vehicle, error) {
	if v.reads.Add(1) <= v.passReads {
		return v.InMemory.FindByID(ctx, vehicleID)
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (s *SaleEngineSuite) TestRegisterSaleDeadlineDuringVehicleRead() {
	cases := []struct {
		name      string
		passReads int32
	}{
		{"validation read", 0},
		{"read inside the transaction", 1},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.SetupTest()
			slow := &slowVehicles{InMemory: s.vehicles, passReads: tc.passReads}
			calc, err := pricing.NewCalculator(pricing.DefaultPolicy())
			s.Require().NoError(err)
			svc := New(s.sales, tx.NewMemoryRunner(s.gate, s.vehicles, s.sales, s.auditStore),
				s.directory, invservice.New(slow), calc, publisher.New(s.auditStore))

			ctx, cancel := context.WithTimeout(s.ctx, 20*time.Millisecond)
			defer cancel()
			_, err = svc.RegisterSale(ctx, s.command(s.vehicle.ID))
			s.Require().Error(err)
			s.Equal(dErrors.CodeTimeout, dErrors.CodeOf(err))

			s.Equal(invmodels.StateAvailable, s.vehicleState(s.vehicle.ID))
			s.Empty(s.records())
			events := s.errorEvents()
			s.Require().Len(events, 1)
			s.Equal(string(dErrors.CodeTimeout), events[0].Code)
		})
	}
}

func (s *SaleEngineSuite) TestConcurrentRegisterSellsOnce() {
	const sellers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	for range sellers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.RegisterSale(s.ctx, s.command(s.vehicle.ID))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			failures = append(failures, err)
		}()
	}
	wg.Wait()

	s.Equal(1, successes)
	for _, err := range failures {
		s.True(dErrors.HasCode(err, dErrors.CodeVehicleNotAvailable) ||
			dErrors.HasCode(err, dErrors.CodeConcurrentModification), "got %v", err)
	}
	n, err := s.sales.ActiveSaleCount(s.ctx, s.vehicle.ID)
	s.Require().NoError(err)
	s.Equal(1, n)
	s.Len(s.records(), 1)
	s.Len(s.errorEvents(), sellers-1)
}

// =============================================================================
// CancelSale
// =============================================================================

func (s *SaleEngineSuite) TestCancelSaleRoundTrip() {
	saleID, err := s.service.RegisterSale(s.ctx, s.command(s.vehicle.ID))
	s.Require().NoError(err)

	s.Require().NoError(s.service.CancelSale(s.ctx, saleID))

	detail, err := s.service.GetSale(s.ctx, saleID)
	s.Require().NoError(err)
	s.Equal(models.StatusCancelled, detail.Sale.Status)
	s.Equal(invmodels.StateAvailable, s.vehicleState(s.vehicle.ID))

	records := s.records()
	s.Require().Len(records, 2)
	s.Equal(audit.ActionCancel, records[0].Action)
	s.Contains(string(records[0].Before), `"ACTIVE"`)
	s.Contains(string(records[0].After), `"CANCELLED"`)
	s.Contains(string(records[0].After), s.vehicle.ID.String())
	s.Empty(s.errorEvents())

	s.Run("second cancel fails and changes nothing", func() {
		err := s.service.CancelSale(s.ctx, saleID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeSaleNotCancellable))
		s.Len(s.records(), 2)
		s.Len(s.errorEvents(), 1)
		s.Equal(invmodels.StateAvailable, s.vehicleState(s.vehicle.ID))
	})

	s.Run("released vehicle can be sold again", func() {
		_, err := s.service.RegisterSale(s.ctx, s.command(s.vehicle.ID))
		s.Require().NoError(err)
		s.Equal(invmodels.StateSold, s.vehicleState(s.vehicle.ID))
	})
}

func (s *SaleEngineSuite) TestCancelUnknownSale() {
	err := s.service.CancelSale(s.ctx, id.SaleID(uuid.New()))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeReferenceNotFound))
	s.Len(s.errorEvents(), 1)
	s.Empty(s.records())
}

func (s *SaleEngineSuite) TestCancelWithDriftedInventoryRollsBack() {
	saleID, err := s.service.RegisterSale(s.ctx, s.command(s.vehicle.ID))
	s.Require().NoError(err)

	// Manual drift: the vehicle is released outside the engine.
	_, err = s.vehicles.CompareAndSetState(s.ctx, s.vehicle.ID, invmodels.StateSold, invmodels.StateAvailable, 0, time.Now())
	s.Require().NoError(err)

	err = s.service.CancelSale(s.ctx, saleID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInconsistentInventoryState))

	sale, err := s.sales.FindByID(s.ctx, saleID)
	s.Require().NoError(err)
	s.Equal(models.StatusActive, sale.Status)
	s.Len(s.records(), 1)
	s.Len(s.errorEvents(), 1)
}

// =============================================================================
// Reads
// =============================================================================

func (s *SaleEngineSuite) TestListSalesByClient() {
	second := s.addVehicle("15000.00")
	_, err := s.service.RegisterSale(s.ctx, s.command(s.vehicle.ID))
	s.Require().NoError(err)
	_, err = s.service.RegisterSale(s.ctx, s.command(second.ID))
	s.Require().NoError(err)

	sales, err := s.service.ListSalesByClient(s.ctx, s.client.ID, "", 0)
	s.Require().NoError(err)
	s.Len(sales, 2)

	_, err = s.service.ListSalesByClient(s.ctx, id.ClientID(uuid.New()), "", 0)
	s.True(dErrors.HasCode(err, dErrors.CodeReferenceNotFound))
}
