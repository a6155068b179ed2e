// Package service is the sale engine: the Sale Transaction Coordinator
// (RegisterSale) and the Cancellation Workflow (CancelSale).
//
// Both operations run their mutations inside one StoreTx transaction. A
// successful call appends exactly one audit record inside that transaction;
// a failed call rolls back and then appends exactly one error event outside
// it, so the event survives the rollback.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dirmodels "dealer/internal/directory/models"
	invmodels "dealer/internal/inventory/models"
	"dealer/internal/platform/postgres"
	"dealer/internal/pricing"
	salemetrics "dealer/internal/sale/metrics"
	"dealer/internal/sale/models"
	id "dealer/pkg/domain"
	dErrors "dealer/pkg/domain-errors"
	audit "dealer/pkg/platform/audit"
	"dealer/pkg/platform/sentinel"
	"dealer/pkg/requestcontext"
)

var tracer = otel.Tracer("dealer/sale")

const (
	opRegister = "register"
	opCancel   = "cancel"

	originRegister = "sale.register"
	originCancel   = "sale.cancel"

	errorEventTimeout = 2 * time.Second
)

// Store is the persistence contract for sales and line items.
type Store interface {
	Create(ctx context.Context, sale *models.Sale, items []models.LineItem) error
	FindByID(ctx context.Context, saleID id.SaleID) (*models.Sale, error)
	FindByIDForUpdate(ctx context.Context, saleID id.SaleID) (*models.Sale, error)
	LineItems(ctx context.Context, saleID id.SaleID) ([]models.LineItem, error)
	UpdateStatus(ctx context.Context, saleID id.SaleID, from, to models.Status, now time.Time) (*models.Sale, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Sale, error)
}

// StoreTx runs fn inside one transaction. Stores called with the ctx handed
// to fn join it.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Directory resolves the reference records a sale points at.
type Directory interface {
	FindClient(ctx context.Context, clientID id.ClientID) (*dirmodels.Client, error)
	FindEmployee(ctx context.Context, employeeID id.EmployeeID) (*dirmodels.Employee, error)
	FindPaymentMethod(ctx context.Context, methodID id.PaymentMethodID) (*dirmodels.PaymentMethod, error)
}

// Inventory is the subset of the Inventory Registry the engine uses.
type Inventory interface {
	Get(ctx context.Context, vehicleID id.VehicleID) (*invmodels.Vehicle, error)
	GetMany(ctx context.Context, ids []id.VehicleID) ([]*invmodels.Vehicle, error)
	Transition(ctx context.Context, req invmodels.TransitionRequest) (*invmodels.Vehicle, error)
}

type AuditPublisher interface {
	Record(ctx context.Context, record audit.Record) error
	RecordError(ctx context.Context, event audit.ErrorEvent) error
}

// CacheInvalidator drops cached read models for a client after a commit.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, clientID id.ClientID)
}

// RegisterSaleCommand is a purchase request. Quantity must be 1.
type RegisterSaleCommand struct {
	ClientID               id.ClientID
	EmployeeID             id.EmployeeID
	PaymentMethodID        id.PaymentMethodID
	VehicleID              id.VehicleID
	Quantity               int
	SeasonalDiscount       bool
	FrequentClientDiscount bool
}

func (c RegisterSaleCommand) fields() map[string]any {
	return map[string]any{
		"client_id":         c.ClientID.String(),
		"employee_id":       c.EmployeeID.String(),
		"payment_method_id": c.PaymentMethodID.String(),
		"vehicle_id":        c.VehicleID.String(),
		"quantity":          c.Quantity,
		"seasonal":          c.SeasonalDiscount,
		"frequent_client":   c.FrequentClientDiscount,
	}
}

type Service struct {
	store      Store
	tx         StoreTx
	directory  Directory
	inventory  Inventory
	calculator *pricing.Calculator
	auditor    AuditPublisher
	cache      CacheInvalidator
	metrics    *salemetrics.Metrics
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *salemetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithCacheInvalidator registers a cache to clear for the client after a
// committed sale or cancellation.
func WithCacheInvalidator(c CacheInvalidator) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func New(store Store, tx StoreTx, directory Directory, inventory Inventory,
	calculator *pricing.Calculator, auditor AuditPublisher, opts ...Option) *Service {
	s := &Service{
		store:      store,
		tx:         tx,
		directory:  directory,
		inventory:  inventory,
		calculator: calculator,
		auditor:    auditor,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterSale converts a purchase request into a committed ACTIVE sale with
// one line item, a SOLD vehicle and a CREATE audit record.
func (s *Service) RegisterSale(ctx context.Context, cmd RegisterSaleCommand) (id.SaleID, error) {
	ctx, span := tracer.Start(ctx, "sale.RegisterSale", trace.WithAttributes(
		attribute.String("client_id", cmd.ClientID.String()),
		attribute.String("vehicle_id", cmd.VehicleID.String()),
	))
	defer span.End()

	start := time.Now()
	sale, err := s.registerSale(ctx, cmd)
	s.metrics.ObserveTx(opRegister, time.Since(start))
	if err != nil {
		return id.SaleID{}, s.fail(ctx, span, opRegister, originRegister, err, cmd.fields())
	}

	span.SetAttributes(attribute.String("sale_id", sale.ID.String()))
	s.metrics.IncrementRegistered(sale.Total.InexactFloat64())
	s.invalidate(ctx, sale.ClientID)
	s.logger.InfoContext(ctx, "sale registered",
		"sale_id", sale.ID,
		"client_id", sale.ClientID,
		"vehicle_id", cmd.VehicleID,
		"total", sale.Total.String(),
		"discount", sale.Discount.String(),
		"actor", requestcontext.Actor(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)
	return sale.ID, nil
}

func (s *Service) registerSale(ctx context.Context, cmd RegisterSaleCommand) (*models.Sale, error) {
	if err := s.validateRegister(ctx, cmd); err != nil {
		return nil, err
	}

	var created *models.Sale
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)

		vehicle, err := s.inventory.Get(txCtx, cmd.VehicleID)
		if err != nil {
			return err
		}
		if vehicle.State != invmodels.StateAvailable {
			return dErrors.Newf(dErrors.CodeVehicleNotAvailable,
				"vehicle %s is not available (current state %s)", vehicle.ID, vehicle.State)
		}

		quote, err := s.calculator.ComputeTotal(vehicle.UnitPrice, cmd.Quantity, cmd.SeasonalDiscount, cmd.FrequentClientDiscount)
		if err != nil {
			return err
		}

		saleID := id.SaleID(uuid.New())
		items := []models.LineItem{{
			ID:        id.LineItemID(uuid.New()),
			SaleID:    saleID,
			VehicleID: vehicle.ID,
			Quantity:  cmd.Quantity,
			UnitPrice: vehicle.UnitPrice,
			Subtotal:  quote.LineSubtotal,
		}}
		sale, err := models.NewSale(saleID, cmd.ClientID, cmd.EmployeeID, cmd.PaymentMethodID,
			items, quote.DiscountAmount, now)
		if err != nil {
			return err
		}

		if err := s.store.Create(txCtx, sale, items); err != nil {
			return postgres.Classify(txCtx, err, "insert sale")
		}

		_, err = s.inventory.Transition(txCtx, invmodels.TransitionRequest{
			VehicleID:       vehicle.ID,
			From:            invmodels.StateAvailable,
			To:              invmodels.StateSold,
			ExpectedVersion: vehicle.Version,
		})
		if dErrors.HasCode(err, dErrors.CodeInvalidTransition) {
			return dErrors.Wrap(err, dErrors.CodeVehicleNotAvailable,
				"vehicle "+vehicle.ID.String()+" was sold by a concurrent transaction")
		}
		if err != nil {
			return err
		}

		record, err := audit.NewRecord(txCtx, audit.EntitySale, sale.ID.String(), audit.ActionCreate,
			nil, models.Snapshot{Sale: sale, Items: items})
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build audit record")
		}
		if err := s.auditor.Record(txCtx, record); err != nil {
			return postgres.Classify(txCtx, err, "append audit record")
		}

		created = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// validateRegister checks the command and its references before any mutation.
func (s *Service) validateRegister(ctx context.Context, cmd RegisterSaleCommand) error {
	if cmd.Quantity != 1 {
		return dErrors.Newf(dErrors.CodeInvalidAmount, "quantity must be 1 for a vehicle, got %d", cmd.Quantity)
	}

	if _, err := s.directory.FindClient(ctx, cmd.ClientID); err != nil {
		return referenceError(ctx, err, "client", cmd.ClientID.String())
	}

	employee, err := s.directory.FindEmployee(ctx, cmd.EmployeeID)
	if err != nil {
		return referenceError(ctx, err, "employee", cmd.EmployeeID.String())
	}
	if !employee.IsActive() {
		return dErrors.Newf(dErrors.CodeInactiveReference, "employee %s is inactive", cmd.EmployeeID)
	}

	method, err := s.directory.FindPaymentMethod(ctx, cmd.PaymentMethodID)
	if err != nil {
		return referenceError(ctx, err, "payment method", cmd.PaymentMethodID.String())
	}
	if !method.Active {
		return dErrors.Newf(dErrors.CodeInactiveReference, "payment method %s is inactive", method.Name)
	}

	if _, err := s.inventory.Get(ctx, cmd.VehicleID); err != nil {
		return err
	}
	return nil
}

func referenceError(ctx context.Context, err error, entity, ref string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeReferenceNotFound, "%s %s not found", entity, ref)
	}
	return postgres.Classify(ctx, err, "load "+entity)
}

// CancelSale moves an ACTIVE sale to CANCELLED and releases its vehicles.
func (s *Service) CancelSale(ctx context.Context, saleID id.SaleID) error {
	ctx, span := tracer.Start(ctx, "sale.CancelSale", trace.WithAttributes(
		attribute.String("sale_id", saleID.String()),
	))
	defer span.End()

	start := time.Now()
	cancelled, released, err := s.cancelSale(ctx, saleID)
	s.metrics.ObserveTx(opCancel, time.Since(start))
	if err != nil {
		return s.fail(ctx, span, opCancel, originCancel, err, map[string]any{"sale_id": saleID.String()})
	}

	s.metrics.IncrementCancelled()
	s.invalidate(ctx, cancelled.ClientID)
	s.logger.InfoContext(ctx, "sale cancelled",
		"sale_id", saleID,
		"client_id", cancelled.ClientID,
		"released_vehicles", len(released),
		"actor", requestcontext.Actor(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

func (s *Service) cancelSale(ctx context.Context, saleID id.SaleID) (*models.Sale, []id.VehicleID, error) {
	var (
		cancelled *models.Sale
		released  []id.VehicleID
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)

		sale, err := s.store.FindByIDForUpdate(txCtx, saleID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeReferenceNotFound, "sale %s not found", saleID)
		}
		if err != nil {
			return postgres.Classify(txCtx, err, "load sale")
		}
		if err := sale.CanCancel(); err != nil {
			return err
		}
		before := *sale

		items, err := s.store.LineItems(txCtx, saleID)
		if err != nil {
			return postgres.Classify(txCtx, err, "load line items")
		}

		for _, it := range items {
			_, err := s.inventory.Transition(txCtx, invmodels.TransitionRequest{
				VehicleID: it.VehicleID,
				From:      invmodels.StateSold,
				To:        invmodels.StateAvailable,
			})
			if err == nil {
				released = append(released, it.VehicleID)
				continue
			}
			if isTransitionRejection(err) {
				return dErrors.Wrap(err, dErrors.CodeInconsistentInventoryState,
					"sale "+saleID.String()+": vehicle "+it.VehicleID.String()+" could not be released")
			}
			return postgres.Classify(txCtx, err, "release vehicle")
		}

		updated, err := s.store.UpdateStatus(txCtx, saleID, models.StatusActive, models.StatusCancelled, now)
		if errors.Is(err, sentinel.ErrInvalidState) && updated != nil {
			return dErrors.Newf(dErrors.CodeSaleNotCancellable, "sale %s is %s and cannot be cancelled", saleID, updated.Status)
		}
		if err != nil {
			return postgres.Classify(txCtx, err, "update sale status")
		}

		record, err := audit.NewRecord(txCtx, audit.EntitySale, saleID.String(), audit.ActionCancel,
			models.Snapshot{Sale: &before, Items: items},
			models.Snapshot{Sale: updated, ReleasedVehicles: released})
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build audit record")
		}
		if err := s.auditor.Record(txCtx, record); err != nil {
			return postgres.Classify(txCtx, err, "append audit record")
		}

		cancelled = updated
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return cancelled, released, nil
}

func isTransitionRejection(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeInvalidTransition) ||
		dErrors.HasCode(err, dErrors.CodeConcurrentModification) ||
		dErrors.HasCode(err, dErrors.CodeReferenceNotFound)
}

// fail turns err into the domain error returned to the caller and appends
// the single error event for this failure.
func (s *Service) fail(ctx context.Context, span trace.Span, op, origin string, err error, fields map[string]any) error {
	domainErr := postgres.Classify(ctx, err, op)
	code := dErrors.CodeOf(domainErr)

	span.RecordError(err)
	span.SetStatus(codes.Error, string(code))
	s.metrics.IncrementFailure(op, string(code))

	// The caller's ctx may already be cancelled; the event must still land.
	eventCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), errorEventTimeout)
	defer cancel()
	event := audit.NewErrorEvent(ctx, origin, string(code), postgres.SQLState(err), err.Error(), fields)
	_ = s.auditor.RecordError(eventCtx, event)

	s.logger.WarnContext(ctx, "sale operation failed",
		"operation", op,
		"code", code,
		"error", err,
		"actor", requestcontext.Actor(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)
	return domainErr
}

func (s *Service) invalidate(ctx context.Context, clientID id.ClientID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, clientID)
	}
}

// GetSale returns a sale with its line items and the vehicles they reference.
func (s *Service) GetSale(ctx context.Context, saleID id.SaleID) (*models.SaleDetail, error) {
	sale, err := s.store.FindByID(ctx, saleID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Newf(dErrors.CodeReferenceNotFound, "sale %s not found", saleID)
	}
	if err != nil {
		return nil, postgres.Classify(ctx, err, "load sale")
	}
	items, err := s.store.LineItems(ctx, saleID)
	if err != nil {
		return nil, postgres.Classify(ctx, err, "load line items")
	}

	vehicleIDs := make([]id.VehicleID, len(items))
	for i, it := range items {
		vehicleIDs[i] = it.VehicleID
	}
	vehicles, err := s.inventory.GetMany(ctx, vehicleIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[id.VehicleID]*invmodels.Vehicle, len(vehicles))
	for _, v := range vehicles {
		byID[v.ID] = v
	}

	detail := &models.SaleDetail{Sale: sale, Items: make([]models.LineDetail, 0, len(items))}
	for _, it := range items {
		line := models.LineDetail{LineItem: it}
		if v, ok := byID[it.VehicleID]; ok {
			line.Brand, line.Model, line.Year = v.Brand, v.Model, v.Year
		}
		detail.Items = append(detail.Items, line)
	}
	return detail, nil
}

// ListSalesByClient returns a client's sales, newest first.
func (s *Service) ListSalesByClient(ctx context.Context, clientID id.ClientID, status models.Status, limit int) ([]*models.Sale, error) {
	if _, err := s.directory.FindClient(ctx, clientID); err != nil {
		return nil, referenceError(ctx, err, "client", clientID.String())
	}
	sales, err := s.store.List(ctx, models.ListFilter{ClientID: clientID, Status: status, Limit: limit})
	if err != nil {
		return nil, postgres.Classify(ctx, err, "list sales")
	}
	return sales, nil
}
