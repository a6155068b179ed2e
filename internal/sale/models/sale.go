package models

import (
	"time"

	"dealer/internal/pricing"
	id "dealer/pkg/domain"
	dErrors "dealer/pkg/domain-errors"
)

// Status is the lifecycle state of a sale.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
	StatusPending   Status = "PENDING"
)

// ParseStatus accepts the upper-case status names.
func ParseStatus(v string) (Status, error) {
	switch s := Status(v); s {
	case StatusActive, StatusCancelled, StatusPending:
		return s, nil
	default:
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown sale status %q", v)
	}
}

// CanTransitionTo reports whether the engine may move a sale from s to
// target. ACTIVE -> CANCELLED is the only edge; PENDING is never entered or left.
func (s Status) CanTransitionTo(target Status) bool {
	return s == StatusActive && target == StatusCancelled
}

// Sale is the aggregate root for one purchase.
//
// Invariants:
//   - Total = sum(line subtotals) - Discount, and Total >= 0
//   - Status transitions: ACTIVE -> CANCELLED only
//   - CreatedAt is immutable after construction
type Sale struct {
	ID              id.SaleID          `json:"id"`
	ClientID        id.ClientID        `json:"client_id"`
	EmployeeID      id.EmployeeID      `json:"employee_id"`
	PaymentMethodID id.PaymentMethodID `json:"payment_method_id"`
	SaleDate        time.Time          `json:"sale_date"`
	Total           pricing.Money      `json:"total"`
	Discount        pricing.Money      `json:"discount"`
	Status          Status             `json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func (s *Sale) IsActive() bool {
	return s.Status == StatusActive
}

// CanCancel checks the ACTIVE -> CANCELLED transition.
func (s *Sale) CanCancel() error {
	if !s.Status.CanTransitionTo(StatusCancelled) {
		return dErrors.Newf(dErrors.CodeSaleNotCancellable, "sale %s is %s and cannot be cancelled", s.ID, s.Status)
	}
	return nil
}

// ApplyCancellation marks the sale CANCELLED. Call CanCancel first.
func (s *Sale) ApplyCancellation(now time.Time) {
	s.Status = StatusCancelled
	s.UpdatedAt = now
}

// LineItem is one vehicle on a sale. UnitPrice is the vehicle price at sale time.
type LineItem struct {
	ID        id.LineItemID `json:"id"`
	SaleID    id.SaleID     `json:"sale_id"`
	VehicleID id.VehicleID  `json:"vehicle_id"`
	Quantity  int           `json:"quantity"`
	UnitPrice pricing.Money `json:"unit_price"`
	Subtotal  pricing.Money `json:"subtotal"`
}

// NewSale builds an ACTIVE sale and its line items from a quote and checks
// the total invariant.
func NewSale(saleID id.SaleID, clientID id.ClientID, employeeID id.EmployeeID, methodID id.PaymentMethodID,
	items []LineItem, discount pricing.Money, now time.Time) (*Sale, error) {
	if len(items) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "sale requires at least one line item")
	}
	subtotal := pricing.Zero()
	seen := make(map[id.VehicleID]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.VehicleID]; dup {
			return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "vehicle %s appears twice in sale", it.VehicleID)
		}
		seen[it.VehicleID] = struct{}{}
		if !it.Subtotal.Equal(it.UnitPrice.MulInt(it.Quantity)) {
			return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "line subtotal %s does not match %d x %s", it.Subtotal, it.Quantity, it.UnitPrice)
		}
		subtotal = subtotal.Add(it.Subtotal)
	}
	total := subtotal.Sub(discount)
	if total.IsNegative() || discount.IsNegative() {
		return nil, dErrors.Newf(dErrors.CodeInvalidAmount, "discount %s exceeds subtotal %s", discount, subtotal)
	}
	return &Sale{
		ID:              saleID,
		ClientID:        clientID,
		EmployeeID:      employeeID,
		PaymentMethodID: methodID,
		SaleDate:        now,
		Total:           total,
		Discount:        discount,
		Status:          StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// SaleDetail is a sale with its line items and the vehicles they reference.
type SaleDetail struct {
	Sale  *Sale        `json:"sale"`
	Items []LineDetail `json:"items"`
}

// LineDetail decorates a line item with the vehicle's display fields.
type LineDetail struct {
	LineItem
	Brand string `json:"brand,omitempty"`
	Model string `json:"model,omitempty"`
	Year  int    `json:"year,omitempty"`
}

// Snapshot is the JSON shape stored in audit before/after fields.
type Snapshot struct {
	Sale             *Sale          `json:"sale"`
	Items            []LineItem     `json:"items,omitempty"`
	ReleasedVehicles []id.VehicleID `json:"released_vehicles,omitempty"`
}

// ListFilter narrows sale listings. Zero values mean "any".
type ListFilter struct {
	ClientID id.ClientID
	Status   Status
	From     time.Time
	To       time.Time
	Limit    int
}
