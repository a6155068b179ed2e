package models

import (
	"fmt"
	"strings"
	"time"

	"dealer/internal/pricing"
	id "dealer/pkg/domain"
	dErrors "dealer/pkg/domain-errors"
)

// AvailabilityState is the sale availability of a vehicle.
type AvailabilityState string

const (
	StateAvailable AvailabilityState = "AVAILABLE"
	StateReserved  AvailabilityState = "RESERVED"
	StateSold      AvailabilityState = "SOLD"
)

func (s AvailabilityState) IsValid() bool {
	switch s {
	case StateAvailable, StateReserved, StateSold:
		return true
	}
	return false
}

// CanTransitionTo reports whether the sale engine may move a vehicle from s
// to target. RESERVED is set manually and never entered or left here.
func (s AvailabilityState) CanTransitionTo(target AvailabilityState) bool {
	return (s == StateAvailable && target == StateSold) ||
		(s == StateSold && target == StateAvailable)
}

// ParseAvailabilityState accepts any casing of a known state.
func ParseAvailabilityState(v string) (AvailabilityState, error) {
	s := AvailabilityState(strings.ToUpper(strings.TrimSpace(v)))
	if !s.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown availability state %q", v)
	}
	return s, nil
}

// Vehicle is a single VIN-tracked unit in stock.
//
// Invariants:
//   - UnitPrice is positive with at most two decimals
//   - State is SOLD iff the vehicle is on exactly one ACTIVE sale
//   - Version increases by one on every state change
type Vehicle struct {
	ID          id.VehicleID      `json:"id"`
	Brand       string            `json:"brand"`
	Model       string            `json:"model"`
	Year        int               `json:"year"`
	VehicleType string            `json:"vehicle_type"`
	Color       string            `json:"color"`
	VIN         string            `json:"vin,omitempty"`
	UnitPrice   pricing.Money     `json:"unit_price"`
	State       AvailabilityState `json:"state"`
	Version     int64             `json:"version"`
	IntakeDate  time.Time         `json:"intake_date"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// DisplayName is "Brand Model", as shown in sale listings.
func (v *Vehicle) DisplayName() string {
	return strings.TrimSpace(v.Brand + " " + v.Model)
}

// NewVehicle validates and builds an AVAILABLE vehicle for intake.
func NewVehicle(vehicleID id.VehicleID, brand, model string, year int, vehicleType string, price pricing.Money, now time.Time) (*Vehicle, error) {
	brand = strings.TrimSpace(brand)
	model = strings.TrimSpace(model)
	if brand == "" || model == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "vehicle brand and model are required")
	}
	if year < 1886 {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "vehicle year %d is not plausible", year)
	}
	if !price.IsPositive() || !price.HasValidPrecision() {
		return nil, dErrors.Newf(dErrors.CodeInvalidAmount, "vehicle price %s is invalid", price)
	}
	return &Vehicle{
		ID:          vehicleID,
		Brand:       brand,
		Model:       model,
		Year:        year,
		VehicleType: strings.TrimSpace(vehicleType),
		UnitPrice:   price,
		State:       StateAvailable,
		Version:     1,
		IntakeDate:  now,
		UpdatedAt:   now,
	}, nil
}

// TransitionRequest moves a vehicle between availability states.
// ExpectedVersion 0 skips the version check.
type TransitionRequest struct {
	VehicleID       id.VehicleID
	From            AvailabilityState
	To              AvailabilityState
	ExpectedVersion int64
}

func (r TransitionRequest) String() string {
	return fmt.Sprintf("%s %s->%s", r.VehicleID, r.From, r.To)
}

// ListFilter narrows vehicle listings. Zero values mean "any".
type ListFilter struct {
	State       AvailabilityState
	Brand       string
	VehicleType string
	Limit       int
}
