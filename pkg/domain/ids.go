// Package domain holds identity primitives shared by every feature package.
//
// IDs are distinct named UUID types so a SaleID can never be passed where a
// VehicleID is expected. Parse functions are the only trust-boundary entry.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "dealer/pkg/domain-errors"
)

type (
	VehicleID       uuid.UUID
	SaleID          uuid.UUID
	LineItemID      uuid.UUID
	ClientID        uuid.UUID
	EmployeeID      uuid.UUID
	PaymentMethodID uuid.UUID
)

// maxIDLength bounds input before handing it to uuid.Parse.
const maxIDLength = 64

func parseUUID(kind, s string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is required", kind)
	}
	if len(s) > maxIDLength {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s", kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s", kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s", kind)
	}
	return u, nil
}

func ParseVehicleID(s string) (VehicleID, error) {
	u, err := parseUUID("vehicle_id", s)
	return VehicleID(u), err
}

func ParseSaleID(s string) (SaleID, error) {
	u, err := parseUUID("sale_id", s)
	return SaleID(u), err
}

func ParseClientID(s string) (ClientID, error) {
	u, err := parseUUID("client_id", s)
	return ClientID(u), err
}

func ParseEmployeeID(s string) (EmployeeID, error) {
	u, err := parseUUID("employee_id", s)
	return EmployeeID(u), err
}

func ParsePaymentMethodID(s string) (PaymentMethodID, error) {
	u, err := parseUUID("payment_method_id", s)
	return PaymentMethodID(u), err
}

func (id VehicleID) String() string       { return uuid.UUID(id).String() }
func (id SaleID) String() string          { return uuid.UUID(id).String() }
func (id LineItemID) String() string      { return uuid.UUID(id).String() }
func (id ClientID) String() string        { return uuid.UUID(id).String() }
func (id EmployeeID) String() string      { return uuid.UUID(id).String() }
func (id PaymentMethodID) String() string { return uuid.UUID(id).String() }

func (id VehicleID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id SaleID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id ClientID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id EmployeeID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id PaymentMethodID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets IDs render as plain UUID strings in JSON payloads.
func (id VehicleID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id SaleID) MarshalText() ([]byte, error)          { return []byte(id.String()), nil }
func (id LineItemID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id ClientID) MarshalText() ([]byte, error)        { return []byte(id.String()), nil }
func (id EmployeeID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id PaymentMethodID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *VehicleID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = VehicleID(u)
	return err
}

func (id *SaleID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = SaleID(u)
	return err
}

func (id *LineItemID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = LineItemID(u)
	return err
}

func (id *ClientID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = ClientID(u)
	return err
}

func (id *EmployeeID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = EmployeeID(u)
	return err
}

func (id *PaymentMethodID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = PaymentMethodID(u)
	return err
}
