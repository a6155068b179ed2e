// Package seed loads the demo dataset: reference records plus a small stock
// of vehicles. IDs are derived from names so seeding twice is a no-op.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	dirmodels "dealer/internal/directory/models"
	invmodels "dealer/internal/inventory/models"
	"dealer/internal/pricing"
	id "dealer/pkg/domain"
	"dealer/pkg/platform/sentinel"
)

type Directory interface {
	CreateClient(ctx context.Context, c *dirmodels.Client) error
	CreateEmployee(ctx context.Context, e *dirmodels.Employee) error
	CreatePaymentMethod(ctx context.Context, m *dirmodels.PaymentMethod) error
}

type Vehicles interface {
	Create(ctx context.Context, v *invmodels.Vehicle) error
}

// Result lists what the seed owns, whether it was created now or earlier.
type Result struct {
	Clients        []id.ClientID
	Employees      []id.EmployeeID
	PaymentMethods []id.PaymentMethodID
	Vehicles       []id.VehicleID
	Created        int
	Existing       int
}

var namespace = uuid.MustParse("6f0d3c1e-6a8e-4c1b-9d52-3b6f1f0a7e21")

func derive(kind, name string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(kind+"/"+name))
}

type vehicleSpec struct {
	brand, model, vehicleType, color, vin, price string
	year, ageDays                                int
}

var demoVehicles = []vehicleSpec{
	{"Toyota", "Corolla", "Sedan", "White", "JTDBR32E720000001", "20000.00", 2023, 10},
	{"Toyota", "RAV4", "SUV", "Grey", "JTMBFREV0JD000002", "32500.00", 2024, 40},
	{"Honda", "Civic", "Sedan", "Blue", "2HGFC2F59MH000003", "23400.00", 2023, 120},
	{"Honda", "CR-V", "SUV", "Black", "7FARW2H83NE000004", "34900.00", 2024, 15},
	{"Ford", "F-150", "Pickup", "Red", "1FTFW1E50NF000005", "45990.00", 2022, 200},
	{"Ford", "Focus", "Hatchback", "Silver", "1FADP3K20JL000006", "18750.00", 2021, 95},
	{"Chevrolet", "Tahoe", "SUV", "Black", "1GNSKBKC0LR000007", "58200.00", 2023, 30},
	{"Nissan", "Sentra", "Sedan", "White", "3N1AB8CV1NY000008", "19990.00", 2024, 5},
}

// Demo seeds the reference directory and the vehicle stock.
func Demo(ctx context.Context, dir Directory, vehicles Vehicles, now time.Time, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	res := &Result{}
	track := func(what string, err error) error {
		switch {
		case err == nil:
			res.Created++
			return nil
		case errors.Is(err, sentinel.ErrConflict):
			res.Existing++
			return nil
		default:
			return fmt.Errorf("seed %s: %w", what, err)
		}
	}

	clients := []struct{ name, email, phone string }{
		{"Ana Gomez", "ana.gomez@example.com", "+1-555-0101"},
		{"Bruno Diaz", "bruno.diaz@example.com", "+1-555-0102"},
		{"Carla Ruiz", "carla.ruiz@example.com", ""},
	}
	for _, c := range clients {
		client := &dirmodels.Client{
			ID:           id.ClientID(derive("client", c.email)),
			FullName:     c.name,
			Email:        c.email,
			Phone:        c.phone,
			RegisteredAt: now.AddDate(0, -6, 0),
		}
		if err := track("client "+c.email, dir.CreateClient(ctx, client)); err != nil {
			return nil, err
		}
		res.Clients = append(res.Clients, client.ID)
	}

	employees := []struct {
		name, position, username string
		status                   dirmodels.EmployeeStatus
	}{
		{"Luis Perez", "Sales", "lperez", dirmodels.EmployeeActive},
		{"Marta Soto", "Sales Manager", "msoto", dirmodels.EmployeeActive},
		{"Diego Vera", "Sales", "dvera", dirmodels.EmployeeInactive},
	}
	for _, e := range employees {
		emp := &dirmodels.Employee{
			ID:       id.EmployeeID(derive("employee", e.username)),
			FullName: e.name,
			Position: e.position,
			Username: e.username,
			Status:   e.status,
		}
		if err := track("employee "+e.username, dir.CreateEmployee(ctx, emp)); err != nil {
			return nil, err
		}
		res.Employees = append(res.Employees, emp.ID)
	}

	methods := []struct {
		name   string
		active bool
	}{
		{"Cash", true},
		{"Bank Transfer", true},
		{"Financing", true},
		{"Check", false},
	}
	for _, m := range methods {
		method := &dirmodels.PaymentMethod{
			ID:     id.PaymentMethodID(derive("payment", m.name)),
			Name:   m.name,
			Active: m.active,
		}
		if err := track("payment method "+m.name, dir.CreatePaymentMethod(ctx, method)); err != nil {
			return nil, err
		}
		res.PaymentMethods = append(res.PaymentMethods, method.ID)
	}

	for _, dv := range demoVehicles {
		price, err := pricing.ParseMoney(dv.price)
		if err != nil {
			return nil, fmt.Errorf("seed vehicle %s: %w", dv.vin, err)
		}
		intake := now.AddDate(0, 0, -dv.ageDays)
		v, err := invmodels.NewVehicle(id.VehicleID(derive("vehicle", dv.vin)),
			dv.brand, dv.model, dv.year, dv.vehicleType, price, intake)
		if err != nil {
			return nil, fmt.Errorf("seed vehicle %s: %w", dv.vin, err)
		}
		v.Color = dv.color
		v.VIN = dv.vin
		if err := track("vehicle "+dv.vin, vehicles.Create(ctx, v)); err != nil {
			return nil, err
		}
		res.Vehicles = append(res.Vehicles, v.ID)
	}

	logger.InfoContext(ctx, "demo data seeded",
		"created", res.Created,
		"existing", res.Existing,
	)
	return res, nil
}
