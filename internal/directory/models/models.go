// Package models holds the reference records a sale points at. The sale
// engine reads them; it never changes them.
package models

import (
	"time"

	id "dealer/pkg/domain"
)

type Client struct {
	ID           id.ClientID `json:"id"`
	FullName     string      `json:"full_name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone,omitempty"`
	RegisteredAt time.Time   `json:"registered_at"`
}

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "ACTIVE"
	EmployeeInactive EmployeeStatus = "INACTIVE"
)

type Employee struct {
	ID       id.EmployeeID  `json:"id"`
	FullName string         `json:"full_name"`
	Position string         `json:"position,omitempty"`
	Username string         `json:"username"`
	Status   EmployeeStatus `json:"status"`
}

func (e *Employee) IsActive() bool {
	return e.Status == EmployeeActive
}

type PaymentMethod struct {
	ID     id.PaymentMethodID `json:"id"`
	Name   string             `json:"name"`
	Active bool               `json:"active"`
}
