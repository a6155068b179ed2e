package store

import (
	"context"
	"strings"
	"sync"

	"dealer/internal/directory/models"
	id "dealer/pkg/domain"
	"dealer/pkg/platform/sentinel"
)

// InMemory holds clients, employees and payment methods. Reference data is
// written only by seeding, so it does not take part in transactions.
type InMemory struct {
	mu        sync.RWMutex
	clients   map[id.ClientID]models.Client
	employees map[id.EmployeeID]models.Employee
	methods   map[id.PaymentMethodID]models.PaymentMethod
}

func NewInMemory() *InMemory {
	return &InMemory{
		clients:   make(map[id.ClientID]models.Client),
		employees: make(map[id.EmployeeID]models.Employee),
		methods:   make(map[id.PaymentMethodID]models.PaymentMethod),
	}
}

func (s *InMemory) CreateClient(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.ID]; ok {
		return sentinel.ErrConflict
	}
	for _, existing := range s.clients {
		if strings.EqualFold(existing.Email, c.Email) {
			return sentinel.ErrConflict
		}
	}
	s.clients[c.ID] = *c
	return nil
}

func (s *InMemory) CreateEmployee(_ context.Context, e *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[e.ID]; ok {
		return sentinel.ErrConflict
	}
	for _, existing := range s.employees {
		if existing.Username == e.Username {
			return sentinel.ErrConflict
		}
	}
	s.employees[e.ID] = *e
	return nil
}

func (s *InMemory) CreatePaymentMethod(_ context.Context, m *models.PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.methods[m.ID]; ok {
		return sentinel.ErrConflict
	}
	s.methods[m.ID] = *m
	return nil
}

func (s *InMemory) FindClient(_ context.Context, clientID id.ClientID) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[clientID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

func (s *InMemory) FindEmployee(_ context.Context, employeeID id.EmployeeID) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[employeeID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &e, nil
}

func (s *InMemory) FindPaymentMethod(_ context.Context, methodID id.PaymentMethodID) (*models.PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.methods[methodID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &m, nil
}
