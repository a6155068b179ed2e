package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"dealer/internal/directory/models"
	id "dealer/pkg/domain"
	"dealer/pkg/platform/sentinel"
)

type DirectoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestDirectoryStoreSuite(t *testing.T) {
	suite.Run(t, new(DirectoryStoreSuite))
}

func (s *DirectoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *DirectoryStoreSuite) TestClients() {
	c := &models.Client{ID: id.ClientID(uuid.New()), FullName: "Ana Pérez", Email: "ana@example.com", RegisteredAt: time.Now()}
	s.Require().NoError(s.store.CreateClient(s.ctx, c))

	got, err := s.store.FindClient(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal("Ana Pérez", got.FullName)

	dup := &models.Client{ID: id.ClientID(uuid.New()), FullName: "Other", Email: "ANA@example.com"}
	s.ErrorIs(s.store.CreateClient(s.ctx, dup), sentinel.ErrConflict)

	_, err = s.store.FindClient(s.ctx, id.ClientID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *DirectoryStoreSuite) TestEmployeesAndPaymentMethods() {
	e := &models.Employee{ID: id.EmployeeID(uuid.New()), FullName: "Luis Gómez", Username: "lgomez", Status: models.EmployeeInactive}
	s.Require().NoError(s.store.CreateEmployee(s.ctx, e))
	got, err := s.store.FindEmployee(s.ctx, e.ID)
	s.Require().NoError(err)
	s.False(got.IsActive())

	m := &models.PaymentMethod{ID: id.PaymentMethodID(uuid.New()), Name: "Cash", Active: true}
	s.Require().NoError(s.store.CreatePaymentMethod(s.ctx, m))
	gotM, err := s.store.FindPaymentMethod(s.ctx, m.ID)
	s.Require().NoError(err)
	s.True(gotM.Active)
}
