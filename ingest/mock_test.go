package ingest

import (
	"context"

	"otis/models"

	"github.com/stretchr/testify/mock"
)

type mockTenantStore struct {
	mock.Mock
}

func (m *mockTenantStore) FindByExternalTeamRef(ref string) (*models.Tenant, error) {
	args := m.Called(ref)
	tenant, _ := args.Get(0).(*models.Tenant)
	return tenant, args.Error(1)
}

type mockEventStore struct {
	mock.Mock
}

func (m *mockEventStore) FindByExternalRef(ref string) (*models.Event, error) {
	args := m.Called(ref)
	ev, _ := args.Get(0).(*models.Event)
	return ev, args.Error(1)
}

func (m *mockEventStore) Capture(ev *models.Event) error {
	return m.Called(ev).Error(0)
}

func (m *mockEventStore) MarkAcknowledged(eventID int64) (*models.Event, error) {
	args := m.Called(eventID)
	ev, _ := args.Get(0).(*models.Event)
	return ev, args.Error(1)
}

type mockQueue struct {
	mock.Mock

	envelopes []*Envelope
}

func (m *mockQueue) Enqueue(ctx context.Context, subject string, env *Envelope) error {
	m.envelopes = append(m.envelopes, env)
	return m.Called(ctx, subject, env).Error(0)
}
