package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nicolukazzz/reservas-api/internal/models"
	appErrors "github.com/nicolukazzz/reservas-api/pkg/errors"
)

type mockOfferingStore struct {
	offerings map[string]models.Offering
	deleted   []string
}

func (m *mockOfferingStore) List(ctx context.Context, filter models.OfferingFilter) ([]models.Offering, int, error) {
	var out []models.Offering
	for _, o := range m.offerings {
		out = append(out, o)
	}
	return out, len(out), nil
}

func (m *mockOfferingStore) FindByID(ctx context.Context, clientID, offeringID string) (*models.Offering, error) {
	if o, ok := m.offerings[offeringID]; ok {
		return &o, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockOfferingStore) Create(ctx context.Context, offering *models.Offering) error {
	if m.offerings == nil {
		m.offerings = make(map[string]models.Offering)
	}
	if offering.ID == "" {
		offering.ID = "new-offering"
	}
	m.offerings[offering.ID] = *offering
	return nil
}

func (m *mockOfferingStore) Update(ctx context.Context, offering *models.Offering) error {
	m.offerings[offering.ID] = *offering
	return nil
}

func (m *mockOfferingStore) Delete(ctx context.Context, clientID, offeringID string) error {
	m.deleted = append(m.deleted, offeringID)
	return nil
}

func TestOfferingCreate(t *testing.T) {
	repo := &mockOfferingStore{}
	svc := NewOfferingService(repo, nil, zap.NewNop())

	offering, err := svc.Create(context.Background(), "c1", UpsertOfferingRequest{
		Name: "Corte", Price: 25, DurationMinutes: 45,
	})
	require.NoError(t, err)
	assert.True(t, offering.Active)
	assert.Equal(t, 45, offering.DurationMinutes)

	_, err = svc.Create(context.Background(), "c1", UpsertOfferingRequest{})
	require.Error(t, err)
}

func TestOfferingUpdate(t *testing.T) {
	repo := &mockOfferingStore{offerings: map[string]models.Offering{
		"svc-cut": {ID: "svc-cut", ClientID: "c1", Name: "Corte", Active: true},
	}}
	svc := NewOfferingService(repo, nil, zap.NewNop())

	inactive := false
	offering, err := svc.Update(context.Background(), "c1", "svc-cut", UpsertOfferingRequest{
		Name: "Corte y peinado", Price: 35, DurationMinutes: 60, Active: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Corte y peinado", offering.Name)
	assert.False(t, offering.Active)

	_, err = svc.Update(context.Background(), "c1", "missing", UpsertOfferingRequest{Name: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestOfferingDelete(t *testing.T) {
	repo := &mockOfferingStore{offerings: map[string]models.Offering{
		"svc-cut": {ID: "svc-cut", ClientID: "c1", Name: "Corte"},
	}}
	svc := NewOfferingService(repo, nil, zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "c1", "svc-cut"))
	assert.Equal(t, []string{"svc-cut"}, repo.deleted)

	require.Error(t, svc.Delete(context.Background(), "c1", "missing"))
}
