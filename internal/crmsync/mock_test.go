package crmsync

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/booking-sync/pkg/hubspot"
)

// --- HubSpot Mock ---

type mockCRM struct {
	mock.Mock
}

func (m *mockCRM) GetObject(ctx context.Context, objectType, id string, q hubspot.GetQuery) (*hubspot.Object, error) {
	args := m.Called(ctx, objectType, id, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hubspot.Object), args.Error(1)
}

func (m *mockCRM) CreateObject(ctx context.Context, objectType string, props hubspot.Properties) (*hubspot.Object, error) {
	args := m.Called(ctx, objectType, props)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hubspot.Object), args.Error(1)
}

func (m *mockCRM) UpdateObject(ctx context.Context, objectType, id string, props hubspot.Properties) (*hubspot.Object, error) {
	args := m.Called(ctx, objectType, id, props)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hubspot.Object), args.Error(1)
}

func (m *mockCRM) CreateAssociations(ctx context.Context, fromType, toType string, inputs []hubspot.AssociationInput) error {
	args := m.Called(ctx, fromType, toType, inputs)
	return args.Error(0)
}

func (m *mockCRM) ListOwners(ctx context.Context) ([]hubspot.Owner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]hubspot.Owner), args.Error(1)
}
