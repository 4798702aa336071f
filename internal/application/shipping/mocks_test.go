package shipping

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/freightdesk/backend/internal/domain/bol"
	"github.com/freightdesk/backend/internal/domain/shipment"
	domainwms "github.com/freightdesk/backend/internal/domain/wms"
)

type MockOrderSource struct {
	mock.Mock
}

func (m *MockOrderSource) FetchRecent(ctx context.Context, days int) ([]shipment.OrderRecord, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipment.OrderRecord), args.Error(1)
}

func (m *MockOrderSource) FetchByPurchaseOrders(ctx context.Context, pos []string, shipped shipment.ShippedFilter) ([]shipment.OrderRecord, error) {
	args := m.Called(ctx, pos, shipped)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipment.OrderRecord), args.Error(1)
}

type MockRenderer struct {
	mock.Mock
}

// RenderBOL accepts either []byte or func(*bol.Document) []byte as the first
// return value.
func (m *MockRenderer) RenderBOL(ctx context.Context, doc *bol.Document) ([]byte, error) {
	args := m.Called(ctx, doc)
	switch v := args.Get(0).(type) {
	case func(*bol.Document) []byte:
		return v(doc), args.Error(1)
	case []byte:
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Save(ctx context.Context, name string, data []byte, contentType string) (*bol.Artifact, error) {
	args := m.Called(ctx, name, data, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bol.Artifact), args.Error(1)
}

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, req *domainwms.OrderRequest) (*domainwms.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainwms.Result), args.Error(1)
}
