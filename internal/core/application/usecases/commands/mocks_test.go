package commands_test

import (
	"context"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockDeliveryRepository struct{ mock.Mock }

func (m *MockDeliveryRepository) Add(ctx context.Context, d *delivery.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Update(ctx context.Context, d *delivery.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) GetByOrderID(ctx context.Context, orderID kernel.UUID) (*delivery.Delivery, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) GetByTrackingNumber(
	ctx context.Context, trackingNumber string,
) (*delivery.Delivery, error) {
	args := m.Called(ctx, trackingNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) GetByExternalOrderID(
	ctx context.Context, externalOrderID string,
) (*delivery.Delivery, error) {
	args := m.Called(ctx, externalOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) GetAllWithActiveCourierOrders(ctx context.Context) ([]*delivery.Delivery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*delivery.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) GetAllForUser(ctx context.Context, userID kernel.UUID) ([]*delivery.Delivery, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*delivery.Delivery), args.Error(1)
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

// MockUoW implements both commands.UoW and commands.DeliveryUoW.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) DeliveryRepository() ports.DeliveryRepository {
	args := m.Called()
	return args.Get(0).(ports.DeliveryRepository)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockDeliveryUoWFactory struct{ mock.Mock }

func (m *MockDeliveryUoWFactory) Create() commands.DeliveryUoW {
	args := m.Called()
	return args.Get(0).(commands.DeliveryUoW)
}

type MockCourierClient struct{ mock.Mock }

func (m *MockCourierClient) GetQuotation(ctx context.Context, req ports.QuotationRequest) (ports.Quotation, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.Quotation), args.Error(1)
}

func (m *MockCourierClient) PlaceOrder(ctx context.Context, req ports.PlaceOrderRequest) (ports.PlacedOrder, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.PlacedOrder), args.Error(1)
}

func (m *MockCourierClient) EditOrder(ctx context.Context, orderID string, req ports.EditOrderRequest) error {
	args := m.Called(ctx, orderID, req)
	return args.Error(0)
}

func (m *MockCourierClient) CancelOrder(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockCourierClient) GetOrderDetails(ctx context.Context, orderID string) (ports.CourierOrderDetails, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(ports.CourierOrderDetails), args.Error(1)
}

func (m *MockCourierClient) GetDriverDetails(
	ctx context.Context, orderID, driverID string,
) (ports.DriverDetails, error) {
	args := m.Called(ctx, orderID, driverID)
	return args.Get(0).(ports.DriverDetails), args.Error(1)
}

func (m *MockCourierClient) SetWebhookURL(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

type MockGeocoder struct{ mock.Mock }

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (ports.GeocodeResult, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(ports.GeocodeResult), args.Error(1)
}

func (m *MockGeocoder) ReverseGeocode(ctx context.Context, point kernel.GeoPoint) (ports.ReverseGeocodeResult, error) {
	args := m.Called(ctx, point)
	return args.Get(0).(ports.ReverseGeocodeResult), args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, n ports.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockDriverDirectory struct{ mock.Mock }

func (m *MockDriverDirectory) Get(ctx context.Context, id kernel.UUID) (ports.DirectoryDriver, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ports.DirectoryDriver), args.Error(1)
}

func (m *MockDriverDirectory) List(ctx context.Context) ([]ports.DirectoryDriver, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.DirectoryDriver), args.Error(1)
}
