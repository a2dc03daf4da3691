package commands_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPlaceCommand(t *testing.T, deliveryID, callerID kernel.UUID) commands.PlaceCourierOrderCommand {
	t.Helper()

	cmd, err := commands.NewPlaceCourierOrderCommand(
		deliveryID, callerID,
		"qtn-1", "stop-0", "stop-1",
		ports.Contact{Name: "Seller", Phone: "+63 900 000 0001"},
		ports.Contact{Name: "Buyer", Phone: "+63 900 000 0002"},
		"leave at the gate",
		nil,
	)
	require.NoError(t, err)
	return cmd
}

func TestPlaceCourierOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()

	aggregate, _, sellerID := newPendingDelivery(t)
	testOrder := newTestOrder(t, aggregate, order.Pending)
	cmd := newPlaceCommand(t, aggregate.ID(), sellerID)

	deliveryRepo := new(MockDeliveryRepository)
	orderRepo := new(MockOrderRepository)
	courier := new(MockCourierClient)
	uow := new(MockUoW)

	placed := ports.PlacedOrder{OrderID: "llm-1", ShareURL: "https://share.example/llm-1"}

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		courier.On("PlaceOrder", ctx, mock.AnythingOfType("ports.PlaceOrderRequest")).Return(placed, nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", ctx, aggregate.OrderID()).Return(testOrder, nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("Update", ctx, mock.AnythingOfType("*delivery.Delivery")).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Update", ctx, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	notifier := new(MockNotifier)
	notifier.On("Notify", ctx, mock.AnythingOfType("ports.Notification")).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler, err := commands.NewPlaceCourierOrderCommandHandler(factory, courier, notifier, nil)
	require.NoError(t, err)

	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, placed, result)
	assert.Equal(t, delivery.Assigned, aggregate.Status())
	require.NotNil(t, aggregate.Courier())
	assert.Equal(t, "llm-1", aggregate.Courier().ExternalOrderID())
	assert.Equal(t, order.Confirmed, testOrder.Status())

	deliveryRepo.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
	courier.AssertExpectations(t)
	notifier.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestPlaceCourierOrderCommandHandler_Handle_AlreadyPlacedSkipsUpstream(t *testing.T) {
	ctx := t.Context()

	aggregate, _, sellerID := newCourierDelivery(t, "llm-existing")
	cmd := newPlaceCommand(t, aggregate.ID(), sellerID)

	deliveryRepo := new(MockDeliveryRepository)
	courier := new(MockCourierClient)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler, err := commands.NewPlaceCourierOrderCommandHandler(factory, courier, nil, nil)
	require.NoError(t, err)

	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, delivery.ErrCourierAlreadyPlaced)
	assert.Equal(t, "llm-existing", aggregate.Courier().ExternalOrderID())
	courier.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
	deliveryRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestPlaceCourierOrderCommandHandler_Handle_ForbiddenCaller(t *testing.T) {
	ctx := t.Context()

	aggregate, buyerID, _ := newPendingDelivery(t)
	cmd := newPlaceCommand(t, aggregate.ID(), buyerID) // buyer, not seller

	deliveryRepo := new(MockDeliveryRepository)
	courier := new(MockCourierClient)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler, err := commands.NewPlaceCourierOrderCommandHandler(factory, courier, nil, nil)
	require.NoError(t, err)

	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrForbidden)
	courier.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
}

func TestPlaceCourierOrderCommandHandler_Handle_QuotationExpired(t *testing.T) {
	ctx := t.Context()

	aggregate, _, sellerID := newPendingDelivery(t)
	cmd := newPlaceCommand(t, aggregate.ID(), sellerID)

	deliveryRepo := new(MockDeliveryRepository)
	courier := new(MockCourierClient)
	uow := new(MockUoW)

	expired := errs.NewQuotationExpiredError("qtn-1", nil)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		courier.On("PlaceOrder", ctx, mock.AnythingOfType("ports.PlaceOrderRequest")).
			Return(ports.PlacedOrder{}, expired).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler, err := commands.NewPlaceCourierOrderCommandHandler(factory, courier, nil, nil)
	require.NoError(t, err)

	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrQuotationExpired)
	assert.Equal(t, delivery.Pending, aggregate.Status())
	assert.Nil(t, aggregate.Courier())
	deliveryRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestPlaceCourierOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()

	factory := new(MockUoWFactory)
	courier := new(MockCourierClient)

	handler, err := commands.NewPlaceCourierOrderCommandHandler(factory, courier, nil, nil)
	require.NoError(t, err)

	_, err = handler.Handle(ctx, commands.PlaceCourierOrderCommand{})

	require.ErrorIs(t, err, commands.ErrPlaceCourierOrderCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}
