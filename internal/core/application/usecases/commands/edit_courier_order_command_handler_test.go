package commands_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newEditCommand(t *testing.T, deliveryID, callerID kernel.UUID) commands.EditCourierOrderCommand {
	t.Helper()

	newAddr, err := kernel.NewAddress("789 New Rd", "Taguig", "Metro Manila", "NCR")
	require.NoError(t, err)

	cmd, err := commands.NewEditCourierOrderCommand(deliveryID, callerID, newAddr)
	require.NoError(t, err)
	return cmd
}

func TestEditCourierOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()

	aggregate, buyerID, _ := newCourierDelivery(t, "llm-1")
	cmd := newEditCommand(t, aggregate.ID(), buyerID)

	pickupPoint, err := kernel.NewGeoPoint(14.55, 121.02)
	require.NoError(t, err)
	dropoffPoint, err := kernel.NewGeoPoint(14.53, 121.05)
	require.NoError(t, err)

	deliveryRepo := new(MockDeliveryRepository)
	courier := new(MockCourierClient)
	geocoder := new(MockGeocoder)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		geocoder.On("Geocode", ctx, mock.AnythingOfType("string")).
			Return(ports.GeocodeResult{Point: pickupPoint}, nil).Once(),
		geocoder.On("Geocode", ctx, mock.AnythingOfType("string")).
			Return(ports.GeocodeResult{Point: dropoffPoint}, nil).Once(),
		courier.On("EditOrder", ctx, "llm-1", mock.AnythingOfType("ports.EditOrderRequest")).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("Update", ctx, mock.AnythingOfType("*delivery.Delivery")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockDeliveryUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler, err := commands.NewEditCourierOrderCommandHandler(factory, geocoder, courier)
	require.NoError(t, err)

	require.NoError(t, handler.Handle(ctx, cmd))

	assert.Equal(t, "789 New Rd", aggregate.DeliveryAddress().Line())
	require.NotNil(t, aggregate.DeliveryAddress().Point())

	deliveryRepo.AssertExpectations(t)
	courier.AssertExpectations(t)
	geocoder.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestEditCourierOrderCommandHandler_Handle_TooLateAfterPickupSkipsUpstream(t *testing.T) {
	ctx := t.Context()

	aggregate, buyerID, _ := newCourierDelivery(t, "llm-1")
	_, err := aggregate.ApplyCourierStatus(delivery.CourierPickedUp, time.Now())
	require.NoError(t, err)

	cmd := newEditCommand(t, aggregate.ID(), buyerID)

	deliveryRepo := new(MockDeliveryRepository)
	courier := new(MockCourierClient)
	geocoder := new(MockGeocoder)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockDeliveryUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler, err := commands.NewEditCourierOrderCommandHandler(factory, geocoder, courier)
	require.NoError(t, err)

	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, delivery.ErrTooLateToEdit)
	courier.AssertNotCalled(t, "EditOrder", mock.Anything, mock.Anything, mock.Anything)
	geocoder.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
	deliveryRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestEditCourierOrderCommandHandler_Handle_NoCourierOrder(t *testing.T) {
	ctx := t.Context()

	aggregate, buyerID, _ := newPendingDelivery(t)
	cmd := newEditCommand(t, aggregate.ID(), buyerID)

	deliveryRepo := new(MockDeliveryRepository)
	courier := new(MockCourierClient)
	geocoder := new(MockGeocoder)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockDeliveryUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler, err := commands.NewEditCourierOrderCommandHandler(factory, geocoder, courier)
	require.NoError(t, err)

	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, delivery.ErrNoCourierOrder)
	courier.AssertNotCalled(t, "EditOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestEditCourierOrderCommandHandler_Handle_StrangerForbidden(t *testing.T) {
	ctx := t.Context()

	aggregate, _, _ := newCourierDelivery(t, "llm-1")
	cmd := newEditCommand(t, aggregate.ID(), kernel.NewUUID())

	deliveryRepo := new(MockDeliveryRepository)
	courier := new(MockCourierClient)
	geocoder := new(MockGeocoder)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockDeliveryUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler, err := commands.NewEditCourierOrderCommandHandler(factory, geocoder, courier)
	require.NoError(t, err)

	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrForbidden)
	courier.AssertNotCalled(t, "EditOrder", mock.Anything, mock.Anything, mock.Anything)
}
