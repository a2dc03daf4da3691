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

func TestRequestQuotationCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()

	aggregate, _, sellerID := newPendingDelivery(t)

	item := ports.Item{Quantity: "1", Weight: "LESS_THAN_3KG", Categories: []string{"FOOD_DELIVERY"}}

	cmd, err := commands.NewRequestQuotationCommand(aggregate.ID(), sellerID, "",
		[]string{"THERMAL_BAG_1"}, item)
	require.NoError(t, err)
	assert.Equal(t, "MOTORCYCLE", cmd.ServiceType())

	pickupPoint, err := kernel.NewGeoPoint(14.55, 121.02)
	require.NoError(t, err)
	dropoffPoint, err := kernel.NewGeoPoint(14.53, 121.05)
	require.NoError(t, err)

	quotation := ports.Quotation{
		ID:         "qtn-1",
		PriceTotal: 154,
		Currency:   "PHP",
		ExpiresAt:  time.Now().Add(5 * time.Minute),
		StopIDs:    []string{"stop-0", "stop-1"},
	}

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
		courier.On("GetQuotation", ctx, mock.MatchedBy(func(req ports.QuotationRequest) bool {
			return len(req.SpecialRequests) == 1 && req.SpecialRequests[0] == "THERMAL_BAG_1" &&
				req.Item.Weight == item.Weight && req.Item.Quantity == item.Quantity
		})).Return(quotation, nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("Update", ctx, mock.AnythingOfType("*delivery.Delivery")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockDeliveryUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler, err := commands.NewRequestQuotationCommandHandler(factory, geocoder, courier)
	require.NoError(t, err)

	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, quotation, result)

	// The resolved coordinates stick to the delivery for the placement step.
	require.NotNil(t, aggregate.PickupAddress().Point())
	require.NotNil(t, aggregate.DeliveryAddress().Point())

	deliveryRepo.AssertExpectations(t)
	courier.AssertExpectations(t)
	geocoder.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestRequestQuotationCommandHandler_Handle_AlreadyPlacedSkipsUpstream(t *testing.T) {
	ctx := t.Context()

	aggregate, _, sellerID := newCourierDelivery(t, "llm-1")

	cmd, err := commands.NewRequestQuotationCommand(aggregate.ID(), sellerID, "MOTORCYCLE", nil, ports.Item{})
	require.NoError(t, err)

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

	handler, err := commands.NewRequestQuotationCommandHandler(factory, geocoder, courier)
	require.NoError(t, err)

	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, delivery.ErrCourierAlreadyPlaced)
	geocoder.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
	courier.AssertNotCalled(t, "GetQuotation", mock.Anything, mock.Anything)
}

func TestRequestQuotationCommandHandler_Handle_UnresolvableAddress(t *testing.T) {
	ctx := t.Context()

	aggregate, _, sellerID := newPendingDelivery(t)

	cmd, err := commands.NewRequestQuotationCommand(aggregate.ID(), sellerID, "MOTORCYCLE", nil, ports.Item{})
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
			Return(ports.GeocodeResult{}, errs.NewObjectNotFoundError("address", "123 Seller St")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockDeliveryUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler, err := commands.NewRequestQuotationCommandHandler(factory, geocoder, courier)
	require.NoError(t, err)

	_, err = handler.Handle(ctx, cmd)

	// An unresolvable address is the caller's input problem, not a missing
	// resource.
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	courier.AssertNotCalled(t, "GetQuotation", mock.Anything, mock.Anything)
	deliveryRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
