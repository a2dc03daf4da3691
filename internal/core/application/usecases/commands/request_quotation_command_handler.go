package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// RequestQuotationCommandHandler prices a courier route for a delivery.
// Both addresses are geocoded (cache-first) and the resolved coordinates are
// persisted on the delivery so placement can reuse them without another
// geocoder round trip. The quotation itself is not persisted: it is a
// time-limited courier-side offer the seller either uses or lets lapse.
type RequestQuotationCommandHandler struct {
	uowFactory DeliveryUoWFactory
	geocoder   ports.Geocoder
	courier    ports.CourierClient
}

// NewRequestQuotationCommandHandler creates a handler for quotation requests.
func NewRequestQuotationCommandHandler(
	uowFactory DeliveryUoWFactory,
	geocoder ports.Geocoder,
	courier ports.CourierClient,
) (RequestQuotationCommandHandler, error) {
	if uowFactory == nil {
		return RequestQuotationCommandHandler{}, errs.NewValueIsRequiredError("uowFactory")
	}
	if geocoder == nil {
		return RequestQuotationCommandHandler{}, errs.NewValueIsRequiredError("geocoder")
	}
	if courier == nil {
		return RequestQuotationCommandHandler{}, errs.NewValueIsRequiredError("courier")
	}

	return RequestQuotationCommandHandler{
		uowFactory: uowFactory,
		geocoder:   geocoder,
		courier:    courier,
	}, nil
}

// Handle resolves the route, asks the courier for a quotation and returns it.
// Local conflict checks run before any upstream call: a delivery that already
// has a courier order or a manually assigned driver is rejected without
// touching the courier. On any failure the delivery record is left untouched.
func (h RequestQuotationCommandHandler) Handle(
	ctx context.Context, command RequestQuotationCommand,
) (ports.Quotation, error) {
	if err := command.Validate(); err != nil {
		return ports.Quotation{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ports.Quotation{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.DeliveryRepository().Get(ctx, command.DeliveryID())
	if err != nil {
		return ports.Quotation{}, err
	}

	if !aggregate.SellerID().IsEqual(command.CallerID()) {
		return ports.Quotation{}, errs.NewForbiddenError(
			command.CallerID().String(), "only the seller may request a quotation")
	}

	if err = ensurePlaceable(aggregate); err != nil {
		return ports.Quotation{}, err
	}

	pickupPoint, err := resolvePoint(ctx, h.geocoder, aggregate.PickupAddress())
	if err != nil {
		return ports.Quotation{}, err
	}

	dropoffPoint, err := resolvePoint(ctx, h.geocoder, aggregate.DeliveryAddress())
	if err != nil {
		return ports.Quotation{}, err
	}

	if err = aggregate.AttachResolvedPoints(pickupPoint, dropoffPoint); err != nil {
		return ports.Quotation{}, err
	}

	quotation, err := h.courier.GetQuotation(ctx, ports.QuotationRequest{
		ServiceType: command.ServiceType(),
		Stops: []ports.Stop{
			{Point: pickupPoint, Address: fullAddress(aggregate.PickupAddress())},
			{Point: dropoffPoint, Address: fullAddress(aggregate.DeliveryAddress())},
		},
		SpecialRequests: command.SpecialRequests(),
		Item:            command.Item(),
	})
	if err != nil {
		return ports.Quotation{}, err
	}

	if err = uow.DeliveryRepository().Update(ctx, aggregate); err != nil {
		return ports.Quotation{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return ports.Quotation{}, err
	}

	return quotation, nil
}

// ensurePlaceable rejects deliveries that cannot take a courier order: ones
// that already have one, already have a manual driver, or reached a terminal
// state. Runs before any upstream call so conflicts never reach the courier.
func ensurePlaceable(aggregate *delivery.Delivery) error {
	if aggregate.Courier() != nil {
		return delivery.ErrCourierAlreadyPlaced
	}

	if aggregate.Status().IsTerminal() {
		return delivery.ErrDeliveryIsTerminal
	}

	if aggregate.Status() != delivery.Pending {
		return delivery.ErrAlreadyAssigned
	}

	return nil
}
