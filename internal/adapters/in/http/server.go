// Package http exposes the fulfillment service over REST. Authenticated
// endpoints read the caller's identity from the X-User-ID header set by the
// API gateway; the tracking endpoint and the courier webhook are public.
package http

import (
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"

	"github.com/labstack/echo/v4"
)

// Server implements the REST surface, coordinating between HTTP handlers and
// application use cases.
type Server struct {
	createDelivery   commands.CreateDeliveryCommandHandler
	assignDriver     commands.AssignDriverCommandHandler
	requestQuotation commands.RequestQuotationCommandHandler
	placeOrder       commands.PlaceCourierOrderCommandHandler
	editOrder        commands.EditCourierOrderCommandHandler
	cancelDelivery   commands.CancelDeliveryCommandHandler

	trackDelivery  queries.TrackDeliveryQueryHandler
	userDeliveries queries.GetUserDeliveriesQueryHandler

	shippingFee *services.ShippingFeeCalculator
	directory   ports.DriverDirectory
	webhook     *WebhookReceiver
}

// NewServer creates an HTTP server over the given use cases.
func NewServer(
	createDelivery commands.CreateDeliveryCommandHandler,
	assignDriver commands.AssignDriverCommandHandler,
	requestQuotation commands.RequestQuotationCommandHandler,
	placeOrder commands.PlaceCourierOrderCommandHandler,
	editOrder commands.EditCourierOrderCommandHandler,
	cancelDelivery commands.CancelDeliveryCommandHandler,
	trackDelivery queries.TrackDeliveryQueryHandler,
	userDeliveries queries.GetUserDeliveriesQueryHandler,
	shippingFee *services.ShippingFeeCalculator,
	directory ports.DriverDirectory,
	webhook *WebhookReceiver,
) *Server {
	return &Server{
		createDelivery:   createDelivery,
		assignDriver:     assignDriver,
		requestQuotation: requestQuotation,
		placeOrder:       placeOrder,
		editOrder:        editOrder,
		cancelDelivery:   cancelDelivery,
		trackDelivery:    trackDelivery,
		userDeliveries:   userDeliveries,
		shippingFee:      shippingFee,
		directory:        directory,
		webhook:          webhook,
	}
}

// RegisterRoutes mounts every endpoint on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/deliveries", s.CreateDelivery)
	api.GET("/deliveries", s.GetUserDeliveries)
	api.POST("/deliveries/:id/assign-driver", s.AssignDriver)
	api.GET("/drivers", s.GetDrivers)
	api.POST("/shipping-fee", s.CalculateShippingFee)

	api.POST("/lalamove/quotation", s.RequestQuotation)
	api.POST("/lalamove/place-order", s.PlaceOrder)
	api.PATCH("/lalamove/order/:id", s.EditOrder)
	api.POST("/lalamove/order/:id/cancel", s.CancelDelivery)

	// Public, no identity required.
	api.GET("/delivery/track/:trackingNumber", s.TrackDelivery)
	api.POST("/lalamove/webhook", s.webhook.Receive)
}

// callerID extracts the authenticated user's id from the gateway header.
func callerID(c echo.Context) (kernel.UUID, error) {
	raw := c.Request().Header.Get("X-User-ID")
	if raw == "" {
		return kernel.UUID{}, echo.NewHTTPError(http.StatusUnauthorized, "missing X-User-ID header")
	}

	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, echo.NewHTTPError(http.StatusUnauthorized, "malformed X-User-ID header")
	}

	return id, nil
}

// AddressPayload is the wire form of a postal address.
type AddressPayload struct {
	Line     string `json:"line"`
	City     string `json:"city"`
	Province string `json:"province"`
	Region   string `json:"region"`
}

func (p AddressPayload) toDomain() (kernel.Address, error) {
	return kernel.NewAddress(p.Line, p.City, p.Province, p.Region)
}

// CreateDeliveryRequest opens a delivery for a paid order. Called by the
// commerce module, not end users.
type CreateDeliveryRequest struct {
	OrderID         string         `json:"order_id"`
	BuyerID         string         `json:"buyer_id"`
	SellerID        string         `json:"seller_id"`
	PickupAddress   AddressPayload `json:"pickup_address"`
	DeliveryAddress AddressPayload `json:"delivery_address"`
}

// CreateDelivery handles POST /api/v1/deliveries.
func (s *Server) CreateDelivery(c echo.Context) error {
	var req CreateDeliveryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: http.StatusBadRequest, Message: "invalid request body",
		})
	}

	orderID, err := kernel.UUIDFromString(req.OrderID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: http.StatusBadRequest, Message: "malformed order_id",
		})
	}

	buyerID, err := kernel.UUIDFromString(req.BuyerID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: http.StatusBadRequest, Message: "malformed buyer_id",
		})
	}

	sellerID, err := kernel.UUIDFromString(req.SellerID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: http.StatusBadRequest, Message: "malformed seller_id",
		})
	}

	pickup, err := req.PickupAddress.toDomain()
	if err != nil {
		return writeError(c, err)
	}

	dropoff, err := req.DeliveryAddress.toDomain()
	if err != nil {
		return writeError(c, err)
	}

	cmd, err := commands.NewCreateDeliveryCommand(orderID, buyerID, sellerID, pickup, dropoff)
	if err != nil {
		return writeError(c, err)
	}

	created, err := s.createDelivery.Handle(c.Request().Context(), cmd)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":              created.ID().String(),
		"tracking_number": created.TrackingNumber(),
		"status":          created.Status().String(),
	})
}

// AssignDriverRequest assigns an internal driver to a delivery.
type AssignDriverRequest struct {
	DriverID string `json:"driver_id"`
}

// AssignDriver handles POST /api/v1/deliveries/:id/assign-driver.
func (s *Server) AssignDriver(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	deliveryID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: http.StatusBadRequest, Message: "malformed delivery id",
		})
	}

	var req AssignDriverRequest
	if err = c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: http.StatusBadRequest, Message: "invalid request body",
		})
	}

	driverID, err := kernel.UUIDFromString(req.DriverID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: http.StatusBadRequest, Message: "malformed driver_id",
		})
	}

	cmd, err := commands.NewAssignDriverCommand(deliveryID, driverID, caller)
	if err != nil {
		return writeError(c, err)
	}

	if err = s.assignDriver.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusOK)
}

// GetDrivers handles GET /api/v1/drivers, listing the internal drivers
// available for manual assignment.
func (s *Server) GetDrivers(c echo.Context) error {
	if _, err := callerID(c); err != nil {
		return err
	}

	drivers, err := s.directory.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	response := make([]echo.Map, len(drivers))
	for i, entry := range drivers {
		response[i] = echo.Map{
			"id":           entry.ID.String(),
			"name":         entry.Driver.Name(),
			"vehicle_type": entry.Driver.VehicleType(),
			"plate_number": entry.Driver.PlateNumber(),
		}
	}

	return c.JSON(http.StatusOK, response)
}

// ItemPayload is the wire form of the shipped goods description.
type ItemPayload struct {
	Quantity   string   `json:"quantity"`
	Weight     string   `json:"weight"`
	Categories []string `json:"categories"`
}

// QuotationRequest prices a courier route for a delivery.
type QuotationRequest struct {
	DeliveryID      string      `json:"delivery_id"`
	ServiceType     string      `json:"service_type"`
	SpecialRequests []string    `json:"special_requests"`
	Item            ItemPayload `json:"item"`
}

// RequestQuotation handles POST /api/v1/lalamove/quotation.
func (s *Server) RequestQuotation(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	var req QuotationRequest
	if err = c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: http.StatusBadRequest, Message: "invalid request body",
		})
	}

	deliveryID, err := kernel.UUIDFromString(req.DeliveryID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: http.StatusBadRequest, Message: "malformed delivery_id",
		})
	}

	cmd, err := commands.NewRequestQuotationCommand(deliveryID, caller, req.ServiceType,
		req.SpecialRequests, ports.Item{
			Quantity:   req.Item.Quantity,
			Weight:     req.Item.Weight,
			Categories: req.Item.Categories,
		})
	if err != nil {
		return writeError(c, err)
	}

	quotation, err := s.requestQuotation.Handle(c.Request().Context(), cmd)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"quotation_id": quotation.ID,
		"price_total":  quotation.PriceTotal,
		"currency":     quotation.Currency,
		"expires_at":   quotation.ExpiresAt,
		"stop_ids":     quotation.StopIDs,
	})
}

// ContactPayload is the wire form of a stop contact.
type ContactPayload struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// PlaceOrderRequest turns a quotation into a courier order.
type PlaceOrderRequest struct {
	DeliveryID    string            `json:"delivery_id"`
	QuotationID   string            `json:"quotation_id"`
	SenderStop    string            `json:"sender_stop_id"`
	RecipientStop string            `json:"recipient_stop_id"`
	Sender        ContactPayload    `json:"sender"`
	Recipient     ContactPayload    `json:"recipient"`
	Remarks       string            `json:"remarks"`
	Metadata      map[string]string `json:"metadata"`
}

// PlaceOrder handles POST /api/v1/lalamove/place-order.
func (s *Server) PlaceOrder(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	var req PlaceOrderRequest
	if err = c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: http.StatusBadRequest, Message: "invalid request body",
		})
	}

	deliveryID, err := kernel.UUIDFromString(req.DeliveryID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: http.StatusBadRequest, Message: "malformed delivery_id",
		})
	}

	cmd, err := commands.NewPlaceCourierOrderCommand(
		deliveryID, caller,
		req.QuotationID, req.SenderStop, req.RecipientStop,
		ports.Contact{Name: req.Sender.Name, Phone: req.Sender.Phone},
		ports.Contact{Name: req.Recipient.Name, Phone: req.Recipient.Phone},
		req.Remarks,
		req.Metadata,
	)
	if err != nil {
		return writeError(c, err)
	}

	placed, err := s.placeOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"external_order_id": placed.OrderID,
		"tracking_url":      placed.ShareURL,
	})
}

// EditOrderRequest redirects a courier order to a new drop-off address.
type EditOrderRequest struct {
	DeliveryAddress AddressPayload `json:"delivery_address"`
}

// EditOrder handles PATCH /api/v1/lalamove/order/:id.
func (s *Server) EditOrder(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	deliveryID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: http.StatusBadRequest, Message: "malformed delivery id",
		})
	}

	var req EditOrderRequest
	if err = c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: http.StatusBadRequest, Message: "invalid request body",
		})
	}

	addr, err := req.DeliveryAddress.toDomain()
	if err != nil {
		return writeError(c, err)
	}

	cmd, err := commands.NewEditCourierOrderCommand(deliveryID, caller, addr)
	if err != nil {
		return writeError(c, err)
	}

	if err = s.editOrder.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusOK)
}

// CancelDelivery handles POST /api/v1/lalamove/order/:id/cancel. Works for
// manual deliveries too, where there is no courier side to notify. Responds
// 200 even when the courier-side cancellation failed; the body reports it.
func (s *Server) CancelDelivery(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	deliveryID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: http.StatusBadRequest, Message: "malformed delivery id",
		})
	}

	cmd, err := commands.NewCancelDeliveryCommand(deliveryID, caller)
	if err != nil {
		return writeError(c, err)
	}

	result, err := s.cancelDelivery.Handle(c.Request().Context(), cmd)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"cancelled":        result.Cancelled,
		"courier_notified": result.CourierNotified,
		"courier_error":    result.CourierError,
	})
}

// TrackDelivery handles GET /api/v1/delivery/track/:trackingNumber. Public;
// the response is the redacted view.
func (s *Server) TrackDelivery(c echo.Context) error {
	query, err := queries.NewTrackDeliveryQuery(c.Param("trackingNumber"))
	if err != nil {
		return writeError(c, err)
	}

	resp, err := s.trackDelivery.Handle(c.Request().Context(), query)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"tracking_number":  resp.TrackingNumber,
		"status":           resp.Status,
		"destination_city": resp.DestinationCity,
		"driver_name":      resp.DriverName,
		"driver_phone":     resp.DriverPhone,
		"tracking_url":     resp.TrackingURL,
		"created_at":       resp.CreatedAt,
		"assigned_at":      resp.AssignedAt,
		"picked_up_at":     resp.PickedUpAt,
		"in_transit_at":    resp.InTransitAt,
		"delivered_at":     resp.DeliveredAt,
	})
}

// ShippingFeeRequest prices shipping for a prospective order. Called by the
// checkout module before payment.
type ShippingFeeRequest struct {
	SellerAddress AddressPayload `json:"seller_address"`
	BuyerAddress  AddressPayload `json:"buyer_address"`
	Subtotal      float64        `json:"subtotal"`
}

// CalculateShippingFee handles POST /api/v1/shipping-fee.
func (s *Server) CalculateShippingFee(c echo.Context) error {
	var req ShippingFeeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code: http.StatusBadRequest, Message: "invalid request body",
		})
	}

	seller, err := req.SellerAddress.toDomain()
	if err != nil {
		return writeError(c, err)
	}

	buyer, err := req.BuyerAddress.toDomain()
	if err != nil {
		return writeError(c, err)
	}

	quote, err := s.shippingFee.Calculate(c.Request().Context(), seller, buyer, req.Subtotal)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"fee":                   quote.Fee,
		"basis":                 quote.Basis,
		"free_shipping_applied": quote.FreeShippingApplied,
	})
}

// GetUserDeliveries handles GET /api/v1/deliveries, listing the caller's
// deliveries on both sides of the marketplace.
func (s *Server) GetUserDeliveries(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	query, err := queries.NewGetUserDeliveriesQuery(caller)
	if err != nil {
		return writeError(c, err)
	}

	deliveries, err := s.userDeliveries.Handle(c.Request().Context(), query)
	if err != nil {
		return writeError(c, err)
	}

	response := make([]echo.Map, len(deliveries))
	for i, d := range deliveries {
		response[i] = echo.Map{
			"id":              d.ID.String(),
			"order_id":        d.OrderID.String(),
			"tracking_number": d.TrackingNumber,
			"status":          d.Status,
			"role":            d.Role,
			"pickup_city":     d.PickupCity,
			"delivery_city":   d.DeliveryCity,
			"driver_name":     d.DriverName,
			"tracking_url":    d.TrackingURL,
			"created_at":      d.CreatedAt,
			"delivered_at":    d.DeliveredAt,
		}
	}

	return c.JSON(http.StatusOK, response)
}
