package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
)

// Stop is one waypoint of a courier route: resolved coordinates plus the
// human-readable address the driver sees.
type Stop struct {
	Point   kernel.GeoPoint
	Address string
}

// Contact identifies the person the courier calls at a stop.
type Contact struct {
	Name  string
	Phone string
}

// Item describes the goods being shipped, in the courier's vocabulary.
// Weight is a courier size class (e.g. "LESS_THAN_3KG"), not a number.
type Item struct {
	Quantity   string
	Weight     string
	Categories []string
}

// QuotationRequest asks the courier to price a route from the first stop to
// the last. ServiceType selects the vehicle class (courier vocabulary, e.g.
// "MOTORCYCLE"); SpecialRequests carries add-on codes the vehicle class
// supports. A zero Item is omitted from the upstream request.
type QuotationRequest struct {
	ServiceType     string
	Language        string
	Stops           []Stop
	SpecialRequests []string
	Item            Item
}

// Quotation is a priced, time-limited offer for a specific route. The
// quotation id must be presented when placing the order; placement after
// ExpiresAt is rejected upstream with a quotation-expired error.
type Quotation struct {
	ID         string
	PriceTotal float64
	Currency   string
	ExpiresAt  time.Time

	// StopIDs are the courier-assigned ids of the quoted stops, in request
	// order. Placement refers to stops by these ids.
	StopIDs []string
}

// PlaceOrderRequest turns an unexpired quotation into a physical dispatch.
type PlaceOrderRequest struct {
	QuotationID string
	Sender      Contact
	SenderStop  string
	Recipient   Contact
	// RecipientStop is the courier stop id for the drop-off.
	RecipientStop string
	Remarks       string
	// Metadata is echoed back by the courier on webhooks and order lookups.
	Metadata map[string]string
}

// PlacedOrder is the courier's reference for a dispatched order. Status is
// the vendor's status string at placement; DriverID stays empty until a
// driver accepts the order.
type PlacedOrder struct {
	OrderID  string
	Status   string
	DriverID string
	ShareURL string
}

// EditOrderRequest updates the drop-off of a not-yet-picked-up order.
type EditOrderRequest struct {
	Stops []Stop
}

// CourierOrderDetails is the courier's current view of an order, with the
// vendor status translated into the internal CourierStatus and the raw
// vendor string preserved for diagnostics.
type CourierOrderDetails struct {
	OrderID    string
	Status     delivery.CourierStatus
	RawStatus  string
	DriverID   string
	ShareURL   string
	PriceTotal float64
}

// DriverDetails is the courier's record of the driver working an order.
type DriverDetails struct {
	Name        string
	Phone       string
	PlateNumber string
}

// CourierClient is a typed client for the external courier's HTTP API. Pure
// I/O boundary; it holds no business state and performs no idempotency
// checks, which belong to the command handlers calling it.
//
// All methods honor ctx cancellation and carry a bounded timeout. Transport
// failures and non-2xx responses surface as errs.UpstreamError; reads
// (GetOrderDetails, GetDriverDetails) may be retried internally, writes are
// surfaced immediately to avoid duplicate dispatch.
type CourierClient interface {
	// GetQuotation prices a route. Fails with a validation error when the
	// courier cannot service the stops.
	GetQuotation(ctx context.Context, req QuotationRequest) (Quotation, error)

	// PlaceOrder dispatches an order against an unexpired quotation. Fails
	// with errs.ErrQuotationExpired when the quotation lapsed.
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (PlacedOrder, error)

	// EditOrder updates the stops of a not-yet-picked-up order.
	EditOrder(ctx context.Context, orderID string, req EditOrderRequest) error

	// CancelOrder cancels a courier order.
	CancelOrder(ctx context.Context, orderID string) error

	// GetOrderDetails fetches the courier's current view of an order.
	GetOrderDetails(ctx context.Context, orderID string) (CourierOrderDetails, error)

	// GetDriverDetails fetches the driver working an order.
	GetDriverDetails(ctx context.Context, orderID, driverID string) (DriverDetails, error)

	// SetWebhookURL registers the endpoint the courier pushes status updates
	// to. Called once at startup.
	SetWebhookURL(ctx context.Context, url string) error
}
