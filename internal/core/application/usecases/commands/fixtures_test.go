package commands_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
)

func testAddress(t *testing.T, line string) kernel.Address {
	t.Helper()

	addr, err := kernel.NewAddress(line, "Makati", "Metro Manila", "NCR")
	require.NoError(t, err)
	return addr
}

// newPendingDelivery creates a fresh delivery and returns it with the ids of
// its parties.
func newPendingDelivery(t *testing.T) (*delivery.Delivery, kernel.UUID, kernel.UUID) {
	t.Helper()

	buyerID := kernel.NewUUID()
	sellerID := kernel.NewUUID()

	aggregate, err := delivery.NewDelivery(
		kernel.NewUUID(), kernel.NewUUID(), buyerID, sellerID,
		testAddress(t, "123 Seller St"), testAddress(t, "456 Buyer Ave"),
		time.Now(),
	)
	require.NoError(t, err)

	return aggregate, buyerID, sellerID
}

// newCourierDelivery creates a delivery with a linked courier order in
// assigned status.
func newCourierDelivery(t *testing.T, externalOrderID string) (*delivery.Delivery, kernel.UUID, kernel.UUID) {
	t.Helper()

	aggregate, buyerID, sellerID := newPendingDelivery(t)

	link, err := delivery.NewCourierLink(externalOrderID, "qtn-1", "https://share.example/1")
	require.NoError(t, err)
	require.NoError(t, aggregate.LinkCourierOrder(link, time.Now()))

	return aggregate, buyerID, sellerID
}

func newTestOrder(t *testing.T, aggregate *delivery.Delivery, status order.Status) *order.Order {
	t.Helper()

	o, err := order.RestoreOrder(
		aggregate.OrderID(), aggregate.BuyerID(), aggregate.SellerID(), 1000, status)
	require.NoError(t, err)
	return o
}
