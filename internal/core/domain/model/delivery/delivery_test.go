package delivery_test

import (
	"strings"
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress(t *testing.T, line string) kernel.Address {
	t.Helper()
	addr, err := kernel.NewAddress(line, "Makati", "Metro Manila", "NCR")
	require.NoError(t, err)
	return addr
}

func newTestDelivery(t *testing.T) *delivery.Delivery {
	t.Helper()
	d, err := delivery.NewDelivery(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		testAddress(t, "1 Ayala Ave"),
		testAddress(t, "25 Bonifacio High Street"),
		time.Now(),
	)
	require.NoError(t, err)
	return d
}

func testDriver(t *testing.T) delivery.Driver {
	t.Helper()
	d, err := delivery.NewDriver("Juan Dela Cruz", "+639171234567", "", "MOTORCYCLE", "ABC-1234")
	require.NoError(t, err)
	return d
}

func testLink(t *testing.T) delivery.CourierLink {
	t.Helper()
	l, err := delivery.NewCourierLink("LM-1001", "Q-2002", "https://track.example/LM-1001")
	require.NoError(t, err)
	return l
}

func TestNewDelivery(t *testing.T) {
	t.Run("starts pending with a tracking number", func(t *testing.T) {
		d := newTestDelivery(t)

		assert.Equal(t, delivery.Pending, d.Status())
		assert.True(t, strings.HasPrefix(d.TrackingNumber(), "TRK-"))
		assert.Len(t, d.TrackingNumber(), len("TRK-")+12)
		assert.Nil(t, d.Driver())
		assert.Nil(t, d.Courier())
		assert.Nil(t, d.AssignedAt())
		assert.Zero(t, d.Version())
	})

	t.Run("tracking numbers are unique", func(t *testing.T) {
		a := newTestDelivery(t)
		b := newTestDelivery(t)
		assert.NotEqual(t, a.TrackingNumber(), b.TrackingNumber())
	})

	t.Run("rejects invalid parties", func(t *testing.T) {
		_, err := delivery.NewDelivery(
			kernel.NewUUID(), kernel.NewUUID(), kernel.UUID{}, kernel.NewUUID(),
			testAddress(t, "a"), testAddress(t, "b"), time.Now(),
		)
		require.Error(t, err)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var d delivery.Delivery
		require.Error(t, d.Validate())
	})
}

func TestDelivery_AssignDriver(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("manual assignment from pending", func(t *testing.T) {
		d := newTestDelivery(t)

		require.NoError(t, d.AssignDriver(testDriver(t), now))
		assert.Equal(t, delivery.Assigned, d.Status())
		require.NotNil(t, d.AssignedAt())
		assert.Equal(t, now, *d.AssignedAt())
		require.NotNil(t, d.Driver())
		assert.Equal(t, "Juan Dela Cruz", d.Driver().Name())
	})

	t.Run("rejected once past pending", func(t *testing.T) {
		d := newTestDelivery(t)
		require.NoError(t, d.AssignDriver(testDriver(t), now))

		err := d.AssignDriver(testDriver(t), now)
		require.ErrorIs(t, err, delivery.ErrAlreadyAssigned)
	})

	t.Run("rejected on terminal delivery", func(t *testing.T) {
		d := newTestDelivery(t)
		require.NoError(t, d.Cancel(now))

		err := d.AssignDriver(testDriver(t), now)
		require.ErrorIs(t, err, delivery.ErrDeliveryIsTerminal)
	})
}

func TestDelivery_LinkCourierOrder(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("placement from pending", func(t *testing.T) {
		d := newTestDelivery(t)

		require.NoError(t, d.LinkCourierOrder(testLink(t), now))
		assert.Equal(t, delivery.Assigned, d.Status())
		require.NotNil(t, d.Courier())
		assert.Equal(t, "LM-1001", d.Courier().ExternalOrderID())
		assert.Equal(t, "Q-2002", d.Courier().QuotationID())
	})

	t.Run("second placement is rejected and linkage unchanged", func(t *testing.T) {
		d := newTestDelivery(t)
		require.NoError(t, d.LinkCourierOrder(testLink(t), now))

		second, err := delivery.NewCourierLink("LM-9999", "Q-9999", "")
		require.NoError(t, err)

		err = d.LinkCourierOrder(second, now)
		require.ErrorIs(t, err, delivery.ErrCourierAlreadyPlaced)
		assert.Equal(t, "LM-1001", d.Courier().ExternalOrderID())
		assert.Equal(t, "Q-2002", d.Courier().QuotationID())
	})

	t.Run("rejected after manual assignment", func(t *testing.T) {
		d := newTestDelivery(t)
		require.NoError(t, d.AssignDriver(testDriver(t), now))

		err := d.LinkCourierOrder(testLink(t), now)
		require.ErrorIs(t, err, delivery.ErrAlreadyAssigned)
	})
}

func TestDelivery_ApplyCourierStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	placed := func(t *testing.T) *delivery.Delivery {
		d := newTestDelivery(t)
		require.NoError(t, d.LinkCourierOrder(testLink(t), now))
		return d
	}

	t.Run("forward progression", func(t *testing.T) {
		d := placed(t)

		changed, err := d.ApplyCourierStatus(delivery.CourierPickedUp, now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, delivery.PickedUp, d.Status())
		require.NotNil(t, d.PickedUpAt())

		changed, err = d.ApplyCourierStatus(delivery.CourierOnGoing, now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, delivery.InTransit, d.Status())

		changed, err = d.ApplyCourierStatus(delivery.CourierCompleted, now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, delivery.Delivered, d.Status())
		require.NotNil(t, d.DeliveredAt())
		assert.Equal(t, now, *d.DeliveredAt())
	})

	t.Run("out-of-order reports never regress", func(t *testing.T) {
		d := placed(t)

		// PICKED_UP arrives first, then a stale ASSIGNING_DRIVER.
		changed, err := d.ApplyCourierStatus(delivery.CourierPickedUp, now)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = d.ApplyCourierStatus(delivery.CourierAssigningDriver, now)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, delivery.PickedUp, d.Status())
	})

	t.Run("completion jump stamps intermediate timestamps", func(t *testing.T) {
		d := placed(t)

		changed, err := d.ApplyCourierStatus(delivery.CourierCompleted, now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, delivery.Delivered, d.Status())
		require.NotNil(t, d.PickedUpAt())
		require.NotNil(t, d.DeliveredAt())
	})

	t.Run("cancellation from any non-terminal state", func(t *testing.T) {
		d := placed(t)

		changed, err := d.ApplyCourierStatus(delivery.CourierCancelled, now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, delivery.Cancelled, d.Status())
	})

	t.Run("reports against terminal delivery are ignored", func(t *testing.T) {
		d := placed(t)
		_, err := d.ApplyCourierStatus(delivery.CourierCompleted, now)
		require.NoError(t, err)

		changed, err := d.ApplyCourierStatus(delivery.CourierCancelled, now)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, delivery.Delivered, d.Status())
	})

	t.Run("rejected without courier linkage", func(t *testing.T) {
		d := newTestDelivery(t)

		_, err := d.ApplyCourierStatus(delivery.CourierPickedUp, now)
		require.ErrorIs(t, err, delivery.ErrNoCourierOrder)
	})

	t.Run("any report order ends in a graph-reachable state", func(t *testing.T) {
		reports := []delivery.CourierStatus{
			delivery.CourierCompleted,
			delivery.CourierAssigningDriver,
			delivery.CourierOnGoing,
			delivery.CourierPickedUp,
		}

		d := placed(t)
		for _, r := range reports {
			_, err := d.ApplyCourierStatus(r, now)
			require.NoError(t, err)
		}
		assert.Equal(t, delivery.Delivered, d.Status())
	})
}

func TestDelivery_EnsureEditable(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("editable while assigned", func(t *testing.T) {
		d := newTestDelivery(t)
		require.NoError(t, d.LinkCourierOrder(testLink(t), now))
		require.NoError(t, d.EnsureEditable())
	})

	t.Run("too late once picked up", func(t *testing.T) {
		d := newTestDelivery(t)
		require.NoError(t, d.LinkCourierOrder(testLink(t), now))
		_, err := d.ApplyCourierStatus(delivery.CourierPickedUp, now)
		require.NoError(t, err)

		require.ErrorIs(t, d.EnsureEditable(), delivery.ErrTooLateToEdit)
	})

	t.Run("no courier order", func(t *testing.T) {
		d := newTestDelivery(t)
		require.ErrorIs(t, d.EnsureEditable(), delivery.ErrNoCourierOrder)
	})
}

func TestDelivery_UpdateDeliveryAddress(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	d := newTestDelivery(t)
	require.NoError(t, d.LinkCourierOrder(testLink(t), now))

	updated := testAddress(t, "99 New Street")
	require.NoError(t, d.UpdateDeliveryAddress(updated))
	assert.Equal(t, "99 New Street", d.DeliveryAddress().Line())

	_, err := d.ApplyCourierStatus(delivery.CourierPickedUp, now)
	require.NoError(t, err)
	require.ErrorIs(t, d.UpdateDeliveryAddress(updated), delivery.ErrTooLateToEdit)
}

func TestDelivery_AttachResolvedPoints(t *testing.T) {
	d := newTestDelivery(t)

	pickup, err := kernel.NewGeoPoint(14.5547, 121.0244)
	require.NoError(t, err)
	dropoff, err := kernel.NewGeoPoint(14.5515, 121.0473)
	require.NoError(t, err)

	require.NoError(t, d.AttachResolvedPoints(pickup, dropoff))
	require.NotNil(t, d.PickupAddress().Point())
	require.NotNil(t, d.DeliveryAddress().Point())
}

func TestDelivery_RecordCourierRawStatus(t *testing.T) {
	now := time.Now()

	d := newTestDelivery(t)
	d.RecordCourierRawStatus("PICKED_UP") // no linkage, no-op
	assert.Nil(t, d.Courier())

	require.NoError(t, d.LinkCourierOrder(testLink(t), now))
	d.RecordCourierRawStatus("PICKED_UP")
	assert.Equal(t, "PICKED_UP", d.Courier().LastRawStatus())
}

func TestDelivery_TerminalIsImmutable(t *testing.T) {
	now := time.Now()

	d := newTestDelivery(t)
	require.NoError(t, d.Cancel(now))

	require.ErrorIs(t, d.AssignDriver(testDriver(t), now), delivery.ErrDeliveryIsTerminal)
	require.ErrorIs(t, d.ConfirmPickup(now), delivery.ErrDeliveryIsTerminal)
	require.ErrorIs(t, d.MarkInTransit(now), delivery.ErrDeliveryIsTerminal)
	require.ErrorIs(t, d.MarkDelivered(now), delivery.ErrDeliveryIsTerminal)
	require.ErrorIs(t, d.Cancel(now), delivery.ErrDeliveryIsTerminal)
	require.ErrorIs(t, d.SetDriver(testDriver(t)), delivery.ErrDeliveryIsTerminal)
}

func TestRestoreDelivery(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	driver := testDriver(t)
	link, err := delivery.RestoreCourierLink("LM-1001", "Q-2002", "https://track.example/LM-1001", "ON_GOING")
	require.NoError(t, err)

	d, err := delivery.RestoreDelivery(
		kernel.NewUUID(), kernel.NewUUID(), "TRK-ABCDEF123456",
		kernel.NewUUID(), kernel.NewUUID(),
		testAddress(t, "a"), testAddress(t, "b"),
		delivery.InTransit,
		&driver, &link,
		&now, &now, &now, nil,
		now, 3,
	)
	require.NoError(t, err)
	assert.Equal(t, delivery.InTransit, d.Status())
	assert.Equal(t, 3, d.Version())
	assert.Equal(t, "ON_GOING", d.Courier().LastRawStatus())

	t.Run("rejects empty tracking number", func(t *testing.T) {
		_, err := delivery.RestoreDelivery(
			kernel.NewUUID(), kernel.NewUUID(), "  ",
			kernel.NewUUID(), kernel.NewUUID(),
			testAddress(t, "a"), testAddress(t, "b"),
			delivery.Pending, nil, nil, nil, nil, nil, nil, now, 0,
		)
		require.Error(t, err)
	})
}
