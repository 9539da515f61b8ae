package commands_test

import (
	"testing"
	"time"

	"freight/internal/core/domain/model/escrow"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/order"
	"freight/internal/core/domain/model/tender"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type parties struct {
	shipperCo, carrierX, carrierY kernel.UUID

	shipper, carrierXUser, carrierYUser, admin kernel.Principal
}

func newParties(t *testing.T) parties {
	t.Helper()
	p := parties{
		shipperCo: kernel.NewUUID(),
		carrierX:  kernel.NewUUID(),
		carrierY:  kernel.NewUUID(),
	}
	p.shipper = newPrincipal(t, p.shipperCo, kernel.RoleMember)
	p.carrierXUser = newPrincipal(t, p.carrierX, kernel.RoleMember)
	p.carrierYUser = newPrincipal(t, p.carrierY, kernel.RoleMember)
	p.admin = newPrincipal(t, kernel.NewUUID(), kernel.RoleAdmin)
	return p
}

func newPrincipal(t *testing.T, company kernel.UUID, role kernel.Role) kernel.Principal {
	t.Helper()
	p, err := kernel.NewPrincipal(kernel.NewUUID(), company, role)
	require.NoError(t, err)
	return p
}

func sampleRoute(t *testing.T) kernel.Route {
	t.Helper()
	pickup := time.Now().Add(24 * time.Hour)
	r, err := kernel.NewRoute("Hamburg", "Milan", pickup, pickup.Add(48*time.Hour))
	require.NoError(t, err)
	return r
}

func sampleCargo(t *testing.T) kernel.Cargo {
	t.Helper()
	c, err := kernel.NewCargo("palletised machine parts", decimal.NewFromInt(1200))
	require.NoError(t, err)
	return c
}

// seedOrder stores an order in status with carrier (nil for an open order).
func seedOrder(t *testing.T, l *memLedger, p parties, carrier *kernel.UUID, status order.Status, price string) kernel.UUID {
	t.Helper()
	o, err := order.NewOrder(order.Draft{
		ID:         kernel.NewUUID(),
		Shipper:    p.shipper,
		CarrierID:  carrier,
		Route:      sampleRoute(t),
		Cargo:      sampleCargo(t),
		TotalPrice: kernel.MustParseMoney(price, "EUR"),
	}, time.Now())
	require.NoError(t, err)
	s := o.Snapshot()
	s.Status = status
	l.orders[s.ID] = s
	return s.ID
}

// seedEscrow stores an escrow for orderID in status.
func seedEscrow(t *testing.T, l *memLedger, orderID kernel.UUID, status escrow.Status, deliverable bool) kernel.UUID {
	t.Helper()
	os := l.orders[orderID]
	require.NotNil(t, os.CarrierID)
	e, err := escrow.NewEscrow(kernel.NewUUID(), orderID, os.ShipperID, *os.CarrierID, os.TotalPrice, deliverable, time.Now())
	require.NoError(t, err)
	s := e.Snapshot()
	s.Status = status
	if status != escrow.StatusCreated && status != escrow.StatusCancelled {
		s.PaymentReference = "pi_seed"
		at := time.Now()
		s.FundedAt = &at
	}
	l.escrows[s.ID] = s
	return s.ID
}

// seedTender stores an open tender owned by the shipper.
func seedTender(t *testing.T, l *memLedger, p parties, deadline time.Time) kernel.UUID {
	t.Helper()
	budget := kernel.MustParseMoney("1500.00", "EUR")
	tn, err := tender.NewTender(tender.Draft{
		ID:                 kernel.NewUUID(),
		Owner:              p.shipper,
		Title:              "Hamburg to Milan, weekly",
		Route:              sampleRoute(t),
		Cargo:              sampleCargo(t),
		Budget:             &budget,
		SubmissionDeadline: time.Now().Add(time.Hour),
		Publish:            true,
	}, time.Now())
	require.NoError(t, err)
	s := tn.Snapshot()
	s.SubmissionDeadline = deadline
	l.tenders[s.ID] = s
	return s.ID
}

func ptr[T any](v T) *T { return &v }
