package pgtest

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

// Now is the current time at the database's microsecond precision.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func Principal(t testing.TB, company kernel.UUID, role kernel.Role) kernel.Principal {
	t.Helper()
	p, err := kernel.NewPrincipal(kernel.NewUUID(), company, role)
	require.NoError(t, err)
	return p
}

func Route(t testing.TB) kernel.Route {
	t.Helper()
	pickup := Now().Add(24 * time.Hour)
	r, err := kernel.NewRoute("Rotterdam", "Lyon", pickup, pickup.Add(36*time.Hour))
	require.NoError(t, err)
	return r
}

func Cargo(t testing.TB) kernel.Cargo {
	t.Helper()
	c, err := kernel.NewCargo("refrigerated produce", decimal.RequireFromString("8400.500"))
	require.NoError(t, err)
	return c
}

// Order builds a pending order from shipper to carrier (nil for an open order).
func Order(t testing.TB, shipper kernel.Principal, carrier *kernel.UUID, price string) *order.Order {
	t.Helper()
	o, err := order.NewOrder(order.Draft{
		ID:         kernel.NewUUID(),
		Shipper:    shipper,
		CarrierID:  carrier,
		Route:      Route(t),
		Cargo:      Cargo(t),
		TotalPrice: kernel.MustParseMoney(price, "EUR"),
	}, Now())
	require.NoError(t, err)
	return o
}

// Tender builds an open tender owned by owner's company.
func Tender(t testing.TB, owner kernel.Principal, deadline time.Time) *tender.Tender {
	t.Helper()
	budget := kernel.MustParseMoney("2500.00", "EUR")
	tn, err := tender.NewTender(tender.Draft{
		ID:                 kernel.NewUUID(),
		Owner:              owner,
		Title:              "Weekly pallets Rotterdam to Lyon",
		Route:              Route(t),
		Cargo:              Cargo(t),
		Budget:             &budget,
		SubmissionDeadline: deadline.Truncate(time.Microsecond),
		Publish:            true,
	}, Now())
	require.NoError(t, err)
	return tn
}

// Escrow builds a created escrow over o, which must have a carrier.
func Escrow(t testing.TB, o *order.Order) *escrow.Escrow {
	t.Helper()
	require.NotNil(t, o.CarrierID())
	e, err := escrow.NewEscrow(kernel.NewUUID(), o.ID(), o.ShipperID(), *o.CarrierID(), o.TotalPrice(), false, Now())
	require.NoError(t, err)
	return e
}
