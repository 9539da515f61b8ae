package escrow_test

import (
	"testing"
	"time"

	"freight/internal/core/domain/model/escrow"
	"freight/internal/core/domain/model/event"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type parties struct {
	shipper kernel.Principal
	carrier kernel.Principal
	admin   kernel.Principal
	other   kernel.Principal
}

func newParties(t *testing.T) parties {
	t.Helper()
	mk := func(role kernel.Role) kernel.Principal {
		p, err := kernel.NewPrincipal(kernel.NewUUID(), kernel.NewUUID(), role)
		require.NoError(t, err)
		return p
	}
	return parties{
		shipper: mk(kernel.RoleMember),
		carrier: mk(kernel.RoleMember),
		admin:   mk(kernel.RoleAdmin),
		other:   mk(kernel.RoleMember),
	}
}

func newEscrow(t *testing.T, p parties, deliverable bool) *escrow.Escrow {
	t.Helper()
	e, err := escrow.NewEscrow(kernel.NewUUID(), kernel.NewUUID(), p.shipper.CompanyID(), p.carrier.CompanyID(),
		kernel.MustParseMoney("500", "EUR"), deliverable, now)
	require.NoError(t, err)
	return e
}

func funded(t *testing.T, p parties) *escrow.Escrow {
	t.Helper()
	e := newEscrow(t, p, false)
	require.NoError(t, e.CheckFundable(p.shipper))
	require.NoError(t, e.MarkFunded("pi_123", now))
	e.ClearDomainEvents()
	return e
}

func TestEscrow_Fund(t *testing.T) {
	p := newParties(t)

	t.Run("only the shipper may fund a created escrow", func(t *testing.T) {
		e := newEscrow(t, p, false)

		require.ErrorIs(t, e.CheckFundable(p.carrier), errs.ErrUnauthorized)
		require.NoError(t, e.CheckFundable(p.shipper))
		require.NoError(t, e.MarkFunded("pi_1", now))

		assert.Equal(t, escrow.StatusFunded, e.Status())
		assert.Equal(t, "pi_1", e.PaymentReference())
		require.NotNil(t, e.FundedAt())
		assert.ErrorIs(t, e.CheckFundable(p.shipper), errs.ErrInvalidTransition)
	})

	t.Run("provider confirmation is idempotent", func(t *testing.T) {
		e := newEscrow(t, p, false)

		changed, err := e.ConfirmFunded("pi_9", now)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = e.ConfirmFunded("pi_9", now)
		require.NoError(t, err)
		assert.False(t, changed)

		_, err = e.ConfirmFunded("pi_other", now)
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})
}

func TestEscrow_Release(t *testing.T) {
	p := newParties(t)
	policy := escrow.DefaultResolutionPolicy()

	t.Run("money never moves ahead of goods", func(t *testing.T) {
		e := funded(t, p)

		err := e.Release(p.shipper, false, policy, now)
		require.ErrorIs(t, err, errs.ErrPrematureRelease)
		assert.Equal(t, escrow.StatusFunded, e.Status())

		require.NoError(t, e.Release(p.shipper, true, policy, now))
		assert.Equal(t, escrow.StatusReleased, e.Status())
		assert.True(t, e.Status().IsTerminal())
	})

	t.Run("carrier cannot release, admin can", func(t *testing.T) {
		e := funded(t, p)

		require.ErrorIs(t, e.Release(p.carrier, true, policy, now), errs.ErrUnauthorized)
		require.NoError(t, e.Release(p.admin, true, policy, now))
	})

	t.Run("disputed escrow is released only by a resolver role", func(t *testing.T) {
		e := funded(t, p)
		require.NoError(t, e.Dispute(p.carrier, "damaged goods", now))

		require.ErrorIs(t, e.Release(p.shipper, true, policy, now), errs.ErrUnauthorized)
		require.NoError(t, e.Release(p.admin, true, policy, now))
	})

	t.Run("created escrow cannot be released", func(t *testing.T) {
		e := newEscrow(t, p, true)

		assert.ErrorIs(t, e.Release(p.shipper, true, policy, now), errs.ErrInvalidTransition)
	})

	t.Run("provider payout confirmation requires delivery", func(t *testing.T) {
		e := funded(t, p)
		_, err := e.ConfirmReleased(now)
		require.ErrorIs(t, err, errs.ErrPrematureRelease)

		require.True(t, e.MarkDeliverable(now))
		changed, err := e.ConfirmReleased(now)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = e.ConfirmReleased(now)
		require.NoError(t, err)
		assert.False(t, changed)
	})
}

func TestEscrow_Dispute(t *testing.T) {
	p := newParties(t)

	t.Run("either party disputes a funded escrow", func(t *testing.T) {
		e := funded(t, p)

		require.ErrorIs(t, e.Dispute(p.other, "", now), errs.ErrUnauthorized)
		require.NoError(t, e.Dispute(p.shipper, "late", now))
		assert.Equal(t, escrow.StatusDisputed, e.Status())
		assert.Equal(t, "late", e.DisputeReason())
		assert.ErrorIs(t, e.Dispute(p.carrier, "", now), errs.ErrInvalidTransition)
	})

	t.Run("order cancellation disputes funded escrows and cancels unfunded ones", func(t *testing.T) {
		unfunded := newEscrow(t, p, false)
		assert.True(t, unfunded.OnOrderCancelled(now))
		assert.Equal(t, escrow.StatusCancelled, unfunded.Status())
		assert.False(t, unfunded.OnOrderCancelled(now))

		e := funded(t, p)
		assert.True(t, e.OnOrderCancelled(now))
		assert.Equal(t, escrow.StatusDisputed, e.Status())
		disputed := e.DomainEvents()[0].(event.EscrowDisputed)
		assert.Nil(t, disputed.DisputedBy)
	})
}

func TestEscrow_Refund(t *testing.T) {
	p := newParties(t)
	policy := escrow.DefaultResolutionPolicy()

	t.Run("fund then refund keeps the amount", func(t *testing.T) {
		e := funded(t, p)

		claimed, err := e.RequestRefund(p.admin, policy, now)
		require.NoError(t, err)
		assert.True(t, claimed)
		assert.True(t, e.RefundPending())
		assert.Equal(t, escrow.StatusFunded, e.Status())
		assert.Empty(t, e.DomainEvents())

		require.NoError(t, e.CompleteRefund(p.admin.UserID(), now))
		assert.Equal(t, escrow.StatusRefunded, e.Status())
		assert.False(t, e.RefundPending())
		assert.True(t, e.Amount().IsEqual(kernel.MustParseMoney("500.00", "EUR")))
	})

	t.Run("parties refund by mutual consent", func(t *testing.T) {
		e := funded(t, p)

		claimed, err := e.RequestRefund(p.shipper, policy, now)
		require.NoError(t, err)
		assert.False(t, claimed)
		assert.False(t, e.RefundPending())

		claimed, err = e.RequestRefund(p.shipper, policy, now)
		require.NoError(t, err)
		assert.False(t, claimed)

		claimed, err = e.RequestRefund(p.carrier, policy, now)
		require.NoError(t, err)
		assert.True(t, claimed)

		require.NoError(t, e.CompleteRefund(p.carrier.UserID(), now))
		assert.Equal(t, []event.Kind{event.KindEscrowRefunded}, []event.Kind{e.DomainEvents()[0].Kind()})
	})

	t.Run("outsiders and unfunded escrows are refused", func(t *testing.T) {
		e := funded(t, p)
		_, err := e.RequestRefund(p.other, policy, now)
		require.ErrorIs(t, err, errs.ErrUnauthorized)

		_, err = newEscrow(t, p, false).RequestRefund(p.admin, policy, now)
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("configured roles resolve refunds", func(t *testing.T) {
		e := funded(t, p)
		open := escrow.ResolutionPolicy{RefundRoles: []kernel.Role{kernel.RoleMember}}

		claimed, err := e.RequestRefund(p.carrier, open, now)

		require.NoError(t, err)
		assert.True(t, claimed)
	})

	t.Run("completing needs a claim", func(t *testing.T) {
		e := funded(t, p)
		require.ErrorIs(t, e.CompleteRefund(p.admin.UserID(), now), errs.ErrStateConflict)
		assert.Equal(t, escrow.StatusFunded, e.Status())
	})

	t.Run("a pending refund blocks release and dispute", func(t *testing.T) {
		e := newEscrow(t, p, true)
		require.NoError(t, e.MarkFunded("pi_123", now))
		_, err := e.RequestRefund(p.admin, policy, now)
		require.NoError(t, err)

		require.ErrorIs(t, e.Release(p.shipper, true, policy, now), errs.ErrStateConflict)
		require.ErrorIs(t, e.Dispute(p.carrier, "late", now), errs.ErrStateConflict)
		_, err = e.ConfirmReleased(now)
		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.False(t, e.OnOrderCancelled(now))
		assert.Equal(t, escrow.StatusFunded, e.Status())

		again, err := e.RequestRefund(p.admin, policy, now)
		require.NoError(t, err)
		assert.True(t, again)
	})

	t.Run("an abandoned claim frees the escrow", func(t *testing.T) {
		e := newEscrow(t, p, true)
		require.NoError(t, e.MarkFunded("pi_123", now))
		_, err := e.RequestRefund(p.admin, policy, now)
		require.NoError(t, err)

		assert.True(t, e.AbandonRefund(now))
		assert.False(t, e.AbandonRefund(now))
		require.NoError(t, e.Release(p.shipper, true, policy, now))
		assert.Equal(t, escrow.StatusReleased, e.Status())
	})
}

func TestEscrow_Cancel(t *testing.T) {
	p := newParties(t)

	t.Run("shipper cancels an unfunded escrow", func(t *testing.T) {
		e := newEscrow(t, p, false)

		require.ErrorIs(t, e.Cancel(p.carrier, now), errs.ErrUnauthorized)
		require.NoError(t, e.Cancel(p.shipper, now))
		assert.Equal(t, escrow.StatusCancelled, e.Status())
	})

	t.Run("funded or delivered escrows cannot be cancelled", func(t *testing.T) {
		require.ErrorIs(t, funded(t, p).Cancel(p.shipper, now), errs.ErrInvalidTransition)

		e := newEscrow(t, p, true)
		assert.ErrorIs(t, e.Cancel(p.shipper, now), errs.ErrInvalidTransition)
		assert.Equal(t, escrow.StatusCreated, e.Status())
	})
}

func TestEscrow_MarkDeliverable(t *testing.T) {
	p := newParties(t)
	e := funded(t, p)

	assert.True(t, e.MarkDeliverable(now))
	assert.False(t, e.MarkDeliverable(now))
	assert.Equal(t, event.KindEscrowReleasable, e.DomainEvents()[0].Kind())
}

func TestRestoreEscrow(t *testing.T) {
	p := newParties(t)
	e := funded(t, p)

	restored, err := escrow.RestoreEscrow(e.Snapshot())

	require.NoError(t, err)
	assert.Equal(t, e.Snapshot(), restored.Snapshot())

	s := e.Snapshot()
	s.Status = escrow.StatusUnknown
	_, err = escrow.RestoreEscrow(s)
	assert.Error(t, err)
}
