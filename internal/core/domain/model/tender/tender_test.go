package tender_test

import (
	"testing"
	"time"

	"freight/internal/core/domain/model/event"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/tender"
	"freight/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func member(t *testing.T) kernel.Principal {
	t.Helper()
	p, err := kernel.NewPrincipal(kernel.NewUUID(), kernel.NewUUID(), kernel.RoleMember)
	require.NoError(t, err)
	return p
}

func openTender(t *testing.T, owner kernel.Principal) *tender.Tender {
	t.Helper()
	route, err := kernel.NewRoute("Rotterdam", "Milan", now.Add(7*24*time.Hour), now.Add(9*24*time.Hour))
	require.NoError(t, err)
	cargo, err := kernel.NewCargo("reefer container", decimal.NewFromInt(20000))
	require.NoError(t, err)
	budget := kernel.MustParseMoney("1500", "EUR")

	tn, err := tender.NewTender(tender.Draft{
		ID:                 kernel.NewUUID(),
		Owner:              owner,
		Title:              "Weekly reefer lane",
		Route:              route,
		Cargo:              cargo,
		Budget:             &budget,
		SubmissionDeadline: now.Add(48 * time.Hour),
		Publish:            true,
	}, now)
	require.NoError(t, err)
	return tn
}

func TestNewTender(t *testing.T) {
	owner := member(t)

	t.Run("should start as draft unless published", func(t *testing.T) {
		route, _ := kernel.NewRoute("A", "B", now, now)
		cargo, _ := kernel.NewCargo("boxes", decimal.NewFromInt(5))

		tn, err := tender.NewTender(tender.Draft{
			ID: kernel.NewUUID(), Owner: owner, Title: "one-off", Route: route, Cargo: cargo,
			SubmissionDeadline: now.Add(time.Hour),
		}, now)

		require.NoError(t, err)
		assert.Equal(t, tender.StatusDraft, tn.Status())
		require.NoError(t, tn.Open(owner, now))
		assert.Equal(t, tender.StatusOpen, tn.Status())
	})

	t.Run("should reject a deadline in the past", func(t *testing.T) {
		route, _ := kernel.NewRoute("A", "B", now, now)
		cargo, _ := kernel.NewCargo("boxes", decimal.NewFromInt(5))

		_, err := tender.NewTender(tender.Draft{
			ID: kernel.NewUUID(), Owner: owner, Title: "late", Route: route, Cargo: cargo,
			SubmissionDeadline: now,
		}, now)

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestTender_SubmitBid(t *testing.T) {
	owner := member(t)

	t.Run("should supersede the bidder's previous bid", func(t *testing.T) {
		tn := openTender(t, owner)
		carrier := member(t)

		first, err := tn.SubmitBid(kernel.NewUUID(), carrier, kernel.MustParseMoney("1300", "EUR"), "", now)
		require.NoError(t, err)
		second, err := tn.SubmitBid(kernel.NewUUID(), carrier, kernel.MustParseMoney("1250", "EUR"), "sharper", now)
		require.NoError(t, err)

		assert.Equal(t, tender.BidWithdrawn, first.Status())
		assert.Equal(t, tender.BidSubmitted, second.Status())
		assert.Len(t, tn.Bids(), 2)
		last := tn.DomainEvents()[1].(event.BidSubmitted)
		require.NotNil(t, last.Supersedes)
		assert.True(t, last.Supersedes.IsEqual(first.ID()))
	})

	t.Run("should refuse bids after the deadline or when not open", func(t *testing.T) {
		tn := openTender(t, owner)

		_, err := tn.SubmitBid(kernel.NewUUID(), member(t), kernel.MustParseMoney("1000", "EUR"), "", now.Add(48*time.Hour))
		require.ErrorIs(t, err, errs.ErrTenderClosed)

		require.True(t, tn.CloseIfExpired(now.Add(49*time.Hour)))
		assert.Equal(t, tender.StatusClosed, tn.Status())
		_, err = tn.SubmitBid(kernel.NewUUID(), member(t), kernel.MustParseMoney("1000", "EUR"), "", now)
		assert.ErrorIs(t, err, errs.ErrTenderClosed)
	})

	t.Run("should refuse the owner and foreign currencies", func(t *testing.T) {
		tn := openTender(t, owner)

		_, err := tn.SubmitBid(kernel.NewUUID(), owner, kernel.MustParseMoney("1000", "EUR"), "", now)
		require.ErrorIs(t, err, errs.ErrUnauthorized)

		_, err = tn.SubmitBid(kernel.NewUUID(), member(t), kernel.MustParseMoney("1000", "USD"), "", now)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestTender_Award(t *testing.T) {
	owner := member(t)

	t.Run("should accept one bid and reject the rest", func(t *testing.T) {
		tn := openTender(t, owner)
		cheap, err := tn.SubmitBid(kernel.NewUUID(), member(t), kernel.MustParseMoney("1000", "EUR"), "", now)
		require.NoError(t, err)
		pricey, err := tn.SubmitBid(kernel.NewUUID(), member(t), kernel.MustParseMoney("1200", "EUR"), "", now)
		require.NoError(t, err)
		orderID := kernel.NewUUID()

		won, err := tn.Award(owner, cheap.ID(), orderID, now)

		require.NoError(t, err)
		assert.Equal(t, cheap, won)
		assert.Equal(t, tender.BidAccepted, cheap.Status())
		assert.Equal(t, tender.BidRejected, pricey.Status())
		assert.Equal(t, tender.StatusAwarded, tn.Status())
		assert.True(t, tn.OrderID().IsEqual(orderID))
		awarded := tn.DomainEvents()[len(tn.DomainEvents())-1].(event.BidAwarded)
		assert.Equal(t, "1000.00", awarded.Price)
		assert.Equal(t, []kernel.UUID{pricey.ID()}, awarded.RejectedBidIDs)
	})

	t.Run("should refuse a second award", func(t *testing.T) {
		tn := openTender(t, owner)
		a, _ := tn.SubmitBid(kernel.NewUUID(), member(t), kernel.MustParseMoney("1000", "EUR"), "", now)
		b, _ := tn.SubmitBid(kernel.NewUUID(), member(t), kernel.MustParseMoney("1100", "EUR"), "", now)
		_, err := tn.Award(owner, a.ID(), kernel.NewUUID(), now)
		require.NoError(t, err)

		_, err = tn.Award(owner, b.ID(), kernel.NewUUID(), now)

		assert.ErrorIs(t, err, errs.ErrAlreadyAwarded)
		assert.Equal(t, tender.BidRejected, b.Status())
	})

	t.Run("should keep a tender with bids open past its deadline", func(t *testing.T) {
		tn := openTender(t, owner)
		a, _ := tn.SubmitBid(kernel.NewUUID(), member(t), kernel.MustParseMoney("1000", "EUR"), "", now)

		require.False(t, tn.CloseIfExpired(now.Add(72*time.Hour)))
		assert.Equal(t, tender.StatusOpen, tn.Status())

		_, err := tn.Award(owner, a.ID(), kernel.NewUUID(), now.Add(72*time.Hour))
		require.NoError(t, err)
	})

	t.Run("should refuse awarding a closed tender or a draft", func(t *testing.T) {
		closed := openTender(t, owner)
		require.True(t, closed.CloseIfExpired(now.Add(72*time.Hour)))
		_, err := closed.Award(owner, kernel.NewUUID(), kernel.NewUUID(), now)
		require.ErrorIs(t, err, errs.ErrTenderClosed)

		route, _ := kernel.NewRoute("A", "B", now, now)
		cargo, _ := kernel.NewCargo("boxes", decimal.NewFromInt(5))
		draft, err := tender.NewTender(tender.Draft{
			ID: kernel.NewUUID(), Owner: owner, Title: "draft", Route: route, Cargo: cargo,
			SubmissionDeadline: now.Add(time.Hour),
		}, now)
		require.NoError(t, err)
		_, err = draft.Award(owner, kernel.NewUUID(), kernel.NewUUID(), now)
		assert.ErrorIs(t, err, errs.ErrTenderClosed)
	})

	t.Run("should check ownership, bid existence and bid state", func(t *testing.T) {
		tn := openTender(t, owner)
		bidder := member(t)
		old, _ := tn.SubmitBid(kernel.NewUUID(), bidder, kernel.MustParseMoney("1000", "EUR"), "", now)
		_, _ = tn.SubmitBid(kernel.NewUUID(), bidder, kernel.MustParseMoney("990", "EUR"), "", now)

		_, err := tn.Award(bidder, old.ID(), kernel.NewUUID(), now)
		require.ErrorIs(t, err, errs.ErrUnauthorized)

		_, err = tn.Award(owner, kernel.NewUUID(), kernel.NewUUID(), now)
		require.ErrorIs(t, err, errs.ErrObjectNotFound)

		_, err = tn.Award(owner, old.ID(), kernel.NewUUID(), now)
		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, tender.StatusOpen, tn.Status())
	})
}

func TestTender_VisibleBids(t *testing.T) {
	owner := member(t)
	tn := openTender(t, owner)
	alice, bob := member(t), member(t)
	_, _ = tn.SubmitBid(kernel.NewUUID(), alice, kernel.MustParseMoney("1000", "EUR"), "", now)
	_, _ = tn.SubmitBid(kernel.NewUUID(), bob, kernel.MustParseMoney("1100", "EUR"), "", now)

	assert.Len(t, tn.VisibleBids(owner), 2)
	require.Len(t, tn.VisibleBids(alice), 1)
	assert.True(t, tn.VisibleBids(alice)[0].BidderID().IsEqual(alice.CompanyID()))
}

func TestTender_Cancel(t *testing.T) {
	owner := member(t)
	tn := openTender(t, owner)
	b, _ := tn.SubmitBid(kernel.NewUUID(), member(t), kernel.MustParseMoney("1000", "EUR"), "", now)

	require.NoError(t, tn.Cancel(owner, now))
	assert.Equal(t, tender.StatusCancelled, tn.Status())
	assert.Equal(t, tender.BidRejected, b.Status())
	assert.Error(t, tn.Cancel(owner, now))
}

func TestRestoreTender(t *testing.T) {
	owner := member(t)
	tn := openTender(t, owner)
	_, err := tn.SubmitBid(kernel.NewUUID(), member(t), kernel.MustParseMoney("1000", "EUR"), "", now)
	require.NoError(t, err)

	restored, err := tender.RestoreTender(tn.Snapshot())

	require.NoError(t, err)
	assert.Equal(t, tn.Snapshot(), restored.Snapshot())
	assert.Empty(t, restored.DomainEvents())
}
