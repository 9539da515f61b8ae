package commands

import (
	"context"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/order"
	"freight/internal/core/domain/model/tender"

	"go.uber.org/zap"
)

// TenderHandler runs tender and bid operations.
type TenderHandler struct {
	tenderUoWFactory TenderUoWFactory
	uowFactory       UoWFactory
	retries          int
	logger           *zap.Logger
}

func NewTenderHandler(
	tenderUoWFactory TenderUoWFactory,
	uowFactory UoWFactory,
	retries int,
	logger *zap.Logger,
) TenderHandler {
	return TenderHandler{
		tenderUoWFactory: tenderUoWFactory,
		uowFactory:       uowFactory,
		retries:          retries,
		logger:           logger.With(zap.String("component", "tender")),
	}
}

func (h *TenderHandler) Create(ctx context.Context, cmd CreateTenderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	t, err := tender.NewTender(tender.Draft{
		ID:                 cmd.TenderID(),
		Owner:              cmd.Owner(),
		Title:              cmd.Title(),
		Route:              cmd.Route(),
		Cargo:              cmd.Cargo(),
		Budget:             cmd.Budget(),
		SubmissionDeadline: cmd.SubmissionDeadline(),
		Publish:            cmd.Publish(),
	}, time.Now())
	if err != nil {
		return err
	}

	err = runInTx(ctx, h.tenderUoWFactory, 1, func(uow TenderUoW) error {
		return uow.TenderRepository().Add(ctx, t)
	})
	if err != nil {
		return err
	}

	h.logger.Info("tender created", zap.Stringer("tender_id", t.ID()), zap.Stringer("status", t.Status()))
	return nil
}

func (h *TenderHandler) Open(ctx context.Context, cmd OpenTenderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.mutate(ctx, "open", cmd.TenderID(), func(t *tender.Tender, now time.Time) error {
		return t.Open(cmd.Actor(), now)
	})
}

func (h *TenderHandler) Cancel(ctx context.Context, cmd CancelTenderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.mutate(ctx, "cancel", cmd.TenderID(), func(t *tender.Tender, now time.Time) error {
		return t.Cancel(cmd.Actor(), now)
	})
}

// SubmitBid adds the bid to the tender. Bids are part of the tender
// aggregate, so concurrent submissions serialize on the tender's version.
func (h *TenderHandler) SubmitBid(ctx context.Context, cmd SubmitBidCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.mutate(ctx, "submit_bid", cmd.TenderID(), func(t *tender.Tender, now time.Time) error {
		_, err := t.SubmitBid(cmd.BidID(), cmd.Actor(), cmd.Price(), cmd.Notes(), now)
		return err
	})
}

// Award accepts the bid, rejects its siblings, marks the tender awarded and
// creates the pending order for the winning carrier, all in one commit.
func (h *TenderHandler) Award(ctx context.Context, cmd AwardBidCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	err := runInTx(ctx, h.uowFactory, h.retries, func(uow UoW) error {
		tenders := uow.TenderRepository()
		t, err := tenders.Get(ctx, cmd.TenderID())
		if err != nil {
			return err
		}

		now := time.Now()
		bid, err := t.Award(cmd.Actor(), cmd.BidID(), cmd.OrderID(), now)
		if err != nil {
			return err
		}

		carrierID := bid.BidderID()
		tenderID := t.ID()
		o, err := order.NewOrder(order.Draft{
			ID:         cmd.OrderID(),
			Shipper:    cmd.Actor(),
			CarrierID:  &carrierID,
			TenderID:   &tenderID,
			Route:      t.Route(),
			Cargo:      t.Cargo(),
			TotalPrice: bid.Price(),
		}, now)
		if err != nil {
			return err
		}

		if err = tenders.Update(ctx, t); err != nil {
			return err
		}
		return uow.OrderRepository().Add(ctx, o)
	})
	if err != nil {
		return err
	}

	h.logger.Info("tender awarded",
		zap.Stringer("tender_id", cmd.TenderID()),
		zap.Stringer("bid_id", cmd.BidID()),
		zap.Stringer("order_id", cmd.OrderID()))
	return nil
}

// CloseExpired closes up to limit open tenders whose deadline passed without
// a submitted bid and returns how many it closed. Tenders holding bids stay
// open for the owner to award. Each tender is closed in its own transaction.
func (h *TenderHandler) CloseExpired(ctx context.Context, now time.Time, limit int) (int, error) {
	var expired []*tender.Tender
	err := runInTx(ctx, h.tenderUoWFactory, 1, func(uow TenderUoW) error {
		var err error
		expired, err = uow.TenderRepository().ListExpiredOpen(ctx, now, limit)
		return err
	})
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, t := range expired {
		var changed bool
		err = runInTx(ctx, h.tenderUoWFactory, h.retries, func(uow TenderUoW) error {
			repo := uow.TenderRepository()
			fresh, err := repo.Get(ctx, t.ID())
			if err != nil {
				return err
			}
			if changed = fresh.CloseIfExpired(now); !changed {
				return nil
			}
			return repo.Update(ctx, fresh)
		})
		if err != nil {
			h.logger.Warn("closing expired tender failed", zap.Stringer("tender_id", t.ID()), zap.Error(err))
			continue
		}
		if changed {
			closed++
			h.logger.Info("tender closed", zap.Stringer("tender_id", t.ID()))
		}
	}
	return closed, nil
}

func (h *TenderHandler) mutate(
	ctx context.Context,
	op string,
	tenderID kernel.UUID,
	fn func(t *tender.Tender, now time.Time) error,
) error {
	err := runInTx(ctx, h.tenderUoWFactory, h.retries, func(uow TenderUoW) error {
		repo := uow.TenderRepository()
		t, err := repo.Get(ctx, tenderID)
		if err != nil {
			return err
		}
		if err = fn(t, time.Now()); err != nil {
			return err
		}
		return repo.Update(ctx, t)
	})
	if err != nil {
		return err
	}

	h.logger.Info("tender updated", zap.String("operation", op), zap.Stringer("tender_id", tenderID))
	return nil
}
