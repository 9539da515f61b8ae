package queries_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "freight/internal/adapters/out/postgres"
	"freight/internal/adapters/out/postgres/pgtest"
	"freight/internal/core/application/usecases/queries"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/order"
	"freight/internal/core/domain/model/tender"
	"freight/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

type QueriesIntegrationTestSuite struct {
	suite.Suite
	pg      *pgtest.Database
	factory *postgres_adapter.GormUnitOfWorkFactory

	shipper, carrierX, carrierY, outsider, admin kernel.Principal
}

func (suite *QueriesIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(pg.DB, nil, nil)
}

func (suite *QueriesIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Truncate())

	t := suite.T()
	suite.shipper = pgtest.Principal(t, kernel.NewUUID(), kernel.RoleMember)
	suite.carrierX = pgtest.Principal(t, kernel.NewUUID(), kernel.RoleMember)
	suite.carrierY = pgtest.Principal(t, kernel.NewUUID(), kernel.RoleMember)
	suite.outsider = pgtest.Principal(t, kernel.NewUUID(), kernel.RoleMember)
	suite.admin = pgtest.Principal(t, kernel.NewUUID(), kernel.RoleAdmin)
}

func (suite *QueriesIntegrationTestSuite) TearDownSuite() {
	if suite.pg != nil {
		suite.Require().NoError(suite.pg.Stop(context.Background()))
	}
}

func (suite *QueriesIntegrationTestSuite) addOrder(carrier *kernel.UUID) *order.Order {
	ctx := context.Background()
	o := pgtest.Order(suite.T(), suite.shipper, carrier, "1000.00")
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.Commit(ctx))
	return o
}

func (suite *QueriesIntegrationTestSuite) getOrder(id kernel.UUID, viewer kernel.Principal) (queries.OrderView, error) {
	q, err := queries.NewGetOrderQuery(id, viewer)
	suite.Require().NoError(err)
	return queries.NewGetOrderQueryHandler(suite.pg.DB).Handle(context.Background(), q)
}

func (suite *QueriesIntegrationTestSuite) TestGetOrder_Parties() {
	carrierID := suite.carrierX.CompanyID()
	o := suite.addOrder(&carrierID)

	view, err := suite.getOrder(o.ID(), suite.carrierX)
	suite.Require().NoError(err)
	suite.True(view.ID.IsEqual(o.ID()))
	suite.Equal("1000.00", view.TotalPrice)
	suite.Equal("EUR", view.Currency)
	suite.Equal("pending", view.Status)
	suite.Equal("unpaid", view.PaymentStatus)
	suite.Require().NotNil(view.CarrierID)
	suite.True(view.CarrierID.IsEqual(carrierID))

	_, err = suite.getOrder(o.ID(), suite.shipper)
	suite.Require().NoError(err)
	_, err = suite.getOrder(o.ID(), suite.admin)
	suite.Require().NoError(err)

	_, err = suite.getOrder(o.ID(), suite.outsider)
	suite.Require().ErrorIs(err, errs.ErrUnauthorized)
}

func (suite *QueriesIntegrationTestSuite) TestGetOrder_OpenOrderIsListed() {
	o := suite.addOrder(nil)

	view, err := suite.getOrder(o.ID(), suite.outsider)
	suite.Require().NoError(err)
	suite.Nil(view.CarrierID)
}

func (suite *QueriesIntegrationTestSuite) TestGetOrder_Unknown() {
	_, err := suite.getOrder(kernel.NewUUID(), suite.admin)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *QueriesIntegrationTestSuite) TestGetEscrow() {
	ctx := context.Background()
	carrierID := suite.carrierX.CompanyID()
	o := suite.addOrder(&carrierID)
	e := pgtest.Escrow(suite.T(), o)
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.EscrowRepository().Add(ctx, e))
	suite.Require().NoError(uow.Commit(ctx))

	handler := queries.NewGetEscrowQueryHandler(suite.pg.DB)
	q, err := queries.NewGetEscrowQuery(e.ID(), suite.carrierX)
	suite.Require().NoError(err)
	view, err := handler.Handle(ctx, q)
	suite.Require().NoError(err)
	suite.Equal("created", view.Status)
	suite.Equal("1000.00", view.Amount)
	suite.Nil(view.FundedAt)

	q, err = queries.NewGetEscrowQuery(e.ID(), suite.outsider)
	suite.Require().NoError(err)
	_, err = handler.Handle(ctx, q)
	suite.Require().ErrorIs(err, errs.ErrUnauthorized)
}

func (suite *QueriesIntegrationTestSuite) TestGetTender_BidVisibility() {
	ctx := context.Background()
	tn := pgtest.Tender(suite.T(), suite.shipper, pgtest.Now().Add(48*time.Hour))
	_, err := tn.SubmitBid(kernel.NewUUID(), suite.carrierX, kernel.MustParseMoney("1000.00", "EUR"), "", pgtest.Now())
	suite.Require().NoError(err)
	_, err = tn.SubmitBid(kernel.NewUUID(), suite.carrierY, kernel.MustParseMoney("1200.00", "EUR"), "tail lift", pgtest.Now())
	suite.Require().NoError(err)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.TenderRepository().Add(ctx, tn))
	suite.Require().NoError(uow.Commit(ctx))

	cases := []struct {
		name   string
		viewer kernel.Principal
		bids   int
	}{
		{"owner sees every bid", suite.shipper, 2},
		{"admin sees every bid", suite.admin, 2},
		{"bidder sees own bid", suite.carrierY, 1},
		{"outsider sees none", suite.outsider, 0},
	}
	handler := queries.NewGetTenderQueryHandler(suite.pg.DB)
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			q, err := queries.NewGetTenderQuery(tn.ID(), tc.viewer)
			suite.Require().NoError(err)
			view, err := handler.Handle(ctx, q)
			suite.Require().NoError(err)
			suite.Len(view.Bids, tc.bids)
			suite.Equal(tender.StatusOpen.String(), view.Status)
			suite.Require().NotNil(view.BudgetAmount)
			suite.Equal("2500.00", *view.BudgetAmount)
		})
	}

	q, err := queries.NewGetTenderQuery(tn.ID(), suite.carrierY)
	suite.Require().NoError(err)
	view, err := handler.Handle(ctx, q)
	suite.Require().NoError(err)
	suite.True(view.Bids[0].BidderID.IsEqual(suite.carrierY.CompanyID()))
	suite.Equal("1200.00", view.Bids[0].ProposedPrice)
}

func TestQueriesIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(QueriesIntegrationTestSuite))
}
