package subjectrepo_test

import (
	"context"
	"testing"

	"freight/internal/adapters/out/postgres/orderrepo"
	"freight/internal/adapters/out/postgres/pgtest"
	"freight/internal/adapters/out/postgres/subjectrepo"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/order"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"

	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"
)

type nopTracker struct{}

func (nopTracker) TrackAggregate(kernel.UUID, ports.Aggregate) {}

type SubjectResolverIntegrationTestSuite struct {
	suite.Suite
	pg       *pgtest.Database
	resolver *subjectrepo.GormSubjectResolver

	shipper kernel.Principal
	order   *order.Order
}

func (suite *SubjectResolverIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
}

func (suite *SubjectResolverIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Truncate())
	suite.resolver = subjectrepo.NewGormSubjectResolver(suite.pg.DB)

	suite.shipper = pgtest.Principal(suite.T(), kernel.NewUUID(), kernel.RoleMember)
	suite.order = pgtest.Order(suite.T(), suite.shipper, nil, "500.00")
	repo := orderrepo.NewGormOrderRepository(suite.pg.DB, nopTracker{})
	suite.Require().NoError(repo.Add(context.Background(), suite.order))
}

func (suite *SubjectResolverIntegrationTestSuite) TearDownSuite() {
	if suite.pg != nil {
		suite.Require().NoError(suite.pg.Stop(context.Background()))
	}
}

func (suite *SubjectResolverIntegrationTestSuite) TestOrderParties_OpenOrder() {
	parties, err := suite.resolver.OrderParties(context.Background(), suite.order.ID())
	suite.Require().NoError(err)

	suite.True(parties.ShipperID.IsEqual(suite.shipper.CompanyID()))
	suite.True(parties.CreatedBy.IsEqual(suite.shipper.UserID()))
	suite.Nil(parties.CarrierID)
}

func (suite *SubjectResolverIntegrationTestSuite) TestOrderParties_Unknown() {
	_, err := suite.resolver.OrderParties(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *SubjectResolverIntegrationTestSuite) TestConversationParties() {
	convID := kernel.NewUUID()
	companyA, companyB := kernel.NewUUID(), kernel.NewUUID()
	user := kernel.NewUUID()
	db := suite.pg.DB
	suite.Require().NoError(db.Exec("INSERT INTO conversations (id, company_ids) VALUES (?, ?::uuid[])",
		convID.Bytes(), pq.Array([]string{companyA.String(), companyB.String()})).Error)
	suite.Require().NoError(db.Exec("INSERT INTO conversation_participants (conversation_id, user_id) VALUES (?, ?)",
		convID.Bytes(), user.Bytes()).Error)

	parties, err := suite.resolver.ConversationParties(context.Background(), convID)
	suite.Require().NoError(err)

	suite.Require().Len(parties.CompanyIDs, 2)
	suite.Require().Len(parties.ParticipantIDs, 1)
	suite.True(parties.ParticipantIDs[0].IsEqual(user))
}

func (suite *SubjectResolverIntegrationTestSuite) TestConversationParties_Unknown() {
	_, err := suite.resolver.ConversationParties(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *SubjectResolverIntegrationTestSuite) TestShipmentLink() {
	linked, public := kernel.NewUUID(), kernel.NewUUID()
	db := suite.pg.DB
	suite.Require().NoError(db.Exec("INSERT INTO shipments (id, order_id) VALUES (?, ?)",
		linked.Bytes(), suite.order.ID().Bytes()).Error)
	suite.Require().NoError(db.Exec("INSERT INTO shipments (id) VALUES (?)", public.Bytes()).Error)

	link, err := suite.resolver.ShipmentLink(context.Background(), linked)
	suite.Require().NoError(err)
	suite.Require().NotNil(link.Order)
	suite.True(link.Order.ShipperID.IsEqual(suite.shipper.CompanyID()))

	link, err = suite.resolver.ShipmentLink(context.Background(), public)
	suite.Require().NoError(err)
	suite.Nil(link.Order)

	_, err = suite.resolver.ShipmentLink(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func TestSubjectResolverIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(SubjectResolverIntegrationTestSuite))
}
