package queries_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/deliveryrepo"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type GetUserDeliveriesQueryHandlerTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	handler   queries.GetUserDeliveriesQueryHandler
	repo      *deliveryrepo.GormDeliveryRepository
}

func (suite *GetUserDeliveriesQueryHandlerTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&deliveryrepo.DeliveryDTO{}))

	suite.handler = queries.NewGetUserDeliveriesQueryHandler(db)
	suite.repo = deliveryrepo.NewGormDeliveryRepository(db, noopTracker{})
}

func (suite *GetUserDeliveriesQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *GetUserDeliveriesQueryHandlerTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE deliveries").Error)
}

func (suite *GetUserDeliveriesQueryHandlerTestSuite) addDelivery(
	buyerID, sellerID kernel.UUID, createdAt time.Time,
) *delivery.Delivery {
	pickup, err := kernel.NewAddress("123 Seller St", "Makati", "Metro Manila", "NCR")
	suite.Require().NoError(err)
	dropoff, err := kernel.NewAddress("456 Buyer Ave", "Quezon City", "Metro Manila", "NCR")
	suite.Require().NoError(err)

	aggregate, err := delivery.NewDelivery(
		kernel.NewUUID(), kernel.NewUUID(), buyerID, sellerID,
		pickup, dropoff, createdAt,
	)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repo.Add(context.Background(), aggregate))
	return aggregate
}

func (suite *GetUserDeliveriesQueryHandlerTestSuite) TestBuyerAndSellerSides() {
	ctx := context.Background()

	userID := kernel.NewUUID()
	otherID := kernel.NewUUID()

	now := time.Now()
	asBuyer := suite.addDelivery(userID, otherID, now.Add(-2*time.Hour))
	asSeller := suite.addDelivery(otherID, userID, now.Add(-1*time.Hour))
	suite.addDelivery(otherID, kernel.NewUUID(), now) // not a party

	query, err := queries.NewGetUserDeliveriesQuery(userID)
	suite.Require().NoError(err)

	resp, err := suite.handler.Handle(ctx, query)
	suite.Require().NoError(err)
	suite.Require().Len(resp, 2)

	// Newest first.
	suite.Equal(asSeller.ID(), resp[0].ID)
	suite.Equal("seller", resp[0].Role)
	suite.Equal(asBuyer.ID(), resp[1].ID)
	suite.Equal("buyer", resp[1].Role)
	suite.Equal("pending", resp[0].Status)
	suite.Equal("Makati", resp[0].PickupCity)
	suite.Equal("Quezon City", resp[0].DeliveryCity)
}

func (suite *GetUserDeliveriesQueryHandlerTestSuite) TestNoDeliveries() {
	query, err := queries.NewGetUserDeliveriesQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	resp, err := suite.handler.Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.Empty(resp)
}

func TestGetUserDeliveriesQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetUserDeliveriesQueryHandlerTestSuite))
}
