//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"boxtribute/internal/shipment/models"
	"boxtribute/internal/shipment/store"
	id "boxtribute/pkg/domain"
	"boxtribute/pkg/platform/sentinel"
	"boxtribute/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "shipment_details", "shipments")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) createShipment(code string) *models.Shipment {
	s.T().Helper()
	shipment, err := s.store.Create(context.Background(), &models.Shipment{
		Code:         id.ShipmentCode(code),
		SourceBaseID: 1,
		TargetBaseID: 2,
		AgreementID:  1,
		State:        models.StatePreparing,
		StartedBy:    7,
		StartedOn:    s.now,
	})
	s.Require().NoError(err)
	s.Require().NotZero(shipment.ID)
	return shipment
}

func (s *PostgresStoreSuite) addDetail(shipmentID id.ShipmentID, boxID id.BoxID, label string) *models.Detail {
	s.T().Helper()
	detail, err := s.store.AddDetail(context.Background(), &models.Detail{
		ShipmentID:       shipmentID,
		BoxID:            boxID,
		BoxLabel:         id.BoxLabel(label),
		SourceProductID:  100,
		SourceLocationID: 10,
		SourceSizeID:     5,
		SourceQuantity:   12,
		CreatedBy:        7,
		CreatedOn:        s.now,
	})
	s.Require().NoError(err)
	return detail
}

func (s *PostgresStoreSuite) TestCreateAndLoad() {
	ctx := context.Background()
	created := s.createShipment("S0001-1234")

	loaded, err := s.store.ByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(id.ShipmentCode("S0001-1234"), loaded.Code)
	s.Equal(models.StatePreparing, loaded.State)
	s.Equal(id.BaseID(1), loaded.SourceBaseID)
	s.Equal(id.BaseID(2), loaded.TargetBaseID)
	s.Equal(id.AgreementID(1), loaded.AgreementID)
	s.Equal(id.UserID(7), loaded.StartedBy)
	s.True(loaded.StartedOn.Equal(s.now))
	s.Nil(loaded.SentOn)
	s.Empty(loaded.Details)
}

func (s *PostgresStoreSuite) TestByIDNotFound() {
	_, err := s.store.ByID(context.Background(), 999)
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestUpdateTransitionFields() {
	ctx := context.Background()
	shipment := s.createShipment("S0001-1234")

	sentOn := s.now.Add(time.Hour)
	sentBy := id.UserID(7)
	shipment.State = models.StateSent
	shipment.SentBy = &sentBy
	shipment.SentOn = &sentOn

	s.Require().NoError(s.store.Update(ctx, shipment))

	loaded, err := s.store.ByID(ctx, shipment.ID)
	s.Require().NoError(err)
	s.Equal(models.StateSent, loaded.State)
	s.Require().NotNil(loaded.SentOn)
	s.True(loaded.SentOn.Equal(sentOn))
	s.Require().NotNil(loaded.SentBy)
	s.Equal(sentBy, *loaded.SentBy)
}

func (s *PostgresStoreSuite) TestUpdateRetarget() {
	ctx := context.Background()
	shipment := s.createShipment("S0001-1234")

	shipment.TargetBaseID = 3
	shipment.AgreementID = 0

	s.Require().NoError(s.store.Update(ctx, shipment))

	loaded, err := s.store.ByID(ctx, shipment.ID)
	s.Require().NoError(err)
	s.Equal(id.BaseID(3), loaded.TargetBaseID)
	s.True(loaded.AgreementID.IsNil())
}

func (s *PostgresStoreSuite) TestUpdateMissingShipment() {
	err := s.store.Update(context.Background(), &models.Shipment{ID: 999, State: models.StateSent})
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestDetailsRoundTrip() {
	ctx := context.Background()
	shipment := s.createShipment("S0001-1234")
	first := s.addDetail(shipment.ID, 42, "11111111")
	s.addDetail(shipment.ID, 43, "22222222")

	loaded, err := s.store.ByID(ctx, shipment.ID)
	s.Require().NoError(err)
	s.Require().Len(loaded.Details, 2)
	// Details come back in insertion order.
	s.Equal(id.BoxLabel("11111111"), loaded.Details[0].BoxLabel)
	s.Equal(id.BoxLabel("22222222"), loaded.Details[1].BoxLabel)
	s.Nil(loaded.Details[0].TargetProductID)

	receivedOn := s.now.Add(2 * time.Hour)
	receivedBy := id.UserID(8)
	targetProduct := id.ProductID(200)
	targetLocation := id.LocationID(20)
	targetSize := id.SizeID(6)
	targetQuantity := 11
	first.TargetProductID = &targetProduct
	first.TargetLocationID = &targetLocation
	first.TargetSizeID = &targetSize
	first.TargetQuantity = &targetQuantity
	first.ReceivedBy = &receivedBy
	first.ReceivedOn = &receivedOn

	s.Require().NoError(s.store.UpdateDetail(ctx, first))

	loaded, err = s.store.ByID(ctx, shipment.ID)
	s.Require().NoError(err)
	got := loaded.Details[0]
	s.Require().NotNil(got.TargetProductID)
	s.Equal(targetProduct, *got.TargetProductID)
	s.Require().NotNil(got.TargetQuantity)
	s.Equal(targetQuantity, *got.TargetQuantity)
	s.Require().NotNil(got.ReceivedOn)
	s.True(got.ReceivedOn.Equal(receivedOn))
}

func (s *PostgresStoreSuite) TestLiveDetailByBox() {
	ctx := context.Background()
	first := s.createShipment("S0001-1234")
	second := s.createShipment("S0002-5678")

	removed := s.addDetail(first.ID, 42, "11111111")
	removedOn := s.now.Add(time.Minute)
	removedBy := id.UserID(7)
	removed.RemovedBy = &removedBy
	removed.RemovedOn = &removedOn
	s.Require().NoError(s.store.UpdateDetail(ctx, removed))

	live := s.addDetail(second.ID, 42, "11111111")

	got, err := s.store.LiveDetailByBox(ctx, 42)
	s.Require().NoError(err)
	s.Equal(live.ID, got.ID)
	s.Equal(second.ID, got.ShipmentID)

	_, err = s.store.LiveDetailByBox(ctx, 999)
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestNextSequence() {
	ctx := context.Background()
	first, err := s.store.NextSequence(ctx)
	s.Require().NoError(err)
	second, err := s.store.NextSequence(ctx)
	s.Require().NoError(err)
	s.Greater(second, first)
}

func (s *PostgresStoreSuite) TestCodeExists() {
	ctx := context.Background()
	s.createShipment("S0001-1234")

	exists, err := s.store.CodeExists(ctx, "S0001-1234")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.store.CodeExists(ctx, "S9999-0000")
	s.Require().NoError(err)
	s.False(exists)
}
