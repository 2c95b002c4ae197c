//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"boxtribute/internal/box/models"
	"boxtribute/internal/box/store"
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
	err := s.postgres.TruncateTables(context.Background(), "stock")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newBox(label string) *models.Box {
	return &models.Box{
		Label:         id.BoxLabel(label),
		State:         models.StateInStock,
		LocationID:    10,
		ProductID:     100,
		SizeID:        5,
		NumberOfItems: 12,
		Comment:       "winter drive",
		TagIDs:        []id.TagID{50, 51},
		CreatedOn:     s.now,
		CreatedBy:     7,
		ModifiedOn:    s.now,
		ModifiedBy:    7,
	}
}

func (s *PostgresStoreSuite) TestCreateAndLoad() {
	ctx := context.Background()
	created, err := s.store.Create(ctx, s.newBox("11111111"))
	s.Require().NoError(err)
	s.NotZero(created.ID)

	loaded, err := s.store.ByLabel(ctx, "11111111")
	s.Require().NoError(err)
	s.Equal(created.ID, loaded.ID)
	s.Equal(models.StateInStock, loaded.State)
	s.Equal(id.LocationID(10), loaded.LocationID)
	s.Equal(12, loaded.NumberOfItems)
	s.Equal("winter drive", loaded.Comment)
	s.Equal([]id.TagID{50, 51}, loaded.TagIDs)
	s.True(loaded.QRCodeID.IsNil())
	s.Nil(loaded.DeletedOn)

	byID, err := s.store.ByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(loaded.Label, byID.Label)
}

func (s *PostgresStoreSuite) TestCreateWithQRCode() {
	ctx := context.Background()
	box := s.newBox("11111111")
	box.QRCodeID = id.NewQRCodeID()

	created, err := s.store.Create(ctx, box)
	s.Require().NoError(err)

	loaded, err := s.store.ByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(box.QRCodeID, loaded.QRCodeID)
}

func (s *PostgresStoreSuite) TestCreateDuplicateLabel() {
	ctx := context.Background()
	_, err := s.store.Create(ctx, s.newBox("11111111"))
	s.Require().NoError(err)

	_, err = s.store.Create(ctx, s.newBox("11111111"))
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrConflict))
}

func (s *PostgresStoreSuite) TestByLabelNotFound() {
	_, err := s.store.ByLabel(context.Background(), "99999999")
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestUpdate() {
	ctx := context.Background()
	created, err := s.store.Create(ctx, s.newBox("11111111"))
	s.Require().NoError(err)

	created.State = models.StateDonated
	created.LocationID = 11
	created.NumberOfItems = 3
	created.Comment = "moved to donations"
	created.TagIDs = []id.TagID{50}
	created.ModifiedOn = s.now.Add(time.Hour)
	created.ModifiedBy = 8
	s.Require().NoError(s.store.Update(ctx, created))

	loaded, err := s.store.ByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(models.StateDonated, loaded.State)
	s.Equal(id.LocationID(11), loaded.LocationID)
	s.Equal(3, loaded.NumberOfItems)
	s.Equal("moved to donations", loaded.Comment)
	s.Equal([]id.TagID{50}, loaded.TagIDs)
	s.Equal(id.UserID(8), loaded.ModifiedBy)
}

func (s *PostgresStoreSuite) TestUpdateSoftDelete() {
	ctx := context.Background()
	created, err := s.store.Create(ctx, s.newBox("11111111"))
	s.Require().NoError(err)

	deletedOn := s.now.Add(time.Hour)
	created.DeletedOn = &deletedOn
	s.Require().NoError(s.store.Update(ctx, created))

	loaded, err := s.store.ByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Require().NotNil(loaded.DeletedOn)
	s.True(loaded.DeletedOn.Equal(deletedOn))
}

func (s *PostgresStoreSuite) TestUpdateMissingBox() {
	box := s.newBox("11111111")
	box.ID = 999
	err := s.store.Update(context.Background(), box)
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestLabelExists() {
	ctx := context.Background()
	_, err := s.store.Create(ctx, s.newBox("11111111"))
	s.Require().NoError(err)

	exists, err := s.store.LabelExists(ctx, "11111111")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.store.LabelExists(ctx, "22222222")
	s.Require().NoError(err)
	s.False(exists)
}
