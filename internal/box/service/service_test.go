package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"boxtribute/internal/auth"
	"boxtribute/internal/box/models"
	boxstore "boxtribute/internal/box/store"
	"boxtribute/internal/history"
	"boxtribute/internal/label"
	"boxtribute/internal/qrcode"
	"boxtribute/internal/warehouse"
	id "boxtribute/pkg/domain"
	dErrors "boxtribute/pkg/domain-errors"
	"boxtribute/pkg/platform/tx"
	"boxtribute/pkg/requestcontext"
)

// ============================================================================
// Fixtures
// ============================================================================

const (
	baseMain  id.BaseID = 1 // org 1
	baseOther id.BaseID = 2 // org 2

	locShelf   id.LocationID = 10 // base 1, no default state
	locDonate  id.LocationID = 11 // base 1, default state Donated
	locForeign id.LocationID = 20 // base 2

	prodJackets id.ProductID = 100
	prodShoes   id.ProductID = 101

	sizeM id.SizeID = 5
	sizeL id.SizeID = 6

	tagWinter  id.TagID = 50 // base 1
	tagUrgent  id.TagID = 51 // base 1
	tagForeign id.TagID = 60 // base 2
)

type BoxServiceSuite struct {
	suite.Suite

	ctx     context.Context
	now     time.Time
	boxes     *boxstore.InMemoryStore
	refs      *warehouse.InMemoryStore
	qrs       *qrcode.InMemoryStore
	histStore *history.InMemoryStore
	ledger    *history.Ledger
	service   *Service

	actor    *auth.Actor // full grants on base 1
	outsider *auth.Actor // no grants
}

func TestBoxServiceSuite(t *testing.T) {
	suite.Run(t, new(BoxServiceSuite))
}

// boxChecker answers label probes from the box store; shipment codes are out
// of this suite's scope.
type boxChecker struct {
	boxes *boxstore.InMemoryStore
}

func (c *boxChecker) BoxLabelExists(ctx context.Context, l id.BoxLabel) (bool, error) {
	return c.boxes.LabelExists(ctx, l)
}

func (c *boxChecker) ShipmentCodeExists(context.Context, id.ShipmentCode) (bool, error) {
	return false, nil
}

func (s *BoxServiceSuite) SetupTest() {
	s.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	s.refs = warehouse.NewInMemoryStore()
	s.refs.SeedBase(&warehouse.Base{ID: baseMain, OrganisationID: 1, Name: "Main"})
	s.refs.SeedBase(&warehouse.Base{ID: baseOther, OrganisationID: 2, Name: "Other"})
	s.refs.SeedLocation(&warehouse.Location{ID: locShelf, BaseID: baseMain, Name: "Shelf"})
	donated := models.StateDonated
	s.refs.SeedLocation(&warehouse.Location{ID: locDonate, BaseID: baseMain, Name: "Donation corner", DefaultBoxState: &donated})
	s.refs.SeedLocation(&warehouse.Location{ID: locForeign, BaseID: baseOther, Name: "Foreign"})
	s.refs.SeedProduct(&warehouse.Product{ID: prodJackets, BaseID: baseMain, Name: "Jackets"})
	s.refs.SeedProduct(&warehouse.Product{ID: prodShoes, BaseID: baseMain, Name: "Shoes"})
	s.refs.SeedSize(&warehouse.Size{ID: sizeM, Label: "M"})
	s.refs.SeedSize(&warehouse.Size{ID: sizeL, Label: "L"})
	s.refs.SeedTag(&warehouse.Tag{ID: tagWinter, BaseID: baseMain, Name: "winter"})
	s.refs.SeedTag(&warehouse.Tag{ID: tagUrgent, BaseID: baseMain, Name: "urgent"})
	s.refs.SeedTag(&warehouse.Tag{ID: tagForeign, BaseID: baseOther, Name: "foreign"})

	s.boxes = boxstore.NewInMemory()
	s.qrs = qrcode.NewInMemoryStore()
	s.histStore = history.NewInMemoryStore()
	s.ledger = history.NewLedger(s.histStore)

	labels := label.New(&boxChecker{boxes: s.boxes})
	s.service = New(s.boxes, s.refs, labels, s.ledger, tx.NewPassthroughRunner(),
		WithQRStore(s.qrs),
	)

	grants := map[auth.Permission]auth.Scope{
		auth.PermStockRead:   auth.RestrictedTo(baseMain),
		auth.PermStockWrite:  auth.RestrictedTo(baseMain),
		auth.PermTagWrite:    auth.RestrictedTo(baseMain),
		auth.PermHistoryRead: auth.RestrictedTo(baseMain),
	}
	s.actor = auth.NewActor(7, 1, []id.BaseID{baseMain}, grants, false)
	s.outsider = auth.NewActor(8, 2, []id.BaseID{baseOther}, map[auth.Permission]auth.Scope{}, false)
}

func (s *BoxServiceSuite) seedBox(locationID id.LocationID, state models.State) *models.Box {
	s.T().Helper()
	box, err := s.service.Create(s.ctx, s.actor, models.CreateBoxInput{
		ProductID:     prodJackets,
		LocationID:    locShelf,
		SizeID:        sizeM,
		NumberOfItems: intPtr(10),
	})
	s.Require().NoError(err)
	box.LocationID = locationID
	box.State = state
	s.Require().NoError(s.boxes.Update(s.ctx, box))
	return box
}

func (s *BoxServiceSuite) renderedHistory(boxID id.BoxID) []string {
	s.T().Helper()
	entries, err := s.ledger.ListByBox(s.ctx, boxID)
	s.Require().NoError(err)
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Render())
	}
	return out
}

// renderedTagHistory lists tag relation entries, which are recorded under
// their own table.
func (s *BoxServiceSuite) renderedTagHistory(boxID id.BoxID) []string {
	s.T().Helper()
	entries, err := s.histStore.ListByRecord(s.ctx, history.TableTagRelations, int64(boxID))
	s.Require().NoError(err)
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Render())
	}
	return out
}

func intPtr(n int) *int { return &n }

// ============================================================================
// Create
// ============================================================================

func (s *BoxServiceSuite) TestCreate() {
	s.Run("defaults to InStock and mints a label", func() {
		box, err := s.service.Create(s.ctx, s.actor, models.CreateBoxInput{
			ProductID:  prodJackets,
			LocationID: locShelf,
			SizeID:     sizeM,
		})

		s.Require().NoError(err)
		s.Equal(models.StateInStock, box.State)
		s.Equal(0, box.NumberOfItems)
		s.Equal(s.now, box.CreatedOn)
		s.Equal(id.UserID(7), box.CreatedBy)

		_, err = id.ParseBoxLabel(box.Label.String())
		s.NoError(err)

		s.Contains(s.renderedHistory(box.ID), "created record")
	})

	s.Run("takes the location default state", func() {
		box, err := s.service.Create(s.ctx, s.actor, models.CreateBoxInput{
			ProductID:  prodJackets,
			LocationID: locDonate,
			SizeID:     sizeM,
		})

		s.Require().NoError(err)
		s.Equal(models.StateDonated, box.State)
	})

	s.Run("explicit state wins over the location default", func() {
		scrap := models.StateScrap
		box, err := s.service.Create(s.ctx, s.actor, models.CreateBoxInput{
			ProductID:  prodJackets,
			LocationID: locDonate,
			SizeID:     sizeM,
			State:      &scrap,
		})

		s.Require().NoError(err)
		s.Equal(models.StateScrap, box.State)
	})

	s.Run("rejects a negative quantity", func() {
		_, err := s.service.Create(s.ctx, s.actor, models.CreateBoxInput{
			ProductID:     prodJackets,
			LocationID:    locShelf,
			SizeID:        sizeM,
			NumberOfItems: intPtr(-1),
		})

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects unknown references", func() {
		_, err := s.service.Create(s.ctx, s.actor, models.CreateBoxInput{
			ProductID:  999,
			LocationID: locShelf,
			SizeID:     sizeM,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = s.service.Create(s.ctx, s.actor, models.CreateBoxInput{
			ProductID:  prodJackets,
			LocationID: 999,
			SizeID:     sizeM,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("requires stock write on the location base", func() {
		_, err := s.service.Create(s.ctx, s.outsider, models.CreateBoxInput{
			ProductID:  prodJackets,
			LocationID: locShelf,
			SizeID:     sizeM,
		})

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *BoxServiceSuite) TestCreateAgainstQRCode() {
	qrID := id.NewQRCodeID()
	s.Require().NoError(s.qrs.Create(s.ctx, qrcode.QRCode{ID: qrID, CreatedOn: s.now}))

	s.Run("links the sticker to the new box", func() {
		box, err := s.service.Create(s.ctx, s.actor, models.CreateBoxInput{
			ProductID:  prodJackets,
			LocationID: locShelf,
			SizeID:     sizeM,
			QRCodeID:   qrID,
		})

		s.Require().NoError(err)
		s.Equal(qrID, box.QRCodeID)

		code, err := s.qrs.ByID(s.ctx, qrID)
		s.Require().NoError(err)
		s.Equal(box.ID, code.BoxID)
	})

	s.Run("rejects a sticker that is already linked", func() {
		_, err := s.service.Create(s.ctx, s.actor, models.CreateBoxInput{
			ProductID:  prodJackets,
			LocationID: locShelf,
			SizeID:     sizeM,
			QRCodeID:   qrID,
		})

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("rejects an unknown sticker", func() {
		_, err := s.service.Create(s.ctx, s.actor, models.CreateBoxInput{
			ProductID:  prodJackets,
			LocationID: locShelf,
			SizeID:     sizeM,
			QRCodeID:   id.NewQRCodeID(),
		})

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// ============================================================================
// Get / History
// ============================================================================

func (s *BoxServiceSuite) TestGet() {
	box := s.seedBox(locShelf, models.StateInStock)

	s.Run("returns the box for an authorized actor", func() {
		got, err := s.service.Get(s.ctx, s.actor, box.Label)

		s.Require().NoError(err)
		s.Equal(box.ID, got.ID)
	})

	s.Run("denies an actor without stock read", func() {
		_, err := s.service.Get(s.ctx, s.outsider, box.Label)

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("reports unknown labels as not found", func() {
		_, err := s.service.Get(s.ctx, s.actor, "99999999")

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("hides soft deleted boxes", func() {
		deleted, err := s.service.Delete(s.ctx, s.actor, []id.BoxLabel{box.Label})
		s.Require().NoError(err)
		s.Require().Len(deleted, 1)

		_, err = s.service.Get(s.ctx, s.actor, box.Label)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *BoxServiceSuite) TestHistory() {
	box := s.seedBox(locShelf, models.StateInStock)

	_, err := s.service.Update(s.ctx, s.actor, box.Label, models.UpdateBoxInput{
		NumberOfItems: intPtr(25),
	})
	s.Require().NoError(err)

	s.Run("lists the audit trail", func() {
		entries, err := s.service.History(s.ctx, s.actor, box.Label)

		s.Require().NoError(err)
		s.Require().Len(entries, 2)
		s.Equal("created record", entries[0].Render())
		s.Equal("changed the number of items from 10 to 25", entries[1].Render())
	})

	s.Run("requires history read", func() {
		_, err := s.service.History(s.ctx, s.outsider, box.Label)

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

// ============================================================================
// Update
// ============================================================================

func (s *BoxServiceSuite) TestUpdate() {
	s.Run("applies field changes and audits each one", func() {
		box := s.seedBox(locShelf, models.StateInStock)
		comment := "winter stock"

		updated, err := s.service.Update(s.ctx, s.actor, box.Label, models.UpdateBoxInput{
			ProductID:     ptr(prodShoes),
			SizeID:        ptr(sizeL),
			NumberOfItems: intPtr(3),
			Comment:       &comment,
		})

		s.Require().NoError(err)
		s.Equal(prodShoes, updated.ProductID)
		s.Equal(sizeL, updated.SizeID)
		s.Equal(3, updated.NumberOfItems)
		s.Equal("winter stock", updated.Comment)
		s.Equal(id.UserID(7), updated.ModifiedBy)

		rendered := s.renderedHistory(box.ID)
		s.Contains(rendered, "changed product type from Jackets to Shoes")
		s.Contains(rendered, "changed size from M to L")
		s.Contains(rendered, "changed the number of items from 10 to 3")
	})

	s.Run("moving to a location with a default state resets the state", func() {
		box := s.seedBox(locShelf, models.StateInStock)

		updated, err := s.service.Update(s.ctx, s.actor, box.Label, models.UpdateBoxInput{
			LocationID: ptr(locDonate),
		})

		s.Require().NoError(err)
		s.Equal(locDonate, updated.LocationID)
		s.Equal(models.StateDonated, updated.State)

		rendered := s.renderedHistory(box.ID)
		s.Contains(rendered, "changed box location from Shelf to Donation corner")
		s.Contains(rendered, "changed box state from InStock to Donated")
	})

	s.Run("a no-op update writes no history", func() {
		box := s.seedBox(locShelf, models.StateInStock)
		before := len(s.renderedHistory(box.ID))

		_, err := s.service.Update(s.ctx, s.actor, box.Label, models.UpdateBoxInput{
			NumberOfItems: intPtr(10),
		})

		s.Require().NoError(err)
		s.Len(s.renderedHistory(box.ID), before)
	})

	s.Run("replacing the tag set audits the diff", func() {
		box := s.seedBox(locShelf, models.StateInStock)
		_, err := s.service.AssignTags(s.ctx, s.actor, []id.BoxLabel{box.Label}, []id.TagID{tagWinter})
		s.Require().NoError(err)

		updated, err := s.service.Update(s.ctx, s.actor, box.Label, models.UpdateBoxInput{
			TagIDs: &[]id.TagID{tagUrgent},
		})

		s.Require().NoError(err)
		s.Equal([]id.TagID{tagUrgent}, updated.TagIDs)

		rendered := s.renderedTagHistory(box.ID)
		s.Contains(rendered, "assigned tag urgent")
		s.Contains(rendered, "unassigned tag winter")
	})

	s.Run("an unchanged tag set writes no history", func() {
		box := s.seedBox(locShelf, models.StateInStock)
		_, err := s.service.AssignTags(s.ctx, s.actor, []id.BoxLabel{box.Label}, []id.TagID{tagWinter})
		s.Require().NoError(err)
		before := len(s.renderedTagHistory(box.ID))

		_, err = s.service.Update(s.ctx, s.actor, box.Label, models.UpdateBoxInput{
			TagIDs: &[]id.TagID{tagWinter},
		})

		s.Require().NoError(err)
		s.Len(s.renderedTagHistory(box.ID), before)
	})

	s.Run("rejects a tag from another base", func() {
		box := s.seedBox(locShelf, models.StateInStock)

		_, err := s.service.Update(s.ctx, s.actor, box.Label, models.UpdateBoxInput{
			TagIDs: &[]id.TagID{tagForeign},
		})

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects unknown references", func() {
		box := s.seedBox(locShelf, models.StateInStock)

		_, err := s.service.Update(s.ctx, s.actor, box.Label, models.UpdateBoxInput{
			ProductID: ptr(id.ProductID(999)),
		})

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("relocating to another base needs stock write there too", func() {
		box := s.seedBox(locShelf, models.StateInStock)

		_, err := s.service.Update(s.ctx, s.actor, box.Label, models.UpdateBoxInput{
			LocationID: ptr(locForeign),
		})

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("rejects a negative quantity", func() {
		box := s.seedBox(locShelf, models.StateInStock)

		_, err := s.service.Update(s.ctx, s.actor, box.Label, models.UpdateBoxInput{
			NumberOfItems: intPtr(-5),
		})

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// ============================================================================
// Bulk move
// ============================================================================

func (s *BoxServiceSuite) TestMove() {
	s.Run("moves eligible boxes and skips the rest silently", func() {
		eligible := s.seedBox(locShelf, models.StateInStock)
		inTransit := s.seedBox(locShelf, models.StateInTransit)
		alreadyThere := s.seedBox(locDonate, models.StateDonated)

		moved, err := s.service.Move(s.ctx, s.actor,
			[]id.BoxLabel{eligible.Label, inTransit.Label, alreadyThere.Label, "99999999"},
			locDonate)

		s.Require().NoError(err)
		s.Require().Len(moved, 1)
		s.Equal(eligible.Label, moved[0].Label)
		s.Equal(locDonate, moved[0].LocationID)
		// Donation corner declares Donated as default state.
		s.Equal(models.StateDonated, moved[0].State)

		rendered := s.renderedHistory(eligible.ID)
		s.Contains(rendered, "changed box location from Shelf to Donation corner")
		s.Contains(rendered, "changed box state from InStock to Donated")
	})

	s.Run("requires stock write on the target base", func() {
		box := s.seedBox(locShelf, models.StateInStock)

		_, err := s.service.Move(s.ctx, s.actor, []id.BoxLabel{box.Label}, locForeign)

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("rejects an unknown target location", func() {
		box := s.seedBox(locShelf, models.StateInStock)

		_, err := s.service.Move(s.ctx, s.actor, []id.BoxLabel{box.Label}, 999)

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// ============================================================================
// Tags
// ============================================================================

func (s *BoxServiceSuite) TestAssignTags() {
	s.Run("assigns applicable tags once", func() {
		box := s.seedBox(locShelf, models.StateInStock)

		tagged, err := s.service.AssignTags(s.ctx, s.actor,
			[]id.BoxLabel{box.Label}, []id.TagID{tagWinter, tagUrgent})

		s.Require().NoError(err)
		s.Require().Len(tagged, 1)
		s.ElementsMatch([]id.TagID{tagWinter, tagUrgent}, tagged[0].TagIDs)

		rendered := s.renderedTagHistory(box.ID)
		s.Contains(rendered, "assigned tag winter")
		s.Contains(rendered, "assigned tag urgent")

		// Re-assigning is a silent no-op.
		tagged, err = s.service.AssignTags(s.ctx, s.actor,
			[]id.BoxLabel{box.Label}, []id.TagID{tagWinter})
		s.Require().NoError(err)
		s.Empty(tagged)
	})

	s.Run("drops tags from other bases", func() {
		box := s.seedBox(locShelf, models.StateInStock)

		tagged, err := s.service.AssignTags(s.ctx, s.actor,
			[]id.BoxLabel{box.Label}, []id.TagID{tagForeign})

		s.Require().NoError(err)
		s.Empty(tagged)
	})

	s.Run("ignores unknown tags", func() {
		box := s.seedBox(locShelf, models.StateInStock)

		tagged, err := s.service.AssignTags(s.ctx, s.actor,
			[]id.BoxLabel{box.Label}, []id.TagID{999})

		s.Require().NoError(err)
		s.Empty(tagged)
	})
}

func (s *BoxServiceSuite) TestUnassignTags() {
	box := s.seedBox(locShelf, models.StateInStock)
	_, err := s.service.AssignTags(s.ctx, s.actor, []id.BoxLabel{box.Label}, []id.TagID{tagWinter, tagUrgent})
	s.Require().NoError(err)

	s.Run("removes the listed tags", func() {
		untagged, err := s.service.UnassignTags(s.ctx, s.actor,
			[]id.BoxLabel{box.Label}, []id.TagID{tagWinter})

		s.Require().NoError(err)
		s.Require().Len(untagged, 1)
		s.Equal([]id.TagID{tagUrgent}, untagged[0].TagIDs)
		s.Contains(s.renderedTagHistory(box.ID), "unassigned tag winter")
	})

	s.Run("boxes without the tag are skipped", func() {
		untagged, err := s.service.UnassignTags(s.ctx, s.actor,
			[]id.BoxLabel{box.Label}, []id.TagID{tagWinter})

		s.Require().NoError(err)
		s.Empty(untagged)
	})
}

// ============================================================================
// Delete
// ============================================================================

func (s *BoxServiceSuite) TestDelete() {
	s.Run("soft deletes eligible boxes", func() {
		box := s.seedBox(locShelf, models.StateInStock)

		deleted, err := s.service.Delete(s.ctx, s.actor, []id.BoxLabel{box.Label})

		s.Require().NoError(err)
		s.Require().Len(deleted, 1)
		s.Require().NotNil(deleted[0].DeletedOn)
		s.Equal(s.now, *deleted[0].DeletedOn)
		s.Contains(s.renderedHistory(box.ID), "deleted record")

		// A repeated call skips the already deleted box.
		deleted, err = s.service.Delete(s.ctx, s.actor, []id.BoxLabel{box.Label})
		s.Require().NoError(err)
		s.Empty(deleted)
	})

	s.Run("shipment bound boxes are skipped", func() {
		box := s.seedBox(locShelf, models.StateMarkedForShipment)

		deleted, err := s.service.Delete(s.ctx, s.actor, []id.BoxLabel{box.Label})

		s.Require().NoError(err)
		s.Empty(deleted)
	})
}

func ptr[T any](v T) *T { return &v }
