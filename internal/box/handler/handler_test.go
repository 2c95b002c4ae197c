package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"boxtribute/internal/auth"
	"boxtribute/internal/box/handler/mocks"
	boxModel "boxtribute/internal/box/models"
	"boxtribute/internal/history"
	"boxtribute/internal/platform/metrics"
	id "boxtribute/pkg/domain"
	dErrors "boxtribute/pkg/domain-errors"
	"boxtribute/pkg/testutil"
)

const testSigningKey = "handler-test-signing-key"

type BoxHandlerSuite struct {
	suite.Suite
	metrics *metrics.Metrics
	actor   *auth.Actor
}

func TestBoxHandlerSuite(t *testing.T) {
	suite.Run(t, new(BoxHandlerSuite))
}

func (s *BoxHandlerSuite) SetupSuite() {
	s.metrics = metrics.New()
	s.actor = auth.NewActor(7, 1, []id.BaseID{1}, map[auth.Permission]auth.Scope{
		auth.PermStockRead:   auth.RestrictedTo(1),
		auth.PermStockWrite:  auth.RestrictedTo(1),
		auth.PermHistoryRead: auth.RestrictedTo(1),
	}, false)
}

func (s *BoxHandlerSuite) newHandler() (*Handler, *mocks.MockService) {
	ctrl := gomock.NewController(s.T())
	s.T().Cleanup(ctrl.Finish)
	service := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(service, logger, s.metrics, auth.NewTokenValidator(testSigningKey)), service
}

func (s *BoxHandlerSuite) sampleBox() *boxModel.Box {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return &boxModel.Box{
		ID:            1,
		Label:         "12345678",
		State:         boxModel.StateInStock,
		LocationID:    10,
		ProductID:     100,
		SizeID:        5,
		NumberOfItems: 12,
		Comment:       "winter drive",
		TagIDs:        []id.TagID{50},
		CreatedOn:     now,
		CreatedBy:     7,
		ModifiedOn:    now,
		ModifiedBy:    7,
	}
}

// ==== Create ====

func (s *BoxHandlerSuite) TestCreate() {
	h, service := s.newHandler()
	qty := 12
	service.EXPECT().Create(gomock.Any(), s.actor, boxModel.CreateBoxInput{
		ProductID:     100,
		LocationID:    10,
		SizeID:        5,
		NumberOfItems: &qty,
		Comment:       "winter drive",
		TagIDs:        []id.TagID{50},
	}).Return(s.sampleBox(), nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/boxes", createBoxRequest{
		ProductID:     100,
		LocationID:    10,
		SizeID:        5,
		NumberOfItems: &qty,
		Comment:       "winter drive",
		TagIDs:        []int64{50},
	})
	rr := testutil.DoRequest(http.HandlerFunc(h.handleCreate), testutil.WithActor(req, s.actor))

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	resp := testutil.UnmarshalResponse[boxResponse](s.T(), rr)
	s.Equal("12345678", resp.Label)
	s.Equal("InStock", resp.State)
	s.Equal([]int64{50}, resp.TagIDs)
}

func (s *BoxHandlerSuite) TestCreateRejectsBadState() {
	h, _ := s.newHandler()
	bad := "Teleported"
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/boxes", createBoxRequest{
		ProductID:  100,
		LocationID: 10,
		SizeID:     5,
		State:      &bad,
	})
	rr := testutil.DoRequest(http.HandlerFunc(h.handleCreate), testutil.WithActor(req, s.actor))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
}

func (s *BoxHandlerSuite) TestCreateRejectsMalformedBody() {
	h, _ := s.newHandler()
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/boxes", "{not json")
	rr := testutil.DoRequest(http.HandlerFunc(h.handleCreate), testutil.WithActor(req, s.actor))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
}

func (s *BoxHandlerSuite) TestCreateWithoutActor() {
	h, _ := s.newHandler()
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/boxes", createBoxRequest{})
	rr := testutil.DoRequest(http.HandlerFunc(h.handleCreate), req)

	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
}

// ==== Get ====

func (s *BoxHandlerSuite) TestGet() {
	h, service := s.newHandler()
	service.EXPECT().Get(gomock.Any(), s.actor, id.BoxLabel("12345678")).Return(s.sampleBox(), nil)

	r := chi.NewRouter()
	r.Get("/boxes/{label}", h.handleGet)
	req := testutil.NewRequest(s.T(), http.MethodGet, "/boxes/12345678")
	rr := testutil.DoRequest(r, testutil.WithActor(req, s.actor))

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[boxResponse](s.T(), rr)
	s.Equal(int64(1), resp.ID)
	s.Equal(12, resp.NumberOfItems)
}

func (s *BoxHandlerSuite) TestGetUnknownBox() {
	h, service := s.newHandler()
	service.EXPECT().Get(gomock.Any(), s.actor, id.BoxLabel("12345678")).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "box 12345678 not found"))

	r := chi.NewRouter()
	r.Get("/boxes/{label}", h.handleGet)
	req := testutil.NewRequest(s.T(), http.MethodGet, "/boxes/12345678")
	rr := testutil.DoRequest(r, testutil.WithActor(req, s.actor))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
}

func (s *BoxHandlerSuite) TestGetRejectsBadLabel() {
	h, _ := s.newHandler()
	r := chi.NewRouter()
	r.Get("/boxes/{label}", h.handleGet)
	req := testutil.NewRequest(s.T(), http.MethodGet, "/boxes/not-a-label")
	rr := testutil.DoRequest(r, testutil.WithActor(req, s.actor))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
}

// ==== History ====

func (s *BoxHandlerSuite) TestHistory() {
	h, service := s.newHandler()
	recordedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	entry := history.BoxCreated(1)
	entry.ID = 3
	entry.ActorID = 7
	entry.RecordedAt = recordedAt
	service.EXPECT().History(gomock.Any(), s.actor, id.BoxLabel("12345678")).
		Return([]history.Entry{entry}, nil)

	r := chi.NewRouter()
	r.Get("/boxes/{label}/history", h.handleHistory)
	req := testutil.NewRequest(s.T(), http.MethodGet, "/boxes/12345678/history")
	rr := testutil.DoRequest(r, testutil.WithActor(req, s.actor))

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[[]historyEntryResponse](s.T(), rr)
	s.Require().Len(*resp, 1)
	s.Equal("created record", (*resp)[0].Message)
	s.Equal(int64(7), (*resp)[0].ActorID)
}

// ==== Update ====

func (s *BoxHandlerSuite) TestUpdate() {
	h, service := s.newHandler()
	qty := 3
	loc := id.LocationID(11)
	service.EXPECT().Update(gomock.Any(), s.actor, id.BoxLabel("12345678"), boxModel.UpdateBoxInput{
		LocationID:    &loc,
		NumberOfItems: &qty,
	}).Return(s.sampleBox(), nil)

	r := chi.NewRouter()
	r.Patch("/boxes/{label}", h.handleUpdate)
	locID := int64(11)
	req := testutil.NewJSONRequest(s.T(), http.MethodPatch, "/boxes/12345678", updateBoxRequest{
		LocationID:    &locID,
		NumberOfItems: &qty,
	})
	rr := testutil.DoRequest(r, testutil.WithActor(req, s.actor))

	testutil.AssertStatusOK(s.T(), rr)
}

// ==== Bulk operations ====

func (s *BoxHandlerSuite) TestMoveDedupesLabels() {
	h, service := s.newHandler()
	service.EXPECT().Move(gomock.Any(), s.actor, []id.BoxLabel{"12345678", "87654321"}, id.LocationID(11)).
		Return([]*boxModel.Box{s.sampleBox()}, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/boxes/move", bulkBoxRequest{
		Labels:     []string{" 12345678 ", "87654321", "12345678"},
		LocationID: 11,
	})
	rr := testutil.DoRequest(http.HandlerFunc(h.handleMove), testutil.WithActor(req, s.actor))

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[[]boxResponse](s.T(), rr)
	s.Len(*resp, 1)
}

func (s *BoxHandlerSuite) TestMoveRejectsEmptyLabels() {
	h, _ := s.newHandler()
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/boxes/move", bulkBoxRequest{LocationID: 11})
	rr := testutil.DoRequest(http.HandlerFunc(h.handleMove), testutil.WithActor(req, s.actor))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
}

func (s *BoxHandlerSuite) TestMoveRejectsBadLabel() {
	h, _ := s.newHandler()
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/boxes/move", bulkBoxRequest{
		Labels:     []string{"12345678", "nope"},
		LocationID: 11,
	})
	rr := testutil.DoRequest(http.HandlerFunc(h.handleMove), testutil.WithActor(req, s.actor))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
}

func (s *BoxHandlerSuite) TestAssignTags() {
	h, service := s.newHandler()
	service.EXPECT().AssignTags(gomock.Any(), s.actor, []id.BoxLabel{"12345678"}, []id.TagID{50, 51}).
		Return([]*boxModel.Box{s.sampleBox()}, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/boxes/tags/assign", bulkBoxRequest{
		Labels: []string{"12345678"},
		TagIDs: []int64{50, 51},
	})
	rr := testutil.DoRequest(http.HandlerFunc(h.handleAssignTags), testutil.WithActor(req, s.actor))

	testutil.AssertStatusOK(s.T(), rr)
}

func (s *BoxHandlerSuite) TestDelete() {
	h, service := s.newHandler()
	deleted := s.sampleBox()
	deletedOn := deleted.ModifiedOn.Add(time.Hour)
	deleted.DeletedOn = &deletedOn
	service.EXPECT().Delete(gomock.Any(), s.actor, []id.BoxLabel{"12345678"}).
		Return([]*boxModel.Box{deleted}, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/boxes/delete", bulkBoxRequest{
		Labels: []string{"12345678"},
	})
	rr := testutil.DoRequest(http.HandlerFunc(h.handleDelete), testutil.WithActor(req, s.actor))

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[[]boxResponse](s.T(), rr)
	s.Require().Len(*resp, 1)
	s.NotNil((*resp)[0].DeletedOn)
}

// ==== Routing and auth middleware ====

func (s *BoxHandlerSuite) TestRegisterRequiresBearerToken() {
	h, service := s.newHandler()
	r := chi.NewRouter()
	h.Register(r)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/boxes/12345678")
	rr := testutil.DoRequest(r, req)
	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)

	service.EXPECT().Get(gomock.Any(), gomock.Any(), id.BoxLabel("12345678")).Return(s.sampleBox(), nil)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7",
		"exp": time.Now().Add(time.Hour).Unix(),
		"https://www.boxtribute.com/organisation_id": 1,
		"https://www.boxtribute.com/base_ids":        []any{1},
		"https://www.boxtribute.com/permissions":     []any{"stock:read"},
	})
	signed, err := token.SignedString([]byte(testSigningKey))
	s.Require().NoError(err)

	req = testutil.NewRequest(s.T(), http.MethodGet, "/boxes/12345678")
	req.Header.Set("Authorization", "Bearer "+signed)
	rr = testutil.DoRequest(r, req)
	testutil.AssertStatusOK(s.T(), rr)
	s.NotEmpty(rr.Header().Get("X-Request-ID"))
}
