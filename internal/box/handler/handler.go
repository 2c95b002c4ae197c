// Package handler exposes box operations over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"boxtribute/internal/auth"
	boxModel "boxtribute/internal/box/models"
	"boxtribute/internal/history"
	"boxtribute/internal/platform/metrics"
	"boxtribute/internal/platform/middleware"
	"boxtribute/internal/transport/http/shared"
	id "boxtribute/pkg/domain"
	dErrors "boxtribute/pkg/domain-errors"
	pstrings "boxtribute/pkg/platform/strings"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the interface for box operations.
type Service interface {
	Get(ctx context.Context, actor *auth.Actor, label id.BoxLabel) (*boxModel.Box, error)
	History(ctx context.Context, actor *auth.Actor, label id.BoxLabel) ([]history.Entry, error)
	Create(ctx context.Context, actor *auth.Actor, in boxModel.CreateBoxInput) (*boxModel.Box, error)
	Update(ctx context.Context, actor *auth.Actor, label id.BoxLabel, in boxModel.UpdateBoxInput) (*boxModel.Box, error)
	Move(ctx context.Context, actor *auth.Actor, labels []id.BoxLabel, locationID id.LocationID) ([]*boxModel.Box, error)
	AssignTags(ctx context.Context, actor *auth.Actor, labels []id.BoxLabel, tagIDs []id.TagID) ([]*boxModel.Box, error)
	UnassignTags(ctx context.Context, actor *auth.Actor, labels []id.BoxLabel, tagIDs []id.TagID) ([]*boxModel.Box, error)
	Delete(ctx context.Context, actor *auth.Actor, labels []id.BoxLabel) ([]*boxModel.Box, error)
}

// Handler handles box-related endpoints.
type Handler struct {
	logger       *slog.Logger
	boxes        Service
	metrics      *metrics.Metrics
	jwtValidator *auth.TokenValidator
}

// New creates a new box Handler.
func New(boxes Service, logger *slog.Logger, metrics *metrics.Metrics, jwtValidator *auth.TokenValidator) *Handler {
	return &Handler{
		logger:       logger,
		boxes:        boxes,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the box routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	boxRouter := chi.NewRouter()
	boxRouter.Use(middleware.Recovery(h.logger))
	boxRouter.Use(middleware.RequestID)
	boxRouter.Use(middleware.RequestTime)
	boxRouter.Use(middleware.Logger(h.logger))
	boxRouter.Use(middleware.Latency(h.metrics))
	boxRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	boxRouter.Post("/", h.handleCreate)
	boxRouter.Get("/{label}", h.handleGet)
	boxRouter.Patch("/{label}", h.handleUpdate)
	boxRouter.Get("/{label}/history", h.handleHistory)
	boxRouter.Post("/move", h.handleMove)
	boxRouter.Post("/tags/assign", h.handleAssignTags)
	boxRouter.Post("/tags/unassign", h.handleUnassignTags)
	boxRouter.Post("/delete", h.handleDelete)

	r.Mount("/boxes", boxRouter)
}

type createBoxRequest struct {
	ProductID     int64   `json:"product_id"`
	LocationID    int64   `json:"location_id"`
	SizeID        int64   `json:"size_id"`
	NumberOfItems *int    `json:"number_of_items,omitempty"`
	Comment       string  `json:"comment,omitempty"`
	QRCode        string  `json:"qr_code,omitempty"`
	State         *string `json:"state,omitempty"`
	TagIDs        []int64 `json:"tag_ids,omitempty"`
}

type updateBoxRequest struct {
	ProductID     *int64   `json:"product_id,omitempty"`
	LocationID    *int64   `json:"location_id,omitempty"`
	SizeID        *int64   `json:"size_id,omitempty"`
	NumberOfItems *int     `json:"number_of_items,omitempty"`
	Comment       *string  `json:"comment,omitempty"`
	State         *string  `json:"state,omitempty"`
	TagIDs        *[]int64 `json:"tag_ids,omitempty"`
}

type bulkBoxRequest struct {
	Labels     []string `json:"labels"`
	LocationID int64    `json:"location_id,omitempty"`
	TagIDs     []int64  `json:"tag_ids,omitempty"`
}

type boxResponse struct {
	ID            int64      `json:"id"`
	Label         string     `json:"label"`
	State         string     `json:"state"`
	LocationID    int64      `json:"location_id"`
	ProductID     int64      `json:"product_id"`
	SizeID        int64      `json:"size_id"`
	NumberOfItems int        `json:"number_of_items"`
	Comment       string     `json:"comment,omitempty"`
	QRCode        string     `json:"qr_code,omitempty"`
	TagIDs        []int64    `json:"tag_ids,omitempty"`
	CreatedOn     time.Time  `json:"created_on"`
	ModifiedOn    time.Time  `json:"modified_on"`
	DeletedOn     *time.Time `json:"deleted_on,omitempty"`
}

type historyEntryResponse struct {
	ID         int64     `json:"id"`
	Message    string    `json:"message"`
	ActorID    int64     `json:"actor_id"`
	RecordedAt time.Time `json:"recorded_at"`
}

func toBoxResponse(b *boxModel.Box) boxResponse {
	resp := boxResponse{
		ID:            int64(b.ID),
		Label:         b.Label.String(),
		State:         b.State.String(),
		LocationID:    int64(b.LocationID),
		ProductID:     int64(b.ProductID),
		SizeID:        int64(b.SizeID),
		NumberOfItems: b.NumberOfItems,
		Comment:       b.Comment,
		CreatedOn:     b.CreatedOn,
		ModifiedOn:    b.ModifiedOn,
		DeletedOn:     b.DeletedOn,
	}
	if !b.QRCodeID.IsNil() {
		resp.QRCode = b.QRCodeID.String()
	}
	for _, t := range b.TagIDs {
		resp.TagIDs = append(resp.TagIDs, int64(t))
	}
	return resp
}

func toBoxListResponse(boxes []*boxModel.Box) []boxResponse {
	out := make([]boxResponse, 0, len(boxes))
	for _, b := range boxes {
		out = append(out, toBoxResponse(b))
	}
	return out
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req createBoxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	in := boxModel.CreateBoxInput{
		ProductID:     id.ProductID(req.ProductID),
		LocationID:    id.LocationID(req.LocationID),
		SizeID:        id.SizeID(req.SizeID),
		NumberOfItems: req.NumberOfItems,
		Comment:       req.Comment,
		TagIDs:        toTagIDs(req.TagIDs),
	}
	if req.QRCode != "" {
		qr, err := id.ParseQRCodeID(req.QRCode)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		in.QRCodeID = qr
	}
	if req.State != nil {
		state, err := boxModel.ParseState(*req.State)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		in.State = &state
	}

	box, err := h.boxes.Create(ctx, actor, in)
	if err != nil {
		h.writeServiceError(ctx, w, "create box", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toBoxResponse(box))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	label, err := id.ParseBoxLabel(chi.URLParam(r, "label"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	box, err := h.boxes.Get(ctx, actor, label)
	if err != nil {
		h.writeServiceError(ctx, w, "get box", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toBoxResponse(box))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	label, err := id.ParseBoxLabel(chi.URLParam(r, "label"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req updateBoxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	in := boxModel.UpdateBoxInput{
		NumberOfItems: req.NumberOfItems,
		Comment:       req.Comment,
	}
	if req.ProductID != nil {
		p := id.ProductID(*req.ProductID)
		in.ProductID = &p
	}
	if req.LocationID != nil {
		l := id.LocationID(*req.LocationID)
		in.LocationID = &l
	}
	if req.SizeID != nil {
		s := id.SizeID(*req.SizeID)
		in.SizeID = &s
	}
	if req.State != nil {
		state, err := boxModel.ParseState(*req.State)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		in.State = &state
	}
	if req.TagIDs != nil {
		tags := toTagIDs(*req.TagIDs)
		in.TagIDs = &tags
	}

	box, err := h.boxes.Update(ctx, actor, label, in)
	if err != nil {
		h.writeServiceError(ctx, w, "update box", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toBoxResponse(box))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	label, err := id.ParseBoxLabel(chi.URLParam(r, "label"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	entries, err := h.boxes.History(ctx, actor, label)
	if err != nil {
		h.writeServiceError(ctx, w, "box history", err)
		return
	}

	out := make([]historyEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntryResponse{
			ID:         e.ID,
			Message:    e.Render(),
			ActorID:    int64(e.ActorID),
			RecordedAt: e.RecordedAt,
		})
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request) {
	h.handleBulk(w, r, "move boxes", func(ctx context.Context, actor *auth.Actor, req bulkBoxRequest, labels []id.BoxLabel) ([]*boxModel.Box, error) {
		return h.boxes.Move(ctx, actor, labels, id.LocationID(req.LocationID))
	})
}

func (h *Handler) handleAssignTags(w http.ResponseWriter, r *http.Request) {
	h.handleBulk(w, r, "assign tags", func(ctx context.Context, actor *auth.Actor, req bulkBoxRequest, labels []id.BoxLabel) ([]*boxModel.Box, error) {
		return h.boxes.AssignTags(ctx, actor, labels, toTagIDs(req.TagIDs))
	})
}

func (h *Handler) handleUnassignTags(w http.ResponseWriter, r *http.Request) {
	h.handleBulk(w, r, "unassign tags", func(ctx context.Context, actor *auth.Actor, req bulkBoxRequest, labels []id.BoxLabel) ([]*boxModel.Box, error) {
		return h.boxes.UnassignTags(ctx, actor, labels, toTagIDs(req.TagIDs))
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	h.handleBulk(w, r, "delete boxes", func(ctx context.Context, actor *auth.Actor, _ bulkBoxRequest, labels []id.BoxLabel) ([]*boxModel.Box, error) {
		return h.boxes.Delete(ctx, actor, labels)
	})
}

// handleBulk decodes a bulk request and funnels it through op. Labels that
// fail format validation are rejected up front; per-box eligibility is the
// service's call.
func (h *Handler) handleBulk(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	run func(ctx context.Context, actor *auth.Actor, req bulkBoxRequest, labels []id.BoxLabel) ([]*boxModel.Box, error),
) {
	ctx := r.Context()
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req bulkBoxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if len(req.Labels) == 0 {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "labels must not be empty"))
		return
	}

	deduped := pstrings.DedupeAndTrim(req.Labels)
	labels := make([]id.BoxLabel, 0, len(deduped))
	for _, raw := range deduped {
		label, err := id.ParseBoxLabel(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		labels = append(labels, label)
	}

	boxes, err := run(ctx, actor, req, labels)
	if err != nil {
		h.writeServiceError(ctx, w, op, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toBoxListResponse(boxes))
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	requestID := middleware.GetRequestID(ctx)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "operation failed",
			"operation", op,
			"request_id", requestID,
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, "operation rejected",
			"operation", op,
			"request_id", requestID,
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}

func toTagIDs(raw []int64) []id.TagID {
	if len(raw) == 0 {
		return nil
	}
	tags := make([]id.TagID, 0, len(raw))
	for _, t := range raw {
		tags = append(tags, id.TagID(t))
	}
	return tags
}
