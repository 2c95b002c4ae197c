// Package handler exposes the shipment lifecycle over HTTP.
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
	"boxtribute/internal/platform/metrics"
	"boxtribute/internal/platform/middleware"
	shipModel "boxtribute/internal/shipment/models"
	"boxtribute/internal/transport/http/shared"
	id "boxtribute/pkg/domain"
	dErrors "boxtribute/pkg/domain-errors"
	pstrings "boxtribute/pkg/platform/strings"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the interface for shipment operations.
type Service interface {
	Create(ctx context.Context, actor *auth.Actor, in shipModel.CreateShipmentInput) (*shipModel.Shipment, error)
	Get(ctx context.Context, actor *auth.Actor, shipmentID id.ShipmentID) (*shipModel.Shipment, error)
	UpdateWhenPreparing(ctx context.Context, actor *auth.Actor, shipmentID id.ShipmentID, in shipModel.UpdateWhenPreparingInput) (*shipModel.Shipment, error)
	Send(ctx context.Context, actor *auth.Actor, shipmentID id.ShipmentID) (*shipModel.Shipment, error)
	Cancel(ctx context.Context, actor *auth.Actor, shipmentID id.ShipmentID) (*shipModel.Shipment, error)
	StartReceiving(ctx context.Context, actor *auth.Actor, shipmentID id.ShipmentID) (*shipModel.Shipment, error)
	UpdateWhenReceiving(ctx context.Context, actor *auth.Actor, shipmentID id.ShipmentID, in shipModel.UpdateWhenReceivingInput) (*shipModel.Shipment, error)
	MarkLost(ctx context.Context, actor *auth.Actor, shipmentID id.ShipmentID) (*shipModel.Shipment, error)
	MoveNotDeliveredBoxesInStock(ctx context.Context, actor *auth.Actor, labels []id.BoxLabel) ([]*boxModel.Box, error)
}

// Handler handles shipment-related endpoints.
type Handler struct {
	logger       *slog.Logger
	shipments    Service
	metrics      *metrics.Metrics
	jwtValidator *auth.TokenValidator
}

// New creates a new shipment Handler.
func New(shipments Service, logger *slog.Logger, metrics *metrics.Metrics, jwtValidator *auth.TokenValidator) *Handler {
	return &Handler{
		logger:       logger,
		shipments:    shipments,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the shipment routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	shipmentRouter := chi.NewRouter()
	shipmentRouter.Use(middleware.Recovery(h.logger))
	shipmentRouter.Use(middleware.RequestID)
	shipmentRouter.Use(middleware.RequestTime)
	shipmentRouter.Use(middleware.Logger(h.logger))
	shipmentRouter.Use(middleware.Latency(h.metrics))
	shipmentRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	shipmentRouter.Post("/", h.handleCreate)
	shipmentRouter.Get("/{id}", h.handleGet)
	shipmentRouter.Patch("/{id}", h.handleUpdateWhenPreparing)
	shipmentRouter.Post("/{id}/send", h.handleSend)
	shipmentRouter.Post("/{id}/cancel", h.handleCancel)
	shipmentRouter.Post("/{id}/start-receiving", h.handleStartReceiving)
	shipmentRouter.Post("/{id}/receive", h.handleUpdateWhenReceiving)
	shipmentRouter.Post("/{id}/mark-lost", h.handleMarkLost)
	shipmentRouter.Post("/not-delivered/restock", h.handleMoveNotDeliveredInStock)

	r.Mount("/shipments", shipmentRouter)
}

type createShipmentRequest struct {
	SourceBaseID int64 `json:"source_base_id"`
	TargetBaseID int64 `json:"target_base_id"`
	AgreementID  int64 `json:"agreement_id,omitempty"`
}

type updateWhenPreparingRequest struct {
	BoxLabelsToAdd    []string `json:"box_labels_to_add,omitempty"`
	BoxLabelsToRemove []string `json:"box_labels_to_remove,omitempty"`
	TargetBaseID      *int64   `json:"target_base_id,omitempty"`
}

type receiveBoxRequest struct {
	Label            string `json:"label"`
	TargetProductID  int64  `json:"target_product_id"`
	TargetLocationID int64  `json:"target_location_id"`
	TargetSizeID     int64  `json:"target_size_id"`
	TargetQuantity   int    `json:"target_quantity"`
}

type updateWhenReceivingRequest struct {
	ReceivedBoxes []receiveBoxRequest `json:"received_boxes,omitempty"`
	LostBoxLabels []string            `json:"lost_box_labels,omitempty"`
}

type restockRequest struct {
	Labels []string `json:"labels"`
}

type detailResponse struct {
	ID               int64      `json:"id"`
	BoxLabel         string     `json:"box_label"`
	SourceProductID  int64      `json:"source_product_id"`
	SourceLocationID int64      `json:"source_location_id"`
	SourceSizeID     int64      `json:"source_size_id"`
	SourceQuantity   int        `json:"source_quantity"`
	TargetProductID  *int64     `json:"target_product_id,omitempty"`
	TargetLocationID *int64     `json:"target_location_id,omitempty"`
	TargetSizeID     *int64     `json:"target_size_id,omitempty"`
	TargetQuantity   *int       `json:"target_quantity,omitempty"`
	CreatedOn        time.Time  `json:"created_on"`
	RemovedOn        *time.Time `json:"removed_on,omitempty"`
	LostOn           *time.Time `json:"lost_on,omitempty"`
	ReceivedOn       *time.Time `json:"received_on,omitempty"`
}

type shipmentResponse struct {
	ID                 int64            `json:"id"`
	Code               string           `json:"code"`
	State              string           `json:"state"`
	SourceBaseID       int64            `json:"source_base_id"`
	TargetBaseID       int64            `json:"target_base_id"`
	AgreementID        int64            `json:"agreement_id,omitempty"`
	StartedOn          time.Time        `json:"started_on"`
	SentOn             *time.Time       `json:"sent_on,omitempty"`
	ReceivingStartedOn *time.Time       `json:"receiving_started_on,omitempty"`
	CompletedOn        *time.Time       `json:"completed_on,omitempty"`
	CanceledOn         *time.Time       `json:"canceled_on,omitempty"`
	Details            []detailResponse `json:"details"`
}

func toShipmentResponse(s *shipModel.Shipment) shipmentResponse {
	resp := shipmentResponse{
		ID:                 int64(s.ID),
		Code:               s.Code.String(),
		State:              string(s.State),
		SourceBaseID:       int64(s.SourceBaseID),
		TargetBaseID:       int64(s.TargetBaseID),
		AgreementID:        int64(s.AgreementID),
		StartedOn:          s.StartedOn,
		SentOn:             s.SentOn,
		ReceivingStartedOn: s.ReceivingStartedOn,
		CompletedOn:        s.CompletedOn,
		CanceledOn:         s.CanceledOn,
		Details:            make([]detailResponse, 0, len(s.Details)),
	}
	for _, d := range s.Details {
		resp.Details = append(resp.Details, toDetailResponse(d))
	}
	return resp
}

func toDetailResponse(d *shipModel.Detail) detailResponse {
	resp := detailResponse{
		ID:               d.ID,
		BoxLabel:         d.BoxLabel.String(),
		SourceProductID:  int64(d.SourceProductID),
		SourceLocationID: int64(d.SourceLocationID),
		SourceSizeID:     int64(d.SourceSizeID),
		SourceQuantity:   d.SourceQuantity,
		TargetQuantity:   d.TargetQuantity,
		CreatedOn:        d.CreatedOn,
		RemovedOn:        d.RemovedOn,
		LostOn:           d.LostOn,
		ReceivedOn:       d.ReceivedOn,
	}
	if d.TargetProductID != nil {
		v := int64(*d.TargetProductID)
		resp.TargetProductID = &v
	}
	if d.TargetLocationID != nil {
		v := int64(*d.TargetLocationID)
		resp.TargetLocationID = &v
	}
	if d.TargetSizeID != nil {
		v := int64(*d.TargetSizeID)
		resp.TargetSizeID = &v
	}
	return resp
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req createShipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	shipment, err := h.shipments.Create(ctx, actor, shipModel.CreateShipmentInput{
		SourceBaseID: id.BaseID(req.SourceBaseID),
		TargetBaseID: id.BaseID(req.TargetBaseID),
		AgreementID:  id.AgreementID(req.AgreementID),
	})
	if err != nil {
		h.writeServiceError(ctx, w, "create shipment", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toShipmentResponse(shipment))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "get shipment", h.shipments.Get)
}

func (h *Handler) handleUpdateWhenPreparing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shipmentID, err := id.ParseShipmentID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req updateWhenPreparingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	in := shipModel.UpdateWhenPreparingInput{}
	if in.BoxLabelsToAdd, err = parseLabels(req.BoxLabelsToAdd); err != nil {
		shared.WriteError(w, err)
		return
	}
	if in.BoxLabelsToRemove, err = parseLabels(req.BoxLabelsToRemove); err != nil {
		shared.WriteError(w, err)
		return
	}
	if req.TargetBaseID != nil {
		target := id.BaseID(*req.TargetBaseID)
		in.TargetBaseID = &target
	}

	shipment, err := h.shipments.UpdateWhenPreparing(ctx, actor, shipmentID, in)
	if err != nil {
		h.writeServiceError(ctx, w, "update shipment", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toShipmentResponse(shipment))
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "send shipment", h.shipments.Send)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "cancel shipment", h.shipments.Cancel)
}

func (h *Handler) handleStartReceiving(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "start receiving", h.shipments.StartReceiving)
}

func (h *Handler) handleMarkLost(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "mark shipment lost", h.shipments.MarkLost)
}

func (h *Handler) handleUpdateWhenReceiving(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shipmentID, err := id.ParseShipmentID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req updateWhenReceivingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	in := shipModel.UpdateWhenReceivingInput{}
	for _, rb := range req.ReceivedBoxes {
		label, err := id.ParseBoxLabel(rb.Label)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		in.ReceivedBoxes = append(in.ReceivedBoxes, shipModel.ReceiveBoxInput{
			BoxLabel:         label,
			TargetProductID:  id.ProductID(rb.TargetProductID),
			TargetLocationID: id.LocationID(rb.TargetLocationID),
			TargetSizeID:     id.SizeID(rb.TargetSizeID),
			TargetQuantity:   rb.TargetQuantity,
		})
	}
	if in.LostBoxLabels, err = parseLabels(req.LostBoxLabels); err != nil {
		shared.WriteError(w, err)
		return
	}

	shipment, err := h.shipments.UpdateWhenReceiving(ctx, actor, shipmentID, in)
	if err != nil {
		h.writeServiceError(ctx, w, "receive shipment boxes", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toShipmentResponse(shipment))
}

func (h *Handler) handleMoveNotDeliveredInStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req restockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	labels, err := parseLabels(req.Labels)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if len(labels) == 0 {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "labels must not be empty"))
		return
	}

	boxes, err := h.shipments.MoveNotDeliveredBoxesInStock(ctx, actor, labels)
	if err != nil {
		h.writeServiceError(ctx, w, "restock not-delivered boxes", err)
		return
	}

	type restockedBox struct {
		Label string `json:"label"`
		State string `json:"state"`
	}
	out := make([]restockedBox, 0, len(boxes))
	for _, b := range boxes {
		out = append(out, restockedBox{Label: b.Label.String(), State: b.State.String()})
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

// handleTransition covers the body-less lifecycle endpoints that only take
// the shipment id.
func (h *Handler) handleTransition(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	run func(ctx context.Context, actor *auth.Actor, shipmentID id.ShipmentID) (*shipModel.Shipment, error),
) {
	ctx := r.Context()
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shipmentID, err := id.ParseShipmentID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shipment, err := run(ctx, actor, shipmentID)
	if err != nil {
		h.writeServiceError(ctx, w, op, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toShipmentResponse(shipment))
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

func parseLabels(raw []string) ([]id.BoxLabel, error) {
	raw = pstrings.DedupeAndTrim(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	labels := make([]id.BoxLabel, 0, len(raw))
	for _, s := range raw {
		label, err := id.ParseBoxLabel(s)
		if err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, nil
}
