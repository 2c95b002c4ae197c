package store

import (
	"context"
	"fmt"
	"sync"

	"boxtribute/internal/shipment/models"
	id "boxtribute/pkg/domain"
	"boxtribute/pkg/platform/sentinel"
)

// InMemoryStore is the in-memory shipment store used by unit tests.
type InMemoryStore struct {
	mu        sync.RWMutex
	shipments map[id.ShipmentID]*models.Shipment
	details   map[int64]*models.Detail
	nextID    int64
	nextDetID int64
	seq       int64
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		shipments: make(map[id.ShipmentID]*models.Shipment),
		details:   make(map[int64]*models.Detail),
	}
}

func (s *InMemoryStore) Create(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	clone := cloneShipment(shipment)
	clone.ID = id.ShipmentID(s.nextID)
	s.shipments[clone.ID] = clone
	return cloneShipment(clone), nil
}

func (s *InMemoryStore) ByID(ctx context.Context, shipmentID id.ShipmentID) (*models.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shipment, ok := s.shipments[shipmentID]
	if !ok {
		return nil, fmt.Errorf("shipment %d: %w", shipmentID, sentinel.ErrNotFound)
	}
	out := cloneShipment(shipment)
	for _, d := range s.details {
		if d.ShipmentID == shipmentID {
			out.Details = append(out.Details, cloneDetail(d))
		}
	}
	sortDetails(out.Details)
	return out, nil
}

func (s *InMemoryStore) Update(ctx context.Context, shipment *models.Shipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shipments[shipment.ID]; !ok {
		return fmt.Errorf("shipment %d: %w", shipment.ID, sentinel.ErrNotFound)
	}
	clone := cloneShipment(shipment)
	clone.Details = nil
	s.shipments[shipment.ID] = clone
	return nil
}

func (s *InMemoryStore) AddDetail(ctx context.Context, detail *models.Detail) (*models.Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextDetID++
	clone := cloneDetail(detail)
	clone.ID = s.nextDetID
	s.details[clone.ID] = clone
	return cloneDetail(clone), nil
}

func (s *InMemoryStore) UpdateDetail(ctx context.Context, detail *models.Detail) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.details[detail.ID]; !ok {
		return fmt.Errorf("shipment detail %d: %w", detail.ID, sentinel.ErrNotFound)
	}
	s.details[detail.ID] = cloneDetail(detail)
	return nil
}

func (s *InMemoryStore) LiveDetailByBox(ctx context.Context, boxID id.BoxID) (*models.Detail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *models.Detail
	for _, d := range s.details {
		if d.BoxID != boxID || !d.IsLive() {
			continue
		}
		if latest == nil || d.ID > latest.ID {
			latest = d
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("live detail for box %d: %w", boxID, sentinel.ErrNotFound)
	}
	return cloneDetail(latest), nil
}

func (s *InMemoryStore) NextSequence(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq, nil
}

func (s *InMemoryStore) CodeExists(ctx context.Context, code id.ShipmentCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, shipment := range s.shipments {
		if shipment.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func cloneShipment(in *models.Shipment) *models.Shipment {
	out := *in
	out.SentBy = clonePtr(in.SentBy)
	out.SentOn = clonePtr(in.SentOn)
	out.ReceivingStartedBy = clonePtr(in.ReceivingStartedBy)
	out.ReceivingStartedOn = clonePtr(in.ReceivingStartedOn)
	out.CompletedBy = clonePtr(in.CompletedBy)
	out.CompletedOn = clonePtr(in.CompletedOn)
	out.CanceledBy = clonePtr(in.CanceledBy)
	out.CanceledOn = clonePtr(in.CanceledOn)
	out.Details = nil
	return &out
}

func cloneDetail(in *models.Detail) *models.Detail {
	out := *in
	out.TargetProductID = clonePtr(in.TargetProductID)
	out.TargetLocationID = clonePtr(in.TargetLocationID)
	out.TargetSizeID = clonePtr(in.TargetSizeID)
	out.TargetQuantity = clonePtr(in.TargetQuantity)
	out.RemovedBy = clonePtr(in.RemovedBy)
	out.RemovedOn = clonePtr(in.RemovedOn)
	out.LostBy = clonePtr(in.LostBy)
	out.LostOn = clonePtr(in.LostOn)
	out.ReceivedBy = clonePtr(in.ReceivedBy)
	out.ReceivedOn = clonePtr(in.ReceivedOn)
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func sortDetails(details []*models.Detail) {
	for i := 1; i < len(details); i++ {
		for j := i; j > 0 && details[j-1].ID > details[j].ID; j-- {
			details[j-1], details[j] = details[j], details[j-1]
		}
	}
}
