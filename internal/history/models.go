// Package history is the append-only audit ledger of the warehouse. Every
// box and tag field mutation, manual or driven by a shipment transition,
// produces one immutable entry. Entries carry typed old/new values plus an
// enumerated change kind; the legacy human-readable text is derived by
// Render, never stored as the source of truth.
package history

import (
	"fmt"
	"time"

	id "boxtribute/pkg/domain"
)

// ChangeKind enumerates what changed.
type ChangeKind string

const (
	KindBoxCreated      ChangeKind = "box_created"
	KindBoxDeleted      ChangeKind = "box_deleted"
	KindStateChanged    ChangeKind = "box_state_changed"
	KindLocationChanged ChangeKind = "box_location_changed"
	KindProductChanged  ChangeKind = "box_product_changed"
	KindSizeChanged     ChangeKind = "box_size_changed"
	KindQuantityChanged ChangeKind = "box_quantity_changed"
	KindCommentChanged  ChangeKind = "box_comment_changed"
	KindTagAssigned     ChangeKind = "tag_assigned"
	KindTagUnassigned   ChangeKind = "tag_unassigned"
)

// Tables the ledger records against, matching the legacy schema names.
const (
	TableStock        = "stock"
	TableTagRelations = "tags_relations"
)

// Value is one side of a change: the integer code persisted in the ledger
// and the display label used for rendering. Quantity changes carry the
// number itself as the code; comment changes use Text instead.
type Value struct {
	Code  int64
	Label string
}

// Entry is an immutable audit record. Entries are never updated or deleted.
type Entry struct {
	ID         int64
	Table      string
	RecordID   int64
	Kind       ChangeKind
	ActorID    id.UserID
	RecordedAt time.Time

	From Value
	To   Value

	// FromText/ToText carry free-text diffs (box comments).
	FromText string
	ToText   string
}

// Render produces the legacy human-readable change description.
func (e Entry) Render() string {
	switch e.Kind {
	case KindBoxCreated:
		return "created record"
	case KindBoxDeleted:
		return "deleted record"
	case KindStateChanged:
		return fmt.Sprintf("changed box state from %s to %s", e.From.Label, e.To.Label)
	case KindLocationChanged:
		return fmt.Sprintf("changed box location from %s to %s", e.From.Label, e.To.Label)
	case KindProductChanged:
		return fmt.Sprintf("changed product type from %s to %s", e.From.Label, e.To.Label)
	case KindSizeChanged:
		return fmt.Sprintf("changed size from %s to %s", e.From.Label, e.To.Label)
	case KindQuantityChanged:
		return fmt.Sprintf("changed the number of items from %d to %d", e.From.Code, e.To.Code)
	case KindCommentChanged:
		return fmt.Sprintf("changed comments from %q to %q", e.FromText, e.ToText)
	case KindTagAssigned:
		return fmt.Sprintf("assigned tag %s", e.To.Label)
	case KindTagUnassigned:
		return fmt.Sprintf("unassigned tag %s", e.From.Label)
	default:
		return string(e.Kind)
	}
}

// Constructors keep emitting services out of the business of filling struct
// fields consistently. RecordedAt and ActorID are stamped by the ledger.

func BoxCreated(boxID id.BoxID) Entry {
	return Entry{Table: TableStock, RecordID: int64(boxID), Kind: KindBoxCreated}
}

func BoxDeleted(boxID id.BoxID) Entry {
	return Entry{Table: TableStock, RecordID: int64(boxID), Kind: KindBoxDeleted}
}

func BoxStateChanged(boxID id.BoxID, from, to Value) Entry {
	return Entry{Table: TableStock, RecordID: int64(boxID), Kind: KindStateChanged, From: from, To: to}
}

func BoxLocationChanged(boxID id.BoxID, from, to Value) Entry {
	return Entry{Table: TableStock, RecordID: int64(boxID), Kind: KindLocationChanged, From: from, To: to}
}

func BoxProductChanged(boxID id.BoxID, from, to Value) Entry {
	return Entry{Table: TableStock, RecordID: int64(boxID), Kind: KindProductChanged, From: from, To: to}
}

func BoxSizeChanged(boxID id.BoxID, from, to Value) Entry {
	return Entry{Table: TableStock, RecordID: int64(boxID), Kind: KindSizeChanged, From: from, To: to}
}

func BoxQuantityChanged(boxID id.BoxID, from, to int) Entry {
	return Entry{
		Table: TableStock, RecordID: int64(boxID), Kind: KindQuantityChanged,
		From: Value{Code: int64(from)}, To: Value{Code: int64(to)},
	}
}

func BoxCommentChanged(boxID id.BoxID, from, to string) Entry {
	return Entry{Table: TableStock, RecordID: int64(boxID), Kind: KindCommentChanged, FromText: from, ToText: to}
}

func TagAssigned(boxID id.BoxID, tag Value) Entry {
	return Entry{Table: TableTagRelations, RecordID: int64(boxID), Kind: KindTagAssigned, To: tag}
}

func TagUnassigned(boxID id.BoxID, tag Value) Entry {
	return Entry{Table: TableTagRelations, RecordID: int64(boxID), Kind: KindTagUnassigned, From: tag}
}
