// Package qrcode manages pre-printed QR stickers and their link to boxes.
// Scanning a sticker is the hottest read path in the field, so the
// production store is Redis-backed; a QR code links to at most one box for
// its whole lifetime.
package qrcode

import (
	"context"
	"time"

	id "boxtribute/pkg/domain"
)

// QRCode is a printed sticker. BoxID is zero until a box is created against
// the sticker.
type QRCode struct {
	ID        id.QRCodeID
	BoxID     id.BoxID
	CreatedOn time.Time
}

// IsLinked reports whether a box has been created against the sticker.
func (q *QRCode) IsLinked() bool {
	return !q.BoxID.IsNil()
}

// Store persists QR codes. Link must be atomic: concurrent attempts to link
// the same sticker must yield exactly one winner, the loser receiving
// sentinel.ErrConflict.
type Store interface {
	Create(ctx context.Context, code QRCode) error
	ByID(ctx context.Context, qrID id.QRCodeID) (*QRCode, error)
	Link(ctx context.Context, qrID id.QRCodeID, boxID id.BoxID) error
}
