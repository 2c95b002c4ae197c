// Package domain holds the typed identifiers shared by all bounded contexts.
// Typed ids make cross-entity mixups a compile error and push format
// validation to the trust boundary.
package domain

import (
	"strconv"

	"github.com/google/uuid"

	dErrors "boxtribute/pkg/domain-errors"
)

// Numeric ids mirror the relational primary keys of the warehouse schema.
type (
	UserID         int64
	OrganisationID int64
	BaseID         int64
	LocationID     int64
	ProductID      int64
	SizeID         int64
	TagID          int64
	BoxID          int64
	ShipmentID     int64
	AgreementID    int64
)

// QRCodeID identifies a pre-printed QR sticker. These are minted outside the
// relational sequence space, so they are UUIDs rather than row ids.
type QRCodeID uuid.UUID

func NewQRCodeID() QRCodeID {
	return QRCodeID(uuid.New())
}

func (q QRCodeID) IsNil() bool {
	return uuid.UUID(q) == uuid.Nil
}

func (q QRCodeID) String() string {
	return uuid.UUID(q).String()
}

// ParseQRCodeID validates and returns a QRCodeID.
func ParseQRCodeID(s string) (QRCodeID, error) {
	u, err := uuid.Parse(s)
	if err != nil || u == uuid.Nil {
		return QRCodeID{}, dErrors.Newf(dErrors.CodeInvalidInput, "invalid qr code id: %q", s)
	}
	return QRCodeID(u), nil
}

func parseNumeric(s, kind string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s id: %q", kind, s)
	}
	return n, nil
}

func ParseUserID(s string) (UserID, error) {
	n, err := parseNumeric(s, "user")
	return UserID(n), err
}

func ParseOrganisationID(s string) (OrganisationID, error) {
	n, err := parseNumeric(s, "organisation")
	return OrganisationID(n), err
}

func ParseBaseID(s string) (BaseID, error) {
	n, err := parseNumeric(s, "base")
	return BaseID(n), err
}

func ParseLocationID(s string) (LocationID, error) {
	n, err := parseNumeric(s, "location")
	return LocationID(n), err
}

func ParseProductID(s string) (ProductID, error) {
	n, err := parseNumeric(s, "product")
	return ProductID(n), err
}

func ParseSizeID(s string) (SizeID, error) {
	n, err := parseNumeric(s, "size")
	return SizeID(n), err
}

func ParseTagID(s string) (TagID, error) {
	n, err := parseNumeric(s, "tag")
	return TagID(n), err
}

func ParseShipmentID(s string) (ShipmentID, error) {
	n, err := parseNumeric(s, "shipment")
	return ShipmentID(n), err
}

func ParseAgreementID(s string) (AgreementID, error) {
	n, err := parseNumeric(s, "agreement")
	return AgreementID(n), err
}

func (i UserID) IsNil() bool         { return i == 0 }
func (i OrganisationID) IsNil() bool { return i == 0 }
func (i BaseID) IsNil() bool         { return i == 0 }
func (i LocationID) IsNil() bool     { return i == 0 }
func (i ProductID) IsNil() bool      { return i == 0 }
func (i SizeID) IsNil() bool         { return i == 0 }
func (i TagID) IsNil() bool          { return i == 0 }
func (i BoxID) IsNil() bool          { return i == 0 }
func (i ShipmentID) IsNil() bool     { return i == 0 }
func (i AgreementID) IsNil() bool    { return i == 0 }

func (i UserID) String() string         { return strconv.FormatInt(int64(i), 10) }
func (i OrganisationID) String() string { return strconv.FormatInt(int64(i), 10) }
func (i BaseID) String() string         { return strconv.FormatInt(int64(i), 10) }
func (i LocationID) String() string     { return strconv.FormatInt(int64(i), 10) }
func (i ProductID) String() string      { return strconv.FormatInt(int64(i), 10) }
func (i SizeID) String() string         { return strconv.FormatInt(int64(i), 10) }
func (i TagID) String() string          { return strconv.FormatInt(int64(i), 10) }
func (i BoxID) String() string          { return strconv.FormatInt(int64(i), 10) }
func (i ShipmentID) String() string     { return strconv.FormatInt(int64(i), 10) }
func (i AgreementID) String() string    { return strconv.FormatInt(int64(i), 10) }
