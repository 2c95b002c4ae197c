package domain

import (
	dErrors "boxtribute/pkg/domain-errors"
)

// BoxLabel is the 8-digit identifier printed on a box. Labels are globally
// unique and survive the box's whole lifecycle, including soft deletion.
type BoxLabel string

// BoxLabelLength is fixed by the printed sticker format.
const BoxLabelLength = 8

// ParseBoxLabel validates the printed-label format.
func ParseBoxLabel(s string) (BoxLabel, error) {
	if len(s) != BoxLabelLength {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "box label must be %d characters: %q", BoxLabelLength, s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", dErrors.Newf(dErrors.CodeInvalidInput, "box label must be numeric: %q", s)
		}
	}
	return BoxLabel(s), nil
}

func (l BoxLabel) IsNil() bool {
	return l == ""
}

func (l BoxLabel) String() string {
	return string(l)
}

// ShipmentCode is the structured human-readable identifier of a shipment,
// e.g. "S0042-1938".
type ShipmentCode string

func (c ShipmentCode) IsNil() bool {
	return c == ""
}

func (c ShipmentCode) String() string {
	return string(c)
}
