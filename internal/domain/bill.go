package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidBillFormat = errors.New("invalid bill number format")

// BillType is one of the two-letter chamber/instrument codes used by the
// legislature's document host.
type BillType string

const (
	BillTypeHB  BillType = "HB"
	BillTypeSB  BillType = "SB"
	BillTypeHJR BillType = "HJR"
	BillTypeSJR BillType = "SJR"
)

// billNumberPattern accepts "HB 150", "sb45", "HJR  10" and similar. The
// document host has no bills numbered past five digits.
var billNumberPattern = regexp.MustCompile(`^([HS])(B|JR)\s*(\d{1,5})$`)

// BillIdentifier is the canonical form of a user-supplied bill number:
// instrument type plus the number zero-padded to five digits.
type BillIdentifier struct {
	Type   BillType
	Number string
}

// ParseBillIdentifier normalizes free-form input into a BillIdentifier.
// Invalid input returns ErrInvalidBillFormat and no partial value.
func ParseBillIdentifier(raw string) (BillIdentifier, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	match := billNumberPattern.FindStringSubmatch(normalized)
	if match == nil {
		return BillIdentifier{}, fmt.Errorf("%w: %q", ErrInvalidBillFormat, raw)
	}

	return BillIdentifier{
		Type:   BillType(match[1] + match[2]),
		Number: strings.Repeat("0", 5-len(match[3])) + match[3],
	}, nil
}

// String returns the compact form used in cache keys and results, e.g.
// "HB00150".
func (id BillIdentifier) String() string {
	return string(id.Type) + id.Number
}

func (id BillIdentifier) IsZero() bool {
	return id.Type == "" && id.Number == ""
}
