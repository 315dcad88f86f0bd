package tool

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

const invoiceIDPrefix = "INV"

// FormatInvoiceID renders a sequential invoice number, e.g. 1 -> "INV000001".
func FormatInvoiceID(seq int) string {
	return fmt.Sprintf("%s%06d", invoiceIDPrefix, seq)
}

// ParseInvoiceSeq recovers the numeric suffix of an invoice id.
func ParseInvoiceSeq(id string) (int, error) {
	if !strings.HasPrefix(id, invoiceIDPrefix) {
		return 0, fmt.Errorf("invalid invoice id %q", id)
	}
	return strconv.Atoi(id[len(invoiceIDPrefix):])
}

// ErrResidentIDOverflow is returned once a calendar year runs out of the
// 9999 resident ids it can hand out.
var ErrResidentIDOverflow = errors.New("surpassed the ability to issue resident ids in one year")

// FormatResidentID combines the last two digits of a year with a four digit
// sequence number, e.g. (2024, 25) -> "240025".
func FormatResidentID(year, seq int) (string, error) {
	if seq < 1 || seq > 9999 {
		return "", ErrResidentIDOverflow
	}
	return fmt.Sprintf("%02d%04d", year%100, seq), nil
}

// ParseResidentID splits a resident id into its year suffix and sequence.
func ParseResidentID(id string) (yearSuffix, seq int, err error) {
	if len(id) != 6 {
		return 0, 0, fmt.Errorf("invalid resident id %q", id)
	}
	yearSuffix, err = strconv.Atoi(id[:2])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid resident id %q", id)
	}
	seq, err = strconv.Atoi(id[2:])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid resident id %q", id)
	}
	return yearSuffix, seq, nil
}
