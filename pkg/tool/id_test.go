package tool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatResidentID(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		seq     int
		want    string
		wantErr bool
	}{
		{name: "first id of 2024", year: 2024, seq: 1, want: "240001"},
		{name: "mid sequence", year: 2024, seq: 25, want: "240025"},
		{name: "last id of a year", year: 2025, seq: 9999, want: "259999"},
		{name: "year wraps to two digits", year: 2100, seq: 7, want: "000007"},
		{name: "sequence zero rejected", year: 2024, seq: 0, wantErr: true},
		{name: "sequence overflow", year: 2024, seq: 10000, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatResidentID(tt.year, tt.seq)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrResidentIDOverflow)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseResidentID_RoundTrip(t *testing.T) {
	for _, seq := range []int{1, 42, 9999} {
		id, err := FormatResidentID(2024, seq)
		require.NoError(t, err)

		yearSuffix, gotSeq, err := ParseResidentID(id)
		require.NoError(t, err)
		require.Equal(t, 24, yearSuffix)
		require.Equal(t, seq, gotSeq)
	}
}

func TestParseResidentID_Invalid(t *testing.T) {
	for _, id := range []string{"", "24001", "2400010", "24x001", "ab0001"} {
		_, _, err := ParseResidentID(id)
		require.Error(t, err, id)
	}
}

func TestInvoiceID_RoundTrip(t *testing.T) {
	require.Equal(t, "INV000001", FormatInvoiceID(1))
	require.Equal(t, "INV001234", FormatInvoiceID(1234))

	for _, seq := range []int{1, 99, 999999} {
		got, err := ParseInvoiceSeq(FormatInvoiceID(seq))
		require.NoError(t, err)
		require.Equal(t, seq, got)
	}

	_, err := ParseInvoiceSeq("XYZ000001")
	require.Error(t, err)
}
