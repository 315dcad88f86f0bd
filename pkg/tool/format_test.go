package tool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "0 VNĐ"},
		{500, "500 VNĐ"},
		{55000, "55.000 VNĐ"},
		{1500000, "1.500.000 VNĐ"},
		{-70000, "-70.000 VNĐ"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, FormatCurrency(tt.amount))
	}
}
