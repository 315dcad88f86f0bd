package vnpay

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oceanview/backend/internal/platform/payment"
	cfgpkg "github.com/oceanview/backend/pkg/config"
)

func newTestClient() *Client {
	return &Client{
		cfg: &cfgpkg.VNPayConfig{
			TmnCode:    "OCEANVW1",
			HashSecret: "vnpay-test-secret",
			PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
			ReturnURL:  "https://oceanview.example/payment/vnpay/return",
		},
		log: zap.NewNop().Sugar(),
		now: func() time.Time { return time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC) },
	}
}

// signedParams builds a callback parameter set carrying a valid signature.
func signedParams(c *Client, params map[string]string) map[string]string {
	out := make(map[string]string, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	out["vnp_SecureHash"] = c.sign(hashData(params))
	return out
}

func TestVerifyCallback(t *testing.T) {
	c := newTestClient()
	base := map[string]string{
		"vnp_TxnRef":        "INV000001-abc",
		"vnp_Amount":        "22000000",
		"vnp_ResponseCode":  "00",
		"vnp_TransactionNo": "14012345",
	}

	t.Run("valid signature decodes and normalizes the amount", func(t *testing.T) {
		data, err := c.VerifyCallback(signedParams(c, base))
		require.NoError(t, err)
		require.Equal(t, "INV000001-abc", data.ReferenceNumber)
		require.EqualValues(t, 220000, data.Amount)
		require.Equal(t, "14012345", data.TransactionID)
		require.True(t, data.Success)
	})

	t.Run("non-zero response code is a failure, not an error", func(t *testing.T) {
		failed := map[string]string{
			"vnp_TxnRef":       "INV000001-abc",
			"vnp_Amount":       "22000000",
			"vnp_ResponseCode": "24",
		}
		data, err := c.VerifyCallback(signedParams(c, failed))
		require.NoError(t, err)
		require.False(t, data.Success)
	})

	t.Run("tampered amount fails verification", func(t *testing.T) {
		params := signedParams(c, base)
		params["vnp_Amount"] = "100"
		_, err := c.VerifyCallback(params)
		require.ErrorIs(t, err, payment.ErrSignatureMismatch)
	})

	t.Run("missing secure hash", func(t *testing.T) {
		_, err := c.VerifyCallback(base)
		require.ErrorIs(t, err, ErrMissingParams)
	})

	t.Run("hash type parameter is excluded from the signed set", func(t *testing.T) {
		params := signedParams(c, base)
		params["vnp_SecureHashType"] = "HMACSHA512"
		_, err := c.VerifyCallback(params)
		require.NoError(t, err)
	})
}

func TestCreatePayURL_RoundTrip(t *testing.T) {
	c := newTestClient()
	payURL, err := c.CreatePayURL(context.Background(), &payment.PayURLRequest{
		ReferenceNumber: "INV000001-abc",
		Amount:          220000,
		OrderInfo:       "Thanh toan hoa don INV000001",
		ClientIP:        "1.2.3.4",
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(payURL, c.cfg.PayURL+"?"))

	// The signature on the generated URL must verify as a callback would.
	u, err := url.Parse(payURL)
	require.NoError(t, err)
	params := map[string]string{}
	for k, vs := range u.Query() {
		params[k] = vs[0]
	}

	data, err := c.VerifyCallback(params)
	require.NoError(t, err)
	require.Equal(t, "INV000001-abc", data.ReferenceNumber)
	require.EqualValues(t, 220000, data.Amount)
}

func TestHashData_SortedAndEscaped(t *testing.T) {
	got := hashData(map[string]string{
		"b": "x y",
		"a": "1",
		"c": "đ",
	})
	require.Equal(t, "a=1&b=x+y&c=%C4%91", got)
}
