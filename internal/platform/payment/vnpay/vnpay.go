package vnpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/oceanview/backend/internal/platform/payment"
	cfgpkg "github.com/oceanview/backend/pkg/config"
)

var (
	// ErrSignatureMismatch aliases the shared sentinel so callers can match
	// either way.
	ErrSignatureMismatch = payment.ErrSignatureMismatch
	ErrMissingParams     = errors.New("vnpay: missing callback parameters")
)

const (
	version     = "2.1.0"
	command     = "pay"
	currency    = "VND"
	successCode = "00"
)

// Client signs pay-URL requests and authenticates return/IPN callbacks with
// HMAC-SHA512 over the sorted, URL-encoded parameter set.
type Client struct {
	cfg *cfgpkg.VNPayConfig
	log *zap.SugaredLogger
	now func() time.Time
}

func New(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Client {
	return &Client{cfg: &cfg.VNPay, log: log, now: time.Now}
}

func (c *Client) sign(query string) string {
	mac := hmac.New(sha512.New, []byte(c.cfg.HashSecret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

// hashData renders params as a sorted URL-encoded query, the exact form
// VNPay hashes on both sides.
func hashData(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}

func (c *Client) CreatePayURL(ctx context.Context, req *payment.PayURLRequest) (string, error) {
	createDate := c.now().Format("20060102150405")
	params := map[string]string{
		"vnp_Version":    version,
		"vnp_Command":    command,
		"vnp_TmnCode":    c.cfg.TmnCode,
		"vnp_Amount":     strconv.FormatInt(req.Amount*100, 10),
		"vnp_CurrCode":   currency,
		"vnp_TxnRef":     req.ReferenceNumber,
		"vnp_OrderInfo":  req.OrderInfo,
		"vnp_OrderType":  "other",
		"vnp_Locale":     "vn",
		"vnp_ReturnUrl":  c.cfg.ReturnURL,
		"vnp_IpAddr":     req.ClientIP,
		"vnp_CreateDate": createDate,
	}

	query := hashData(params)
	secureHash := c.sign(query)
	return fmt.Sprintf("%s?%s&vnp_SecureHash=%s", c.cfg.PayURL, query, secureHash), nil
}

// VerifyCallback authenticates a return/IPN callback. The amount comes back
// multiplied by 100 and is normalized here.
func (c *Client) VerifyCallback(params map[string]string) (*payment.CallbackData, error) {
	received, ok := params["vnp_SecureHash"]
	if !ok || received == "" {
		return nil, ErrMissingParams
	}

	signed := make(map[string]string, len(params))
	for k, v := range params {
		if k == "vnp_SecureHash" || k == "vnp_SecureHashType" {
			continue
		}
		signed[k] = v
	}

	expected := c.sign(hashData(signed))
	if !hmac.Equal([]byte(expected), []byte(received)) {
		c.log.Errorw("vnpay callback signature mismatch", "txn_ref", params["vnp_TxnRef"])
		return nil, ErrSignatureMismatch
	}

	ref := params["vnp_TxnRef"]
	if ref == "" {
		return nil, ErrMissingParams
	}
	rawAmount, err := strconv.ParseInt(params["vnp_Amount"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("vnpay: invalid amount %q: %w", params["vnp_Amount"], err)
	}

	return &payment.CallbackData{
		ReferenceNumber: ref,
		Amount:          rawAmount / 100,
		TransactionID:   params["vnp_TransactionNo"],
		Success:         params["vnp_ResponseCode"] == successCode,
		Raw:             params,
	}, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
